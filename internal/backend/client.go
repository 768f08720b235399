// Package backend is the typed client for the privileged account backend.
// Every operation is a single invoke(command, args) round trip.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

// Command is the wire name of a backend command.
type Command string

const (
	CmdListAccounts          Command = "list_accounts"
	CmdRefreshAllUsage       Command = "refresh_all_accounts_usage"
	CmdGetUsage              Command = "get_usage"
	CmdSwitchAccount         Command = "switch_account"
	CmdDeleteAccount         Command = "delete_account"
	CmdRenameAccount         Command = "rename_account"
	CmdAddAccountFromFile    Command = "add_account_from_file"
	CmdStartLogin            Command = "start_login"
	CmdCompleteLogin         Command = "complete_login"
	CmdCancelLogin           Command = "cancel_login"
	CmdStartReconnect        Command = "start_reconnect"
	CmdCompleteReconnect     Command = "complete_reconnect"
	CmdReorderAccounts       Command = "reorder_accounts"
	CmdGetCurrentAuthSummary Command = "get_current_auth_summary"
	CmdCreateAuthSnapshot    Command = "create_auth_snapshot"
	CmdCheckCodexProcesses   Command = "check_codex_processes"
)

// Client is the set of backend commands the application uses.
// Implementations must be safe for concurrent use.
type Client interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
	RefreshAllAccountsUsage(ctx context.Context) ([]models.UsageSnapshot, error)
	GetUsage(ctx context.Context, accountID string) (models.UsageSnapshot, error)
	SwitchAccount(ctx context.Context, accountID string) error
	DeleteAccount(ctx context.Context, accountID string) error
	RenameAccount(ctx context.Context, accountID, newName string) error
	AddAccountFromFile(ctx context.Context, path, name string) (models.Account, error)
	StartLogin(ctx context.Context, accountName string) (models.OAuthLoginInfo, error)
	CompleteLogin(ctx context.Context) (models.Account, error)
	CancelLogin(ctx context.Context) error
	StartReconnect(ctx context.Context, accountID string) (models.OAuthLoginInfo, error)
	CompleteReconnect(ctx context.Context) (models.Account, error)
	ReorderAccounts(ctx context.Context, accountIDs []string) error
	GetCurrentAuthSummary(ctx context.Context) (models.CurrentSessionSummary, error)
	CreateAuthSnapshot(ctx context.Context) (string, error)
	CheckCodexProcesses(ctx context.Context) (models.ProcessInfo, error)
}

// CommandError is returned when the backend rejects a command.
type CommandError struct {
	Command Command
	Message string
	Status  int
}

func (e *CommandError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Command, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

// Message extracts the user-facing text from an error returned by a Client.
// Backend rejections yield the backend's own message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Message
	}
	return err.Error()
}
