package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/codex-switcher-tui/internal/logger"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// HTTPClient invokes backend commands over HTTP. Each command is a
// POST to {BaseURL}/invoke/{command} with the JSON-encoded arguments as body.
// Calls are never retried.
type HTTPClient struct {
	httpClient *http.Client
	// waitClient has no timeout; it serves the commands that block until a
	// browser login finishes and is bounded only by the caller's context.
	waitClient *http.Client
	baseURL    string
	token      string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the backend at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		waitClient: &http.Client{},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// invoke sends one command and decodes the result into out (which may be nil).
func (c *HTTPClient) invoke(ctx context.Context, cmd Command, args, out any) error {
	if args == nil {
		args = struct{}{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode %s args: %w", cmd, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/invoke/"+string(cmd), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", cmd, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	hc := c.httpClient
	if cmd == CmdCompleteLogin || cmd == CmdCompleteReconnect {
		hc = c.waitClient
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", cmd, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "command", cmd, "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", cmd, err)
	}

	logger.Debug("backend invoke",
		"command", cmd,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &CommandError{Command: cmd, Message: msg, Status: resp.StatusCode}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", cmd, err)
	}
	return nil
}

type accountIDArgs struct {
	AccountID string `json:"accountId"`
}

// ListAccounts returns every stored account in display order.
func (c *HTTPClient) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := c.invoke(ctx, CmdListAccounts, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// RefreshAllAccountsUsage fetches fresh usage for all accounts.
func (c *HTTPClient) RefreshAllAccountsUsage(ctx context.Context) ([]models.UsageSnapshot, error) {
	var usage []models.UsageSnapshot
	if err := c.invoke(ctx, CmdRefreshAllUsage, nil, &usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// GetUsage fetches one account's usage.
func (c *HTTPClient) GetUsage(ctx context.Context, accountID string) (models.UsageSnapshot, error) {
	var usage models.UsageSnapshot
	err := c.invoke(ctx, CmdGetUsage, accountIDArgs{AccountID: accountID}, &usage)
	return usage, err
}

// SwitchAccount makes the account the one Codex uses.
func (c *HTTPClient) SwitchAccount(ctx context.Context, accountID string) error {
	return c.invoke(ctx, CmdSwitchAccount, accountIDArgs{AccountID: accountID}, nil)
}

// DeleteAccount removes a stored account.
func (c *HTTPClient) DeleteAccount(ctx context.Context, accountID string) error {
	return c.invoke(ctx, CmdDeleteAccount, accountIDArgs{AccountID: accountID}, nil)
}

// RenameAccount changes an account's display name.
func (c *HTTPClient) RenameAccount(ctx context.Context, accountID, newName string) error {
	args := struct {
		AccountID string `json:"accountId"`
		NewName   string `json:"newName"`
	}{accountID, newName}
	return c.invoke(ctx, CmdRenameAccount, args, nil)
}

// AddAccountFromFile imports an account from an auth.json file.
func (c *HTTPClient) AddAccountFromFile(ctx context.Context, path, name string) (models.Account, error) {
	args := struct {
		Path string `json:"path"`
		Name string `json:"name"`
	}{path, name}
	var acc models.Account
	err := c.invoke(ctx, CmdAddAccountFromFile, args, &acc)
	return acc, err
}

// StartLogin begins an OAuth login for a new account.
func (c *HTTPClient) StartLogin(ctx context.Context, accountName string) (models.OAuthLoginInfo, error) {
	args := struct {
		AccountName string `json:"accountName"`
	}{accountName}
	var info models.OAuthLoginInfo
	err := c.invoke(ctx, CmdStartLogin, args, &info)
	return info, err
}

// CompleteLogin waits for the pending OAuth login and returns the new account.
func (c *HTTPClient) CompleteLogin(ctx context.Context) (models.Account, error) {
	var acc models.Account
	err := c.invoke(ctx, CmdCompleteLogin, nil, &acc)
	return acc, err
}

// CancelLogin aborts the pending OAuth login or reconnect.
func (c *HTTPClient) CancelLogin(ctx context.Context) error {
	return c.invoke(ctx, CmdCancelLogin, nil, nil)
}

// StartReconnect begins an OAuth login that refreshes an existing account.
func (c *HTTPClient) StartReconnect(ctx context.Context, accountID string) (models.OAuthLoginInfo, error) {
	var info models.OAuthLoginInfo
	err := c.invoke(ctx, CmdStartReconnect, accountIDArgs{AccountID: accountID}, &info)
	return info, err
}

// CompleteReconnect waits for the pending reconnect and returns the updated account.
func (c *HTTPClient) CompleteReconnect(ctx context.Context) (models.Account, error) {
	var acc models.Account
	err := c.invoke(ctx, CmdCompleteReconnect, nil, &acc)
	return acc, err
}

// ReorderAccounts stores a new display order. An empty list is sent as [].
func (c *HTTPClient) ReorderAccounts(ctx context.Context, accountIDs []string) error {
	if accountIDs == nil {
		accountIDs = []string{}
	}
	args := struct {
		AccountIDs []string `json:"accountIds"`
	}{accountIDs}
	return c.invoke(ctx, CmdReorderAccounts, args, nil)
}

// GetCurrentAuthSummary describes the auth file Codex currently uses.
func (c *HTTPClient) GetCurrentAuthSummary(ctx context.Context) (models.CurrentSessionSummary, error) {
	var summary models.CurrentSessionSummary
	err := c.invoke(ctx, CmdGetCurrentAuthSummary, nil, &summary)
	return summary, err
}

// CreateAuthSnapshot backs up the current auth file and returns the backup path.
func (c *HTTPClient) CreateAuthSnapshot(ctx context.Context) (string, error) {
	var path string
	err := c.invoke(ctx, CmdCreateAuthSnapshot, nil, &path)
	return path, err
}

// CheckCodexProcesses reports running Codex processes.
func (c *HTTPClient) CheckCodexProcesses(ctx context.Context) (models.ProcessInfo, error) {
	var info models.ProcessInfo
	err := c.invoke(ctx, CmdCheckCodexProcesses, nil, &info)
	return info, err
}
