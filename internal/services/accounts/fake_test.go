package accounts

import (
	"context"
	"errors"
	"sync"

	"github.com/j-veylop/codex-switcher-tui/internal/backend"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

var errBackend = errors.New("backend unavailable")

// fakeClient is an in-memory backend. Hooks override individual commands.
type fakeClient struct {
	mu    sync.Mutex
	calls []backend.Command

	accounts []models.Account
	usage    map[string]models.UsageSnapshot
	summary  models.CurrentSessionSummary

	listErr        error
	refreshAllErr  error
	getUsageErr    error
	summaryErr     error
	snapshotPath   string
	completeResult models.Account

	reorderArgs []string

	// Optional hooks.
	refreshAllHook func(ctx context.Context) ([]models.UsageSnapshot, error)
	getUsageHook   func(ctx context.Context, id string) (models.UsageSnapshot, error)
}

var _ backend.Client = (*fakeClient)(nil)

func newFakeClient(accounts ...models.Account) *fakeClient {
	return &fakeClient{
		accounts: accounts,
		usage:    map[string]models.UsageSnapshot{},
	}
}

func (f *fakeClient) record(cmd backend.Command) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()
}

func (f *fakeClient) called(cmd backend.Command) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == cmd {
			n++
		}
	}
	return n
}

func (f *fakeClient) setAccounts(accounts ...models.Account) {
	f.mu.Lock()
	f.accounts = accounts
	f.mu.Unlock()
}

func (f *fakeClient) ListAccounts(context.Context) ([]models.Account, error) {
	f.record(backend.CmdListAccounts)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Account(nil), f.accounts...), nil
}

func (f *fakeClient) RefreshAllAccountsUsage(ctx context.Context) ([]models.UsageSnapshot, error) {
	f.record(backend.CmdRefreshAllUsage)
	if f.refreshAllHook != nil {
		return f.refreshAllHook(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshAllErr != nil {
		return nil, f.refreshAllErr
	}
	var out []models.UsageSnapshot
	for _, acc := range f.accounts {
		if u, ok := f.usage[acc.ID]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeClient) GetUsage(ctx context.Context, id string) (models.UsageSnapshot, error) {
	f.record(backend.CmdGetUsage)
	if f.getUsageHook != nil {
		return f.getUsageHook(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getUsageErr != nil {
		return models.UsageSnapshot{}, f.getUsageErr
	}
	return f.usage[id], nil
}

func (f *fakeClient) SwitchAccount(_ context.Context, id string) error {
	f.record(backend.CmdSwitchAccount)
	f.mu.Lock()
	defer f.mu.Unlock()
	found := false
	for i := range f.accounts {
		f.accounts[i].IsActive = f.accounts[i].ID == id
		found = found || f.accounts[i].ID == id
	}
	if !found {
		return &backend.CommandError{Command: backend.CmdSwitchAccount, Message: "Account not found"}
	}
	return nil
}

func (f *fakeClient) DeleteAccount(_ context.Context, id string) error {
	f.record(backend.CmdDeleteAccount)
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.accounts[:0:0]
	for _, a := range f.accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	f.accounts = kept
	delete(f.usage, id)
	return nil
}

func (f *fakeClient) RenameAccount(_ context.Context, id, name string) error {
	f.record(backend.CmdRenameAccount)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			f.accounts[i].Name = name
			return nil
		}
	}
	return &backend.CommandError{Command: backend.CmdRenameAccount, Message: "Account not found"}
}

func (f *fakeClient) AddAccountFromFile(_ context.Context, path, name string) (models.Account, error) {
	f.record(backend.CmdAddAccountFromFile)
	f.mu.Lock()
	defer f.mu.Unlock()
	acc := models.Account{ID: "imported-" + name, Name: name, AuthMode: models.AuthModeAPIKey}
	f.accounts = append(f.accounts, acc)
	return acc, nil
}

func (f *fakeClient) StartLogin(context.Context, string) (models.OAuthLoginInfo, error) {
	f.record(backend.CmdStartLogin)
	return models.OAuthLoginInfo{AuthURL: "https://auth.example/login", CallbackPort: 1455}, nil
}

func (f *fakeClient) CompleteLogin(context.Context) (models.Account, error) {
	f.record(backend.CmdCompleteLogin)
	return f.activate(), nil
}

// activate stores completeResult as the active account, the way the backend
// does after a login or reconnect.
func (f *fakeClient) activate() models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc := f.completeResult
	acc.IsActive = true
	out := []models.Account{acc}
	for _, a := range f.accounts {
		if a.ID == acc.ID {
			continue
		}
		a.IsActive = false
		out = append(out, a)
	}
	f.accounts = out
	return f.completeResult
}

func (f *fakeClient) CancelLogin(context.Context) error {
	f.record(backend.CmdCancelLogin)
	return errBackend
}

func (f *fakeClient) StartReconnect(context.Context, string) (models.OAuthLoginInfo, error) {
	f.record(backend.CmdStartReconnect)
	return models.OAuthLoginInfo{AuthURL: "https://auth.example/reconnect"}, nil
}

func (f *fakeClient) CompleteReconnect(context.Context) (models.Account, error) {
	f.record(backend.CmdCompleteReconnect)
	return f.activate(), nil
}

func (f *fakeClient) ReorderAccounts(_ context.Context, ids []string) error {
	f.record(backend.CmdReorderAccounts)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reorderArgs = append([]string(nil), ids...)
	return nil
}

func (f *fakeClient) GetCurrentAuthSummary(context.Context) (models.CurrentSessionSummary, error) {
	f.record(backend.CmdGetCurrentAuthSummary)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaryErr != nil {
		return models.CurrentSessionSummary{}, f.summaryErr
	}
	return f.summary, nil
}

func (f *fakeClient) CreateAuthSnapshot(context.Context) (string, error) {
	f.record(backend.CmdCreateAuthSnapshot)
	return f.snapshotPath, nil
}

func (f *fakeClient) CheckCodexProcesses(context.Context) (models.ProcessInfo, error) {
	f.record(backend.CmdCheckCodexProcesses)
	return models.ProcessInfo{CanSwitch: true}, nil
}
