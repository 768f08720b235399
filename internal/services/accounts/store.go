// Package accounts keeps the local account list in sync with the backend,
// merging usage data that list refreshes do not return.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/codex-switcher-tui/internal/backend"
	"github.com/j-veylop/codex-switcher-tui/internal/logger"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

// DefaultRefreshInterval is how often usage is refreshed while the store runs.
const DefaultRefreshInterval = 60 * time.Second

var (
	// ErrAccountNotFound is returned when an operation names an unknown account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrReconnectUnsupported is returned when reconnecting a non-OAuth account.
	ErrReconnectUnsupported = errors.New("reconnect is only available for ChatGPT OAuth accounts")
)

// State is an immutable snapshot of the store. Slices in a published State
// are never modified; every transition builds new ones.
type State struct {
	UpdatedAt        time.Time
	CurrentSession   *models.CurrentSessionSummary
	Error            string
	SnapshotsDirPath string
	Accounts         []models.AccountWithUsage
	Loading          bool
}

// Active returns the active account, if any.
func (s State) Active() (models.AccountWithUsage, bool) {
	for _, a := range s.Accounts {
		if a.IsActive {
			return a, true
		}
	}
	return models.AccountWithUsage{}, false
}

// Account returns the account with id.
func (s State) Account(id string) (models.AccountWithUsage, bool) {
	return findAccount(s.Accounts, id)
}

// EventType defines the type of store event.
type EventType int

const (
	EventAccountsLoaded EventType = iota
	EventUsageUpdated
	EventUsageLoading
	EventAccountsReordered
	EventActiveAccountChanged
	EventSessionUpdated
	EventLoading
	EventError
)

// Event is published after every state transition.
type Event struct {
	Error     error
	AccountID string
	// Usage holds the snapshots received from the backend for usage events.
	Usage []models.UsageSnapshot
	// Source is "switch", "login" or "reconnect" for active account changes.
	Source string
	Type   EventType
}

// Options configures a Store.
type Options struct {
	Now func() time.Time
	// OnAuthURL is called with the browser URL once a reconnect has started.
	OnAuthURL       func(models.OAuthLoginInfo)
	RefreshInterval time.Duration
}

// Store is the single source of truth for accounts, cached usage and the
// current session summary.
type Store struct {
	client    backend.Client
	now       func() time.Time
	onAuthURL func(models.OAuthLoginInfo)
	eventChan chan Event
	stopChan  chan struct{}

	// bgCtx scopes reconciliation that outlives the call that started it.
	bgCtx    context.Context
	bgCancel context.CancelFunc
	wg       sync.WaitGroup

	state State
	mu    sync.RWMutex

	lifecycleMu sync.Mutex
	started     bool
	closed      bool

	interval time.Duration
}

// New creates a store backed by client. Call Start to load data and begin
// periodic usage refreshes.
func New(client backend.Client, opts Options) *Store {
	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		client:    client,
		now:       now,
		onAuthURL: opts.OnAuthURL,
		interval:  interval,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		bgCtx:     ctx,
		bgCancel:  cancel,
		state:     State{Loading: true},
	}
}

// Events returns the event channel for subscribing to state changes.
func (s *Store) Events() <-chan Event {
	return s.eventChan
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Start loads accounts, then usage, while fetching the current session in
// parallel. It then refreshes usage every refresh interval until Close.
// Start returns once the initial load has finished.
func (s *Store) Start(ctx context.Context) {
	s.lifecycleMu.Lock()
	if s.started || s.closed {
		s.lifecycleMu.Unlock()
		return
	}
	s.started = true
	s.wg.Add(2)
	s.lifecycleMu.Unlock()

	go func() {
		defer s.wg.Done()
		if _, err := s.RefreshCurrentSession(ctx); err != nil {
			logger.Error("failed to load current session summary", "error", err)
		}
	}()

	go s.pollLoop()

	s.LoadAccounts(ctx, false, true)
	if err := s.RefreshUsage(ctx); err != nil {
		logger.Warn("initial usage refresh failed", "error", err)
	}
}

// pollLoop refreshes usage on a fixed interval.
func (s *Store) pollLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.RefreshUsage(s.bgCtx); err != nil {
				logger.Debug("periodic usage refresh failed", "error", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// Close stops the refresh timer, cancels background reconciliation and
// waits for every goroutine the store started.
func (s *Store) Close() error {
	s.lifecycleMu.Lock()
	if s.closed {
		s.lifecycleMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stopChan)
	s.bgCancel()
	s.lifecycleMu.Unlock()

	s.wg.Wait()
	return nil
}

// goBackground runs fn on the store's own context without blocking the caller.
func (s *Store) goBackground(fn func(ctx context.Context)) {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if s.closed {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.bgCtx)
	}()
}

// update applies fn to the current state under the lock and publishes the result.
func (s *Store) update(evt Event, fn func(State) State) State {
	s.mu.Lock()
	next := fn(s.state)
	next.UpdatedAt = s.now()
	s.state = next
	s.mu.Unlock()

	s.sendEvent(evt)
	return next
}

// sendEvent sends an event without blocking, dropping the oldest if full.
func (s *Store) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// LoadAccounts fetches the account list. With preserveUsage, cached usage
// is joined back by id; otherwise usage is cleared. showLoading toggles the
// Loading flag around the call. Failures are recorded in State.Error.
func (s *Store) LoadAccounts(ctx context.Context, preserveUsage, showLoading bool) {
	s.update(Event{Type: EventLoading}, func(st State) State {
		if showLoading {
			st.Loading = true
		}
		st.Error = ""
		return st
	})

	list, err := s.client.ListAccounts(ctx)
	if err != nil {
		logger.Error("failed to load accounts", "error", err)
		s.update(Event{Type: EventError, Error: err}, func(st State) State {
			st.Error = backend.Message(err)
			if showLoading {
				st.Loading = false
			}
			return st
		})
		return
	}

	s.update(Event{Type: EventAccountsLoaded}, func(st State) State {
		st.Accounts = joinAccounts(st.Accounts, list, preserveUsage)
		if showLoading {
			st.Loading = false
		}
		return st
	})
}

// RefreshUsage fetches usage for every account in one batch and merges it
// by id. Accounts missing from the response lose their usage.
func (s *Store) RefreshUsage(ctx context.Context) error {
	usage, err := s.client.RefreshAllAccountsUsage(ctx)
	if err != nil {
		logger.Error("failed to refresh usage", "error", err)
		return fmt.Errorf("refresh usage: %w", err)
	}

	s.update(Event{Type: EventUsageUpdated, Usage: usage}, func(st State) State {
		st.Accounts = applyUsage(st.Accounts, usage)
		return st
	})
	return nil
}

// RefreshSingleUsage marks the account as loading before fetching its
// usage, and always clears the flag once the call settles.
func (s *Store) RefreshSingleUsage(ctx context.Context, accountID string) error {
	s.update(Event{Type: EventUsageLoading, AccountID: accountID}, func(st State) State {
		st.Accounts = updateAccount(st.Accounts, accountID, func(a models.AccountWithUsage) models.AccountWithUsage {
			a.UsageLoading = true
			return a
		})
		return st
	})

	usage, err := s.client.GetUsage(ctx, accountID)
	if err != nil {
		logger.Error("failed to refresh single usage", "account", accountID, "error", err)
		s.update(Event{Type: EventError, AccountID: accountID, Error: err}, func(st State) State {
			st.Accounts = updateAccount(st.Accounts, accountID, func(a models.AccountWithUsage) models.AccountWithUsage {
				a.UsageLoading = false
				return a
			})
			return st
		})
		return fmt.Errorf("refresh usage for %s: %w", accountID, err)
	}

	s.update(Event{Type: EventUsageUpdated, AccountID: accountID, Usage: []models.UsageSnapshot{usage}}, func(st State) State {
		st.Accounts = updateAccount(st.Accounts, accountID, func(a models.AccountWithUsage) models.AccountWithUsage {
			a.Usage = &usage
			a.UsageLoading = false
			return a
		})
		return st
	})
	return nil
}

// SwitchAccount makes accountID the active account. Active flags are taken
// from the reloaded backend list.
func (s *Store) SwitchAccount(ctx context.Context, accountID string) error {
	if err := s.client.SwitchAccount(ctx, accountID); err != nil {
		return fmt.Errorf("switch account: %w", err)
	}
	s.LoadAccounts(ctx, true, true)
	s.sendEvent(Event{Type: EventActiveAccountChanged, AccountID: accountID, Source: "switch"})
	return nil
}

// DeleteAccount removes the account and reloads without cached usage.
func (s *Store) DeleteAccount(ctx context.Context, accountID string) error {
	if err := s.client.DeleteAccount(ctx, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.LoadAccounts(ctx, false, true)
	return nil
}

// RenameAccount renames the account and reloads, keeping cached usage.
func (s *Store) RenameAccount(ctx context.Context, accountID, newName string) error {
	if err := s.client.RenameAccount(ctx, accountID, newName); err != nil {
		return fmt.Errorf("rename account: %w", err)
	}
	s.LoadAccounts(ctx, true, true)
	return nil
}

// ImportFromFile adds an account from an auth file, reloads the list and
// fetches fresh usage.
func (s *Store) ImportFromFile(ctx context.Context, path, name string) error {
	if _, err := s.client.AddAccountFromFile(ctx, path, name); err != nil {
		return fmt.Errorf("import account: %w", err)
	}
	s.LoadAccounts(ctx, false, true)
	if err := s.RefreshUsage(ctx); err != nil {
		return fmt.Errorf("import account: %w", err)
	}
	return nil
}

// StartOAuthLogin begins a browser login for a new account named name.
func (s *Store) StartOAuthLogin(ctx context.Context, name string) (models.OAuthLoginInfo, error) {
	info, err := s.client.StartLogin(ctx, name)
	if err != nil {
		return models.OAuthLoginInfo{}, fmt.Errorf("start login: %w", err)
	}
	return info, nil
}

// CompleteOAuthLogin waits for the pending login to finish and shows the
// new account as active immediately. A full reload and usage refresh run
// in the background; their failures are only logged.
func (s *Store) CompleteOAuthLogin(ctx context.Context) (models.Account, error) {
	acc, err := s.client.CompleteLogin(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("complete login: %w", err)
	}
	s.promote(acc, "login")
	return acc, nil
}

// CancelOAuthLogin abandons a pending login. Failures are logged only.
func (s *Store) CancelOAuthLogin(ctx context.Context) {
	if err := s.client.CancelLogin(ctx); err != nil {
		logger.Error("failed to cancel login", "error", err)
	}
}

// ReconnectAccount refreshes the OAuth credentials of an existing ChatGPT
// account. Unknown or non-OAuth accounts are rejected without contacting
// the backend.
func (s *Store) ReconnectAccount(ctx context.Context, accountID string) (models.Account, error) {
	existing, ok := findAccount(s.Snapshot().Accounts, accountID)
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}
	if !existing.IsOAuth() {
		return models.Account{}, ErrReconnectUnsupported
	}

	info, err := s.client.StartReconnect(ctx, accountID)
	if err != nil {
		return models.Account{}, fmt.Errorf("start reconnect: %w", err)
	}
	if s.onAuthURL != nil {
		s.onAuthURL(info)
	}

	acc, err := s.client.CompleteReconnect(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("complete reconnect: %w", err)
	}
	s.promote(acc, "reconnect")
	return acc, nil
}

// promote merges acc as the active account, then reconciles in the background.
func (s *Store) promote(acc models.Account, reason string) {
	s.update(Event{Type: EventActiveAccountChanged, AccountID: acc.ID, Source: reason}, func(st State) State {
		st.Accounts = mergeActiveSnapshot(st.Accounts, acc)
		return st
	})

	s.goBackground(func(ctx context.Context) {
		s.LoadAccounts(ctx, true, false)
	})
	s.goBackground(func(ctx context.Context) {
		if err := s.RefreshUsage(ctx); err != nil {
			logger.Error("failed to refresh usage after "+reason, "error", err)
		}
	})
}

// ReorderAccounts persists a new account order. On success the local list
// follows ids exactly without reloading.
func (s *Store) ReorderAccounts(ctx context.Context, ids []string) error {
	if err := s.client.ReorderAccounts(ctx, ids); err != nil {
		return fmt.Errorf("reorder accounts: %w", err)
	}
	s.update(Event{Type: EventAccountsReordered}, func(st State) State {
		st.Accounts = reorder(st.Accounts, ids)
		return st
	})
	return nil
}

// RefreshCurrentSession replaces the current session summary.
func (s *Store) RefreshCurrentSession(ctx context.Context) (models.CurrentSessionSummary, error) {
	summary, err := s.client.GetCurrentAuthSummary(ctx)
	if err != nil {
		return models.CurrentSessionSummary{}, fmt.Errorf("current session: %w", err)
	}
	s.update(Event{Type: EventSessionUpdated}, func(st State) State {
		st.CurrentSession = &summary
		st.SnapshotsDirPath = summary.SnapshotsDirPath
		return st
	})
	return summary, nil
}

// SaveCurrentSessionSnapshot copies the live auth file into the snapshots
// directory and returns the new path. The summary refresh that follows is
// best-effort.
func (s *Store) SaveCurrentSessionSnapshot(ctx context.Context) (string, error) {
	path, err := s.client.CreateAuthSnapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	if _, err := s.RefreshCurrentSession(ctx); err != nil {
		logger.Error("failed to refresh current session after snapshot", "error", err)
	}
	return path, nil
}
