// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/codex-switcher-tui/internal/backend"
	"github.com/j-veylop/codex-switcher-tui/internal/config"
	"github.com/j-veylop/codex-switcher-tui/internal/db"
	"github.com/j-veylop/codex-switcher-tui/internal/logger"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/preferences"
	"github.com/j-veylop/codex-switcher-tui/internal/services/accounts"
	"github.com/j-veylop/codex-switcher-tui/internal/services/process"
	"github.com/j-veylop/codex-switcher-tui/internal/services/session"
)

// Notification thresholds, in percent of the primary window.
const (
	lowUsageThreshold = 10.0
	resetJumpPoints   = 20.0
)

// storedReadingMaxAge bounds how old a recorded reading may be to seed the
// alert baseline of an account not seen since startup.
const storedReadingMaxAge = 5 * time.Hour

// ErrCodexRunning is returned when a switch is attempted while Codex is running.
var ErrCodexRunning = errors.New("close running Codex sessions before switching accounts")

type (
	// StateChangedEvent is emitted after every store transition.
	StateChangedEvent struct {
		State     accounts.State
		AccountID string
		Kind      accounts.EventType
	}

	// ProcessChangedEvent is emitted when the running Codex process set changes.
	ProcessChangedEvent struct {
		Info models.ProcessInfo
	}

	// UsageAlertEvent is emitted alongside a desktop notification.
	UsageAlertEvent struct {
		AccountID string
		Title     string
		Body      string
		Reset     bool
	}

	// LoginURLEvent carries the browser URL of a reconnect in progress.
	LoginURLEvent struct {
		Info models.OAuthLoginInfo
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (StateChangedEvent) isServiceEvent()   {}
func (ProcessChangedEvent) isServiceEvent() {}
func (UsageAlertEvent) isServiceEvent()     {}
func (LoginURLEvent) isServiceEvent()       {}
func (ErrorEvent) isServiceEvent()          {}

// Notifier delivers desktop notifications.
type Notifier interface {
	Notify(title, body string) error
}

type beeepNotifier struct{}

func (beeepNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClient replaces the HTTP backend client.
func WithClient(c backend.Client) Option {
	return func(m *Manager) { m.client = c }
}

// WithNotifier replaces the desktop notifier.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager orchestrates services and event routing.
type Manager struct {
	client        backend.Client
	notifier      Notifier
	now           func() time.Time
	store         *accounts.Store
	processes     *process.Monitor
	watcher       *session.Watcher
	database      *db.DB
	prefs         *preferences.Store
	ctx           context.Context
	cancel        context.CancelFunc
	stopChan      chan struct{}
	subscribers   []chan ServiceEvent
	lastRemaining map[string]float64
	wg            sync.WaitGroup
	retention     time.Duration
	mu            sync.RWMutex
	closeOnce     sync.Once
	notify        bool
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		notifier:      beeepNotifier{},
		now:           time.Now,
		ctx:           ctx,
		cancel:        cancel,
		stopChan:      make(chan struct{}),
		lastRemaining: make(map[string]float64),
		retention:     cfg.HistoryRetention,
		notify:        cfg.Notifications,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.client == nil {
		m.client = backend.NewHTTPClient(backend.HTTPConfig{
			BaseURL: cfg.BackendURL,
			Token:   cfg.BackendToken,
			Timeout: cfg.BackendTimeout,
		})
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.prefs, err = preferences.Load(cfg.PreferencesPath)
	if err != nil {
		cancel()
		if closeErr := m.database.Close(); closeErr != nil {
			logger.Error("failed to close database", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	m.store = accounts.New(m.client, accounts.Options{
		RefreshInterval: cfg.UsageRefreshInterval,
		Now:             m.now,
		OnAuthURL: func(info models.OAuthLoginInfo) {
			m.broadcast(LoginURLEvent{Info: info})
		},
	})
	m.processes = process.New(m.client, cfg.ProcessPollInterval)

	m.watcher, err = session.New(m.onAuthFileChanged)
	if err != nil {
		logger.Warn("auth file watcher unavailable", "error", err)
		m.watcher = nil
	}

	m.wg.Add(1)
	go m.routeEvents()

	return m, nil
}

// Start prunes old history and performs the initial load. It blocks until
// accounts and usage have been fetched once.
func (m *Manager) Start(ctx context.Context) {
	if m.retention > 0 {
		cutoff := m.now().Add(-m.retention)
		if n, err := m.database.PruneBefore(ctx, cutoff); err != nil {
			logger.Warn("failed to prune usage history", "error", err)
		} else if n > 0 {
			logger.Info("pruned usage history", "rows", n)
			if err := m.database.Vacuum(ctx); err != nil {
				logger.Warn("failed to vacuum usage history", "error", err)
			}
		}
	}
	m.store.Start(ctx)
}

func (m *Manager) onAuthFileChanged() {
	if _, err := m.store.RefreshCurrentSession(m.ctx); err != nil {
		logger.Warn("failed to refresh session after auth file change", "error", err)
	}
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	defer m.wg.Done()

	for {
		select {
		case event := <-m.store.Events():
			m.handleStoreEvent(event)

		case event := <-m.processes.Events():
			m.broadcast(ProcessChangedEvent{Info: event.Info})

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleStoreEvent(event accounts.Event) {
	state := m.store.Snapshot()

	switch event.Type {
	case accounts.EventUsageUpdated:
		m.checkNotifications(state, event.Usage)
		m.recordUsage(event.Usage)

	case accounts.EventActiveAccountChanged:
		m.recordSwitch(state, event)

	case accounts.EventSessionUpdated:
		if m.watcher != nil && state.CurrentSession != nil {
			if err := m.watcher.Watch(state.CurrentSession.AuthFilePath); err != nil {
				logger.Warn("failed to watch auth file", "error", err)
			}
		}

	case accounts.EventError:
		m.broadcast(ErrorEvent{Service: "accounts", Error: event.Error})
	}

	m.broadcast(StateChangedEvent{
		State:     state,
		AccountID: event.AccountID,
		Kind:      event.Type,
	})
}

func (m *Manager) recordUsage(usage []models.UsageSnapshot) {
	if len(usage) == 0 {
		return
	}
	if err := m.database.InsertUsageSnapshots(m.ctx, usage, m.now()); err != nil {
		logger.Error("failed to record usage history", "error", err)
	}
}

func (m *Manager) recordSwitch(state accounts.State, event accounts.Event) {
	rec := models.SwitchRecord{
		AccountID:  event.AccountID,
		Source:     event.Source,
		SwitchedAt: m.now(),
	}
	if acc, ok := state.Account(event.AccountID); ok {
		rec.AccountName = acc.Name
	}
	if err := m.database.RecordSwitch(m.ctx, rec); err != nil {
		logger.Error("failed to record account switch", "error", err)
	}
}

// checkNotifications alerts when an account's primary window drops below
// lowUsageThreshold or jumps up by more than resetJumpPoints.
func (m *Manager) checkNotifications(state accounts.State, usage []models.UsageSnapshot) {
	for i := range usage {
		u := &usage[i]
		window, ok := u.Primary()
		if !ok || u.Error != "" {
			continue
		}
		remaining := window.Remaining()

		m.mu.Lock()
		previous, seen := m.lastRemaining[u.AccountID]
		m.mu.Unlock()
		if !seen {
			previous, seen = m.storedRemaining(u.AccountID)
		}

		m.mu.Lock()
		m.lastRemaining[u.AccountID] = remaining
		m.mu.Unlock()

		if !seen {
			continue
		}

		name := u.AccountID
		if acc, ok := state.Account(u.AccountID); ok && acc.Name != "" {
			name = acc.Name
		}

		switch {
		case remaining < lowUsageThreshold && previous >= lowUsageThreshold:
			m.alert(UsageAlertEvent{
				AccountID: u.AccountID,
				Title:     fmt.Sprintf("Low usage: %s", name),
				Body:      fmt.Sprintf("%.0f%% of the 5h window left", remaining),
			})
		case remaining-previous > resetJumpPoints:
			m.alert(UsageAlertEvent{
				AccountID: u.AccountID,
				Title:     fmt.Sprintf("Usage reset: %s", name),
				Body:      fmt.Sprintf("%.0f%% of the 5h window available again", remaining),
				Reset:     true,
			})
		}
	}
}

// storedRemaining returns the primary remaining percent of the latest
// recorded reading, if it is recent and usable.
func (m *Manager) storedRemaining(accountID string) (float64, bool) {
	snap, at, err := m.database.GetLatestSnapshot(m.ctx, accountID)
	if err != nil {
		logger.Debug("failed to read latest snapshot", "account", accountID, "error", err)
		return 0, false
	}
	if snap == nil || snap.Error != "" || m.now().Sub(at) > storedReadingMaxAge {
		return 0, false
	}
	window, ok := snap.Primary()
	if !ok {
		return 0, false
	}
	return window.Remaining(), true
}

func (m *Manager) alert(event UsageAlertEvent) {
	m.broadcast(event)
	if !m.notify {
		return
	}
	if err := m.notifier.Notify(event.Title, event.Body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// SwitchAccount switches accounts unless Codex processes are running.
// Processes are checked right before the switch; if the check fails the
// switch goes ahead. They are checked again afterwards.
func (m *Manager) SwitchAccount(ctx context.Context, accountID string) error {
	if info := m.processes.Refresh(ctx); info != nil && !info.CanSwitch {
		return ErrCodexRunning
	}
	if err := m.store.SwitchAccount(ctx, accountID); err != nil {
		return err
	}
	m.processes.Refresh(ctx)
	return nil
}

// GetAccountHistory retrieves recorded usage for a specific account.
func (m *Manager) GetAccountHistory(ctx context.Context, accountID string, tr models.TimeRange) (*models.AccountHistory, error) {
	return m.database.GetAccountHistory(ctx, accountID, tr, m.now())
}

// RecentSwitches returns the latest recorded account switches.
func (m *Manager) RecentSwitches(ctx context.Context, limit int) ([]models.SwitchRecord, error) {
	return m.database.GetRecentSwitches(ctx, limit)
}

// Store returns the account store.
func (m *Manager) Store() *accounts.Store {
	return m.store
}

// Processes returns the process monitor.
func (m *Manager) Processes() *process.Monitor {
	return m.processes
}

// Preferences returns the UI preferences store.
func (m *Manager) Preferences() *preferences.Store {
	return m.prefs
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		if m.stopChan != nil {
			close(m.stopChan)
		}
		if m.cancel != nil {
			m.cancel()
		}
		m.wg.Wait()

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.watcher != nil {
			if err := m.watcher.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if m.store != nil {
			if err := m.store.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if m.processes != nil {
			if err := m.processes.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
