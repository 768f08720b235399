package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/j-veylop/codex-switcher-tui/internal/logger"
	"github.com/j-veylop/codex-switcher-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// Clipboard and browser hooks, replaced in tests.
var (
	writeClipboard = clipboard.WriteAll
	openBrowser    = browser.OpenURL
)

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands turns service operations into Bubble Tea commands. Every command
// returns nil when no service manager is attached.
type Commands struct {
	manager *services.Manager
	ctx     context.Context

	loginMu     sync.Mutex
	loginCancel context.CancelFunc
}

// NewCommands creates a Commands bound to mgr.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr, ctx: context.Background()}
}

func (c *Commands) run(fn func(ctx context.Context, mgr *services.Manager) tea.Msg) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return func() tea.Msg {
		return fn(c.ctx, c.manager)
	}
}

// Start performs the initial load and starts the periodic refreshes.
func (c *Commands) Start() tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		mgr.Start(ctx)
		return StartedMsg{}
	})
}

// SubscribeToServices subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	ch, _ := c.manager.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// SwitchAccount makes the account active. It fails with
// services.ErrCodexRunning while Codex is running.
func (c *Commands) SwitchAccount(id, name string) tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		err := mgr.SwitchAccount(ctx, id)
		return ActionResultMsg{Action: ActionSwitch, Subject: name, Err: err}
	})
}

// RefreshUsage refreshes the usage of one account.
func (c *Commands) RefreshUsage(id, name string) tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		err := mgr.Store().RefreshSingleUsage(ctx, id)
		return ActionResultMsg{Action: ActionRefresh, Subject: name, Err: err}
	})
}

// RefreshAll reloads the account list and refreshes every account's usage.
func (c *Commands) RefreshAll() tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		store := mgr.Store()
		store.LoadAccounts(ctx, true, false)
		err := store.RefreshUsage(ctx)
		return ActionResultMsg{Action: ActionRefreshAll, Err: err}
	})
}

// RenameAccount renames an account.
func (c *Commands) RenameAccount(id, newName string) tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		err := mgr.Store().RenameAccount(ctx, id, newName)
		return ActionResultMsg{Action: ActionRename, Subject: newName, Err: err}
	})
}

// DeleteAccount removes an account.
func (c *Commands) DeleteAccount(id, name string) tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		err := mgr.Store().DeleteAccount(ctx, id)
		return ActionResultMsg{Action: ActionDelete, Subject: name, Err: err}
	})
}

// ImportAccount adds an account from an auth file.
func (c *Commands) ImportAccount(path, name string) tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		err := mgr.Store().ImportFromFile(ctx, path, name)
		return ActionResultMsg{Action: ActionImport, Subject: name, Detail: path, Err: err}
	})
}

// ReorderAccounts persists a new account order.
func (c *Commands) ReorderAccounts(ids []string) tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		err := mgr.Store().ReorderAccounts(ctx, ids)
		return ActionResultMsg{Action: ActionReorder, Err: err}
	})
}

// SaveSnapshot copies the live auth file into the snapshots directory.
func (c *Commands) SaveSnapshot() tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		path, err := mgr.Store().SaveCurrentSessionSnapshot(ctx)
		return ActionResultMsg{Action: ActionSnapshot, Detail: path, Err: err}
	})
}

// RefreshSession re-reads the live auth file summary. Success is silent;
// the store update redraws the tabs.
func (c *Commands) RefreshSession() tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		_, err := mgr.Store().RefreshCurrentSession(ctx)
		return ActionResultMsg{Action: ActionSession, Err: err}
	})
}

// CheckProcesses polls the running Codex processes immediately.
func (c *Commands) CheckProcesses() tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		if info := mgr.Processes().Refresh(ctx); info != nil {
			return ProcessUpdatedMsg{Info: *info}
		}
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  "Could not check Codex processes",
			Duration: DefaultNotificationDuration,
		}
	})
}

// ReconnectAccount refreshes the OAuth credentials of an account. It blocks
// until the browser flow finishes, so it shares the login cancellation.
func (c *Commands) ReconnectAccount(id, name string) tea.Cmd {
	return c.run(func(_ context.Context, mgr *services.Manager) tea.Msg {
		ctx := c.beginLogin()
		defer c.endLogin()
		_, err := mgr.Store().ReconnectAccount(ctx, id)
		return ActionResultMsg{Action: ActionReconnect, Subject: name, Err: err}
	})
}

// StartLogin asks the backend for an auth URL for a new account.
func (c *Commands) StartLogin(name string) tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		info, err := mgr.Store().StartOAuthLogin(ctx, name)
		return LoginStartedMsg{Name: name, Info: info, Err: err}
	})
}

// CompleteLogin waits for the pending browser login to finish.
func (c *Commands) CompleteLogin(name string) tea.Cmd {
	return c.run(func(_ context.Context, mgr *services.Manager) tea.Msg {
		ctx := c.beginLogin()
		defer c.endLogin()
		acc, err := mgr.Store().CompleteOAuthLogin(ctx)
		if err == nil && acc.Name != "" {
			name = acc.Name
		}
		return ActionResultMsg{Action: ActionLogin, Subject: name, Err: err}
	})
}

// CancelLogin abandons a pending login or reconnect.
func (c *Commands) CancelLogin() tea.Cmd {
	return c.run(func(ctx context.Context, mgr *services.Manager) tea.Msg {
		mgr.Store().CancelOAuthLogin(ctx)
		c.loginMu.Lock()
		if c.loginCancel != nil {
			c.loginCancel()
		}
		c.loginMu.Unlock()
		return LoginCancelledMsg{}
	})
}

func (c *Commands) beginLogin() context.Context {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()
	if c.loginCancel != nil {
		c.loginCancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.loginCancel = cancel
	return ctx
}

func (c *Commands) endLogin() {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()
	if c.loginCancel != nil {
		c.loginCancel()
		c.loginCancel = nil
	}
}

// OpenURL opens url in the default browser. Failure only produces a warning
// since the URL is also shown on screen.
func (c *Commands) OpenURL(url string) tea.Cmd {
	return func() tea.Msg {
		if err := openBrowser(url); err != nil {
			logger.Warn("failed to open browser", "error", err)
			return AddNotificationMsg{
				Type:     NotificationWarning,
				Message:  "Could not open a browser; open the link manually",
				Duration: DefaultNotificationDuration,
			}
		}
		return nil
	}
}

// CopyToClipboard copies text and reports the result as a notification.
func (c *Commands) CopyToClipboard(text, what string) tea.Cmd {
	return func() tea.Msg {
		if err := writeClipboard(text); err != nil {
			logger.Warn("failed to write clipboard", "error", err)
			return AddNotificationMsg{
				Type:     NotificationError,
				Message:  fmt.Sprintf("Failed to copy %s", what),
				Duration: LongNotificationDuration,
			}
		}
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  fmt.Sprintf("Copied %s", what),
			Duration: QuickNotificationDuration,
		}
	}
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}
