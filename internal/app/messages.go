package app

import (
	"time"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/services"
	"github.com/j-veylop/codex-switcher-tui/internal/services/accounts"
)

// Action names a user-initiated mutation.
type Action string

const (
	ActionSwitch     Action = "switch"
	ActionRefresh    Action = "refresh"
	ActionRefreshAll Action = "refresh all"
	ActionRename     Action = "rename"
	ActionDelete     Action = "delete"
	ActionImport     Action = "import"
	ActionReorder    Action = "reorder"
	ActionSnapshot   Action = "snapshot"
	ActionReconnect  Action = "reconnect"
	ActionLogin      Action = "login"
	ActionSession    Action = "check session"
)

// TickMsg is sent periodically to expire notifications and redraw countdowns.
type TickMsg struct {
	Time time.Time
}

// StartedMsg is sent once the initial load has finished.
type StartedMsg struct{}

// StoreUpdatedMsg is sent to every tab after the account store changes.
type StoreUpdatedMsg struct {
	State     accounts.State
	AccountID string
	Kind      accounts.EventType
}

// ProcessUpdatedMsg is sent when the running Codex process set changes.
type ProcessUpdatedMsg struct {
	Info models.ProcessInfo
}

// ActionResultMsg reports the outcome of a mutation. Subject is the
// account name or path the action applied to; Detail carries extra output
// such as a snapshot path.
type ActionResultMsg struct {
	Err     error
	Action  Action
	Subject string
	Detail  string
}

// LoginStartedMsg is sent once the backend has produced an auth URL.
type LoginStartedMsg struct {
	Err  error
	Name string
	Info models.OAuthLoginInfo
}

// LoginCancelledMsg is sent after a pending login was abandoned.
type LoginCancelledMsg struct{}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg carries the channel created by subscribing.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// SelectedAccountChangedMsg signals that the account under the cursor changed.
type SelectedAccountChangedMsg struct {
	ID string
}
