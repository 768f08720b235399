// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/services/accounts"
	"github.com/j-veylop/codex-switcher-tui/internal/workbench"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	NotificationSuccess NotificationType = iota
	NotificationError
	NotificationWarning
	NotificationInfo
	// NotificationLoading is shown with a spinner until cleared.
	NotificationLoading
)

// LoadingNotificationID is the fixed ID for the loading notification.
const LoadingNotificationID = "__loading__"

const maxNotifications = 10

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing toast.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has outlived its duration.
// Notifications without a duration never expire.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State is the UI-side view of the services, shared between the root model
// and the tabs. The account data is the last published store snapshot.
type State struct {
	lastUpdated     time.Time
	process         *models.ProcessInfo
	feed            *workbench.Feed
	selectedID      string
	store           accounts.State
	notifications   []Notification
	notificationSeq int
	mu              sync.RWMutex
	initialLoading  bool
}

// NewState creates an empty state waiting for the first snapshot.
func NewState() *State {
	return &State{
		feed:           workbench.NewFeed(workbench.DefaultFeedSize),
		notifications:  make([]Notification, 0),
		initialLoading: true,
	}
}

// SetStore replaces the account snapshot.
func (s *State) SetStore(st accounts.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = st
	s.lastUpdated = time.Now()
}

// Store returns the last account snapshot.
func (s *State) Store() accounts.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Accounts returns the accounts of the last snapshot. The slice must not be
// modified.
func (s *State) Accounts() []models.AccountWithUsage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Accounts
}

// ActiveAccount returns the active account, if any.
func (s *State) ActiveAccount() (models.AccountWithUsage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Active()
}

// Account looks up an account by id.
func (s *State) Account(id string) (models.AccountWithUsage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Account(id)
}

// SetInitialLoading marks whether the first load is still running.
func (s *State) SetInitialLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialLoading = loading
}

// IsInitialLoading returns true until the first snapshot with data arrives.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialLoading
}

// SetProcessInfo records the latest process check.
func (s *State) SetProcessInfo(info models.ProcessInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.process = &info
}

// ProcessInfo returns the latest process check, or nil before the first one.
func (s *State) ProcessInfo() *models.ProcessInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.process
}

// Safety summarizes whether switching is currently safe.
func (s *State) Safety() workbench.Safety {
	return workbench.SummarizeSafety(s.ProcessInfo())
}

// PushActivity adds an entry to the activity feed.
func (s *State) PushActivity(kind workbench.ActivityKind, text string) {
	s.feed.Push(kind, text)
}

// Activities returns the activity feed, newest first.
func (s *State) Activities() []workbench.Activity {
	return s.feed.Entries()
}

// SelectedAccountID returns the account selected in the accounts tab.
func (s *State) SelectedAccountID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// SetSelectedAccountID records the account selected in the accounts tab.
func (s *State) SetSelectedAccountID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = id
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := fmt.Sprintf("%s-%d", time.Now().Format("20060102150405"), s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns the notifications that have not expired.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification shows or updates the loading notification.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// LastUpdated returns when the account snapshot last changed.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}
