package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/services"
	"github.com/j-veylop/codex-switcher-tui/internal/services/accounts"
	"github.com/j-veylop/codex-switcher-tui/internal/workbench"
)

func newModelWithTabs(t *testing.T) (*Model, []*fakeTab) {
	t.Helper()
	m := NewModel(nil)
	fakes := []*fakeTab{{}, {}, {}}
	m.SetTabs([]Tab{fakes[0], fakes[1], fakes[2]})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, fakes
}

func TestNewModel(t *testing.T) {
	m := NewModel(nil)
	if m.GetActiveTab() != TabAccounts {
		t.Errorf("active tab = %v, want Accounts", m.GetActiveTab())
	}
	if m.GetState() == nil || m.GetCommands() == nil {
		t.Fatal("state and commands must be initialized")
	}
	if !m.GetState().IsInitialLoading() {
		t.Error("model should start loading")
	}
}

func TestModel_Init(t *testing.T) {
	m := NewModel(nil)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
	got := m.GetState().GetNotifications()
	if len(got) != 1 || got[0].ID != LoadingNotificationID {
		t.Errorf("notifications = %+v, want loading notification", got)
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m, fakes := newModelWithTabs(t)
	if !m.ready {
		t.Error("model should be ready after WindowSizeMsg")
	}
	for i, f := range fakes {
		if f.width != 120 || f.height != 37 {
			t.Errorf("tab %d size = %dx%d, want 120x37", i, f.width, f.height)
		}
	}
}

func TestModel_Update_TabKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want TabID
	}{
		{"number 2", []tea.KeyMsg{runeKey('2')}, TabSession},
		{"number 3", []tea.KeyMsg{runeKey('3')}, TabHistory},
		{"back to 1", []tea.KeyMsg{runeKey('3'), runeKey('1')}, TabAccounts},
		{"tab", []tea.KeyMsg{{Type: tea.KeyTab}}, TabSession},
		{"tab wraps", []tea.KeyMsg{runeKey('3'), {Type: tea.KeyTab}}, TabAccounts},
		{"shift+tab wraps", []tea.KeyMsg{{Type: tea.KeyShiftTab}}, TabHistory},
		{"l", []tea.KeyMsg{runeKey('l')}, TabSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newModelWithTabs(t)
			for _, k := range tt.keys {
				m.Update(k)
			}
			if m.GetActiveTab() != tt.want {
				t.Errorf("active tab = %v, want %v", m.GetActiveTab(), tt.want)
			}
		})
	}
}

func TestModel_Update_TabSwitchMsg(t *testing.T) {
	m, _ := newModelWithTabs(t)
	m.Update(TabSwitchMsg{Tab: TabHistory})
	if m.GetActiveTab() != TabHistory {
		t.Errorf("active tab = %v, want History", m.GetActiveTab())
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newModelWithTabs(t)
	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should produce tea.QuitMsg")
	}
}

func TestModel_InputCapture(t *testing.T) {
	m, fakes := newModelWithTabs(t)
	fakes[0].capturing = true

	m.Update(runeKey('2'))
	if m.GetActiveTab() != TabAccounts {
		t.Error("global keys must not switch tabs while a tab captures input")
	}
	if !fakes[0].received(func(msg tea.Msg) bool {
		k, ok := msg.(tea.KeyMsg)
		return ok && k.String() == "2"
	}) {
		t.Error("captured key should reach the active tab")
	}

	_, cmd := m.Update(runeKey('q'))
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("q must not quit while typing")
		}
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should always quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should produce tea.QuitMsg")
	}
}

func TestModel_Help(t *testing.T) {
	m, _ := newModelWithTabs(t)

	m.Update(runeKey('?'))
	if !m.showHelp {
		t.Fatal("? should open help")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help overlay should be rendered")
	}

	m.Update(runeKey('2'))
	if m.GetActiveTab() != TabAccounts {
		t.Error("tab keys are ignored while help is open")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Error("esc should close help")
	}

	m.Update(ToggleHelpMsg{})
	if !m.showHelp {
		t.Error("ToggleHelpMsg should open help")
	}
}

func TestModel_Notifications(t *testing.T) {
	m, _ := newModelWithTabs(t)

	m.Update(AddNotificationMsg{Type: NotificationSuccess, Message: "done", Duration: DefaultNotificationDuration})
	got := m.GetState().GetNotifications()
	if len(got) != 1 || got[0].Message != "done" {
		t.Fatalf("notifications = %+v", got)
	}

	m.Update(RemoveNotificationMsg{ID: got[0].ID})
	if len(m.GetState().GetNotifications()) != 0 {
		t.Error("notification should be removed")
	}
}

func TestModel_StartedClearsLoading(t *testing.T) {
	m := NewModel(nil)
	m.Init()
	m.Update(StartedMsg{})
	if m.GetState().IsInitialLoading() {
		t.Error("StartedMsg should end initial loading")
	}
	if len(m.GetState().GetNotifications()) != 0 {
		t.Error("loading notification should be cleared")
	}
}

func TestModel_SelectedAccountChanged(t *testing.T) {
	m, fakes := newModelWithTabs(t)
	m.Update(SelectedAccountChangedMsg{ID: "b"})

	if m.GetState().SelectedAccountID() != "b" {
		t.Errorf("SelectedAccountID() = %q", m.GetState().SelectedAccountID())
	}
	isSelection := func(msg tea.Msg) bool {
		_, ok := msg.(SelectedAccountChangedMsg)
		return ok
	}
	if !fakes[0].received(isSelection) {
		t.Error("active tab should receive the message")
	}
	if fakes[1].received(isSelection) {
		t.Error("inactive tabs should not receive non-broadcast messages")
	}
}

func TestModel_BroadcastMessages(t *testing.T) {
	msgs := []tea.Msg{
		StoreUpdatedMsg{},
		ProcessUpdatedMsg{},
		ActionResultMsg{Action: ActionReorder},
		LoginCancelledMsg{},
	}

	for _, msg := range msgs {
		t.Run(fmt.Sprintf("%T", msg), func(t *testing.T) {
			m, fakes := newModelWithTabs(t)
			m.Update(msg)
			for i, f := range fakes {
				if !f.received(func(got tea.Msg) bool { return fmt.Sprintf("%T", got) == fmt.Sprintf("%T", msg) }) {
					t.Errorf("tab %d did not receive %T", i, msg)
				}
			}
		})
	}
}

func TestModel_HandleServiceEvent_StateChanged(t *testing.T) {
	m := NewModel(nil)
	st := accounts.State{Accounts: []models.AccountWithUsage{
		{Account: models.Account{ID: "a", Name: "Work", IsActive: true}},
	}}

	cmd := m.handleServiceEvent(services.StateChangedEvent{State: st, AccountID: "a", Kind: accounts.EventAccountsLoaded})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(StoreUpdatedMsg)
	if !ok {
		t.Fatalf("got %T, want StoreUpdatedMsg", cmd())
	}
	if msg.AccountID != "a" || msg.Kind != accounts.EventAccountsLoaded {
		t.Errorf("got %#v", msg)
	}
	if len(m.GetState().Accounts()) != 1 {
		t.Error("store snapshot should be applied")
	}
	if m.GetState().IsInitialLoading() {
		t.Error("a settled snapshot should end initial loading")
	}
}

func TestModel_HandleServiceEvent_StillLoading(t *testing.T) {
	m := NewModel(nil)
	m.handleServiceEvent(services.StateChangedEvent{State: accounts.State{Loading: true}})
	if !m.GetState().IsInitialLoading() {
		t.Error("loading snapshot should keep initial loading")
	}
}

func TestModel_HandleServiceEvent_ProcessChanged(t *testing.T) {
	m := NewModel(nil)

	cmd := m.handleServiceEvent(services.ProcessChangedEvent{Info: models.ProcessInfo{Count: 1, PIDs: []int{7}}})
	msg, ok := cmd().(ProcessUpdatedMsg)
	if !ok || msg.Info.Count != 1 {
		t.Errorf("got %#v", msg)
	}
	if !m.GetState().Safety().Locked() {
		t.Error("switching should be locked")
	}
	acts := m.GetState().Activities()
	if len(acts) != 1 || acts[0].Kind != workbench.ActivityWarning {
		t.Fatalf("activities = %+v", acts)
	}

	m.handleServiceEvent(services.ProcessChangedEvent{Info: models.ProcessInfo{CanSwitch: true}})
	acts = m.GetState().Activities()
	if len(acts) != 2 || acts[0].Kind != workbench.ActivitySuccess {
		t.Errorf("activities = %+v", acts)
	}
}

func TestModel_HandleServiceEvent_Notifications(t *testing.T) {
	tests := []struct {
		name     string
		event    services.ServiceEvent
		wantType NotificationType
		wantText string
	}{
		{
			name:     "usage alert",
			event:    services.UsageAlertEvent{AccountID: "a", Title: "Work is running low", Body: "10% left"},
			wantType: NotificationWarning,
			wantText: "Work is running low: 10% left",
		},
		{
			name:     "usage reset",
			event:    services.UsageAlertEvent{AccountID: "a", Title: "Work usage reset", Reset: true},
			wantType: NotificationInfo,
			wantText: "Work usage reset",
		},
		{
			name:     "error",
			event:    services.ErrorEvent{Service: "accounts", Error: errors.New("backend down")},
			wantType: NotificationError,
			wantText: "[accounts] backend down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(nil)
			msg, ok := m.handleServiceEvent(tt.event)().(AddNotificationMsg)
			if !ok {
				t.Fatal("expected AddNotificationMsg")
			}
			if msg.Type != tt.wantType || msg.Message != tt.wantText {
				t.Errorf("got %v %q, want %v %q", msg.Type, msg.Message, tt.wantType, tt.wantText)
			}
		})
	}
}

func TestModel_HandleActionResult(t *testing.T) {
	tests := []struct {
		name     string
		msg      ActionResultMsg
		wantType NotificationType
		wantText string
	}{
		{"switch", ActionResultMsg{Action: ActionSwitch, Subject: "Work"}, NotificationSuccess, "Switched to Work"},
		{"refresh", ActionResultMsg{Action: ActionRefresh, Subject: "Work"}, NotificationSuccess, "Usage refreshed for Work"},
		{"refresh all", ActionResultMsg{Action: ActionRefreshAll}, NotificationSuccess, "Usage refreshed"},
		{"rename", ActionResultMsg{Action: ActionRename, Subject: "Home"}, NotificationSuccess, "Renamed to Home"},
		{"delete", ActionResultMsg{Action: ActionDelete, Subject: "Work"}, NotificationSuccess, "Deleted Work"},
		{"import", ActionResultMsg{Action: ActionImport, Subject: "Ci"}, NotificationSuccess, "Imported Ci"},
		{"snapshot", ActionResultMsg{Action: ActionSnapshot, Detail: "/snap/auth.json"}, NotificationSuccess, "Snapshot saved to /snap/auth.json"},
		{"reconnect", ActionResultMsg{Action: ActionReconnect, Subject: "Work"}, NotificationSuccess, "Reconnected Work"},
		{"login", ActionResultMsg{Action: ActionLogin, Subject: "New"}, NotificationSuccess, "Added New"},
		{
			"failure",
			ActionResultMsg{Action: ActionRename, Subject: "Work", Err: errors.New("name taken")},
			NotificationError,
			"Failed to rename Work: name taken",
		},
		{
			"failure without subject",
			ActionResultMsg{Action: ActionRefreshAll, Err: errors.New("offline")},
			NotificationError,
			"Failed to refresh all: offline",
		},
		{
			"codex running",
			ActionResultMsg{Action: ActionSwitch, Subject: "Work", Err: fmt.Errorf("switch: %w", services.ErrCodexRunning)},
			NotificationWarning,
			services.ErrCodexRunning.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(nil)
			cmd := m.handleActionResult(tt.msg)
			if cmd == nil {
				t.Fatal("expected a notification")
			}
			msg := cmd().(AddNotificationMsg)
			if msg.Type != tt.wantType || msg.Message != tt.wantText {
				t.Errorf("got %v %q, want %v %q", msg.Type, msg.Message, tt.wantType, tt.wantText)
			}
			if len(m.GetState().Activities()) != 1 {
				t.Error("result should be recorded in the activity feed")
			}
		})
	}
}

func TestModel_HandleActionResult_Silent(t *testing.T) {
	m := NewModel(nil)
	if cmd := m.handleActionResult(ActionResultMsg{Action: ActionLogin, Err: context.Canceled}); cmd != nil {
		t.Error("cancelled actions should be silent")
	}
	if cmd := m.handleActionResult(ActionResultMsg{Action: ActionReorder}); cmd != nil {
		t.Error("reorder success should be silent")
	}
}

func TestModel_HandleLoginStarted(t *testing.T) {
	m := NewModel(nil)

	cmds := m.handleLoginStarted(LoginStartedMsg{Name: "Work", Err: errors.New("port busy")})
	if len(cmds) != 1 {
		t.Fatalf("len(cmds) = %d, want 1", len(cmds))
	}
	msg := cmds[0]().(AddNotificationMsg)
	if msg.Type != NotificationError || msg.Message != "Failed to start login: port busy" {
		t.Errorf("got %#v", msg)
	}

	cmds = m.handleLoginStarted(LoginStartedMsg{Name: "Work", Info: models.OAuthLoginInfo{AuthURL: "https://auth.example"}})
	if len(cmds) != 2 {
		t.Errorf("len(cmds) = %d, want open and complete", len(cmds))
	}
}

func TestModel_View(t *testing.T) {
	m := NewModel(nil)
	if !strings.Contains(m.View(), "Loading") {
		t.Error("view before sizing should show loading")
	}

	m, _ = newModelWithTabs(t)
	view := m.View()
	for _, want := range []string{"Accounts", "Session", "History", "Checking process safety", "fake tab content"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_ViewWithoutTabs(t *testing.T) {
	m := NewModel(nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if !strings.Contains(m.View(), "Nothing to show yet.") {
		t.Error("empty tab should render placeholder")
	}
}

func TestModel_OverlayCentered(t *testing.T) {
	m := NewModel(nil)
	m.width, m.height = 20, 10

	out := m.overlayCentered("short", "XX\nYY")
	lines := strings.Split(out, "\n")
	if len(lines) < 6 {
		t.Fatalf("overlay should extend the view, got %d lines", len(lines))
	}
	if !strings.Contains(lines[4], "XX") || !strings.Contains(lines[5], "YY") {
		t.Errorf("overlay not centered: %q", out)
	}
}

func TestTabID_String(t *testing.T) {
	tests := []struct {
		id   TabID
		want string
	}{
		{TabAccounts, "Accounts"},
		{TabSession, "Session"},
		{TabHistory, "History"},
		{TabID(99), "Unknown"},
		{TabID(-1), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("TabID(%d).String() = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}
	if len(km.FullHelp()) != 3 {
		t.Errorf("FullHelp groups = %d, want 3", len(km.FullHelp()))
	}
}
