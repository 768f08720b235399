package accounts

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/codex-switcher-tui/internal/app"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/preferences"
	store "github.com/j-veylop/codex-switcher-tui/internal/services/accounts"
	"github.com/j-veylop/codex-switcher-tui/internal/workbench"
)

var errTest = errors.New("port busy")

func ptr[T any](v T) *T { return &v }

func fixtureAccounts() []models.AccountWithUsage {
	lastUsed := time.Now().Add(-time.Hour)
	return []models.AccountWithUsage{
		{
			Account: models.Account{
				ID: "a", Name: "Work", Email: "work@example.com",
				AuthMode: models.AuthModeChatGPT, PlanType: "plus", IsActive: true,
			},
			Usage: &models.UsageSnapshot{
				AccountID:          "a",
				PrimaryUsedPercent: ptr(30.0),
			},
		},
		{
			Account: models.Account{
				ID: "b", Name: "Home", Email: "home@example.com",
				AuthMode: models.AuthModeChatGPT, LastUsedAt: &lastUsed,
			},
		},
		{
			Account: models.Account{ID: "c", Name: "CI", AuthMode: models.AuthModeAPIKey},
		},
	}
}

func newTestModel(t *testing.T) (*Model, *app.State, *preferences.Store) {
	t.Helper()
	prefs, err := preferences.Load(filepath.Join(t.TempDir(), "preferences.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	state := app.NewState()
	state.SetInitialLoading(false)
	state.SetStore(store.State{Accounts: fixtureAccounts()})

	m := New(state, app.NewCommands(nil), prefs)
	m.SetSize(120, 40)
	m.Update(app.StoreUpdatedMsg{})
	return m, state, prefs
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(runeKey(string(r)))
	}
}

func rowIDs(m *Model) []string {
	ids := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), app.NewCommands(nil), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() == nil {
		t.Error("Init should start the spinner")
	}
	if m.CapturingInput() {
		t.Error("new tab should not capture input")
	}
}

func TestModel_LoadingView(t *testing.T) {
	m := New(app.NewState(), app.NewCommands(nil), nil)
	m.SetSize(80, 20)
	if !strings.Contains(m.View(), "Loading accounts...") {
		t.Error("initial view should show the loading spinner")
	}
}

func TestModel_RefreshRowsReportsSelection(t *testing.T) {
	state := app.NewState()
	state.SetStore(store.State{Accounts: fixtureAccounts()})
	m := New(state, app.NewCommands(nil), nil)

	_, cmd := m.Update(app.StoreUpdatedMsg{})
	if cmd == nil {
		t.Fatal("first load should report the selection")
	}
	msg, ok := cmd().(app.SelectedAccountChangedMsg)
	if !ok || msg.ID != "a" {
		t.Errorf("got %#v, want selection of the active account", msg)
	}

	if _, cmd := m.Update(app.StoreUpdatedMsg{}); cmd != nil {
		t.Error("unchanged selection should not be reported again")
	}
}

func TestModel_RowsOrder(t *testing.T) {
	m, _, _ := newTestModel(t)
	got := strings.Join(rowIDs(m), ",")
	if got != "a,b,c" {
		t.Errorf("rows = %s, want a,b,c", got)
	}
}

func TestModel_SelectionFollowsAccount(t *testing.T) {
	m, state, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if acc, _ := m.selected(); acc.ID != "b" {
		t.Fatalf("selected = %s, want b", acc.ID)
	}

	list := fixtureAccounts()
	list[0].IsActive = false
	list[1].IsActive = true
	state.SetStore(store.State{Accounts: list})
	m.Update(app.StoreUpdatedMsg{})

	if acc, _ := m.selected(); acc.ID != "b" {
		t.Errorf("selected = %s, want b after reordering", acc.ID)
	}
}

func TestModel_FilterAndSortKeys(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(runeKey("f"))
	if m.filter != workbench.FilterOAuth {
		t.Fatalf("filter = %s, want oauth", m.filter)
	}
	if got := strings.Join(rowIDs(m), ","); got != "a,b" {
		t.Errorf("rows = %s, want a,b", got)
	}

	m.Update(runeKey("s"))
	if m.sort != workbench.SortName {
		t.Errorf("sort = %s, want name", m.sort)
	}
}

func TestModel_Query(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(runeKey("/"))
	if !m.CapturingInput() {
		t.Fatal("search should capture input")
	}
	typeText(m, "hom")
	if got := strings.Join(rowIDs(m), ","); got != "b" {
		t.Errorf("rows = %s, want b", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.CapturingInput() || m.query != "hom" {
		t.Errorf("enter should keep the query, got mode %d query %q", m.mode, m.query)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.query != "" || len(m.rows) != 3 {
		t.Errorf("esc should clear the query, got %q with %d rows", m.query, len(m.rows))
	}
}

func TestModel_SwitchDispatchedWhilePollShowsCodex(t *testing.T) {
	m, state, _ := newTestModel(t)
	state.SetProcessInfo(models.ProcessInfo{Count: 1, PIDs: []int{9}})

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("switch should be dispatched; the manager checks processes itself")
	}
	if m.pending[app.ActionSwitch] != "b" {
		t.Errorf("pending = %v, want switch to b", m.pending)
	}
}

func TestModel_SwitchActiveIsNoop(t *testing.T) {
	m, _, _ := newTestModel(t)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("switching to the active account should do nothing")
	}
}

func TestModel_PendingStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.pending[app.ActionSwitch] != "b" {
		t.Fatalf("pending = %v", m.pending)
	}
	if !strings.Contains(m.View(), "switching…") {
		t.Error("pending switch should be shown")
	}

	m.Update(app.ActionResultMsg{Action: app.ActionSwitch, Subject: "Home"})
	if len(m.pending) != 0 {
		t.Error("result should clear the pending action")
	}
}

func TestModel_DeleteConfirm(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(runeKey("d"))
	if m.mode != modeConfirmDelete || !m.CapturingInput() {
		t.Fatal("d should ask for confirmation")
	}
	if !strings.Contains(m.View(), "Delete Account?") {
		t.Error("confirmation dialog should be rendered")
	}

	m.Update(runeKey("n"))
	if m.mode != modeList {
		t.Error("n should cancel")
	}

	m.Update(runeKey("d"))
	m.Update(runeKey("y"))
	if m.mode != modeList || m.pending[app.ActionDelete] != "a" {
		t.Errorf("y should delete, pending = %v", m.pending)
	}
}

func TestModel_Rename(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(runeKey("e"))
	if m.mode != modeRename || m.nameInput.Value() != "Work" {
		t.Fatalf("rename should prefill the name, got %q", m.nameInput.Value())
	}
	if !strings.Contains(m.View(), "Rename Account") {
		t.Error("rename form should be rendered")
	}

	m.nameInput.SetValue("   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || m.mode != modeRename {
		t.Fatal("empty name should be rejected")
	}
	if msg := cmd().(app.AddNotificationMsg); msg.Type != app.NotificationWarning {
		t.Errorf("got %#v", msg)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList {
		t.Error("esc should close the form")
	}
}

func TestModel_ImportForm(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(runeKey("i"))
	if m.mode != modeImport || m.importFocus != fieldPath {
		t.Fatal("i should open the import form on the path field")
	}
	typeText(m, "/tmp/auth.json")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.importFocus != fieldName {
		t.Fatal("enter on the path should move to the name")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || m.mode != modeImport {
		t.Fatal("missing name should be rejected")
	}

	typeText(m, "Laptop")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeList {
		t.Error("complete form should submit")
	}
	if m.pathInput.Value() != "/tmp/auth.json" {
		t.Errorf("path = %q", m.pathInput.Value())
	}
}

func TestModel_LoginFlow(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.Update(runeKey("o"))
	if m.mode != modeLoginName || !m.CapturingInput() {
		t.Fatal("o should ask for a name")
	}
	typeText(m, "New")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeLoginWait || m.loginName != "New" {
		t.Fatalf("mode = %d, name = %q", m.mode, m.loginName)
	}
	if m.CapturingInput() {
		t.Error("waiting for the browser should not capture global keys")
	}
	if !strings.Contains(m.View(), "Requesting login link") {
		t.Error("dialog should wait for the link")
	}

	m.Update(app.LoginStartedMsg{Name: "New", Info: models.OAuthLoginInfo{AuthURL: "https://auth.example/x"}})
	if !strings.Contains(m.View(), "https://auth.example/x") {
		t.Error("auth URL should be shown")
	}
	if _, cmd := m.Update(runeKey("y")); cmd == nil {
		t.Error("y should copy the link")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList || m.loginURL != "" {
		t.Error("esc should abandon the login")
	}
}

func TestModel_LoginFinished(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(runeKey("o"))
	typeText(m, "New")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(app.ActionResultMsg{Action: app.ActionLogin, Subject: "New"})
	if m.mode != modeList {
		t.Error("completed login should close the dialog")
	}
}

func TestModel_LoginStartFailed(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(runeKey("o"))
	typeText(m, "New")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(app.LoginStartedMsg{Name: "New", Err: errTest})
	if m.mode != modeList {
		t.Error("failed login start should close the dialog")
	}
}

func TestModel_ReconnectRequiresOAuth(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(runeKey("c"))
	if cmd == nil {
		t.Fatal("expected a warning for API key accounts")
	}
	if msg := cmd().(app.AddNotificationMsg); msg.Type != app.NotificationWarning {
		t.Errorf("got %#v", msg)
	}
}

func TestModel_Mask(t *testing.T) {
	m, _, prefs := newTestModel(t)

	if !strings.Contains(m.View(), "work@example.com") {
		t.Fatal("email should be visible before masking")
	}

	m.Update(runeKey("m"))
	if !prefs.IsMasked("a") {
		t.Fatal("m should mask the selected account")
	}
	view := m.View()
	if strings.Contains(view, "work@example.com") || !strings.Contains(view, "w***@example.com") {
		t.Error("email should be masked in the view")
	}
}

func TestModel_DensityAndHeader(t *testing.T) {
	m, _, prefs := newTestModel(t)

	if !strings.Contains(m.View(), "ACTIVE") {
		t.Error("full density should show the detail card")
	}
	m.Update(runeKey("v"))
	if prefs.Get().Density != preferences.DensityCompact {
		t.Fatal("v should switch to compact")
	}
	if strings.Contains(m.View(), "ACTIVE") {
		t.Error("compact density should hide the detail card")
	}

	if !strings.Contains(m.View(), "need attention") {
		t.Error("summary should be visible")
	}
	m.Update(runeKey("H"))
	if !prefs.Get().HeaderCollapsed || strings.Contains(m.View(), "need attention") {
		t.Error("H should collapse the summary")
	}
}

func TestModel_MoveAtBoundary(t *testing.T) {
	m, _, _ := newTestModel(t)
	if _, cmd := m.Update(runeKey("K")); cmd != nil {
		t.Error("first account cannot move up")
	}
}

func TestModel_EmptyState(t *testing.T) {
	state := app.NewState()
	state.SetInitialLoading(false)
	m := New(state, app.NewCommands(nil), nil)
	m.SetSize(100, 30)
	m.Update(app.StoreUpdatedMsg{})

	if !strings.Contains(m.View(), "No Accounts Yet") {
		t.Error("empty store should render the empty state")
	}
}

func TestUsageCell(t *testing.T) {
	tests := []struct {
		name string
		w    models.UsageWindow
		ok   bool
		want string
	}{
		{"missing", models.UsageWindow{}, false, "-"},
		{"full", models.UsageWindow{UsedPercent: 0}, true, "▰▰▰▰▰ 100%"},
		{"empty", models.UsageWindow{UsedPercent: 100}, true, "▱▱▱▱▱   0%"},
		{"partial", models.UsageWindow{UsedPercent: 40}, true, "▰▰▰▱▱  60%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := usageCell(tt.w, tt.ok); got != tt.want {
				t.Errorf("usageCell() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColumnsFor(t *testing.T) {
	for _, width := range []int{40, 80, 160} {
		cols := columnsFor(width)
		if len(cols) != 8 {
			t.Fatalf("len(columns) = %d, want 8", len(cols))
		}
		for _, c := range cols {
			if c.Width <= 0 {
				t.Errorf("width %d: column %q has width %d", width, c.Title, c.Width)
			}
		}
	}
}
