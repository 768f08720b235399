// Package history provides the history tab for viewing recorded usage.
package history

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/codex-switcher-tui/internal/app"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/services"
	"github.com/j-veylop/codex-switcher-tui/internal/services/accounts"
)

const (
	recentSwitchLimit = 8
	loadTimeout       = 10 * time.Second
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	Refresh     key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// historyLoadedMsg is sent when history data is loaded.
type historyLoadedMsg struct {
	history   *models.AccountHistory
	switches  []models.SwitchRecord
	accountID string
	timeRange models.TimeRange
}

// historyErrorMsg is sent when there's an error loading history.
type historyErrorMsg struct {
	err       error
	accountID string
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	keys     keyMap
	viewport viewport.Model

	timeRange   models.TimeRange
	accountID   string
	historyData *models.AccountHistory
	switches    []models.SwitchRecord
	lastRefresh time.Time
	errorMsg    string
	loading     bool
	width       int
	height      int
}

// New creates a new history model. svc may be nil, in which case nothing is
// loaded.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:     state,
		services:  svc,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: models.TimeRange7Days,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	return m.reload()
}

// targetAccount returns the account whose history is shown: the one
// selected on the accounts tab, else the active one, else the first.
func (m *Model) targetAccount() (models.AccountWithUsage, bool) {
	if id := m.state.SelectedAccountID(); id != "" {
		if acc, ok := m.state.Account(id); ok {
			return acc, true
		}
	}
	if acc, ok := m.state.ActiveAccount(); ok {
		return acc, true
	}
	list := m.state.Accounts()
	if len(list) == 0 {
		return models.AccountWithUsage{}, false
	}
	return list[0], true
}

// reload starts loading the target account's history.
func (m *Model) reload() tea.Cmd {
	acc, ok := m.targetAccount()
	if !ok {
		m.accountID = ""
		m.historyData = nil
		m.switches = nil
		m.loading = false
		return nil
	}
	m.accountID = acc.ID
	if m.services == nil {
		return nil
	}
	m.loading = true
	return loadHistoryCmd(m.services, acc.ID, m.timeRange)
}

func loadHistoryCmd(svc *services.Manager, accountID string, tr models.TimeRange) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		h, err := svc.GetAccountHistory(ctx, accountID, tr)
		if err != nil {
			return historyErrorMsg{accountID: accountID, err: err}
		}
		switches, err := svc.RecentSwitches(ctx, recentSwitchLimit)
		if err != nil {
			return historyErrorMsg{accountID: accountID, err: err}
		}
		return historyLoadedMsg{
			history:   h,
			switches:  switches,
			accountID: accountID,
			timeRange: tr,
		}
	}
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.accountID != m.accountID || msg.timeRange != m.timeRange {
			return m, nil
		}
		m.historyData = msg.history
		m.switches = msg.switches
		m.loading = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""

	case historyErrorMsg:
		if msg.accountID != m.accountID {
			return m, nil
		}
		m.loading = false
		m.errorMsg = msg.err.Error()
		return m, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  "History error: " + msg.err.Error(),
				Duration: app.LongNotificationDuration,
			}
		}

	case app.StoreUpdatedMsg:
		if msg.Kind == accounts.EventUsageUpdated || msg.Kind == accounts.EventActiveAccountChanged {
			return m, m.reload()
		}
		return m, m.reloadIfTargetChanged()

	case app.StartedMsg, app.TickMsg, app.SelectedAccountChangedMsg:
		return m, m.reloadIfTargetChanged()

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

// reloadIfTargetChanged follows the selection made on the accounts tab.
func (m *Model) reloadIfTargetChanged() tea.Cmd {
	acc, ok := m.targetAccount()
	switch {
	case !ok && m.accountID == "":
		return nil
	case ok && acc.ID == m.accountID && (m.historyData != nil || m.loading || m.errorMsg != ""):
		return nil
	}
	return m.reload()
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		return m.reload()

	case key.Matches(msg, m.keys.Refresh):
		return m.reload()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
