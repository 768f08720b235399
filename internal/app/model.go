// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/codex-switcher-tui/internal/backend"
	"github.com/j-veylop/codex-switcher-tui/internal/services"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/styles"
	"github.com/j-veylop/codex-switcher-tui/internal/workbench"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	TabAccounts TabID = iota
	TabSession
	TabHistory
)

var tabNames = []string{"Accounts", "Session", "History"}

// String returns the display name of the tab.
func (t TabID) String() string {
	if int(t) < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Tab, tea.Cmd)
	View() string
	SetSize(width, height int)
	ShortHelp() []key.Binding
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs that edit text. While CapturingInput
// reports true, global key bindings other than ctrl+c are left to the tab.
type InputCapturer interface {
	CapturingInput() bool
}

// KeyMap defines the global keybindings.
type KeyMap struct {
	Tab1      key.Binding
	Tab2      key.Binding
	Tab3      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Escape    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "accounts"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "session"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "history"))
	k.NextTab = key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab/→", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab/←", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh all"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	k.ForceQuit = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3},
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application chrome styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	Content lipgloss.Style
	Toast   lipgloss.Style

	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#00875F", Dark: "#00D7AF"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)
	s.Success = lipgloss.NewStyle().Foreground(success)
	s.Warning = lipgloss.NewStyle().Foreground(warning)

	return s
}

// Model is the main application model.
type Model struct {
	state        *State
	services     *services.Manager
	commands     *Commands
	eventChannel chan services.ServiceEvent
	tabs         []Tab
	styles       Styles
	keymap       KeyMap
	spinner      spinner.Model
	activeTab    TabID
	width        int
	height       int
	showHelp     bool
	ready        bool
}

// NewModel initializes a new application model. mgr may be nil, in which
// case no service commands are issued.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		activeTab: TabAccounts,
		tabs:      make([]Tab, len(tabNames)),
		state:     NewState(),
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading accounts...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
		m.commands.SubscribeToServices(),
		m.commands.Start(),
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateTabSizes()

	case tea.KeyMsg:
		cmd, handled := m.handleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if isBroadcast(msg) {
		cmds = append(cmds, m.updateAllTabs(msg)...)
	} else if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// isBroadcast reports whether msg concerns every tab, not only the visible one.
func isBroadcast(msg tea.Msg) bool {
	switch msg.(type) {
	case StoreUpdatedMsg, ProcessUpdatedMsg, ActionResultMsg, LoginStartedMsg,
		LoginCancelledMsg, StartedMsg, TickMsg:
		return true
	}
	return false
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event))
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case StartedMsg:
		m.state.SetInitialLoading(false)
		m.state.ClearLoadingNotification()
	case ActionResultMsg:
		cmds = append(cmds, m.handleActionResult(msg))
	case LoginStartedMsg:
		cmds = append(cmds, m.handleLoginStarted(msg)...)
	case LoginCancelledMsg:
		m.state.PushActivity(workbench.ActivityNeutral, "Login cancelled")
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case SelectedAccountChangedMsg:
		m.state.SetSelectedAccountID(msg.ID)
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.StateChangedEvent:
		m.state.SetStore(e.State)
		if m.state.IsInitialLoading() && !e.State.Loading {
			m.state.SetInitialLoading(false)
			m.state.ClearLoadingNotification()
		}
		return func() tea.Msg {
			return StoreUpdatedMsg{State: e.State, AccountID: e.AccountID, Kind: e.Kind}
		}

	case services.ProcessChangedEvent:
		wasLocked := m.state.Safety().Locked()
		m.state.SetProcessInfo(e.Info)
		safety := m.state.Safety()
		switch {
		case safety.Locked() && !wasLocked:
			m.state.PushActivity(workbench.ActivityWarning, safety.Text)
		case !safety.Locked() && wasLocked:
			m.state.PushActivity(workbench.ActivitySuccess, "Codex closed, switching unlocked")
		}
		return func() tea.Msg { return ProcessUpdatedMsg{Info: e.Info} }

	case services.UsageAlertEvent:
		kind := workbench.ActivityWarning
		if e.Reset {
			kind = workbench.ActivitySuccess
		}
		m.state.PushActivity(kind, e.Title)
		if e.Reset {
			return notifyInfoCmd(e.Title)
		}
		return notifyWarningCmd(fmt.Sprintf("%s: %s", e.Title, e.Body))

	case services.LoginURLEvent:
		return tea.Batch(
			m.commands.OpenURL(e.Info.AuthURL),
			notifyInfoCmd("Finish signing in in your browser"),
		)

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %s", e.Service, backend.Message(e.Error)))
	}

	return nil
}

func (m *Model) handleActionResult(msg ActionResultMsg) tea.Cmd {
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, context.Canceled):
			return nil
		case errors.Is(msg.Err, services.ErrCodexRunning):
			m.state.PushActivity(workbench.ActivityWarning, "Switch blocked: Codex is running")
			return notifyWarningCmd(services.ErrCodexRunning.Error())
		}
		text := failureText(msg)
		m.state.PushActivity(workbench.ActivityWarning, text)
		return notifyErrorCmd(text)
	}

	text := successText(msg)
	if text == "" {
		return nil
	}
	m.state.PushActivity(workbench.ActivitySuccess, text)
	return notifySuccessCmd(text)
}

func failureText(msg ActionResultMsg) string {
	reason := backend.Message(msg.Err)
	if msg.Subject == "" {
		return fmt.Sprintf("Failed to %s: %s", msg.Action, reason)
	}
	return fmt.Sprintf("Failed to %s %s: %s", msg.Action, msg.Subject, reason)
}

func successText(msg ActionResultMsg) string {
	switch msg.Action {
	case ActionSwitch:
		return "Switched to " + msg.Subject
	case ActionRefresh:
		return "Usage refreshed for " + msg.Subject
	case ActionRefreshAll:
		return "Usage refreshed"
	case ActionRename:
		return "Renamed to " + msg.Subject
	case ActionDelete:
		return "Deleted " + msg.Subject
	case ActionImport:
		return "Imported " + msg.Subject
	case ActionSnapshot:
		return "Snapshot saved to " + msg.Detail
	case ActionReconnect:
		return "Reconnected " + msg.Subject
	case ActionLogin:
		return "Added " + msg.Subject
	default:
		return ""
	}
}

func (m *Model) handleLoginStarted(msg LoginStartedMsg) []tea.Cmd {
	if msg.Err != nil {
		text := fmt.Sprintf("Failed to start login: %s", backend.Message(msg.Err))
		m.state.PushActivity(workbench.ActivityWarning, text)
		return []tea.Cmd{notifyErrorCmd(text)}
	}
	m.state.PushActivity(workbench.ActivityNeutral, "Waiting for browser login for "+msg.Name)
	return []tea.Cmd{
		m.commands.OpenURL(msg.Info.AuthURL),
		m.commands.CompleteLogin(msg.Name),
	}
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateAllTabs(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for i, tab := range m.tabs {
		if tab == nil {
			continue
		}
		var cmd tea.Cmd
		m.tabs[i], cmd = tab.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-3)
	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) capturingInput() bool {
	if int(m.activeTab) >= len(m.tabs) || m.tabs[m.activeTab] == nil {
		return false
	}
	c, ok := m.tabs[m.activeTab].(InputCapturer)
	return ok && c.CapturingInput()
}

func (m *Model) setTab(id TabID) {
	m.activeTab = id
	m.updateTabSizes()
}

// handleKeyMsg applies global key bindings. handled is true when the key
// must not reach the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (cmd tea.Cmd, handled bool) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		return tea.Quit, true
	}
	if m.capturingInput() {
		return nil, false
	}

	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Escape) {
			m.showHelp = false
		}
		if key.Matches(msg, m.keymap.Quit) {
			return tea.Quit, true
		}
		return nil, true
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
		return nil, true
	case key.Matches(msg, m.keymap.Tab1):
		m.setTab(TabAccounts)
		return nil, true
	case key.Matches(msg, m.keymap.Tab2):
		m.setTab(TabSession)
		return nil, true
	case key.Matches(msg, m.keymap.Tab3):
		m.setTab(TabHistory)
		return nil, true
	case key.Matches(msg, m.keymap.NextTab):
		m.setTab(TabID((int(m.activeTab) + 1) % len(tabNames)))
		return nil, true
	case key.Matches(msg, m.keymap.PrevTab):
		m.setTab(TabID((int(m.activeTab) - 1 + len(tabNames)) % len(tabNames)))
		return nil, true
	case key.Matches(msg, m.keymap.Refresh):
		if m.services == nil {
			return nil, true
		}
		m.state.PushActivity(workbench.ActivityNeutral, "Refreshing all accounts")
		return m.commands.RefreshAll(), true
	}

	return nil, false
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.styles.Content.Render(m.styles.Subtle.Render("Nothing to show yet.")))
	}

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if toasts := m.renderNotifications(); len(toasts) > 0 {
		return m.overlayToasts(mainView, toasts)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := lipgloss.Width(overlay)
	y := max((m.height-len(overlayLines))/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		for mainY >= len(mainLines) {
			mainLines = append(mainLines, "")
		}

		mainLine := mainLines[mainY]
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	status := m.renderSafetyBadge()
	gap := m.width - lipgloss.Width(tabBar) - lipgloss.Width(status) - 4
	if gap > 0 {
		tabBar = tabBar + strings.Repeat(" ", gap) + status
	}

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderSafetyBadge() string {
	safety := m.state.Safety()
	style := m.styles.Subtle
	switch safety.Tone {
	case workbench.ToneSuccess:
		style = m.styles.Success
	case workbench.ToneWarning:
		style = m.styles.Warning
	}
	return style.Render("● " + safety.Title)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	const startY = 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		if w := lipgloss.Width(mainLine); w < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-w) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"), "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, "  1-3        Switch tabs")
	lines = append(lines, "  Tab        Next tab")
	lines = append(lines, "  Shift+Tab  Previous tab")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Global"))
	lines = append(lines, "  r          Refresh all accounts")
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(m.activeTab.String()))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}
