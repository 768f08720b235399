// Package accounts provides the account list tab: switching, usage and
// account management.
package accounts

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/j-veylop/codex-switcher-tui/internal/app"
	"github.com/j-veylop/codex-switcher-tui/internal/logger"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/preferences"
	"github.com/j-veylop/codex-switcher-tui/internal/services/session"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/components"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/styles"
	"github.com/j-veylop/codex-switcher-tui/internal/workbench"
)

// mode is the interaction the tab is currently in.
type mode int

const (
	modeList mode = iota
	modeQuery
	modeRename
	modeConfirmDelete
	modeImport
	modeLoginName
	modeLoginWait
)

// importField is the focused input of the import form.
type importField int

const (
	fieldPath importField = iota
	fieldName
)

// keyMap defines the key bindings specific to the accounts tab.
type keyMap struct {
	Switch      key.Binding
	Refresh     key.Binding
	RefreshAll  key.Binding
	Rename      key.Binding
	Delete      key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	Import      key.Binding
	Login       key.Binding
	Reconnect   key.Binding
	Query       key.Binding
	Filter      key.Binding
	Sort        key.Binding
	Mask        key.Binding
	Density     key.Binding
	Header      key.Binding
	Copy        key.Binding
	OpenBrowser key.Binding
	Escape      key.Binding
	Confirm     key.Binding
	NextField   key.Binding
	ConfirmYes  key.Binding
	ConfirmNo   key.Binding
}

// defaultKeyMap returns the default key bindings for the accounts tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Switch:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "switch")),
		Refresh:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "refresh usage")),
		RefreshAll:  key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "refresh all usage")),
		Rename:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
		Delete:      key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		MoveUp:      key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		MoveDown:    key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		Import:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import auth file")),
		Login:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "add with ChatGPT")),
		Reconnect:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "reconnect")),
		Query:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle filter")),
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
		Mask:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mask email")),
		Density:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "toggle details")),
		Header:      key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "toggle summary")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
		OpenBrowser: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open link")),
		Escape:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Confirm:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		NextField:   key.NewBinding(key.WithKeys("tab", "shift+tab", "down", "up"), key.WithHelp("tab", "next field")),
		ConfirmYes:  key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "delete")),
		ConfirmNo:   key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "keep")),
	}
}

// tableKeyMap keeps row navigation but frees the letters used by the tab.
func tableKeyMap() table.KeyMap {
	km := table.DefaultKeyMap()
	km.PageDown = key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down"))
	km.PageUp = key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up"))
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "½ page up"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "½ page down"))
	return km
}

// Model represents the accounts tab state.
type Model struct {
	now         func() time.Time
	state       *app.State
	cmds        *app.Commands
	prefs       *preferences.Store
	pending     map[app.Action]string
	keys        keyMap
	selectedID  string
	loginName   string
	loginURL    string
	query       string
	filter      workbench.Filter
	sort        workbench.Sort
	target      models.AccountWithUsage
	rows        []models.AccountWithUsage
	table       table.Model
	queryInput  textinput.Model
	nameInput   textinput.Model
	pathInput   textinput.Model
	spinner     components.LoadingSpinner
	mode        mode
	importFocus importField
	frame       int
	width       int
	height      int
}

// New creates the accounts tab. prefs may be nil, in which case masking
// and density are not persisted.
func New(state *app.State, cmds *app.Commands, prefs *preferences.Store) *Model {
	queryInput := textinput.New()
	queryInput.Placeholder = "name or email"
	queryInput.Prompt = "/ "
	queryInput.CharLimit = 100

	nameInput := textinput.New()
	nameInput.Placeholder = "Account name"
	nameInput.CharLimit = 64
	nameInput.Width = 40

	pathInput := textinput.New()
	pathInput.Placeholder = "~/.codex/auth.json"
	pathInput.CharLimit = 512
	pathInput.Width = 40

	t := table.New(
		table.WithColumns(columnsFor(80)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithKeyMap(tableKeyMap()),
	)

	t.SetStyles(styles.TableStyles())

	return &Model{
		now:        time.Now,
		state:      state,
		cmds:       cmds,
		prefs:      prefs,
		pending:    make(map[app.Action]string),
		keys:       defaultKeyMap(),
		filter:     workbench.FilterAll,
		sort:       workbench.SortRecent,
		table:      t,
		queryInput: queryInput,
		nameInput:  nameInput,
		pathInput:  pathInput,
		spinner:    components.NewSpinner("Loading accounts..."),
	}
}

// Init initializes the accounts tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick()
}

// CapturingInput reports whether keys should go to the tab's inputs.
func (m *Model) CapturingInput() bool {
	switch m.mode {
	case modeQuery, modeRename, modeConfirmDelete, modeImport, modeLoginName:
		return true
	default:
		return false
	}
}

// Update handles messages for the accounts tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case app.StoreUpdatedMsg, app.StartedMsg:
		return m, m.refreshRows()

	case app.TickMsg:
		m.frame++
		return m, nil

	case app.ActionResultMsg:
		delete(m.pending, msg.Action)
		if msg.Action == app.ActionLogin && m.mode == modeLoginWait {
			m.resetLogin()
		}
		return m, m.refreshRows()

	case app.LoginStartedMsg:
		if m.mode != modeLoginWait {
			return m, nil
		}
		if msg.Err != nil {
			m.resetLogin()
			return m, nil
		}
		m.loginURL = msg.Info.AuthURL
		return m, nil

	case app.LoginCancelledMsg:
		delete(m.pending, app.ActionReconnect)
		if m.mode == modeLoginWait {
			m.resetLogin()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.mode {
	case modeQuery:
		return m.updateQuery(msg)
	case modeRename:
		return m.updateRename(msg)
	case modeConfirmDelete:
		return m.updateDeleteConfirm(msg)
	case modeImport:
		return m.updateImport(msg)
	case modeLoginName:
		return m.updateLoginName(msg)
	case modeLoginWait:
		return m.updateLoginWait(msg)
	}
	return m.updateList(msg)
}

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	acc, hasSelection := m.selected()

	switch {
	case key.Matches(msg, m.keys.Switch):
		if !hasSelection || acc.IsActive {
			return nil
		}
		m.pending[app.ActionSwitch] = acc.ID
		return m.cmds.SwitchAccount(acc.ID, acc.Name)

	case key.Matches(msg, m.keys.Refresh):
		if !hasSelection {
			return nil
		}
		m.pending[app.ActionRefresh] = acc.ID
		return m.cmds.RefreshUsage(acc.ID, acc.Name)

	case key.Matches(msg, m.keys.RefreshAll):
		return m.cmds.RefreshAll()

	case key.Matches(msg, m.keys.Rename):
		if !hasSelection {
			return nil
		}
		m.target = acc
		m.mode = modeRename
		m.nameInput.SetValue(acc.Name)
		m.nameInput.CursorEnd()
		return m.nameInput.Focus()

	case key.Matches(msg, m.keys.Delete):
		if !hasSelection {
			return nil
		}
		m.target = acc
		m.mode = modeConfirmDelete
		return nil

	case key.Matches(msg, m.keys.MoveUp):
		return m.moveSelected(-1)

	case key.Matches(msg, m.keys.MoveDown):
		return m.moveSelected(1)

	case key.Matches(msg, m.keys.Import):
		m.mode = modeImport
		m.importFocus = fieldPath
		m.pathInput.SetValue("")
		m.nameInput.SetValue("")
		m.nameInput.Blur()
		return m.pathInput.Focus()

	case key.Matches(msg, m.keys.Login):
		m.mode = modeLoginName
		m.nameInput.SetValue("")
		return m.nameInput.Focus()

	case key.Matches(msg, m.keys.Reconnect):
		if !hasSelection {
			return nil
		}
		if !acc.IsOAuth() {
			return m.cmds.NotifyWarning("Only ChatGPT accounts can be reconnected")
		}
		m.pending[app.ActionReconnect] = acc.ID
		return m.cmds.ReconnectAccount(acc.ID, acc.Name)

	case key.Matches(msg, m.keys.Query):
		m.mode = modeQuery
		m.queryInput.SetValue(m.query)
		m.queryInput.CursorEnd()
		return m.queryInput.Focus()

	case key.Matches(msg, m.keys.Filter):
		m.filter = m.filter.Next()
		return m.refreshRows()

	case key.Matches(msg, m.keys.Sort):
		m.sort = m.sort.Next()
		return m.refreshRows()

	case key.Matches(msg, m.keys.Mask):
		if !hasSelection || m.prefs == nil {
			return nil
		}
		if _, err := m.prefs.ToggleMasked(acc.ID); err != nil {
			logger.Warn("failed to save preferences", "error", err)
			return m.cmds.NotifyError("Failed to save preferences")
		}
		m.refreshTable()
		return nil

	case key.Matches(msg, m.keys.Density):
		if m.prefs == nil {
			return nil
		}
		if _, err := m.prefs.ToggleDensity(); err != nil {
			logger.Warn("failed to save preferences", "error", err)
			return m.cmds.NotifyError("Failed to save preferences")
		}
		m.resize()
		return nil

	case key.Matches(msg, m.keys.Header):
		if m.prefs == nil {
			return nil
		}
		if err := m.prefs.SetHeaderCollapsed(!m.prefs.Get().HeaderCollapsed); err != nil {
			logger.Warn("failed to save preferences", "error", err)
			return m.cmds.NotifyError("Failed to save preferences")
		}
		m.resize()
		return nil

	case key.Matches(msg, m.keys.Escape):
		if m.query != "" {
			m.query = ""
			return m.refreshRows()
		}
		if _, ok := m.pending[app.ActionReconnect]; ok {
			return m.cmds.CancelLogin()
		}
		return nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return tea.Batch(cmd, m.syncSelection())
}

func (m *Model) updateQuery(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.queryInput.Blur()
		m.query = ""
		return m.refreshRows()
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeList
		m.queryInput.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	if v := m.queryInput.Value(); v != m.query {
		m.query = v
		return tea.Batch(cmd, m.refreshRows())
	}
	return cmd
}

func (m *Model) updateRename(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.nameInput.Blur()
		return nil
	case key.Matches(msg, m.keys.Confirm):
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			return m.cmds.NotifyWarning("Account name cannot be empty")
		}
		m.mode = modeList
		m.nameInput.Blur()
		if name == m.target.Name {
			return nil
		}
		return m.cmds.RenameAccount(m.target.ID, name)
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return cmd
}

// updateDeleteConfirm handles the delete confirmation.
func (m *Model) updateDeleteConfirm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ConfirmYes):
		m.mode = modeList
		m.pending[app.ActionDelete] = m.target.ID
		return m.cmds.DeleteAccount(m.target.ID, m.target.Name)
	case key.Matches(msg, m.keys.ConfirmNo):
		m.mode = modeList
	}
	return nil
}

func (m *Model) updateImport(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.pathInput.Blur()
		m.nameInput.Blur()
		return nil

	case key.Matches(msg, m.keys.NextField):
		return m.toggleImportFocus()

	case key.Matches(msg, m.keys.Confirm):
		if m.importFocus == fieldPath {
			return m.toggleImportFocus()
		}
		path := strings.TrimSpace(m.pathInput.Value())
		name := strings.TrimSpace(m.nameInput.Value())
		if path == "" || name == "" {
			return m.cmds.NotifyWarning("Both a file path and a name are required")
		}
		m.mode = modeList
		m.pathInput.Blur()
		m.nameInput.Blur()
		return m.cmds.ImportAccount(session.ExpandPath(path), name)
	}

	var cmd tea.Cmd
	if m.importFocus == fieldPath {
		m.pathInput, cmd = m.pathInput.Update(msg)
	} else {
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return cmd
}

func (m *Model) toggleImportFocus() tea.Cmd {
	if m.importFocus == fieldPath {
		m.importFocus = fieldName
		m.pathInput.Blur()
		return m.nameInput.Focus()
	}
	m.importFocus = fieldPath
	m.nameInput.Blur()
	return m.pathInput.Focus()
}

func (m *Model) updateLoginName(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.nameInput.Blur()
		return nil
	case key.Matches(msg, m.keys.Confirm):
		name := strings.TrimSpace(m.nameInput.Value())
		if name == "" {
			return m.cmds.NotifyWarning("Account name cannot be empty")
		}
		m.nameInput.Blur()
		m.mode = modeLoginWait
		m.loginName = name
		m.loginURL = ""
		return m.cmds.StartLogin(name)
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return cmd
}

func (m *Model) updateLoginWait(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.resetLogin()
		return m.cmds.CancelLogin()
	case key.Matches(msg, m.keys.Copy):
		if m.loginURL == "" {
			return nil
		}
		return m.cmds.CopyToClipboard(m.loginURL, "login link")
	case key.Matches(msg, m.keys.OpenBrowser):
		if m.loginURL == "" {
			return nil
		}
		return m.cmds.OpenURL(m.loginURL)
	}
	return nil
}

func (m *Model) resetLogin() {
	m.mode = modeList
	m.loginName = ""
	m.loginURL = ""
}

// moveSelected swaps the selected account with its neighbour in the stored
// order and persists the result.
func (m *Model) moveSelected(delta int) tea.Cmd {
	acc, ok := m.selected()
	if !ok {
		return nil
	}

	ids := lo.Map(m.state.Accounts(), func(a models.AccountWithUsage, _ int) string {
		return a.ID
	})
	i := slices.Index(ids, acc.ID)
	j := i + delta
	if i < 0 || j < 0 || j >= len(ids) {
		return nil
	}
	ids[i], ids[j] = ids[j], ids[i]
	return m.cmds.ReorderAccounts(ids)
}

// selected returns the account under the cursor.
func (m *Model) selected() (models.AccountWithUsage, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return models.AccountWithUsage{}, false
	}
	return m.rows[i], true
}

// refreshRows recomputes the visible accounts, keeping the cursor on the
// same account when it is still listed.
func (m *Model) refreshRows() tea.Cmd {
	m.rows = workbench.FilterAndSort(m.state.Accounts(), m.query, m.filter, m.sort)
	m.refreshTable()

	cursor := 0
	if i := slices.IndexFunc(m.rows, func(a models.AccountWithUsage) bool {
		return a.ID == m.selectedID
	}); i >= 0 {
		cursor = i
	}
	m.table.SetCursor(cursor)
	return m.syncSelection()
}

func (m *Model) refreshTable() {
	now := m.now()
	rows := make([]table.Row, 0, len(m.rows))
	for _, acc := range m.rows {
		rows = append(rows, m.row(acc, now))
	}
	m.table.SetRows(rows)
}

// syncSelection reports a cursor change to the rest of the app.
func (m *Model) syncSelection() tea.Cmd {
	acc, ok := m.selected()
	id := ""
	if ok {
		id = acc.ID
	}
	if id == m.selectedID {
		return nil
	}
	m.selectedID = id
	return func() tea.Msg { return app.SelectedAccountChangedMsg{ID: id} }
}

func (m *Model) masked(id string) bool {
	return m.prefs != nil && m.prefs.IsMasked(id)
}

func (m *Model) compact() bool {
	return m.prefs != nil && m.prefs.Get().Density == preferences.DensityCompact
}

func (m *Model) headerCollapsed() bool {
	return m.prefs != nil && m.prefs.Get().HeaderCollapsed
}

func (m *Model) displayEmail(acc models.AccountWithUsage) string {
	if acc.Email == "" {
		return "-"
	}
	if m.masked(acc.ID) {
		return models.MaskEmail(acc.Email)
	}
	return acc.Email
}

func (m *Model) row(acc models.AccountWithUsage, now time.Time) table.Row {
	marker := " "
	if acc.IsActive {
		marker = "●"
	}

	primary, hasPrimary := acc.Usage.Primary()
	secondary, hasSecondary := acc.Usage.Secondary()

	reset := "-"
	if hasPrimary {
		if r := models.FormatResetTime(primary.ResetsAt, now); r != "" {
			reset = r
		}
	}

	return table.Row{
		marker,
		acc.Name,
		m.displayEmail(acc),
		acc.DisplayPlan(),
		usageCell(primary, hasPrimary),
		usageCell(secondary, hasSecondary),
		reset,
		m.status(acc),
	}
}

// status is the short state shown in the last column.
func (m *Model) status(acc models.AccountWithUsage) string {
	for action, id := range m.pending {
		if id == acc.ID {
			return pendingLabel(action)
		}
	}
	switch {
	case acc.UsageLoading:
		return "loading…"
	case acc.Usage != nil && acc.Usage.Error != "":
		return "usage error"
	case workbench.NeedsAttention(acc):
		return "low"
	case acc.IsActive:
		return "active"
	default:
		return ""
	}
}

func pendingLabel(action app.Action) string {
	switch action {
	case app.ActionSwitch:
		return "switching…"
	case app.ActionRefresh:
		return "refreshing…"
	case app.ActionDelete:
		return "deleting…"
	case app.ActionReconnect:
		return "reconnecting…"
	default:
		return string(action) + "…"
	}
}

// usageCell renders a remaining percentage as plain text, since table cells
// are measured without ANSI awareness.
func usageCell(w models.UsageWindow, ok bool) string {
	if !ok {
		return "-"
	}
	const width = 5
	remaining := w.Remaining()
	filled := min(max(int(remaining/100*width+0.5), 0), width)
	return fmt.Sprintf("%s%s %3.0f%%",
		strings.Repeat("▰", filled),
		strings.Repeat("▱", width-filled),
		remaining)
}

func columnsFor(width int) []table.Column {
	const fixed = 2 + 8 + 10 + 10 + 8 + 13 + 16
	flex := max(width-fixed, 24)
	nameWidth := max(flex*2/5, 10)
	emailWidth := max(flex-nameWidth, 14)

	return []table.Column{
		{Title: "", Width: 2},
		{Title: "Name", Width: nameWidth},
		{Title: "Email", Width: emailWidth},
		{Title: "Plan", Width: 8},
		{Title: "5h", Width: 10},
		{Title: "Weekly", Width: 10},
		{Title: "Reset", Width: 8},
		{Title: "Status", Width: 13},
	}
}

// SetSize sets the available size for the accounts tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.resize()
}

func (m *Model) resize() {
	m.table.SetColumns(columnsFor(m.width - 10))

	reserved := 12
	if !m.headerCollapsed() {
		reserved += 3
	}
	if !m.compact() {
		reserved += 12
	}
	m.table.SetHeight(max(m.height-reserved, 3))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	switch m.mode {
	case modeImport:
		return []key.Binding{m.keys.NextField, m.keys.Confirm, m.keys.Escape}
	case modeRename, modeLoginName, modeQuery:
		return []key.Binding{m.keys.Confirm, m.keys.Escape}
	case modeConfirmDelete:
		return []key.Binding{m.keys.ConfirmYes, m.keys.ConfirmNo}
	case modeLoginWait:
		return []key.Binding{m.keys.Copy, m.keys.OpenBrowser, m.keys.Escape}
	}
	return []key.Binding{
		m.keys.Switch, m.keys.Refresh, m.keys.RefreshAll, m.keys.Rename, m.keys.Delete,
		m.keys.MoveUp, m.keys.MoveDown, m.keys.Import, m.keys.Login, m.keys.Reconnect,
		m.keys.Query, m.keys.Filter, m.keys.Sort, m.keys.Mask, m.keys.Density, m.keys.Header,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Switch, m.keys.Refresh, m.keys.RefreshAll},
		{m.keys.Rename, m.keys.Delete, m.keys.MoveUp, m.keys.MoveDown},
		{m.keys.Import, m.keys.Login, m.keys.Reconnect},
		{m.keys.Query, m.keys.Filter, m.keys.Sort},
		{m.keys.Mask, m.keys.Density, m.keys.Header},
	}
}
