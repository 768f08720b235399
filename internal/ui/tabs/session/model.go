// Package session provides the session tab: the live Codex auth file,
// process safety, recent activity and build information.
package session

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/codex-switcher-tui/internal/app"
	"github.com/j-veylop/codex-switcher-tui/internal/config"
	"github.com/j-veylop/codex-switcher-tui/internal/logger"
	"github.com/j-veylop/codex-switcher-tui/internal/preferences"
)

// keyMap defines the key bindings specific to the session tab.
type keyMap struct {
	Snapshot     key.Binding
	Refresh      key.Binding
	Processes    key.Binding
	CopyAuth     key.Binding
	CopySnapshot key.Binding
	Collapse     key.Binding
	Up           key.Binding
	Down         key.Binding
}

// defaultKeyMap returns the default key bindings for the session tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Snapshot: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "save snapshot"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload session"),
		),
		Processes: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "check processes"),
		),
		CopyAuth: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy auth path"),
		),
		CopySnapshot: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy snapshots dir"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "collapse session"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// Model represents the session tab state.
type Model struct {
	now      func() time.Time
	state    *app.State
	cmds     *app.Commands
	prefs    *preferences.Store
	config   *config.Config
	keys     keyMap
	viewport viewport.Model
	saving   bool
	width    int
	height   int
}

// New creates the session tab. cfg and prefs may be nil.
func New(state *app.State, cmds *app.Commands, prefs *preferences.Store, cfg *config.Config) *Model {
	return &Model{
		now:      time.Now,
		state:    state,
		cmds:     cmds,
		prefs:    prefs,
		config:   cfg,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the session tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the session tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case app.ActionResultMsg:
		if msg.Action == app.ActionSnapshot {
			m.saving = false
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	current := m.state.Store().CurrentSession

	switch {
	case key.Matches(msg, m.keys.Snapshot):
		if !current.IsReady() {
			return m.cmds.NotifyWarning("No readable auth file to snapshot")
		}
		if m.saving {
			return nil
		}
		cmd := m.cmds.SaveSnapshot()
		m.saving = cmd != nil
		return cmd

	case key.Matches(msg, m.keys.Refresh):
		return m.cmds.RefreshSession()

	case key.Matches(msg, m.keys.Processes):
		return m.cmds.CheckProcesses()

	case key.Matches(msg, m.keys.CopyAuth):
		if current == nil || current.AuthFilePath == "" {
			return nil
		}
		return m.cmds.CopyToClipboard(current.AuthFilePath, "auth file path")

	case key.Matches(msg, m.keys.CopySnapshot):
		dir := m.state.Store().SnapshotsDirPath
		if dir == "" {
			return nil
		}
		return m.cmds.CopyToClipboard(dir, "snapshots directory")

	case key.Matches(msg, m.keys.Collapse):
		if m.prefs == nil {
			return nil
		}
		if err := m.prefs.SetSessionCollapsed(!m.collapsed()); err != nil {
			logger.Warn("failed to save preferences", "error", err)
			return m.cmds.NotifyError("Failed to save preferences")
		}
		return nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *Model) collapsed() bool {
	return m.prefs != nil && m.prefs.Get().SessionCollapsed
}

// maskedEmail reports whether email belongs to an account the user masked.
func (m *Model) maskedEmail(email string) bool {
	if m.prefs == nil || email == "" {
		return false
	}
	for _, acc := range m.state.Accounts() {
		if strings.EqualFold(acc.Email, email) && m.prefs.IsMasked(acc.ID) {
			return true
		}
	}
	return false
}

// SetSize sets the available size for the session tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Snapshot,
		m.keys.Refresh,
		m.keys.Processes,
		m.keys.CopyAuth,
		m.keys.Collapse,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Snapshot, m.keys.Refresh, m.keys.Processes},
		{m.keys.CopyAuth, m.keys.CopySnapshot, m.keys.Collapse},
		{m.keys.Up, m.keys.Down},
	}
}
