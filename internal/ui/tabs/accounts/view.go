package accounts

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/components"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/styles"
	"github.com/j-veylop/codex-switcher-tui/internal/workbench"
)

// View renders the accounts tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() && len(m.state.Accounts()) == 0 {
		return styles.CenterBoth(m.spinner.View(), m.width, m.height)
	}

	var sections []string

	sections = append(sections, m.renderTitle())
	if !m.headerCollapsed() {
		sections = append(sections, m.renderSummary())
	}
	if errText := m.state.Store().Error; errText != "" {
		sections = append(sections, styles.ErrorTextStyle.Render("⚠ "+errText), "")
	}

	switch m.mode {
	case modeImport:
		sections = append(sections, m.renderImportForm())
	case modeLoginName, modeLoginWait:
		sections = append(sections, m.renderLoginDialog())
	case modeRename:
		sections = append(sections, m.renderRenameForm())
	case modeConfirmDelete:
		sections = append(sections, m.renderDeleteConfirm(), m.renderTable())
	default:
		if m.mode == modeQuery || m.query != "" {
			sections = append(sections, m.renderQuery())
		}
		sections = append(sections, m.renderTable())
		if !m.compact() {
			if detail := m.renderDetail(); detail != "" {
				sections = append(sections, detail)
			}
		}
	}

	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

// renderTitle renders the title and the switch safety line.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Codex Accounts")

	safety := m.state.Safety()
	style := styles.HelpStyle
	switch safety.Tone {
	case workbench.ToneSuccess:
		style = styles.SuccessTextStyle
	case workbench.ToneWarning:
		style = styles.WarningTextStyle
	}
	status := style.Render(fmt.Sprintf("● %s · %s", safety.Title, safety.Text))

	return lipgloss.JoinVertical(lipgloss.Left, title, status, "")
}

func (m *Model) renderSummary() string {
	s := workbench.Summarize(m.state.Accounts())

	stat := func(label string, n int, style lipgloss.Style) string {
		return style.Render(fmt.Sprintf("%d", n)) + " " + styles.HelpStyle.Render(label)
	}

	attentionStyle := styles.HelpStyle
	if s.Attention > 0 {
		attentionStyle = styles.WarningTextStyle
	}

	sep := styles.HelpSeparatorStyle.Render("  │  ")
	line := strings.Join([]string{
		stat("accounts", s.Total, styles.InfoTextStyle),
		stat("need attention", s.Attention, attentionStyle),
		stat("ChatGPT", s.OAuth, styles.HelpStyle),
		stat("API key", s.Imported, styles.HelpStyle),
	}, sep)

	view := styles.HelpStyle.Render(fmt.Sprintf("filter: %s   sort: %s", m.filter, m.sort))

	return lipgloss.JoinVertical(lipgloss.Left, line, view, "")
}

func (m *Model) renderQuery() string {
	if m.mode == modeQuery {
		return styles.FocusedBorderStyle.Width(min(m.width-10, 60)).Render(m.queryInput.View())
	}
	return styles.HelpStyle.Render(fmt.Sprintf("search: %q  (esc to clear)", m.query))
}

// renderTable renders the accounts table.
func (m *Model) renderTable() string {
	cardWidth := max(m.width-6, 60)

	if len(m.rows) == 0 {
		return m.renderEmptyState(cardWidth)
	}

	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

// renderEmptyState renders the empty state when nothing is listed.
func (m *Model) renderEmptyState(cardWidth int) string {
	title := "No Accounts Yet"
	hint := "Press 'o' to sign in with ChatGPT or 'i' to import an auth file"
	if len(m.state.Accounts()) > 0 {
		title = "No Matching Accounts"
		hint = "Press 'f' to change the filter or esc to clear the search"
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render(title),
		styles.InfoTextStyle.Render(hint),
		"",
	)

	return styles.CardStyle.Width(cardWidth).Render(content)
}

// renderDetail renders the usage card of the selected account.
func (m *Model) renderDetail() string {
	acc, ok := m.selected()
	if !ok {
		return ""
	}

	cardWidth := max(m.width-6, 60)
	contentWidth := cardWidth - 6
	now := m.now()

	var lines []string
	lines = append(lines, m.renderDetailHeader(acc))

	meta := []string{acc.AuthMode.Label()}
	if acc.LastUsedAt != nil {
		meta = append(meta, "used "+workbench.RelativeTime(*acc.LastUsedAt, now))
	}
	if credits := acc.Usage.CreditsLabel(); credits != "" {
		meta = append(meta, credits)
	}
	lines = append(lines, styles.HelpStyle.Render(strings.Join(meta, " · ")), "")

	switch {
	case acc.UsageLoading && acc.Usage == nil:
		lines = append(lines,
			components.UsageBarLoading("5h    ", contentWidth, m.frame),
			components.UsageBarLoading("Weekly", contentWidth, m.frame+30),
		)
	case acc.Usage != nil && acc.Usage.Error != "":
		lines = append(lines, styles.UsageErrorStyle.Render("Usage unavailable: "+acc.Usage.Error))
	default:
		lines = append(lines, windowLines("5h    ", acc.Usage.Primary, contentWidth, now)...)
		lines = append(lines, windowLines("Weekly", acc.Usage.Secondary, contentWidth, now)...)
	}

	style := styles.CardStyle
	if acc.IsActive {
		style = styles.ActiveCardStyle
	}
	return style.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func windowLines(
	label string,
	window func() (models.UsageWindow, bool),
	width int,
	now time.Time,
) []string {
	w, ok := window()
	if !ok {
		return []string{components.UsageBarUnavailable(label, "no data", width)}
	}
	return []string{
		components.UsageBar(label, w, width, now),
		components.WindowTimeBar(label, w, width, now),
	}
}

func (m *Model) renderDetailHeader(acc models.AccountWithUsage) string {
	parts := []string{lipgloss.NewStyle().Bold(true).Render(acc.Name)}
	if acc.IsActive {
		parts = append(parts, styles.ActiveBadgeStyle.Render("ACTIVE"))
	}
	plan := acc.DisplayPlan()
	parts = append(parts, styles.GetPlanStyle(plan).Render(plan))
	parts = append(parts, styles.HelpStyle.Render(m.displayEmail(acc)))
	return strings.Join(parts, "  ")
}

func (m *Model) formWidth() int {
	return min(max(m.width-10, 50), 80)
}

func (m *Model) renderRenameForm() string {
	cardWidth := m.formWidth()
	rows := []string{
		styles.CardTitleStyle.Render("Rename Account"),
		styles.HelpStyle.Render("Current name: " + m.target.Name),
		"",
		styles.FocusedStyle.Render("> New name:"),
		styles.FocusedBorderStyle.Width(cardWidth - 10).Render(m.nameInput.View()),
		"",
		styles.HelpStyle.Render("Enter: save | Esc: cancel"),
	}
	return styles.ModalContentStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderImportForm renders the import form.
func (m *Model) renderImportForm() string {
	cardWidth := m.formWidth()

	field := func(label string, focused bool, view string) []string {
		labelStyle, border := styles.BlurredStyle, styles.BlurredBorderStyle
		prefix := "  "
		if focused {
			labelStyle, border = styles.FocusedStyle, styles.FocusedBorderStyle
			prefix = "> "
		}
		return []string{
			labelStyle.Render(prefix + label),
			border.Width(cardWidth - 10).Render(view),
			"",
		}
	}

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Import Auth File"), "")
	rows = append(rows, field("Auth file path:", m.importFocus == fieldPath, m.pathInput.View())...)
	rows = append(rows, field("Account name:", m.importFocus == fieldName, m.nameInput.View())...)

	submitStyle := styles.ButtonInactiveStyle
	if m.importFocus == fieldName {
		submitStyle = styles.ButtonActiveStyle
	}
	rows = append(rows, submitStyle.Render(" Import "), "")
	rows = append(rows, styles.HelpStyle.Render("Tab: next field | Enter: submit | Esc: cancel"))

	return styles.ModalContentStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderLoginDialog() string {
	cardWidth := m.formWidth()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Add ChatGPT Account"), "")

	if m.mode == modeLoginName {
		rows = append(rows,
			styles.FocusedStyle.Render("> Account name:"),
			styles.FocusedBorderStyle.Width(cardWidth-10).Render(m.nameInput.View()),
			"",
			styles.HelpStyle.Render("Enter: continue | Esc: cancel"),
		)
		return styles.ModalContentStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows, fmt.Sprintf("Signing in %s", lipgloss.NewStyle().Bold(true).Render(m.loginName)), "")
	if m.loginURL == "" {
		rows = append(rows, m.spinner.View()+" "+styles.HelpStyle.Render("Requesting login link..."))
	} else {
		rows = append(rows,
			"Finish signing in in your browser. If it did not open, visit:",
			"",
			styles.InfoTextStyle.Width(cardWidth-6).Render(m.loginURL),
			"",
			m.spinner.View()+" "+styles.HelpStyle.Render("Waiting for the browser login to finish..."),
		)
	}
	rows = append(rows, "", styles.HelpStyle.Render("y: copy link | o: open browser | Esc: cancel"))

	return styles.ModalContentStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderDeleteConfirm renders the delete confirmation dialog.
func (m *Model) renderDeleteConfirm() string {
	cardWidth := 50

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Delete Account?"),
		"",
		"Are you sure you want to delete:",
		styles.ErrorTextStyle.Render(m.target.Name),
		"",
		"Its stored credentials will be removed.",
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.ButtonActiveStyle.Render(" (Y)es "),
			"  ",
			styles.ButtonInactiveStyle.Render(" (N)o "),
		),
		"",
	)

	return styles.CenterHorizontal(
		styles.ModalContentStyle.Width(cardWidth).Render(content),
		m.width,
	)
}

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	var shortcuts []string
	for _, b := range m.ShortHelp() {
		shortcuts = append(shortcuts, styles.HelpKeyStyle.Render(b.Help().Key)+" "+b.Help().Desc)
	}
	if m.mode == modeList && len(shortcuts) > 8 {
		shortcuts = append(shortcuts[:8], styles.HelpKeyStyle.Render("?")+" more")
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" | ")))
}
