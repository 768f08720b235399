package session

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/styles"
	"github.com/j-veylop/codex-switcher-tui/internal/version"
	"github.com/j-veylop/codex-switcher-tui/internal/workbench"
)

// View renders the session tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderSessionCard(),
		m.renderSafetyCard(),
		m.renderActivityCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Session")
	subtitle := styles.HelpStyle.Render("The auth file Codex is using right now")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderSessionCard renders the live auth file summary.
func (m *Model) renderSessionCard() string {
	current := m.state.Store().CurrentSession

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Current Session")+"  "+statusBadge(current))

	switch {
	case current == nil:
		rows = append(rows, "", styles.HelpStyle.Render("Reading the Codex auth file..."))
	case m.collapsed():
		rows = append(rows, styles.HelpStyle.Render(m.sessionOneLiner(current)))
	default:
		rows = append(rows, "")
		if current.IsReady() {
			email := current.Email
			if m.maskedEmail(email) {
				email = models.MaskEmail(email)
			}
			plan := strings.ToUpper(current.PlanType)
			if plan == "" {
				plan = "-"
			}
			rows = append(rows,
				renderRow("Account", orDash(email)),
				renderRow("Plan", styles.GetPlanStyle(plan).Render(plan)),
				renderRow("Auth Mode", current.AuthMode.Label()),
			)
		} else if current.Message != "" {
			rows = append(rows, styles.WarningTextStyle.Render(current.Message), "")
		}
		rows = append(rows, renderRow("Auth File", orDash(current.AuthFilePath)))
		rows = append(rows, renderRow("Snapshots", orDash(m.snapshotsDir(current))))
		if current.LastModifiedAt != nil {
			rows = append(rows, renderRow("Last Modified",
				workbench.RelativeTime(*current.LastModifiedAt, m.now())))
		}
		if m.saving {
			rows = append(rows, "", styles.InfoTextStyle.Render("Saving snapshot..."))
		}
	}

	style := styles.CardStyle
	if current.IsReady() {
		style = styles.ActiveCardStyle
	}
	return style.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) sessionOneLiner(current *models.CurrentSessionSummary) string {
	if !current.IsReady() {
		return orDash(current.Message)
	}
	email := current.Email
	if m.maskedEmail(email) {
		email = models.MaskEmail(email)
	}
	parts := []string{orDash(email), current.AuthMode.Label()}
	if current.PlanType != "" {
		parts = append(parts, strings.ToUpper(current.PlanType))
	}
	return strings.Join(parts, " · ")
}

func (m *Model) snapshotsDir(current *models.CurrentSessionSummary) string {
	if current.SnapshotsDirPath != "" {
		return current.SnapshotsDirPath
	}
	return m.state.Store().SnapshotsDirPath
}

func statusBadge(current *models.CurrentSessionSummary) string {
	if current == nil {
		return styles.HelpStyle.Render("…")
	}
	switch current.Status {
	case models.SessionReady:
		return styles.SuccessTextStyle.Render("● ready")
	case models.SessionMissing:
		return styles.WarningTextStyle.Render("○ missing")
	default:
		return styles.ErrorTextStyle.Render("✗ " + string(current.Status))
	}
}

// renderSafetyCard renders the process check used to gate switching.
func (m *Model) renderSafetyCard() string {
	safety := m.state.Safety()

	titleStyle := styles.HelpStyle
	switch safety.Tone {
	case workbench.ToneSuccess:
		titleStyle = styles.SuccessTextStyle
	case workbench.ToneWarning:
		titleStyle = styles.WarningTextStyle
	}

	rows := []string{
		styles.CardTitleStyle.Render("Switch Safety"),
		"",
		titleStyle.Bold(true).Render(safety.Title),
		styles.HelpStyle.Render(safety.Text),
	}

	if info := m.state.ProcessInfo(); info != nil && len(info.PIDs) > 0 {
		pids := make([]string, 0, len(info.PIDs))
		for _, pid := range info.PIDs {
			pids = append(pids, fmt.Sprintf("%d", pid))
		}
		rows = append(rows, "", renderRow("PIDs", strings.Join(pids, ", ")))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderActivityCard renders the recent activity feed.
func (m *Model) renderActivityCard() string {
	rows := []string{styles.CardTitleStyle.Render("Recent Activity"), ""}

	activities := m.state.Activities()
	if len(activities) == 0 {
		rows = append(rows, styles.HelpStyle.Render("Nothing yet"))
	}

	now := m.now()
	for _, a := range activities {
		icon, style := "•", styles.InfoTextStyle
		switch a.Kind {
		case workbench.ActivitySuccess:
			icon, style = "✓", styles.SuccessTextStyle
		case workbench.ActivityWarning:
			icon, style = "!", styles.WarningTextStyle
		}
		when := styles.HelpStyle.Render(fmt.Sprintf("%8s", workbench.RelativeTime(a.CreatedAt, now)))
		rows = append(rows, fmt.Sprintf("%s %s %s", when, style.Render(icon), a.Text))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderAboutCard renders the configuration and build information.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Codex Switcher"))
	rows = append(rows, "")

	if m.config != nil {
		rows = append(rows, renderRow("Backend", m.config.BackendURL))
		rows = append(rows, renderRow("Database", m.config.DatabasePath))
		rows = append(rows, renderRow("Preferences", m.config.PreferencesPath))
		rows = append(rows, renderRow("Usage Refresh", m.config.UsageRefreshInterval.String()))
		rows = append(rows, renderRow("Process Poll", m.config.ProcessPollInterval.String()))
		rows = append(rows, "")
	}

	rows = append(rows, renderRow("Version", version.GetVersion()))
	rows = append(rows, renderRow("Git Commit", version.GetCommit()))
	rows = append(rows, renderRow("Go Version", runtime.Version()))
	rows = append(rows, renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("Accounts: %s",
		styles.InfoTextStyle.Render(fmt.Sprintf("%d", len(m.state.Accounts())))))

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderRow renders a key-value row.
func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(16).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
