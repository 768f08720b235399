package history

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/components"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/styles"
	"github.com/j-veylop/codex-switcher-tui/internal/workbench"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.accountID == "" {
		return m.renderNoAccount()
	}
	if m.loading && m.historyData == nil {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if !m.historyData.HasData() {
		return m.renderEmpty()
	}

	sections := []string{
		m.renderHeader(),
		m.renderUsageChart(),
		m.renderProjection(),
		m.renderHourlyHeatmap(),
		m.renderSwitches(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderNoAccount() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No accounts yet. Add one on the Accounts tab."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		styles.HelpStyle.Render("No usage recorded in this range yet."),
		styles.HelpStyle.Render("Readings are stored every time usage is refreshed."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) accountName() string {
	if acc, ok := m.state.Account(m.accountID); ok {
		name := acc.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		return name
	}
	return m.accountID
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History: " + m.accountName())

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	var subtitle string
	if h := m.historyData; h.HasData() {
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("Data: %s → %s (%d readings)",
			h.FirstDataPoint.Local().Format("Jan 2 15:04"),
			h.LastDataPoint.Local().Format("Jan 2 15:04"),
			len(h.Points),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func cardTitle(icon, title string) string {
	return fmt.Sprintf("%s %s",
		lipgloss.NewStyle().Foreground(styles.Primary).Render(icon),
		styles.CardTitleStyle.Render(title))
}

func indent(block string) []string {
	var rows []string
	for line := range strings.SplitSeq(block, "\n") {
		rows = append(rows, "  "+line)
	}
	return rows
}

// renderUsageChart plots the used percentage of both windows.
func (m *Model) renderUsageChart() string {
	cardWidth := m.cardWidth()
	rows := []string{cardTitle("📈", "Usage"), ""}

	primary := m.historyData.PrimarySeries()
	secondary := m.historyData.SecondarySeries()

	chart := components.RenderWindowChart(primary, secondary, max(cardWidth-12, 30), 8,
		fmt.Sprintf("Used %% over %s", strings.ToLower(m.timeRange.String())))
	rows = append(rows, indent(chart)...)

	rows = append(rows, "", "  "+components.RenderLegend([]components.LegendItem{
		{Label: "5h window", Color: styles.PrimaryWindow},
		{Label: "Weekly window", Color: styles.SecondaryWindow},
	}), "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderProjection renders the exhaustion estimate of the 5h window.
func (m *Model) renderProjection() string {
	rows := []string{cardTitle("⏳", "5h Window Projection"), ""}

	proj := m.historyData.Projection
	if proj == nil {
		rows = append(rows, styles.HelpStyle.Render("  Not enough data"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	now := time.Now()
	status := styles.GetProjectionStyle(proj.Status).Render(string(proj.Status))
	rows = append(rows, fmt.Sprintf("  Status: %s  %s", status,
		styles.HelpStyle.Render(fmt.Sprintf("(%s confidence, %d readings)", proj.Confidence, proj.DataPoints))))
	rows = append(rows, fmt.Sprintf("  Remaining: %.0f%%", proj.CurrentRemaining))

	if proj.RatePerHour > 0 {
		rows = append(rows, fmt.Sprintf("  Rate: %.1f%%/h", proj.RatePerHour))
	} else {
		rows = append(rows, styles.HelpStyle.Render("  Rate: no consumption in this window"))
	}

	if !math.IsInf(proj.HoursLeft, 1) && !proj.ExhaustsAt.IsZero() {
		rows = append(rows, fmt.Sprintf("  Runs out in: %s", models.FormatResetTime(proj.ExhaustsAt, now)))
	}
	if !proj.ResetsAt.IsZero() {
		rows = append(rows, fmt.Sprintf("  Resets in: %s", models.FormatResetTime(proj.ResetsAt, now)))
	}
	if proj.WillExhaustBeforeReset {
		rows = append(rows, "", styles.WarningTextStyle.Render("  ⚠ Expected to run out before the window resets"))
	}
	rows = append(rows, "")

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderHourlyHeatmap() string {
	rows := []string{cardTitle("🕐", "Hourly Pattern"), ""}

	hourly := m.historyData.HourlyPatterns
	if len(hourly) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No hourly data available"))
	} else {
		rows = append(rows, "  "+components.RenderHourlyHeatmap(hourly))

		peakHour, peakVal := m.historyData.GetPeakHour()
		rows = append(rows, "", fmt.Sprintf("  Peak: %s (avg %.1f%% used)",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).
				Render(fmt.Sprintf("%02d:00-%02d:00", peakHour, (peakHour+1)%24)),
			peakVal,
		))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderSwitches lists the latest account switches across all accounts.
func (m *Model) renderSwitches() string {
	rows := []string{cardTitle("🔀", "Recent Switches"), ""}

	if len(m.switches) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No switches recorded"))
	}

	now := time.Now()
	for _, s := range m.switches {
		name := s.AccountName
		if name == "" {
			name = s.AccountID
		}
		style := lipgloss.NewStyle()
		if s.AccountID == m.accountID {
			style = style.Bold(true).Foreground(styles.Primary)
		}
		rows = append(rows, fmt.Sprintf("  %s  %s %s",
			styles.HelpStyle.Render(fmt.Sprintf("%8s", workbench.RelativeTime(s.SwitchedAt, now))),
			style.Render(name),
			styles.HelpStyle.Render("via "+s.Source),
		))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
