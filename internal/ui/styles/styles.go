// Package styles holds the palette and shared lipgloss styles of the UI.
package styles

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

// Palette.
var (
	Primary = lipgloss.Color("43") // teal
	Subtle  = lipgloss.Color("240")

	// PrimaryWindow and SecondaryWindow tint the 5h and weekly windows.
	PrimaryWindow   = lipgloss.Color("208")
	SecondaryWindow = lipgloss.Color("39")

	Success = lipgloss.Color("42")
	Error   = lipgloss.Color("196")
	Warning = lipgloss.Color("220")

	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	accent = lipgloss.Color("63")
	info   = lipgloss.Color("39")
	bgDark = lipgloss.Color("235")
	onTeal = lipgloss.Color("230")
)

// Layout and containers.
var (
	DocStyle = lipgloss.NewStyle().Margin(1, 2).Padding(0, 1)

	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)
	SubTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)

	// CardStyle frames a section of a tab; ActiveCardStyle marks the
	// account Codex is signed in with.
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Subtle).
			Padding(1, 2).
			MarginBottom(1)
	ActiveCardStyle = CardStyle.BorderForeground(Primary)
	CardTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)

	// ModalContentStyle frames forms and confirmations.
	ModalContentStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(Primary).
				Padding(1, 2).
				Background(bgDark)

	HelpPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Primary).
			Padding(1, 3).
			Background(bgDark)

	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// Form inputs.
var (
	FocusedStyle       = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	BlurredStyle       = lipgloss.NewStyle().Foreground(TextMuted)
	FocusedBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Primary).Padding(0, 1)
	BlurredBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Subtle).Padding(0, 1)

	button              = lipgloss.NewStyle().Padding(0, 2).MarginRight(1)
	ButtonActiveStyle   = button.Background(Primary).Foreground(onTeal).Bold(true)
	ButtonInactiveStyle = button.Background(BgLight).Foreground(TextSecondary)
)

// Text.
var (
	HelpStyle          = lipgloss.NewStyle().Foreground(TextMuted)
	HelpKeyStyle       = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	HelpSeparatorStyle = lipgloss.NewStyle().Foreground(Subtle)

	ErrorTextStyle   = lipgloss.NewStyle().Foreground(Error)
	SuccessTextStyle = lipgloss.NewStyle().Foreground(Success)
	WarningTextStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoTextStyle    = lipgloss.NewStyle().Foreground(info)

	ActiveBadgeStyle = lipgloss.NewStyle().Foreground(onTeal).Background(Primary).Bold(true).Padding(0, 1)

	// UsageErrorStyle marks accounts whose usage could not be fetched.
	UsageErrorStyle = lipgloss.NewStyle().Foreground(Error).Bold(true).Italic(true)
)

var usageStyles = map[models.UsageTone]lipgloss.Style{
	models.ToneHealthy: lipgloss.NewStyle().Foreground(Success),
	models.ToneWarning: lipgloss.NewStyle().Foreground(Warning),
	models.ToneDanger:  lipgloss.NewStyle().Foreground(Error),
}

// GetUsageStyle returns the style for a remaining percentage.
func GetUsageStyle(remaining float64, hasError bool) lipgloss.Style {
	if hasError {
		return UsageErrorStyle
	}
	return usageStyles[models.ToneFor(remaining)]
}

var planStyles = map[string]lipgloss.Style{
	"PRO":        lipgloss.NewStyle().Foreground(Success).Bold(true),
	"PLUS":       lipgloss.NewStyle().Foreground(Primary),
	"TEAM":       lipgloss.NewStyle().Foreground(accent).Bold(true),
	"BUSINESS":   lipgloss.NewStyle().Foreground(accent).Bold(true),
	"ENTERPRISE": lipgloss.NewStyle().Foreground(accent).Bold(true),
	"EDU":        lipgloss.NewStyle().Foreground(accent).Bold(true),
	"FREE":       lipgloss.NewStyle().Foreground(Warning),
}

// GetPlanStyle returns the style for a plan as shown by Account.DisplayPlan.
func GetPlanStyle(plan string) lipgloss.Style {
	if s, ok := planStyles[plan]; ok {
		return s
	}
	return lipgloss.NewStyle().Foreground(Subtle)
}

// GetProjectionStyle returns the style for a projection status.
func GetProjectionStyle(status models.ProjectionStatus) lipgloss.Style {
	switch status {
	case models.ProjectionSafe:
		return lipgloss.NewStyle().Foreground(Success)
	case models.ProjectionWarning:
		return lipgloss.NewStyle().Foreground(Warning).Bold(true)
	case models.ProjectionCritical:
		return lipgloss.NewStyle().Foreground(Error).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(Subtle)
	}
}

// TableStyles returns the accounts table styles.
func TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(Primary)
	s.Selected = s.Selected.
		Foreground(TextPrimary).
		Background(BgAccent).
		Bold(true)
	return s
}

// CenterHorizontal centers content within width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content within width and height.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
