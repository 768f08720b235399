// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/codex-switcher-tui/internal/logger"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/styles"
)

const (
	lowColor   = "#ff6b6b"
	highColor  = "#51cf66"
	startColor = "#ffd93d"
	endColor   = "#6c5ce7"

	percentWidth = 6
	resetWidth   = 14
)

var spinnerDots = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// RenderGradientBar renders a bar filled to percent (0-100), shading from
// red at the empty end to green at the full end.
func RenderGradientBar(percent float64, width int) string {
	return renderBar(percent/100, width, lowColor, highColor)
}

// RenderTimeBarChars renders a bar filled to fraction (0-1) in the
// yellow-to-purple palette used for elapsed time.
func RenderTimeBarChars(fraction float64, width int) string {
	return renderBar(fraction, width, startColor, endColor)
}

func renderBar(fraction float64, width int, from, to string) string {
	if width < 1 {
		return ""
	}

	filled := min(max(int(float64(width)*fraction), 0), width)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(from, to, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

func barWidthFor(width, labelWidth int) int {
	return max(width-labelWidth-percentWidth-resetWidth-4, 5)
}

// UsageBar renders one rate-limit window as
// "label [bar] 72%  resets 2h 5m". The bar shows the remaining share.
func UsageBar(label string, w models.UsageWindow, width int, now time.Time) string {
	remaining := w.Remaining()
	barWidth := barWidthFor(width, lipgloss.Width(label))

	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)
	percentStr := styles.GetUsageStyle(remaining, false).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", remaining))

	reset := ""
	if r := models.FormatResetTime(w.ResetsAt, now); r != "" {
		reset = "resets " + r
	}
	resetStr := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(resetWidth).
		Render(reset)

	return fmt.Sprintf("%s [%s] %s %s", labelStr, RenderGradientBar(remaining, barWidth), percentStr, resetStr)
}

// WindowElapsed returns how much of the window has passed, from 0 to 1.
// It is 0 when the window length or reset time is unknown.
func WindowElapsed(w models.UsageWindow, now time.Time) float64 {
	if w.WindowMinutes <= 0 || w.ResetsAt.IsZero() {
		return 0
	}
	window := time.Duration(w.WindowMinutes) * time.Minute
	left := w.ResetsAt.Sub(now)
	return min(max(1-float64(left)/float64(window), 0), 1)
}

// WindowTimeBar renders the elapsed part of a window, aligned under a
// UsageBar with the same label width.
func WindowTimeBar(label string, w models.UsageWindow, width int, now time.Time) string {
	barWidth := barWidthFor(width, lipgloss.Width(label))
	pad := strings.Repeat(" ", lipgloss.Width(label))
	span := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(models.FormatWindowDuration(w.WindowMinutes))
	return fmt.Sprintf("%s [%s] %s", pad, RenderTimeBarChars(WindowElapsed(w, now), barWidth), span)
}

// UsageBarUnavailable renders a window row when no reading exists.
func UsageBarUnavailable(label, reason string, width int) string {
	barWidth := barWidthFor(width, lipgloss.Width(label))
	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)
	bar := lipgloss.NewStyle().Foreground(styles.BgLight).Render(strings.Repeat("░", barWidth))
	return fmt.Sprintf("%s [%s] %s", labelStr, bar, styles.HelpStyle.Render(reason))
}

// UsageBarLoading renders a shimmering placeholder while usage is fetched.
// frame advances the animation.
func UsageBarLoading(label string, width, frame int) string {
	barWidth := barWidthFor(width, lipgloss.Width(label))

	accent := styles.PrimaryWindow
	if strings.Contains(strings.ToLower(label), "week") {
		accent = styles.SecondaryWindow
	}

	const cycle = 120
	t := float64(frame%cycle) / float64(cycle)
	p := t * 2
	if t >= 0.5 {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmer := int(eased * float64(barWidth))

	var b strings.Builder
	for i := range barWidth {
		dist := shimmer - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(accent).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}

	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)
	dot := lipgloss.NewStyle().
		Width(percentWidth).
		Align(lipgloss.Right).
		Foreground(accent).
		Render(spinnerDots[(frame/2)%len(spinnerDots)])

	return fmt.Sprintf("%s [%s] %s", labelStr, b.String(), dot)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
