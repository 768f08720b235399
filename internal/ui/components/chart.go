package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/styles"
)

const noData = "No data available"

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(noData)
	}

	return asciigraph.Plot(data,
		asciigraph.Height(max(height, 3)),
		asciigraph.Width(max(width, 20)),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption(caption),
	)
}

// RenderWindowChart plots the used percentage of both rate-limit windows.
// The shorter series is padded with zeros so the two share an x axis.
func RenderWindowChart(primary, secondary []float64, width, height int, caption string) string {
	if len(primary) == 0 && len(secondary) == 0 {
		return styles.HelpStyle.Render(noData)
	}
	if len(secondary) == 0 {
		return RenderLineChart(primary, width, height, caption)
	}
	if len(primary) == 0 {
		return RenderLineChart(secondary, width, height, caption)
	}

	n := max(len(primary), len(secondary))
	p := make([]float64, n)
	s := make([]float64, n)
	copy(p, primary)
	copy(s, secondary)

	return asciigraph.PlotMany([][]float64{p, s},
		asciigraph.Height(max(height, 3)),
		asciigraph.Width(max(width, 20)),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.DarkOrange, asciigraph.DodgerBlue),
	)
}

// HeatmapBlocks are Unicode block characters for heatmaps (low to high intensity).
var HeatmapBlocks = []rune{'░', '▒', '▓', '█'}

// RenderHourlyHeatmap renders average usage per hour of day as a 24-cell strip.
// Hours without observations render as the lowest block.
func RenderHourlyHeatmap(patterns []models.HourlyPattern) string {
	var byHour [24]float64
	maxVal := 0.0
	for _, p := range patterns {
		if p.Hour < 0 || p.Hour > 23 {
			continue
		}
		byHour[p.Hour] = p.AvgUsed
		maxVal = max(maxVal, p.AvgUsed)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	var b strings.Builder
	b.WriteString("00 ")
	for i, v := range byHour {
		level := min(max(int(v/maxVal*float64(len(HeatmapBlocks)-1)), 0), len(HeatmapBlocks)-1)

		color := styles.Subtle
		switch level {
		case 1:
			color = styles.Success
		case 2:
			color = styles.Warning
		case 3:
			color = styles.Error
		}
		b.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(HeatmapBlocks[level])))

		if i == 11 {
			b.WriteString(" ")
		}
	}
	b.WriteString(" 23")
	return b.String()
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline chart of values on a 0-100 scale,
// sampled down to width cells.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	step := max(float64(len(values))/float64(width), 1)

	var b strings.Builder
	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		v := values[int(float64(i)*step)]
		level := min(max(int(v/100*float64(len(sparkChars)-1)), 0), len(sparkChars)-1)
		b.WriteRune(sparkChars[level])
	}
	return b.String()
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		box := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", box, item.Label))
	}
	return strings.Join(parts, "  ")
}
