package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

func TestSpinner(t *testing.T) {
	s := NewSpinner("Waiting for browser")
	if s.Label() != "Waiting for browser" {
		t.Errorf("Label() = %q", s.Label())
	}
	if !strings.Contains(s.View(), "Waiting for browser") {
		t.Errorf("View() = %q, want label", s.View())
	}

	s.SetLabel("")
	if strings.Contains(s.View(), "Waiting") {
		t.Error("View() should drop the label once cleared")
	}

	if s.Tick() == nil {
		t.Error("Tick() should return a command")
	}
	if _, cmd := s.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("Update(TickMsg) should schedule the next tick")
	}
}

func TestRenderGradientBar(t *testing.T) {
	tests := []struct {
		name       string
		percent    float64
		wantFilled int
	}{
		{"empty", 0, 0},
		{"half", 50, 5},
		{"full", 100, 10},
		{"overflow clamps", 150, 10},
		{"negative clamps", -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := ansi.Strip(RenderGradientBar(tt.percent, 10))
			if got := strings.Count(bar, "█"); got != tt.wantFilled {
				t.Errorf("filled = %d, want %d (%q)", got, tt.wantFilled, bar)
			}
			if got := lipgloss.Width(bar); got != 10 {
				t.Errorf("width = %d, want 10", got)
			}
		})
	}

	if RenderGradientBar(50, 0) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestUsageBar(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w := models.UsageWindow{
		UsedPercent:   28,
		WindowMinutes: 300,
		ResetsAt:      now.Add(2*time.Hour + 5*time.Minute),
	}

	got := ansi.Strip(UsageBar("5h", w, 60, now))
	for _, want := range []string{"5h", "72%", "resets 2h 5m"} {
		if !strings.Contains(got, want) {
			t.Errorf("UsageBar() = %q, missing %q", got, want)
		}
	}

	noReset := ansi.Strip(UsageBar("Week", models.UsageWindow{UsedPercent: 100}, 60, now))
	if !strings.Contains(noReset, "0%") || strings.Contains(noReset, "resets") {
		t.Errorf("UsageBar() without reset = %q", noReset)
	}
}

func TestWindowElapsed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		w    models.UsageWindow
		want float64
	}{
		{"unknown length", models.UsageWindow{ResetsAt: now.Add(time.Hour)}, 0},
		{"unknown reset", models.UsageWindow{WindowMinutes: 300}, 0},
		{"start", models.UsageWindow{WindowMinutes: 60, ResetsAt: now.Add(time.Hour)}, 0},
		{"halfway", models.UsageWindow{WindowMinutes: 60, ResetsAt: now.Add(30 * time.Minute)}, 0.5},
		{"past reset", models.UsageWindow{WindowMinutes: 60, ResetsAt: now.Add(-time.Minute)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WindowElapsed(tt.w, now); got != tt.want {
				t.Errorf("WindowElapsed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindowTimeBar(t *testing.T) {
	now := time.Now()
	w := models.UsageWindow{WindowMinutes: 7 * 24 * 60, ResetsAt: now.Add(24 * time.Hour)}
	got := ansi.Strip(WindowTimeBar("Week", w, 60, now))
	if !strings.HasPrefix(got, strings.Repeat(" ", 5)+"[") || !strings.Contains(got, "7d") {
		t.Errorf("WindowTimeBar() = %q", got)
	}
}

func TestUsageBarPlaceholders(t *testing.T) {
	if got := ansi.Strip(UsageBarUnavailable("5h", "no data", 50)); !strings.Contains(got, "no data") {
		t.Errorf("UsageBarUnavailable() = %q", got)
	}
	for frame := range 130 {
		if got := UsageBarLoading("Week", 50, frame); got == "" {
			t.Fatalf("UsageBarLoading(frame=%d) returned empty", frame)
		}
	}
}

func TestInterpolateColor(t *testing.T) {
	if got := interpolateColor("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("t=0: %s", got)
	}
	if got := interpolateColor("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("t=1: %s", got)
	}
	if got := hexToRGB("zz"); got != [3]int{} {
		t.Errorf("hexToRGB(invalid) = %v", got)
	}
}

func TestRenderLineChart(t *testing.T) {
	if got := RenderLineChart(nil, 20, 5, ""); !strings.Contains(got, noData) {
		t.Errorf("empty chart = %q", got)
	}
	if got := RenderLineChart([]float64{10, 20, 30}, 20, 5, "5h used %"); !strings.Contains(got, "5h used %") {
		t.Errorf("chart missing caption: %q", got)
	}
}

func TestRenderWindowChart(t *testing.T) {
	tests := []struct {
		name      string
		primary   []float64
		secondary []float64
	}{
		{"both", []float64{10, 40, 70}, []float64{5, 6}},
		{"primary only", []float64{10, 40}, nil},
		{"secondary only", nil, []float64{5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderWindowChart(tt.primary, tt.secondary, 30, 5, "usage"); got == "" || strings.Contains(got, noData) {
				t.Errorf("RenderWindowChart() = %q", got)
			}
		})
	}
	if got := RenderWindowChart(nil, nil, 30, 5, ""); !strings.Contains(got, noData) {
		t.Errorf("empty chart = %q", got)
	}
}

func TestRenderHourlyHeatmap(t *testing.T) {
	got := ansi.Strip(RenderHourlyHeatmap([]models.HourlyPattern{
		{Hour: 9, AvgUsed: 80},
		{Hour: 14, AvgUsed: 20},
		{Hour: 30, AvgUsed: 99},
	}))
	if !strings.HasPrefix(got, "00 ") || !strings.HasSuffix(got, " 23") {
		t.Errorf("heatmap = %q", got)
	}
	if strings.Count(got, "█") != 1 {
		t.Errorf("expected a single peak cell in %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty values should render nothing")
	}
	got := RenderSparkline([]float64{0, 50, 100}, 10)
	if got != "▁▄█" {
		t.Errorf("RenderSparkline() = %q", got)
	}
	if n := len([]rune(RenderSparkline(make([]float64, 100), 10))); n != 10 {
		t.Errorf("sampled length = %d, want 10", n)
	}
}

func TestRenderLegend(t *testing.T) {
	got := ansi.Strip(RenderLegend([]LegendItem{
		{Label: "5h", Color: lipgloss.Color("208")},
		{Label: "Weekly", Color: lipgloss.Color("39")},
	}))
	if got != "■ 5h  ■ Weekly" {
		t.Errorf("RenderLegend() = %q", got)
	}
}
