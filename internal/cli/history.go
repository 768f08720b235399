package cli

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/services"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/components"
	"github.com/j-veylop/codex-switcher-tui/internal/workbench"
)

const historySwitchLimit = 10

// projectionReport is a Projection without infinities, which JSON cannot
// encode. HoursLeft is omitted when usage is not growing.
type projectionReport struct {
	ExhaustsAt             *time.Time              `json:"exhausts_at,omitempty"`
	ResetsAt               *time.Time              `json:"resets_at,omitempty"`
	HoursLeft              *float64                `json:"hours_left,omitempty"`
	Status                 models.ProjectionStatus `json:"status"`
	Confidence             string                  `json:"confidence"`
	CurrentRemaining       float64                 `json:"current_remaining"`
	RatePerHour            float64                 `json:"rate_per_hour"`
	DataPoints             int                     `json:"data_points"`
	WillExhaustBeforeReset bool                    `json:"will_exhaust_before_reset"`
}

func newProjectionReport(p *models.Projection) *projectionReport {
	if p == nil {
		return nil
	}
	r := &projectionReport{
		Status:                 p.Status,
		Confidence:             p.Confidence,
		CurrentRemaining:       p.CurrentRemaining,
		RatePerHour:            p.RatePerHour,
		DataPoints:             p.DataPoints,
		WillExhaustBeforeReset: p.WillExhaustBeforeReset,
	}
	if !p.ExhaustsAt.IsZero() {
		r.ExhaustsAt = &p.ExhaustsAt
	}
	if !p.ResetsAt.IsZero() {
		r.ResetsAt = &p.ResetsAt
	}
	if !math.IsInf(p.HoursLeft, 0) && !math.IsNaN(p.HoursLeft) {
		r.HoursLeft = &p.HoursLeft
	}
	return r
}

// historyReport is the JSON shape of the history command.
type historyReport struct {
	Projection *projectionReport      `json:"projection,omitempty"`
	AccountID  string                 `json:"account_id"`
	Name       string                 `json:"name"`
	Range      string                 `json:"range"`
	Points     []models.UsagePoint    `json:"points"`
	Hourly     []models.HourlyPattern `json:"hourly,omitempty"`
	Switches   []models.SwitchRecord  `json:"switches,omitempty"`
}

func newHistoryCmd(opts *options) *cobra.Command {
	var rangeFlag string

	cmd := &cobra.Command{
		Use:   "history <account>",
		Short: "Show recorded usage and the 5h window projection",
		Long: `Show the usage readings recorded for an account, a chart of both windows
and an estimate of when the 5h window runs out.

Examples:
  cxs history work             # Last 7 days
  cxs history work --range 24h
  cxs history work --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := parseRange(rangeFlag)
			if err != nil {
				return err
			}
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				acc, err := lookupAccount(ctx, mgr, args[0])
				if err != nil {
					return err
				}

				h, err := mgr.GetAccountHistory(ctx, acc.ID, tr)
				if err != nil {
					return fmt.Errorf("failed to load history: %w", err)
				}
				switches, err := mgr.RecentSwitches(ctx, historySwitchLimit)
				if err != nil {
					return fmt.Errorf("failed to load switches: %w", err)
				}

				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), historyReport{
						AccountID:  acc.ID,
						Name:       acc.Name,
						Range:      tr.String(),
						Points:     h.Points,
						Hourly:     h.HourlyPatterns,
						Projection: newProjectionReport(h.Projection),
						Switches:   switches,
					})
				}
				printHistory(cmd, acc, tr, h, switches)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&rangeFlag, "range", "r", "7d", "24h, 7d, 30d or all")
	return cmd
}

func printHistory(cmd *cobra.Command, acc models.AccountWithUsage, tr models.TimeRange, h *models.AccountHistory, switches []models.SwitchRecord) {
	out := cmd.OutOrStdout()
	now := time.Now()

	fmt.Fprintf(out, "%s (%s)\n\n", acc.Name, tr)
	if !h.HasData() {
		fmt.Fprintln(out, "No usage recorded in this range yet.")
		return
	}

	fmt.Fprintf(out, "%d readings, %s → %s\n\n", len(h.Points),
		h.FirstDataPoint.Local().Format("Jan 2 15:04"),
		h.LastDataPoint.Local().Format("Jan 2 15:04"))
	fmt.Fprintln(out, components.RenderWindowChart(h.PrimarySeries(), h.SecondarySeries(), 60, 8,
		"Used % (5h window, weekly window)"))
	fmt.Fprintln(out)

	if p := h.Projection; p != nil {
		fmt.Fprintf(out, "Projection: %s (%s confidence)\n", p.Status, p.Confidence)
		fmt.Fprintf(out, "  Remaining: %.0f%%\n", p.CurrentRemaining)
		if p.RatePerHour > 0 {
			fmt.Fprintf(out, "  Rate: %.1f%%/h\n", p.RatePerHour)
		}
		if !p.ExhaustsAt.IsZero() {
			fmt.Fprintf(out, "  Runs out in: %s\n", models.FormatResetTime(p.ExhaustsAt, now))
		}
		if !p.ResetsAt.IsZero() {
			fmt.Fprintf(out, "  Resets in: %s\n", models.FormatResetTime(p.ResetsAt, now))
		}
		fmt.Fprintln(out)
	}

	if len(h.HourlyPatterns) > 0 {
		hour, avg := h.GetPeakHour()
		fmt.Fprintf(out, "Peak hour: %02d:00-%02d:00 (avg %.1f%% used)\n\n", hour, (hour+1)%24, avg)
	}

	if len(switches) > 0 {
		fmt.Fprintln(out, "Recent switches:")
		w := newTable(out)
		for _, s := range switches {
			name := s.AccountName
			if name == "" {
				name = s.AccountID
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\n", workbench.RelativeTime(s.SwitchedAt, now), name, s.Source)
		}
		_ = w.Flush()
	}
}
