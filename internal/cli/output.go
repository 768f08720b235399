package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/services/accounts"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// resolveAccount finds an account by id, or by case-insensitive name.
func resolveAccount(list []models.AccountWithUsage, ref string) (models.AccountWithUsage, error) {
	if acc, ok := lo.Find(list, func(a models.AccountWithUsage) bool { return a.ID == ref }); ok {
		return acc, nil
	}
	matches := lo.Filter(list, func(a models.AccountWithUsage, _ int) bool {
		return strings.EqualFold(a.Name, ref)
	})
	switch len(matches) {
	case 0:
		return models.AccountWithUsage{}, fmt.Errorf("%q: %w", ref, accounts.ErrAccountNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.AccountWithUsage{}, fmt.Errorf("%q matches %d accounts, use the id", ref, len(matches))
	}
}

// parseRange parses a history range flag.
func parseRange(s string) (models.TimeRange, error) {
	switch strings.ToLower(s) {
	case "24h", "1d", "day":
		return models.TimeRange24Hours, nil
	case "7d", "week":
		return models.TimeRange7Days, nil
	case "30d", "month":
		return models.TimeRange30Days, nil
	case "all":
		return models.TimeRangeAllTime, nil
	}
	return 0, fmt.Errorf("invalid range %q (want 24h, 7d, 30d or all)", s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// windowCell renders a window as "62% left, resets in 3h 5m".
func windowCell(w models.UsageWindow, ok bool, now time.Time) string {
	if !ok {
		return "-"
	}
	cell := fmt.Sprintf("%.0f%% left", w.Remaining())
	if reset := models.FormatResetTime(w.ResetsAt, now); reset != "" {
		cell += ", resets in " + reset
	}
	return cell
}
