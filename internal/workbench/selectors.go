// Package workbench derives the views shown around the account list:
// filtering, sorting, summaries, switch safety and the activity feed.
package workbench

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

// AttentionThreshold is the remaining percentage at or below which an
// account needs attention.
const AttentionThreshold = 15.0

// Filter selects a subset of accounts.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterOAuth     Filter = "oauth"
	FilterImported  Filter = "imported"
	FilterAttention Filter = "attention"
)

var filters = []Filter{FilterAll, FilterOAuth, FilterImported, FilterAttention}

// Next returns the following filter, wrapping around.
func (f Filter) Next() Filter {
	return cycle(filters, f)
}

// Sort orders accounts.
type Sort string

const (
	SortRecent Sort = "recent"
	SortName   Sort = "name"
	SortUsage  Sort = "usage"
)

var sorts = []Sort{SortRecent, SortName, SortUsage}

// Next returns the following sort order, wrapping around.
func (s Sort) Next() Sort {
	return cycle(sorts, s)
}

func cycle[T comparable](all []T, cur T) T {
	i := slices.Index(all, cur)
	return all[(i+1)%len(all)]
}

// UsageRemaining returns the remaining primary window percentage.
func UsageRemaining(a models.AccountWithUsage) (float64, bool) {
	if a.Usage == nil || a.Usage.PrimaryUsedPercent == nil {
		return 0, false
	}
	return max(0, 100-*a.Usage.PrimaryUsedPercent), true
}

// NeedsAttention reports whether the account has a usage error or is
// nearly out of its primary window.
func NeedsAttention(a models.AccountWithUsage) bool {
	if a.Usage != nil && a.Usage.Error != "" {
		return true
	}
	remaining, ok := UsageRemaining(a)
	return ok && remaining <= AttentionThreshold
}

func matchesQuery(a models.AccountWithUsage, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Name), q) ||
		strings.Contains(strings.ToLower(a.Email), q)
}

func matchesFilter(a models.AccountWithUsage, f Filter) bool {
	switch f {
	case FilterOAuth:
		return a.AuthMode == models.AuthModeChatGPT
	case FilterImported:
		return a.AuthMode == models.AuthModeAPIKey
	case FilterAttention:
		return NeedsAttention(a)
	default:
		return true
	}
}

// FilterAndSort returns a new slice of the accounts matching query and
// filter, with the active account first and the rest ordered by sort.
func FilterAndSort(accounts []models.AccountWithUsage, query string, filter Filter, sort Sort) []models.AccountWithUsage {
	q := strings.ToLower(strings.TrimSpace(query))

	out := lo.Filter(accounts, func(a models.AccountWithUsage, _ int) bool {
		return matchesQuery(a, q) && matchesFilter(a, filter)
	})

	slices.SortStableFunc(out, func(l, r models.AccountWithUsage) int {
		if l.IsActive != r.IsActive {
			if l.IsActive {
				return -1
			}
			return 1
		}

		switch sort {
		case SortName:
			if c := cmp.Compare(strings.ToLower(l.Name), strings.ToLower(r.Name)); c != 0 {
				return c
			}
			return cmp.Compare(l.Name, r.Name)
		case SortUsage:
			lr, lok := UsageRemaining(l)
			rr, rok := UsageRemaining(r)
			switch {
			case !lok && !rok:
				return 0
			case !lok:
				return 1
			case !rok:
				return -1
			}
			return cmp.Compare(lr, rr)
		default:
			return cmp.Compare(lastUsed(r), lastUsed(l))
		}
	})

	return out
}

func lastUsed(a models.AccountWithUsage) int64 {
	if a.LastUsedAt == nil {
		return 0
	}
	return a.LastUsedAt.UnixMilli()
}

// Summary counts accounts by category.
type Summary struct {
	Total     int
	Attention int
	OAuth     int
	Imported  int
}

// Summarize counts accounts by category.
func Summarize(accounts []models.AccountWithUsage) Summary {
	return Summary{
		Total:     len(accounts),
		Attention: lo.CountBy(accounts, NeedsAttention),
		OAuth: lo.CountBy(accounts, func(a models.AccountWithUsage) bool {
			return a.AuthMode == models.AuthModeChatGPT
		}),
		Imported: lo.CountBy(accounts, func(a models.AccountWithUsage) bool {
			return a.AuthMode == models.AuthModeAPIKey
		}),
	}
}

// RelativeTime formats how long ago t was.
func RelativeTime(t, now time.Time) string {
	secs := int64(now.Sub(t) / time.Second)
	switch {
	case secs < 5:
		return "just now"
	case secs < 60:
		return fmt.Sprintf("%ds ago", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh ago", secs/3600)
	default:
		return fmt.Sprintf("%dd ago", secs/86400)
	}
}

// Tone classifies a status for rendering.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneSuccess
	ToneWarning
)

// Safety describes whether switching accounts is currently safe.
type Safety struct {
	Title string
	Text  string
	Tone  Tone
}

// Locked reports whether running processes block switching.
func (s Safety) Locked() bool {
	return s.Tone == ToneWarning
}

// SummarizeSafety describes the switch safety for the given process info.
// A nil info means no check has completed yet.
func SummarizeSafety(info *models.ProcessInfo) Safety {
	if info == nil {
		return Safety{
			Title: "Checking process safety",
			Text:  "Validating if Codex processes allow account switching.",
			Tone:  ToneNeutral,
		}
	}
	if info.Count > 0 {
		verb := "processes are"
		if info.Count == 1 {
			verb = "process is"
		}
		return Safety{
			Title: "Switching locked",
			Text:  fmt.Sprintf("%d Codex %s still running.", info.Count, verb),
			Tone:  ToneWarning,
		}
	}
	return Safety{
		Title: "Safe to switch",
		Text:  "No running Codex processes detected.",
		Tone:  ToneSuccess,
	}
}
