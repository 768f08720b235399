package models

import (
	"fmt"
	"time"
)

// UsageSnapshot holds the rate-limit usage the backend reported for an account.
// Optional fields are pointers because the backend omits what it does not know.
// A snapshot is never mutated after it has been published to the store.
type UsageSnapshot struct {
	PrimaryUsedPercent     *float64 `json:"primary_used_percent,omitempty"`
	PrimaryWindowMinutes   *int64   `json:"primary_window_minutes,omitempty"`
	PrimaryResetsAt        *int64   `json:"primary_resets_at,omitempty"`
	SecondaryUsedPercent   *float64 `json:"secondary_used_percent,omitempty"`
	SecondaryWindowMinutes *int64   `json:"secondary_window_minutes,omitempty"`
	SecondaryResetsAt      *int64   `json:"secondary_resets_at,omitempty"`
	HasCredits             *bool    `json:"has_credits,omitempty"`
	UnlimitedCredits       *bool    `json:"unlimited_credits,omitempty"`
	AccountID              string   `json:"account_id"`
	PlanType               string   `json:"plan_type,omitempty"`
	CreditsBalance         string   `json:"credits_balance,omitempty"`
	Error                  string   `json:"error,omitempty"`
}

// UsageWindow is one rate-limit window (the 5h primary or weekly secondary).
type UsageWindow struct {
	ResetsAt      time.Time
	UsedPercent   float64
	WindowMinutes int64
}

// Remaining returns the remaining percentage of the window, clamped to [0, 100].
func (w UsageWindow) Remaining() float64 {
	return min(max(0, 100-w.UsedPercent), 100)
}

// Primary returns the primary window if the backend reported a used percentage.
func (u *UsageSnapshot) Primary() (UsageWindow, bool) {
	if u == nil || u.PrimaryUsedPercent == nil {
		return UsageWindow{}, false
	}
	return newWindow(*u.PrimaryUsedPercent, u.PrimaryWindowMinutes, u.PrimaryResetsAt), true
}

// Secondary returns the secondary window if the backend reported a used percentage.
func (u *UsageSnapshot) Secondary() (UsageWindow, bool) {
	if u == nil || u.SecondaryUsedPercent == nil {
		return UsageWindow{}, false
	}
	return newWindow(*u.SecondaryUsedPercent, u.SecondaryWindowMinutes, u.SecondaryResetsAt), true
}

func newWindow(used float64, minutes, resetsAt *int64) UsageWindow {
	w := UsageWindow{UsedPercent: used}
	if minutes != nil {
		w.WindowMinutes = *minutes
	}
	if resetsAt != nil && *resetsAt > 0 {
		w.ResetsAt = time.Unix(*resetsAt, 0)
	}
	return w
}

// CreditsLabel describes the credit state, or "" when nothing is known.
func (u *UsageSnapshot) CreditsLabel() string {
	if u == nil {
		return ""
	}
	if u.UnlimitedCredits != nil && *u.UnlimitedCredits {
		return "unlimited credits"
	}
	if u.CreditsBalance != "" {
		return u.CreditsBalance + " credits"
	}
	if u.HasCredits != nil && !*u.HasCredits {
		return "no credits"
	}
	return ""
}

// FormatResetTime renders the time until resetsAt as "now", "42s", "17m",
// "3h 5m" or "2d 4h". A zero resetsAt renders as "".
func FormatResetTime(resetsAt, now time.Time) string {
	if resetsAt.IsZero() {
		return ""
	}

	diff := int64(resetsAt.Sub(now) / time.Second)
	switch {
	case diff <= 0:
		return "now"
	case diff < 60:
		return fmt.Sprintf("%ds", diff)
	case diff < 3600:
		return fmt.Sprintf("%dm", diff/60)
	}

	hours := diff / 3600
	minutes := (diff % 3600) / 60
	if hours < 24 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	dayHours := hours % 24
	if dayHours > 0 {
		return fmt.Sprintf("%dd %dh", days, dayHours)
	}
	return fmt.Sprintf("%dd", days)
}

// FormatWindowDuration renders a window length in minutes as "45m", "5h" or "7d".
func FormatWindowDuration(minutes int64) string {
	switch {
	case minutes <= 0:
		return ""
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%dh", minutes/60)
	default:
		return fmt.Sprintf("%dd", minutes/(24*60))
	}
}

// UsageTone classifies a remaining percentage for display.
type UsageTone int

const (
	// ToneHealthy means more than 30% remains.
	ToneHealthy UsageTone = iota
	// ToneWarning means 30% or less remains.
	ToneWarning
	// ToneDanger means 10% or less remains.
	ToneDanger
)

// ToneFor returns the display tone for a remaining percentage.
func ToneFor(remaining float64) UsageTone {
	switch {
	case remaining <= 10:
		return ToneDanger
	case remaining <= 30:
		return ToneWarning
	default:
		return ToneHealthy
	}
}
