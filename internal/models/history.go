package models

import "time"

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows all available historical data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Since returns the lower bound of the range relative to now.
// The zero time is returned for TimeRangeAllTime.
func (t TimeRange) Since(now time.Time) time.Time {
	days := t.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -days)
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// UsagePoint is one recorded usage reading for an account.
type UsagePoint struct {
	RecordedAt           time.Time `json:"recorded_at"`
	PrimaryResetsAt      time.Time `json:"primary_resets_at"`
	PrimaryUsedPercent   float64   `json:"primary_used_percent"`
	SecondaryUsedPercent float64   `json:"secondary_used_percent"`
	HasPrimary           bool      `json:"has_primary"`
	HasSecondary         bool      `json:"has_secondary"`
}

// HourlyPattern is the average primary usage observed in one hour of day.
type HourlyPattern struct {
	Hour        int     `json:"hour"`     // 0-23
	AvgUsed     float64 `json:"avg_used"` // average primary used percent in this slot
	Occurrences int     `json:"occurrences"`
}

// AccountHistory contains the recorded usage of a single account.
type AccountHistory struct {
	FirstDataPoint time.Time
	LastDataPoint  time.Time
	Projection     *Projection
	AccountID      string
	Points         []UsagePoint
	HourlyPatterns []HourlyPattern
	TimeRange      TimeRange
}

// HasData returns true if the account has any recorded points.
func (a *AccountHistory) HasData() bool {
	return a != nil && len(a.Points) > 0
}

// PrimarySeries returns the primary used percentages in recording order.
func (a *AccountHistory) PrimarySeries() []float64 {
	out := make([]float64, 0, len(a.Points))
	for _, p := range a.Points {
		if p.HasPrimary {
			out = append(out, p.PrimaryUsedPercent)
		}
	}
	return out
}

// SecondarySeries returns the secondary used percentages in recording order.
func (a *AccountHistory) SecondarySeries() []float64 {
	out := make([]float64, 0, len(a.Points))
	for _, p := range a.Points {
		if p.HasSecondary {
			out = append(out, p.SecondaryUsedPercent)
		}
	}
	return out
}

// GetPeakHour returns the hour with highest average usage.
func (a *AccountHistory) GetPeakHour() (peakHour int, peakVal float64) {
	for _, p := range a.HourlyPatterns {
		if p.AvgUsed > peakVal {
			peakVal = p.AvgUsed
			peakHour = p.Hour
		}
	}
	return peakHour, peakVal
}

// SwitchRecord is one recorded change of the active account.
type SwitchRecord struct {
	SwitchedAt  time.Time `json:"switched_at"`
	AccountID   string    `json:"account_id"`
	AccountName string    `json:"account_name,omitempty"`
	Source      string    `json:"source"` // "switch", "login" or "reconnect"
}
