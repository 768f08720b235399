package models

import (
	"testing"
	"time"
)

func TestTimeRange_String(t *testing.T) {
	tests := []struct {
		tr   TimeRange
		want string
	}{
		{TimeRange24Hours, "24 Hours"},
		{TimeRange7Days, "7 Days"},
		{TimeRange30Days, "30 Days"},
		{TimeRangeAllTime, "All Time"},
		{TimeRange(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.tr.String(); got != tt.want {
			t.Errorf("TimeRange(%d).String() = %q, want %q", tt.tr, got, tt.want)
		}
	}
}

func TestTimeRange_NextCycles(t *testing.T) {
	tr := TimeRange24Hours
	seen := map[TimeRange]bool{}
	for range 4 {
		seen[tr] = true
		tr = tr.Next()
	}
	if tr != TimeRange24Hours {
		t.Errorf("Next() did not cycle back, got %v", tr)
	}
	if len(seen) != 4 {
		t.Errorf("visited %d ranges, want 4", len(seen))
	}
}

func TestTimeRange_Since(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	if got := TimeRange7Days.Since(now); !got.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("Since() = %v", got)
	}
	if got := TimeRangeAllTime.Since(now); !got.IsZero() {
		t.Errorf("Since() for all time = %v, want zero", got)
	}
}

func TestAccountHistory_Series(t *testing.T) {
	h := &AccountHistory{
		Points: []UsagePoint{
			{PrimaryUsedPercent: 10, HasPrimary: true},
			{SecondaryUsedPercent: 4, HasSecondary: true},
			{PrimaryUsedPercent: 20, HasPrimary: true, SecondaryUsedPercent: 5, HasSecondary: true},
		},
	}

	if !h.HasData() {
		t.Fatal("HasData() = false")
	}
	if got := h.PrimarySeries(); len(got) != 2 || got[1] != 20 {
		t.Errorf("PrimarySeries() = %v", got)
	}
	if got := h.SecondarySeries(); len(got) != 2 || got[0] != 4 {
		t.Errorf("SecondarySeries() = %v", got)
	}

	var empty *AccountHistory
	if empty.HasData() {
		t.Error("nil history should have no data")
	}
}

func TestAccountHistory_GetPeakHour(t *testing.T) {
	h := &AccountHistory{HourlyPatterns: []HourlyPattern{
		{Hour: 9, AvgUsed: 12},
		{Hour: 14, AvgUsed: 40},
		{Hour: 20, AvgUsed: 8},
	}}

	hour, val := h.GetPeakHour()
	if hour != 14 || val != 40 {
		t.Errorf("GetPeakHour() = (%d, %v), want (14, 40)", hour, val)
	}
}
