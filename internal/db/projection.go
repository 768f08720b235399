package db

import (
	"math"
	"time"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

const (
	lowConfThreshold = 6
	medConfThreshold = 24

	// resetTolerance absorbs jitter in the reported reset time of one window.
	resetTolerance = 5 * time.Minute
)

// ProjectExhaustion estimates when the primary window runs out, using the
// readings of the current reset cycle. points must be ordered oldest first.
func ProjectExhaustion(points []models.UsagePoint, now time.Time) models.Projection {
	proj := models.Projection{
		Status:     models.ProjectionUnknown,
		Confidence: "low",
		HoursLeft:  math.Inf(1),
	}

	cycle := currentCycle(points)
	if len(cycle) == 0 {
		return proj
	}

	first, last := cycle[0], cycle[len(cycle)-1]
	proj.DataPoints = len(cycle)
	proj.CurrentRemaining = math.Max(0, 100-last.PrimaryUsedPercent)
	proj.ResetsAt = last.PrimaryResetsAt

	switch {
	case proj.DataPoints < lowConfThreshold:
		proj.Confidence = "low"
	case proj.DataPoints < medConfThreshold:
		proj.Confidence = "medium"
	default:
		proj.Confidence = "high"
	}

	if len(cycle) < 2 {
		return proj
	}

	hours := last.RecordedAt.Sub(first.RecordedAt).Hours()
	if hours <= 0 {
		return proj
	}

	proj.RatePerHour = (last.PrimaryUsedPercent - first.PrimaryUsedPercent) / hours
	if proj.RatePerHour <= 0 {
		proj.RatePerHour = 0
		proj.Status = models.ProjectionSafe
		return proj
	}

	proj.HoursLeft = proj.CurrentRemaining / proj.RatePerHour
	proj.ExhaustsAt = now.Add(time.Duration(proj.HoursLeft * float64(time.Hour)))

	if proj.ResetsAt.IsZero() {
		return proj
	}

	untilReset := math.Max(0, proj.ResetsAt.Sub(now).Hours())
	proj.WillExhaustBeforeReset = proj.CurrentRemaining < proj.RatePerHour*untilReset

	switch {
	case proj.WillExhaustBeforeReset && proj.HoursLeft < 1:
		proj.Status = models.ProjectionCritical
	case proj.WillExhaustBeforeReset:
		proj.Status = models.ProjectionWarning
	default:
		proj.Status = models.ProjectionSafe
	}

	return proj
}

// currentCycle returns the trailing readings that belong to the latest
// primary window: same reset time, and usage never decreasing.
func currentCycle(points []models.UsagePoint) []models.UsagePoint {
	end := -1
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].HasPrimary {
			end = i
			break
		}
	}
	if end < 0 {
		return nil
	}

	start := end
	next := points[end]
	for i := end - 1; i >= 0; i-- {
		p := points[i]
		if !p.HasPrimary {
			continue
		}
		if p.PrimaryUsedPercent > next.PrimaryUsedPercent {
			break
		}
		if !p.PrimaryResetsAt.IsZero() && !next.PrimaryResetsAt.IsZero() &&
			absDuration(p.PrimaryResetsAt.Sub(next.PrimaryResetsAt)) > resetTolerance {
			break
		}
		start = i
		next = p
	}

	cycle := make([]models.UsagePoint, 0, end-start+1)
	for _, p := range points[start : end+1] {
		if p.HasPrimary {
			cycle = append(cycle, p)
		}
	}
	return cycle
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
