package models

import "time"

// ProjectionStatus indicates urgency level for usage exhaustion.
type ProjectionStatus string

const (
	ProjectionSafe     ProjectionStatus = "SAFE"
	ProjectionWarning  ProjectionStatus = "WARNING"
	ProjectionCritical ProjectionStatus = "CRITICAL"
	ProjectionUnknown  ProjectionStatus = "UNKNOWN"
)

// Projection estimates when the primary window of an account runs out.
type Projection struct {
	ExhaustsAt             time.Time
	ResetsAt               time.Time
	Status                 ProjectionStatus
	Confidence             string  // "low", "medium", "high"
	CurrentRemaining       float64 // percent
	RatePerHour            float64 // percent consumed per hour
	HoursLeft              float64
	DataPoints             int
	WillExhaustBeforeReset bool
}
