package dto

import (
	"time"

	"clinicore/internal/domain/maintenance"
)

// PurgeRequest selects a booking range for cascade deletion.
type PurgeRequest struct {
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
	Filter string    `json:"filter"`
}

// ThinRequest configures selective thinning of a booking range.
type ThinRequest struct {
	Start   time.Time `json:"start" binding:"required"`
	End     time.Time `json:"end" binding:"required"`
	MinKeep int       `json:"minKeep" binding:"required"`
	MaxKeep int       `json:"maxKeep" binding:"required"`
	Filter  string    `json:"filter"`
}

// ResequenceRequest renumbers one counter's records.
type ResequenceRequest struct {
	Kind string `json:"kind" binding:"required"`
	Year int    `json:"year" binding:"required"`
}

// DeleteSummaryResponse reports what a cascade deletion removed.
type DeleteSummaryResponse struct {
	Visits   int `json:"visits"`
	Bills    int `json:"bills"`
	Payments int `json:"payments"`
	Patients int `json:"patients"`
}

func FromDeleteSummary(s maintenance.DeleteSummary) DeleteSummaryResponse {
	return DeleteSummaryResponse(s)
}

// ResequenceSummaryResponse reports a renumbering result.
type ResequenceSummaryResponse struct {
	Renumbered int `json:"renumbered"`
}

// SequenceStateResponse describes a counter's current position.
type SequenceStateResponse struct {
	Kind          string `json:"kind"`
	Year          int    `json:"year"`
	NextNumber    string `json:"nextNumber"`
	Prefix        string `json:"prefix"`
	UseYearSuffix bool   `json:"useYearSuffix"`
}

// ResetSequenceRequest moves a counter's high-water mark and optionally
// replaces its formatting.
type ResetSequenceRequest struct {
	Value         int64   `json:"value"`
	Prefix        *string `json:"prefix"`
	UseYearSuffix *bool   `json:"useYearSuffix"`
}
