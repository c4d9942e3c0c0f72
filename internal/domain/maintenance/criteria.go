// Package maintenance implements administrative bulk repair of issued
// identifiers: cascade deletion of booking ranges, selective thinning,
// and transactional resequencing. Every operation is all-or-nothing:
// it either returns a full summary or leaves no trace.
package maintenance

import (
	"time"

	"clinicore/internal/core/apperror"
)

// PurgeCriteria selects root visits for cascade deletion.
type PurgeCriteria struct {
	// Start and End bound the booking date, inclusive.
	Start time.Time
	End   time.Time

	// Filter is an optional CEL expression evaluated per candidate
	// visit; only matching visits are deleted.
	Filter string
}

// Validate rejects malformed criteria before any transaction opens.
func (c PurgeCriteria) Validate() error {
	if c.Start.IsZero() || c.End.IsZero() {
		return apperror.NewInvalidRange("start and end dates are required")
	}
	if c.End.Before(c.Start) {
		return apperror.NewInvalidRange("end date is before start date").
			WithDetail("start", c.Start).
			WithDetail("end", c.End)
	}
	return nil
}

// ThinCriteria configures selective thinning: per calendar day in the
// range, a random keep-count is drawn within [MinKeep, MaxKeep] and only
// the excess beyond it is deleted, oldest bookings kept first.
type ThinCriteria struct {
	Start time.Time
	End   time.Time

	MinKeep int
	MaxKeep int

	// Filter is an optional CEL expression narrowing the candidate set.
	Filter string
}

// Validate rejects malformed criteria before any transaction opens.
func (c ThinCriteria) Validate() error {
	if err := (PurgeCriteria{Start: c.Start, End: c.End}).Validate(); err != nil {
		return err
	}
	if c.MinKeep < 1 {
		return apperror.NewInvalidRange("minimum keep-count must be at least 1").
			WithDetail("min_keep", c.MinKeep)
	}
	if c.MaxKeep < c.MinKeep {
		return apperror.NewInvalidRange("maximum keep-count is below minimum").
			WithDetail("min_keep", c.MinKeep).
			WithDetail("max_keep", c.MaxKeep)
	}
	return nil
}

// DeleteSummary reports what a cascade deletion removed.
type DeleteSummary struct {
	Visits   int `json:"visits"`
	Bills    int `json:"bills"`
	Payments int `json:"payments"`
	Patients int `json:"patients"`
}

// ResequenceSummary reports how many records a renumbering changed.
type ResequenceSummary struct {
	// Renumbered counts records whose identifier actually changed;
	// records already holding their final number are not counted.
	Renumbered int `json:"renumbered"`
}
