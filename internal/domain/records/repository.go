package records

import (
	"context"
	"time"

	"clinicore/internal/core/id"
	"clinicore/internal/core/sequence"
)

// PatientRepo persists patients.
type PatientRepo interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, patientID id.ID) (*Patient, error)
	DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error)
}

// VisitRepo persists outpatient bookings.
type VisitRepo interface {
	Create(ctx context.Context, v *Visit) error
	// ListByDateRange returns visits with booking date in [start, end],
	// ordered by booking date then day serial.
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Visit, error)
	// NextDaySerial returns the next per-day ordinal for a booking date.
	NextDaySerial(ctx context.Context, bookingDate time.Time) (int, error)
	AttachBill(ctx context.Context, visitID, billID id.ID) error
	DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error)
	// CountByPatients returns remaining visit counts per patient.
	// Patients absent from the result have zero visits.
	CountByPatients(ctx context.Context, patientIDs []id.ID) (map[id.ID]int, error)
}

// LabOrderRepo persists lab orders.
type LabOrderRepo interface {
	Create(ctx context.Context, o *LabOrder) error
}

// BillRepo persists bills.
type BillRepo interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, billID id.ID) (*Bill, error)
	// ListIDsByVisitIDs returns ids of bills attached to any of the visits.
	ListIDsByVisitIDs(ctx context.Context, visitIDs []id.ID) ([]id.ID, error)
	DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error)
}

// PaymentRepo persists payments.
type PaymentRepo interface {
	Create(ctx context.Context, p *Payment) error
	ListIDsByBillIDs(ctx context.Context, billIDs []id.ID) ([]id.ID, error)
	DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error)
}

// AdmissionRepo persists admissions.
type AdmissionRepo interface {
	Create(ctx context.Context, a *Admission) error
	CountByPatients(ctx context.Context, patientIDs []id.ID) (map[id.ID]int, error)
}

// IdentifierRow is one record's identity as seen by the resequencer.
type IdentifierRow struct {
	ID         id.ID     `db:"id"`
	Identifier string    `db:"identifier"`
	CreatedAt  time.Time `db:"created_at"`
}

// IdentifierStore gives the resequencing engine uniform access to every
// identifier-bearing collection, driven by the record graph.
type IdentifierStore interface {
	// ListIdentifiers returns all rows owning identifiers of the kind
	// created in the given year, ordered by creation time ascending.
	// That ordering is the authoritative sequence; ties break on id,
	// which is time-ordered itself.
	ListIdentifiers(ctx context.Context, kind sequence.Kind, year int) ([]IdentifierRow, error)

	// RenamePrimary rewrites the owning column using the old-to-new map.
	RenamePrimary(ctx context.Context, kind sequence.Kind, renames map[string]string) (int64, error)

	// Propagate rewrites one denormalized-copy column using the same map.
	Propagate(ctx context.Context, target Target, renames map[string]string) (int64, error)
}
