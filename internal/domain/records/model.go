// Package records defines the identifier-bearing clinical/billing record
// types and describes how issued identifiers flow between them.
package records

import (
	"time"

	"github.com/shopspring/decimal"

	"clinicore/internal/core/id"
)

// Patient is the registration root. RegistrationNumber is issued once at
// creation and copied into every dependent record for display.
type Patient struct {
	ID                 id.ID     `db:"id"`
	TenantID           id.ID     `db:"tenant_id"`
	RegistrationNumber string    `db:"registration_number"`
	FullName           string    `db:"full_name"`
	Phone              string    `db:"phone"`
	CreatedAt          time.Time `db:"created_at"`
}

// Visit is one outpatient booking. DaySerial is the per-day ordinal within
// the tenant, used by selective thinning to keep the oldest bookings.
type Visit struct {
	ID                 id.ID     `db:"id"`
	TenantID           id.ID     `db:"tenant_id"`
	PatientID          id.ID     `db:"patient_id"`
	RegistrationNumber string    `db:"registration_number"`
	BookingDate        time.Time `db:"booking_date"`
	DaySerial          int       `db:"day_serial"`
	Department         string    `db:"department"`
	BillID             *id.ID    `db:"bill_id"`
	CreatedAt          time.Time `db:"created_at"`
}

// LabOrder carries a lab number and the patient's registration number.
type LabOrder struct {
	ID                 id.ID     `db:"id"`
	TenantID           id.ID     `db:"tenant_id"`
	PatientID          id.ID     `db:"patient_id"`
	LabNumber          string    `db:"lab_number"`
	RegistrationNumber string    `db:"registration_number"`
	TestName           string    `db:"test_name"`
	CreatedAt          time.Time `db:"created_at"`
}

// Bill carries the invoice number and a denormalized patient snapshot
// taken at billing time.
type Bill struct {
	ID         id.ID  `db:"id"`
	TenantID   id.ID  `db:"tenant_id"`
	VisitID    *id.ID `db:"visit_id"`
	BillNumber string `db:"bill_number"`

	// Patient snapshot
	PatientID                 id.ID  `db:"patient_id"`
	PatientRegistrationNumber string `db:"patient_registration_number"`
	PatientName               string `db:"patient_name"`

	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"created_at"`
}

// Payment records money received against a bill. InvoiceNumber is a
// free-text copy of the bill's number, kept for receipts and lookups.
type Payment struct {
	ID            id.ID           `db:"id"`
	TenantID      id.ID           `db:"tenant_id"`
	BillID        id.ID           `db:"bill_id"`
	PaymentNumber string          `db:"payment_number"`
	InvoiceNumber string          `db:"invoice_number"`
	Amount        decimal.Decimal `db:"amount"`
	Method        string          `db:"method"`
	Reference     string          `db:"reference"`
	CreatedAt     time.Time       `db:"created_at"`
}

// Admission is one inpatient booking.
type Admission struct {
	ID                 id.ID     `db:"id"`
	TenantID           id.ID     `db:"tenant_id"`
	PatientID          id.ID     `db:"patient_id"`
	BookingNumber      string    `db:"booking_number"`
	RegistrationNumber string    `db:"registration_number"`
	Ward               string    `db:"ward"`
	AdmittedAt         time.Time `db:"admitted_at"`
	CreatedAt          time.Time `db:"created_at"`
}
