package records

import "clinicore/internal/core/sequence"

// Target names one table column that stores identifiers of a given kind.
type Target struct {
	Table  string
	Column string
}

// primaryByKind maps each counter kind to the column that owns the
// identifier: the one written at creation time.
var primaryByKind = map[sequence.Kind]Target{
	sequence.KindRegistration: {Table: "patients", Column: "registration_number"},
	sequence.KindLab:          {Table: "lab_orders", Column: "lab_number"},
	sequence.KindInvoice:      {Table: "bills", Column: "bill_number"},
	sequence.KindPayment:      {Table: "payments", Column: "payment_number"},
	sequence.KindBooking:      {Table: "admissions", Column: "booking_number"},
}

// propagationByKind maps each kind to every column holding a denormalized
// copy of that identifier. Renumbering must rewrite all of them.
//
// Extend this list whenever a new record type gains a denormalized copy
// of an identifier; the resequencing engine walks it blindly.
var propagationByKind = map[sequence.Kind][]Target{
	sequence.KindRegistration: {
		{Table: "visits", Column: "registration_number"},
		{Table: "lab_orders", Column: "registration_number"},
		{Table: "admissions", Column: "registration_number"},
		{Table: "bills", Column: "patient_registration_number"},
	},
	sequence.KindInvoice: {
		{Table: "payments", Column: "invoice_number"},
	},
}

// Primary returns the owning column for a kind.
func Primary(kind sequence.Kind) (Target, bool) {
	t, ok := primaryByKind[kind]
	return t, ok
}

// Propagation returns the denormalized-copy columns for a kind.
// The returned slice must not be mutated.
func Propagation(kind sequence.Kind) []Target {
	return propagationByKind[kind]
}
