// Package sequence provides domain contracts for per-tenant identifier numbering.
// Implementations live in the infrastructure layer.
package sequence

import "fmt"

// Kind identifies an independent counter family.
// Each kind is tracked separately per tenant per year.
type Kind string

const (
	// KindRegistration numbers patient registrations.
	KindRegistration Kind = "registration"

	// KindLab numbers laboratory orders.
	KindLab Kind = "lab"

	// KindInvoice numbers bills/invoices.
	KindInvoice Kind = "invoice"

	// KindPayment numbers payment receipts.
	KindPayment Kind = "payment"

	// KindBooking numbers admission bookings.
	KindBooking Kind = "booking"
)

// AllKinds lists every counter kind in a stable order.
var AllKinds = []Kind{KindRegistration, KindLab, KindInvoice, KindPayment, KindBooking}

// ParseKind validates a raw string and returns the matching Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown counter kind: %q", s)
}

// Valid reports whether k is a known counter kind.
func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}
