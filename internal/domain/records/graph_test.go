package records

import (
	"testing"

	"clinicore/internal/core/sequence"
)

func TestPrimary_AllKindsMapped(t *testing.T) {
	for _, kind := range sequence.AllKinds {
		target, ok := Primary(kind)
		if !ok {
			t.Errorf("kind %s has no primary target", kind)
			continue
		}
		if target.Table == "" || target.Column == "" {
			t.Errorf("kind %s has empty target: %+v", kind, target)
		}
	}
}

func TestPropagation_Registration(t *testing.T) {
	targets := Propagation(sequence.KindRegistration)

	want := map[Target]bool{
		{Table: "visits", Column: "registration_number"}:       true,
		{Table: "lab_orders", Column: "registration_number"}:   true,
		{Table: "admissions", Column: "registration_number"}:   true,
		{Table: "bills", Column: "patient_registration_number"}: true,
	}

	if len(targets) != len(want) {
		t.Fatalf("expected %d targets, got %d: %v", len(want), len(targets), targets)
	}
	for _, tg := range targets {
		if !want[tg] {
			t.Errorf("unexpected propagation target %+v", tg)
		}
	}
}

func TestPropagation_Invoice(t *testing.T) {
	targets := Propagation(sequence.KindInvoice)

	if len(targets) != 1 {
		t.Fatalf("expected 1 target, got %v", targets)
	}
	if targets[0] != (Target{Table: "payments", Column: "invoice_number"}) {
		t.Errorf("unexpected target %+v", targets[0])
	}
}

func TestPropagation_KindsWithoutCopies(t *testing.T) {
	for _, kind := range []sequence.Kind{sequence.KindLab, sequence.KindPayment, sequence.KindBooking} {
		if targets := Propagation(kind); len(targets) != 0 {
			t.Errorf("kind %s should have no propagation targets, got %v", kind, targets)
		}
	}
}
