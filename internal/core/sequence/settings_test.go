package sequence

import "testing"

func TestFormat_YearSuffix(t *testing.T) {
	s := Settings{Prefix: "INV", UseYearSuffix: true}

	got := Format(KindInvoice, s, 2024, 17)
	if got != "INV/24/17" {
		t.Errorf("expected INV/24/17, got %s", got)
	}
}

func TestFormat_FullYear(t *testing.T) {
	s := Settings{Prefix: "INV", UseYearSuffix: false}

	got := Format(KindInvoice, s, 2024, 1)
	if got != "INV/2024/1" {
		t.Errorf("expected INV/2024/1, got %s", got)
	}
}

func TestFormat_RegistrationIgnoresConfiguredPrefix(t *testing.T) {
	// Registration numbers always carry the fixed literal segment,
	// regardless of what is stored on the counter.
	s := Settings{Prefix: "REG", UseYearSuffix: true}

	got := Format(KindRegistration, s, 2024, 3)
	if got != "U/24/3" {
		t.Errorf("expected U/24/3, got %s", got)
	}
}

func TestFormat_NoPadding(t *testing.T) {
	s := Settings{Prefix: "LAB", UseYearSuffix: true}

	got := Format(KindLab, s, 2026, 12345)
	if got != "LAB/26/12345" {
		t.Errorf("expected LAB/26/12345, got %s", got)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds {
		parsed, err := ParseKind(string(k))
		if err != nil {
			t.Fatalf("ParseKind(%s): %v", k, err)
		}
		if parsed != k {
			t.Errorf("ParseKind(%s) = %s", k, parsed)
		}
	}

	if _, err := ParseKind("visits"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestMockAllocator_Sequence(t *testing.T) {
	m := NewMockAllocator()
	ctx := t.Context()

	peek, _ := m.PeekNext(ctx, KindInvoice, 2024)
	next, _ := m.Next(ctx, KindInvoice, 2024)
	if peek != next {
		t.Errorf("peek %s != next %s", peek, next)
	}

	second, _ := m.Next(ctx, KindInvoice, 2024)
	if second != "INV/24/2" {
		t.Errorf("expected INV/24/2, got %s", second)
	}
}
