package sequence

import "fmt"

// RegistrationPrefix is the fixed prefix segment for registration numbers.
// Registration counters ignore the configured prefix and always format with
// this literal, while every other kind uses its stored prefix.
const RegistrationPrefix = "U"

// Settings holds the formatting configuration of one counter.
type Settings struct {
	// Prefix is the leading segment of issued identifiers (e.g., "INV").
	Prefix string `json:"prefix"`

	// UseYearSuffix selects the 2-digit year remainder as the middle
	// segment; otherwise the full 4-digit year is used.
	UseYearSuffix bool `json:"use_year_suffix"`
}

// DefaultSettings returns the built-in configuration for a kind.
// Tenants may override these via their settings document.
func DefaultSettings(kind Kind) Settings {
	switch kind {
	case KindRegistration:
		return Settings{Prefix: RegistrationPrefix, UseYearSuffix: true}
	case KindLab:
		return Settings{Prefix: "LAB", UseYearSuffix: true}
	case KindInvoice:
		return Settings{Prefix: "INV", UseYearSuffix: true}
	case KindPayment:
		return Settings{Prefix: "PAY", UseYearSuffix: true}
	case KindBooking:
		return Settings{Prefix: "ADM", UseYearSuffix: true}
	default:
		return Settings{Prefix: string(kind), UseYearSuffix: true}
	}
}

// Format renders the identifier for one counter value.
// Pattern: PREFIX/YY/N or PREFIX/YYYY/N, value unpadded.
func Format(kind Kind, s Settings, year int, value int64) string {
	prefix := s.Prefix
	if kind == KindRegistration {
		prefix = RegistrationPrefix
	}
	if s.UseYearSuffix {
		return fmt.Sprintf("%s/%02d/%d", prefix, year%100, value)
	}
	return fmt.Sprintf("%s/%04d/%d", prefix, year, value)
}
