package sequence

import "context"

// Allocator issues human-readable sequential identifiers, keyed by
// (tenant, kind, year). The tenant is taken from the request context.
//
// Implementations must guarantee that two concurrent Next calls for the
// same key never observe the same counter value. Next is not idempotent
// and must not be retried on ambiguous failure.
type Allocator interface {
	// Next atomically increments the counter and returns the formatted
	// identifier. A missing counter row is created with the tenant's
	// configured defaults and starts at 1, in the same atomic step.
	Next(ctx context.Context, kind Kind, year int) (string, error)

	// PeekNext returns what the next Next call would produce without
	// mutating state. A missing counter is treated as zero.
	PeekNext(ctx context.Context, kind Kind, year int) (string, error)

	// ResetTo sets the counter's high-water mark and, when settings is
	// non-nil, its formatting configuration. Used after bulk
	// renumbering and by administrative settings editing.
	ResetTo(ctx context.Context, kind Kind, year int, value int64, settings *Settings) error

	// CurrentSettings returns the counter's stored configuration, or
	// the tenant defaults when no counter row exists yet.
	CurrentSettings(ctx context.Context, kind Kind, year int) (Settings, error)
}
