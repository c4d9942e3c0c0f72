package maintenance

import (
	"context"

	"clinicore/internal/core/sequence"
)

// JournalEntry describes one completed maintenance operation.
// RenameMap is only set by resequencing and may be large; the storage
// implementation compresses it.
type JournalEntry struct {
	Operation string
	Kind      sequence.Kind
	Year      int
	Summary   map[string]any
	RenameMap map[string]string
}

// Journal records maintenance operations for later inspection.
// Entries are written inside the operation's transaction, so a rolled
// back operation leaves no journal trace either.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
}
