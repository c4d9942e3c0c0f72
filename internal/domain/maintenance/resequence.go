package maintenance

import (
	"context"
	"fmt"

	"clinicore/internal/core/apperror"
	"clinicore/internal/core/sequence"
	"clinicore/internal/core/tenant"
	"clinicore/internal/core/tx"
	"clinicore/internal/domain/records"
	"clinicore/pkg/logger"
)

// ResequenceEngine closes the gaps a cascade deletion leaves behind.
// For one (kind, year) it renumbers the surviving records 1..N in
// creation order, rewrites every denormalized copy of the renamed
// identifiers, and resets the counter to N, all in one transaction.
//
// Running it on an already gap-free year rewrites nothing and is safe.
type ResequenceEngine struct {
	store     records.IdentifierStore
	counters  sequence.Allocator
	journal   Journal
	txManager tx.Manager
	log       *logger.Logger
}

func NewResequenceEngine(
	store records.IdentifierStore,
	counters sequence.Allocator,
	journal Journal,
	txManager tx.Manager,
	log *logger.Logger,
) *ResequenceEngine {
	return &ResequenceEngine{
		store:     store,
		counters:  counters,
		journal:   journal,
		txManager: txManager,
		log:       log,
	}
}

// Resequence renumbers all records of the kind created in the given year.
// A year with no records is a successful no-op; the counter is left alone.
func (e *ResequenceEngine) Resequence(ctx context.Context, kind sequence.Kind, year int) (ResequenceSummary, error) {
	var summary ResequenceSummary

	if !kind.Valid() {
		return summary, apperror.NewValidation("unknown counter kind").
			WithDetail("kind", string(kind))
	}
	if year < 1900 || year > 2200 {
		return summary, apperror.NewInvalidRange("year out of range").
			WithDetail("year", year)
	}

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.lock(ctx, kind, year); err != nil {
			return err
		}

		settings, err := e.counters.CurrentSettings(ctx, kind, year)
		if err != nil {
			return err
		}

		rows, err := e.store.ListIdentifiers(ctx, kind, year)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		renames := buildRenames(kind, settings, year, rows)
		if len(renames) > 0 {
			if err := e.applyRenames(ctx, kind, renames); err != nil {
				return err
			}
		}

		if err := e.counters.ResetTo(ctx, kind, year, int64(len(rows)), nil); err != nil {
			return err
		}

		summary.Renumbered = len(renames)
		return e.record(ctx, kind, year, summary, renames)
	})
	if err != nil {
		return ResequenceSummary{}, apperror.NewTransactionAborted("resequence", err).
			WithDetail("kind", string(kind)).
			WithDetail("year", year)
	}

	e.log.WithContext(ctx).Infow("resequence completed",
		"kind", string(kind),
		"year", year,
		"renumbered", summary.Renumbered,
	)
	return summary, nil
}

// buildRenames maps each surviving identifier to its final form, skipping
// records that already hold their final number.
func buildRenames(kind sequence.Kind, s sequence.Settings, year int, rows []records.IdentifierRow) map[string]string {
	renames := make(map[string]string)
	for i, row := range rows {
		next := sequence.Format(kind, s, year, int64(i+1))
		if row.Identifier == next || row.Identifier == "" {
			continue
		}
		renames[row.Identifier] = next
	}
	return renames
}

// applyRenames rewrites the owning column and then every denormalized
// copy listed in the record graph.
func (e *ResequenceEngine) applyRenames(ctx context.Context, kind sequence.Kind, renames map[string]string) error {
	if _, err := e.store.RenamePrimary(ctx, kind, renames); err != nil {
		return fmt.Errorf("rename primary identifiers: %w", err)
	}
	for _, target := range records.Propagation(kind) {
		if _, err := e.store.Propagate(ctx, target, renames); err != nil {
			return fmt.Errorf("propagate renames to %s.%s: %w", target.Table, target.Column, err)
		}
	}
	return nil
}

// lock takes the tenant-wide maintenance lock, then the per-counter one.
// The tenant lock serializes resequencing against cascade deletion; the
// counter lock documents which key is being rewritten.
func (e *ResequenceEngine) lock(ctx context.Context, kind sequence.Kind, year int) error {
	locker, ok := e.txManager.(tx.AdvisoryLocker)
	if !ok {
		return nil
	}
	tid := tenant.MustGetTenantID(ctx)
	if err := locker.AdvisoryXactLock(ctx, "maintenance:"+tid); err != nil {
		return err
	}
	return locker.AdvisoryXactLock(ctx, fmt.Sprintf("resequence:%s:%s:%d", tid, kind, year))
}

func (e *ResequenceEngine) record(ctx context.Context, kind sequence.Kind, year int, summary ResequenceSummary, renames map[string]string) error {
	if e.journal == nil {
		return nil
	}
	return e.journal.Record(ctx, JournalEntry{
		Operation: "resequence",
		Kind:      kind,
		Year:      year,
		Summary:   map[string]any{"renumbered": summary.Renumbered},
		RenameMap: renames,
	})
}
