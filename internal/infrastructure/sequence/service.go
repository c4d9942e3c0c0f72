// Package sequence provides the PostgreSQL implementation of identifier
// allocation. It implements core/sequence.Allocator.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	coreseq "clinicore/internal/core/sequence"
	"clinicore/internal/core/tenant"
	"clinicore/internal/infrastructure/storage/postgres"
)

// Querier is the minimal database interface the allocator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service allocates identifiers from the sequence_counters table.
//
// With a static querier every statement runs on that querier directly;
// used in tests. In context mode the querier comes from the request's
// transaction manager, so an allocation made inside RunInTransaction
// joins the caller's transaction: if creating the record fails, the
// rollback returns the counter value and no gap appears.
type Service struct {
	staticQuerier Querier
	useContext    bool
}

var _ coreseq.Allocator = (*Service)(nil)

// New creates an allocator bound to a fixed querier. For tests.
func New(querier Querier) *Service {
	return &Service{staticQuerier: querier}
}

// NewFromContext creates an allocator that resolves its querier from the
// request context on every call.
func NewFromContext() *Service {
	return &Service{useContext: true}
}

func (s *Service) getQuerier(ctx context.Context) Querier {
	if s.useContext {
		return postgres.MustGetTxManager(ctx).GetQuerier(ctx)
	}
	return s.staticQuerier
}

// defaults returns the formatting configuration used when the counter
// row does not exist yet: the tenant's settings document, falling back
// to the built-in per-kind defaults.
func (s *Service) defaults(ctx context.Context, kind coreseq.Kind) coreseq.Settings {
	if t := tenant.GetTenant(ctx); t != nil {
		return t.Settings.CounterDefaults(kind)
	}
	return coreseq.DefaultSettings(kind)
}

const nextSQL = `
	INSERT INTO sequence_counters (tenant_id, kind, year, prefix, use_year_suffix, current_value)
	VALUES ($1, $2, $3, $4, $5, 1)
	ON CONFLICT (tenant_id, kind, year)
	DO UPDATE SET current_value = sequence_counters.current_value + 1
	RETURNING current_value, prefix, use_year_suffix`

// Next implements Allocator. One round trip: the upsert either creates
// the counter at 1 with the tenant defaults or increments it, and the
// row lock taken by the update serializes concurrent allocations on the
// same key.
func (s *Service) Next(ctx context.Context, kind coreseq.Kind, year int) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown counter kind: %q", kind)
	}

	def := s.defaults(ctx, kind)

	var (
		value  int64
		stored coreseq.Settings
	)
	err := s.getQuerier(ctx).QueryRow(ctx, nextSQL,
		tenant.MustGetTenantID(ctx), string(kind), year, def.Prefix, def.UseYearSuffix,
	).Scan(&value, &stored.Prefix, &stored.UseYearSuffix)
	if err != nil {
		return "", fmt.Errorf("allocate %s/%d: %w", kind, year, err)
	}

	return coreseq.Format(kind, stored, year, value), nil
}

const peekSQL = `
	SELECT current_value, prefix, use_year_suffix
	FROM sequence_counters
	WHERE tenant_id = $1 AND kind = $2 AND year = $3`

// PeekNext implements Allocator. A missing counter row previews the
// first allocation with the tenant defaults.
func (s *Service) PeekNext(ctx context.Context, kind coreseq.Kind, year int) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown counter kind: %q", kind)
	}

	var (
		value  int64
		stored coreseq.Settings
	)
	err := s.getQuerier(ctx).QueryRow(ctx, peekSQL,
		tenant.MustGetTenantID(ctx), string(kind), year,
	).Scan(&value, &stored.Prefix, &stored.UseYearSuffix)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		value = 0
		stored = s.defaults(ctx, kind)
	case err != nil:
		return "", fmt.Errorf("peek %s/%d: %w", kind, year, err)
	}

	return coreseq.Format(kind, stored, year, value+1), nil
}

const resetValueSQL = `
	INSERT INTO sequence_counters (tenant_id, kind, year, prefix, use_year_suffix, current_value)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (tenant_id, kind, year)
	DO UPDATE SET current_value = EXCLUDED.current_value
	RETURNING current_value`

const resetFullSQL = `
	INSERT INTO sequence_counters (tenant_id, kind, year, prefix, use_year_suffix, current_value)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (tenant_id, kind, year)
	DO UPDATE SET current_value = EXCLUDED.current_value,
	              prefix = EXCLUDED.prefix,
	              use_year_suffix = EXCLUDED.use_year_suffix
	RETURNING current_value`

// ResetTo implements Allocator. With nil settings only the high-water
// mark moves and the stored formatting survives; with settings the
// formatting is replaced too.
func (s *Service) ResetTo(ctx context.Context, kind coreseq.Kind, year int, value int64, settings *coreseq.Settings) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown counter kind: %q", kind)
	}
	if value < 0 {
		return fmt.Errorf("counter value must not be negative: %d", value)
	}

	sql := resetValueSQL
	cfg := s.defaults(ctx, kind)
	if settings != nil {
		sql = resetFullSQL
		cfg = *settings
	}

	var result int64
	err := s.getQuerier(ctx).QueryRow(ctx, sql,
		tenant.MustGetTenantID(ctx), string(kind), year, cfg.Prefix, cfg.UseYearSuffix, value,
	).Scan(&result)
	if err != nil {
		return fmt.Errorf("reset %s/%d to %d: %w", kind, year, value, err)
	}
	return nil
}

// CurrentSettings implements Allocator.
func (s *Service) CurrentSettings(ctx context.Context, kind coreseq.Kind, year int) (coreseq.Settings, error) {
	var (
		value  int64
		stored coreseq.Settings
	)
	err := s.getQuerier(ctx).QueryRow(ctx, peekSQL,
		tenant.MustGetTenantID(ctx), string(kind), year,
	).Scan(&value, &stored.Prefix, &stored.UseYearSuffix)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return s.defaults(ctx, kind), nil
	case err != nil:
		return coreseq.Settings{}, fmt.Errorf("read settings %s/%d: %w", kind, year, err)
	}
	return stored, nil
}
