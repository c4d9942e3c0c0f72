package record_repo

import (
	"context"
	"fmt"
	"sort"

	"github.com/georgysavva/scany/v2/pgxscan"

	"clinicore/internal/core/sequence"
	"clinicore/internal/core/tenant"
	"clinicore/internal/domain/records"
	"clinicore/internal/infrastructure/storage/postgres"
)

// IdentifierStore implements records.IdentifierStore on the record
// tables, driven by the record graph.
//
// Renames are applied as a single UPDATE joined against an unnested
// pair-of-arrays relation. One statement rewrites the whole column, so
// chains like 5->2 while 2->1 cannot collide the way row-at-a-time
// updates would.
type IdentifierStore struct{}

func NewIdentifierStore() *IdentifierStore {
	return &IdentifierStore{}
}

var _ records.IdentifierStore = (*IdentifierStore)(nil)

func (s *IdentifierStore) querier(ctx context.Context) postgres.Querier {
	return postgres.MustGetTxManager(ctx).GetQuerier(ctx)
}

func identifierListSQL(target records.Target) string {
	return fmt.Sprintf(`
		SELECT id, %s AS identifier, created_at
		FROM %s
		WHERE tenant_id = $1 AND EXTRACT(YEAR FROM created_at) = $2
		ORDER BY created_at ASC, id ASC`, target.Column, target.Table)
}

// ListIdentifiers implements records.IdentifierStore.
func (s *IdentifierStore) ListIdentifiers(ctx context.Context, kind sequence.Kind, year int) ([]records.IdentifierRow, error) {
	target, ok := records.Primary(kind)
	if !ok {
		return nil, fmt.Errorf("kind %s has no primary table", kind)
	}

	var rows []records.IdentifierRow
	err := pgxscan.Select(ctx, s.querier(ctx), &rows, identifierListSQL(target),
		tenant.MustGetTenantID(ctx), year)
	if err != nil {
		return nil, fmt.Errorf("list %s identifiers: %w", target.Table, err)
	}
	return rows, nil
}

func renameSQL(target records.Target) string {
	return fmt.Sprintf(`
		UPDATE %s AS t
		SET %s = v.next
		FROM (SELECT unnest($2::text[]) AS prev, unnest($3::text[]) AS next) AS v
		WHERE t.tenant_id = $1 AND t.%s = v.prev`,
		target.Table, target.Column, target.Column)
}

// renamePairs flattens the map into parallel arrays with a stable order.
func renamePairs(renames map[string]string) (prev, next []string) {
	prev = make([]string, 0, len(renames))
	for old := range renames {
		prev = append(prev, old)
	}
	sort.Strings(prev)

	next = make([]string, len(prev))
	for i, old := range prev {
		next[i] = renames[old]
	}
	return prev, next
}

func (s *IdentifierStore) rename(ctx context.Context, target records.Target, renames map[string]string) (int64, error) {
	if len(renames) == 0 {
		return 0, nil
	}
	prev, next := renamePairs(renames)

	tag, err := s.querier(ctx).Exec(ctx, renameSQL(target),
		tenant.MustGetTenantID(ctx), prev, next)
	if err != nil {
		return 0, fmt.Errorf("rename %s.%s: %w", target.Table, target.Column, err)
	}
	return tag.RowsAffected(), nil
}

// RenamePrimary implements records.IdentifierStore.
func (s *IdentifierStore) RenamePrimary(ctx context.Context, kind sequence.Kind, renames map[string]string) (int64, error) {
	target, ok := records.Primary(kind)
	if !ok {
		return 0, fmt.Errorf("kind %s has no primary table", kind)
	}
	return s.rename(ctx, target, renames)
}

// Propagate implements records.IdentifierStore.
func (s *IdentifierStore) Propagate(ctx context.Context, target records.Target, renames map[string]string) (int64, error) {
	return s.rename(ctx, target, renames)
}
