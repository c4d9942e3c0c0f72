// Package record_repo provides PostgreSQL repositories for the
// identifier-bearing record types.
//
// All tables share one database: every query filters on tenant_id from
// the request context, and every insert stamps it.
package record_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"clinicore/internal/core/apperror"
	"clinicore/internal/core/id"
	"clinicore/internal/core/tenant"
	"clinicore/internal/infrastructure/storage/postgres"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// BaseRecordRepo provides tenant-scoped CRUD shared by the record
// repositories. Embed it in specific repositories.
//
// TxManager is obtained from context per-request, so operations join the
// surrounding transaction automatically.
type BaseRecordRepo[T any] struct {
	tableName  string
	selectCols []string
}

func NewBaseRecordRepo[T any](tableName string) *BaseRecordRepo[T] {
	return &BaseRecordRepo[T]{
		tableName:  tableName,
		selectCols: postgres.ExtractDBColumns[T](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholders.
func (r *BaseRecordRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseRecordRepo[T]) querier(ctx context.Context) postgres.Querier {
	return postgres.MustGetTxManager(ctx).GetQuerier(ctx)
}

// insert stores the entity, stamping the context tenant over whatever
// tenant_id the struct carries.
func (r *BaseRecordRepo[T]) insert(ctx context.Context, entity any) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}
	data["tenant_id"] = tenant.MustGetTenantID(ctx)

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.Builder().
		Insert(r.tableName).
		SetMap(filtered).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewDuplicate(r.tableName, pgErr.ConstraintName, "").WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// getByID retrieves one tenant-owned entity.
func (r *BaseRecordRepo[T]) getByID(ctx context.Context, entityID id.ID) (*T, error) {
	sql, args, err := r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"tenant_id": tenant.MustGetTenantID(ctx)}).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entity T
	if err := pgxscan.Get(ctx, r.querier(ctx), &entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.tableName, entityID.String())
		}
		return nil, fmt.Errorf("get %s by id: %w", r.tableName, err)
	}
	return &entity, nil
}

// deleteByIDs removes the given rows and reports how many actually went.
// An empty id list is a no-op.
func (r *BaseRecordRepo[T]) deleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	sql, args, err := r.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"tenant_id": tenant.MustGetTenantID(ctx)}).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", r.tableName, err)
	}
	return tag.RowsAffected(), nil
}

// countByColumn returns per-value row counts for one foreign key column.
func (r *BaseRecordRepo[T]) countByColumn(ctx context.Context, column string, values []id.ID) (map[id.ID]int, error) {
	counts := make(map[id.ID]int)
	if len(values) == 0 {
		return counts, nil
	}

	sql, args, err := r.Builder().
		Select(column, "COUNT(*)").
		From(r.tableName).
		Where(squirrel.Eq{"tenant_id": tenant.MustGetTenantID(ctx)}).
		Where(squirrel.Eq{column: values}).
		GroupBy(column).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count: %w", err)
	}

	rows, err := r.querier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("count %s by %s: %w", r.tableName, column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key id.ID
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// listIDsByColumn returns ids of rows whose column matches any value.
func (r *BaseRecordRepo[T]) listIDsByColumn(ctx context.Context, column string, values []id.ID) ([]id.ID, error) {
	if len(values) == 0 {
		return nil, nil
	}

	sql, args, err := r.Builder().
		Select("id").
		From(r.tableName).
		Where(squirrel.Eq{"tenant_id": tenant.MustGetTenantID(ctx)}).
		Where(squirrel.Eq{column: values}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build id list: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.querier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s ids by %s: %w", r.tableName, column, err)
	}
	return ids, nil
}
