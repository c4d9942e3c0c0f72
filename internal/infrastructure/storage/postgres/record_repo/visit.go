package record_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"clinicore/internal/core/id"
	"clinicore/internal/core/tenant"
	"clinicore/internal/domain/records"
)

// VisitRepo persists outpatient bookings.
type VisitRepo struct {
	*BaseRecordRepo[records.Visit]
}

func NewVisitRepo() *VisitRepo {
	return &VisitRepo{NewBaseRecordRepo[records.Visit]("visits")}
}

var _ records.VisitRepo = (*VisitRepo)(nil)

func (r *VisitRepo) Create(ctx context.Context, v *records.Visit) error {
	return r.insert(ctx, v)
}

func (r *VisitRepo) ListByDateRange(ctx context.Context, start, end time.Time) ([]records.Visit, error) {
	sql, args, err := r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"tenant_id": tenant.MustGetTenantID(ctx)}).
		Where(squirrel.GtOrEq{"booking_date": start}).
		Where(squirrel.LtOrEq{"booking_date": end}).
		OrderBy("booking_date ASC", "day_serial ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build range query: %w", err)
	}

	var visits []records.Visit
	if err := pgxscan.Select(ctx, r.querier(ctx), &visits, sql, args...); err != nil {
		return nil, fmt.Errorf("list visits by date range: %w", err)
	}
	return visits, nil
}

// NextDaySerial returns the next per-day ordinal for a booking date.
// Must be called inside the transaction that inserts the visit.
func (r *VisitRepo) NextDaySerial(ctx context.Context, bookingDate time.Time) (int, error) {
	var next int
	err := r.querier(ctx).QueryRow(ctx, `
		SELECT COALESCE(MAX(day_serial), 0) + 1
		FROM visits
		WHERE tenant_id = $1 AND booking_date::date = $2::date
	`, tenant.MustGetTenantID(ctx), bookingDate).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next day serial: %w", err)
	}
	return next, nil
}

func (r *VisitRepo) AttachBill(ctx context.Context, visitID, billID id.ID) error {
	sql, args, err := r.Builder().
		Update(r.tableName).
		Set("bill_id", billID).
		Where(squirrel.Eq{"tenant_id": tenant.MustGetTenantID(ctx)}).
		Where(squirrel.Eq{"id": visitID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build attach bill: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("attach bill to visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("visit %s not found", visitID)
	}
	return nil
}

func (r *VisitRepo) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	return r.deleteByIDs(ctx, ids)
}

func (r *VisitRepo) CountByPatients(ctx context.Context, patientIDs []id.ID) (map[id.ID]int, error) {
	return r.countByColumn(ctx, "patient_id", patientIDs)
}
