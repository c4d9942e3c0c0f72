package record_repo

import (
	"context"

	"clinicore/internal/core/id"
	"clinicore/internal/domain/records"
)

// BillRepo persists bills.
type BillRepo struct {
	*BaseRecordRepo[records.Bill]
}

func NewBillRepo() *BillRepo {
	return &BillRepo{NewBaseRecordRepo[records.Bill]("bills")}
}

var _ records.BillRepo = (*BillRepo)(nil)

func (r *BillRepo) Create(ctx context.Context, b *records.Bill) error {
	return r.insert(ctx, b)
}

func (r *BillRepo) GetByID(ctx context.Context, billID id.ID) (*records.Bill, error) {
	return r.getByID(ctx, billID)
}

func (r *BillRepo) ListIDsByVisitIDs(ctx context.Context, visitIDs []id.ID) ([]id.ID, error) {
	return r.listIDsByColumn(ctx, "visit_id", visitIDs)
}

func (r *BillRepo) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	return r.deleteByIDs(ctx, ids)
}
