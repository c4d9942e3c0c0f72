package record_repo

import (
	"context"

	"clinicore/internal/core/id"
	"clinicore/internal/domain/records"
)

// PaymentRepo persists payments.
type PaymentRepo struct {
	*BaseRecordRepo[records.Payment]
}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{NewBaseRecordRepo[records.Payment]("payments")}
}

var _ records.PaymentRepo = (*PaymentRepo)(nil)

func (r *PaymentRepo) Create(ctx context.Context, p *records.Payment) error {
	return r.insert(ctx, p)
}

func (r *PaymentRepo) ListIDsByBillIDs(ctx context.Context, billIDs []id.ID) ([]id.ID, error) {
	return r.listIDsByColumn(ctx, "bill_id", billIDs)
}

func (r *PaymentRepo) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	return r.deleteByIDs(ctx, ids)
}
