package record_repo

import (
	"context"

	"clinicore/internal/domain/records"
)

// LabOrderRepo persists lab orders.
type LabOrderRepo struct {
	*BaseRecordRepo[records.LabOrder]
}

func NewLabOrderRepo() *LabOrderRepo {
	return &LabOrderRepo{NewBaseRecordRepo[records.LabOrder]("lab_orders")}
}

var _ records.LabOrderRepo = (*LabOrderRepo)(nil)

func (r *LabOrderRepo) Create(ctx context.Context, o *records.LabOrder) error {
	return r.insert(ctx, o)
}
