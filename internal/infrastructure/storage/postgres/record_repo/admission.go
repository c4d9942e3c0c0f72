package record_repo

import (
	"context"

	"clinicore/internal/core/id"
	"clinicore/internal/domain/records"
)

// AdmissionRepo persists inpatient bookings.
type AdmissionRepo struct {
	*BaseRecordRepo[records.Admission]
}

func NewAdmissionRepo() *AdmissionRepo {
	return &AdmissionRepo{NewBaseRecordRepo[records.Admission]("admissions")}
}

var _ records.AdmissionRepo = (*AdmissionRepo)(nil)

func (r *AdmissionRepo) Create(ctx context.Context, a *records.Admission) error {
	return r.insert(ctx, a)
}

func (r *AdmissionRepo) CountByPatients(ctx context.Context, patientIDs []id.ID) (map[id.ID]int, error) {
	return r.countByColumn(ctx, "patient_id", patientIDs)
}
