package record_repo

import (
	"context"

	"clinicore/internal/core/id"
	"clinicore/internal/domain/records"
)

// PatientRepo persists patients.
type PatientRepo struct {
	*BaseRecordRepo[records.Patient]
}

func NewPatientRepo() *PatientRepo {
	return &PatientRepo{NewBaseRecordRepo[records.Patient]("patients")}
}

var _ records.PatientRepo = (*PatientRepo)(nil)

func (r *PatientRepo) Create(ctx context.Context, p *records.Patient) error {
	return r.insert(ctx, p)
}

func (r *PatientRepo) GetByID(ctx context.Context, patientID id.ID) (*records.Patient, error) {
	return r.getByID(ctx, patientID)
}

func (r *PatientRepo) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	return r.deleteByIDs(ctx, ids)
}
