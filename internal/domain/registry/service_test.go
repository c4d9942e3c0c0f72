package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"clinicore/internal/core/apperror"
	"clinicore/internal/core/id"
	"clinicore/internal/core/sequence"
	"clinicore/internal/domain/records"
	"clinicore/pkg/logger"
)

// --- fakes ---

type fakeStore struct {
	patients map[id.ID]records.Patient
	visits   map[id.ID]records.Visit
	labs     map[id.ID]records.LabOrder
	bills    map[id.ID]records.Bill
	payments map[id.ID]records.Payment

	createVisitErr error
	createBillErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		patients: make(map[id.ID]records.Patient),
		visits:   make(map[id.ID]records.Visit),
		labs:     make(map[id.ID]records.LabOrder),
		bills:    make(map[id.ID]records.Bill),
		payments: make(map[id.ID]records.Payment),
	}
}

type fakePatients struct{ s *fakeStore }

func (f *fakePatients) Create(ctx context.Context, p *records.Patient) error {
	f.s.patients[p.ID] = *p
	return nil
}

func (f *fakePatients) GetByID(ctx context.Context, patientID id.ID) (*records.Patient, error) {
	p, ok := f.s.patients[patientID]
	if !ok {
		return nil, apperror.NewNotFound("patients", patientID.String())
	}
	return &p, nil
}

func (f *fakePatients) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	return 0, nil
}

type fakeVisits struct{ s *fakeStore }

func (f *fakeVisits) Create(ctx context.Context, v *records.Visit) error {
	if f.s.createVisitErr != nil {
		return f.s.createVisitErr
	}
	f.s.visits[v.ID] = *v
	return nil
}

func (f *fakeVisits) ListByDateRange(ctx context.Context, start, end time.Time) ([]records.Visit, error) {
	return nil, nil
}

func (f *fakeVisits) NextDaySerial(ctx context.Context, bookingDate time.Time) (int, error) {
	max := 0
	for _, v := range f.s.visits {
		if v.BookingDate.Equal(bookingDate) && v.DaySerial > max {
			max = v.DaySerial
		}
	}
	return max + 1, nil
}

func (f *fakeVisits) AttachBill(ctx context.Context, visitID, billID id.ID) error {
	v, ok := f.s.visits[visitID]
	if !ok {
		return apperror.NewNotFound("visits", visitID.String())
	}
	v.BillID = &billID
	f.s.visits[visitID] = v
	return nil
}

func (f *fakeVisits) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	return 0, nil
}

func (f *fakeVisits) CountByPatients(ctx context.Context, patientIDs []id.ID) (map[id.ID]int, error) {
	return nil, nil
}

type fakeLabs struct{ s *fakeStore }

func (f *fakeLabs) Create(ctx context.Context, o *records.LabOrder) error {
	f.s.labs[o.ID] = *o
	return nil
}

type fakeBills struct{ s *fakeStore }

func (f *fakeBills) Create(ctx context.Context, b *records.Bill) error {
	if f.s.createBillErr != nil {
		return f.s.createBillErr
	}
	f.s.bills[b.ID] = *b
	return nil
}

func (f *fakeBills) GetByID(ctx context.Context, billID id.ID) (*records.Bill, error) {
	b, ok := f.s.bills[billID]
	if !ok {
		return nil, apperror.NewNotFound("bills", billID.String())
	}
	return &b, nil
}

func (f *fakeBills) ListIDsByVisitIDs(ctx context.Context, visitIDs []id.ID) ([]id.ID, error) {
	return nil, nil
}

func (f *fakeBills) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	return 0, nil
}

type fakePayments struct{ s *fakeStore }

func (f *fakePayments) Create(ctx context.Context, p *records.Payment) error {
	f.s.payments[p.ID] = *p
	return nil
}

func (f *fakePayments) ListIDsByBillIDs(ctx context.Context, billIDs []id.ID) ([]id.ID, error) {
	return nil, nil
}

func (f *fakePayments) DeleteByIDs(ctx context.Context, ids []id.ID) (int64, error) {
	return 0, nil
}

type fakeAdmissions struct{ s *fakeStore }

func (f *fakeAdmissions) Create(ctx context.Context, a *records.Admission) error {
	return nil
}

func (f *fakeAdmissions) CountByPatients(ctx context.Context, patientIDs []id.ID) (map[id.ID]int, error) {
	return nil, nil
}

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(store *fakeStore, alloc *sequence.MockAllocator) *Service {
	svc := NewService(
		alloc,
		&fakePatients{store},
		&fakeVisits{store},
		&fakeLabs{store},
		&fakeBills{store},
		&fakePayments{store},
		&fakeAdmissions{store},
		&fakeTxManager{},
		logger.Nop(),
	)
	svc.now = func() time.Time {
		return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

// --- tests ---

func TestCreatePatient_AllocatesRegistrationNumber(t *testing.T) {
	alloc := sequence.NewMockAllocator()
	svc := newTestService(newFakeStore(), alloc)

	patient, err := svc.CreatePatient(context.Background(), CreatePatientInput{FullName: "Asha Verma"})
	require.NoError(t, err)
	require.Equal(t, "U/24/1", patient.RegistrationNumber)
	require.Equal(t, 1, alloc.NextCalls, "exactly one identifier per patient")

	second, err := svc.CreatePatient(context.Background(), CreatePatientInput{FullName: "Ravi Iyer"})
	require.NoError(t, err)
	require.Equal(t, "U/24/2", second.RegistrationNumber)
}

func TestCreateVisit_CopiesRegistrationAndAssignsDaySerial(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, sequence.NewMockAllocator())
	ctx := context.Background()

	patient, err := svc.CreatePatient(ctx, CreatePatientInput{FullName: "Asha Verma"})
	require.NoError(t, err)

	booking := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)
	first, err := svc.CreateVisit(ctx, CreateVisitInput{PatientID: patient.ID, BookingDate: booking, Department: "OPD"})
	require.NoError(t, err)
	require.Equal(t, patient.RegistrationNumber, first.RegistrationNumber)
	require.Equal(t, 1, first.DaySerial)

	second, err := svc.CreateVisit(ctx, CreateVisitInput{PatientID: patient.ID, BookingDate: booking})
	require.NoError(t, err)
	require.Equal(t, 2, second.DaySerial)
}

func TestCreateVisit_RequiresPatient(t *testing.T) {
	svc := newTestService(newFakeStore(), sequence.NewMockAllocator())

	_, err := svc.CreateVisit(context.Background(), CreateVisitInput{
		BookingDate: time.Now(),
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeMissingReference, appErr.Code)

	_, err = svc.CreateVisit(context.Background(), CreateVisitInput{
		PatientID:   id.New(),
		BookingDate: time.Now(),
	})
	require.True(t, apperror.IsNotFound(err))
}

func TestCreateBill_SnapshotsPatientAndAttachesToVisit(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, sequence.NewMockAllocator())
	ctx := context.Background()

	patient, err := svc.CreatePatient(ctx, CreatePatientInput{FullName: "Asha Verma"})
	require.NoError(t, err)
	visit, err := svc.CreateVisit(ctx, CreateVisitInput{PatientID: patient.ID, BookingDate: time.Now()})
	require.NoError(t, err)

	bill, err := svc.CreateBill(ctx, CreateBillInput{
		PatientID: patient.ID,
		VisitID:   &visit.ID,
		Amount:    decimal.NewFromInt(1500),
	})
	require.NoError(t, err)

	require.Equal(t, "INV/24/1", bill.BillNumber)
	require.Equal(t, patient.RegistrationNumber, bill.PatientRegistrationNumber)
	require.Equal(t, "Asha Verma", bill.PatientName)

	stored := store.visits[visit.ID]
	require.NotNil(t, stored.BillID)
	require.Equal(t, bill.ID, *stored.BillID)
}

func TestCreatePayment_CopiesInvoiceNumber(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, sequence.NewMockAllocator())
	ctx := context.Background()

	patient, err := svc.CreatePatient(ctx, CreatePatientInput{FullName: "Asha Verma"})
	require.NoError(t, err)
	bill, err := svc.CreateBill(ctx, CreateBillInput{PatientID: patient.ID, Amount: decimal.NewFromInt(900)})
	require.NoError(t, err)

	payment, err := svc.CreatePayment(ctx, CreatePaymentInput{
		BillID: bill.ID,
		Amount: decimal.NewFromInt(900),
		Method: "cash",
	})
	require.NoError(t, err)
	require.Equal(t, "PAY/24/1", payment.PaymentNumber)
	require.Equal(t, bill.BillNumber, payment.InvoiceNumber)
}

func TestCreateLabOrder_AllocatesLabNumber(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, sequence.NewMockAllocator())
	ctx := context.Background()

	patient, err := svc.CreatePatient(ctx, CreatePatientInput{FullName: "Asha Verma"})
	require.NoError(t, err)

	order, err := svc.CreateLabOrder(ctx, CreateLabOrderInput{PatientID: patient.ID, TestName: "CBC"})
	require.NoError(t, err)
	require.Equal(t, "LAB/24/1", order.LabNumber)
	require.Equal(t, patient.RegistrationNumber, order.RegistrationNumber)
}

func TestCreateAdmission_YearFollowsAdmissionDate(t *testing.T) {
	store := newFakeStore()
	alloc := sequence.NewMockAllocator()
	svc := newTestService(store, alloc)
	ctx := context.Background()

	patient, err := svc.CreatePatient(ctx, CreatePatientInput{FullName: "Asha Verma"})
	require.NoError(t, err)

	admission, err := svc.CreateAdmission(ctx, CreateAdmissionInput{
		PatientID:  patient.ID,
		Ward:       "ICU",
		AdmittedAt: time.Date(2023, time.December, 31, 22, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, "ADM/23/1", admission.BookingNumber)
}

func TestCreateVisit_NoCounterTouched(t *testing.T) {
	store := newFakeStore()
	alloc := sequence.NewMockAllocator()
	svc := newTestService(store, alloc)
	ctx := context.Background()

	patient, err := svc.CreatePatient(ctx, CreatePatientInput{FullName: "Asha Verma"})
	require.NoError(t, err)
	callsAfterPatient := alloc.NextCalls

	_, err = svc.CreateVisit(ctx, CreateVisitInput{PatientID: patient.ID, BookingDate: time.Now()})
	require.NoError(t, err)
	require.Equal(t, callsAfterPatient, alloc.NextCalls, "visits must not allocate identifiers")
}

func TestCreateBill_FailedInsertSurfacesError(t *testing.T) {
	store := newFakeStore()
	store.createBillErr = errors.New("insert failed")
	svc := newTestService(store, sequence.NewMockAllocator())
	ctx := context.Background()

	patient, err := svc.CreatePatient(ctx, CreatePatientInput{FullName: "Asha Verma"})
	require.NoError(t, err)

	_, err = svc.CreateBill(ctx, CreateBillInput{PatientID: patient.ID, Amount: decimal.NewFromInt(100)})
	require.Error(t, err)
	require.Empty(t, store.bills)
}
