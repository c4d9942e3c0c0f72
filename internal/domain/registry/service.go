// Package registry implements record creation: every operation allocates
// its identifier and persists the record in one transaction, so a failed
// insert rolls the counter increment back and leaves no gap.
package registry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"clinicore/internal/core/apperror"
	"clinicore/internal/core/id"
	"clinicore/internal/core/sequence"
	"clinicore/internal/core/tx"
	"clinicore/internal/domain/records"
	"clinicore/pkg/logger"
)

// Service creates identifier-bearing records.
type Service struct {
	allocator  sequence.Allocator
	patients   records.PatientRepo
	visits     records.VisitRepo
	labs       records.LabOrderRepo
	bills      records.BillRepo
	payments   records.PaymentRepo
	admissions records.AdmissionRepo
	txManager  tx.Manager
	log        *logger.Logger

	now func() time.Time
}

func NewService(
	allocator sequence.Allocator,
	patients records.PatientRepo,
	visits records.VisitRepo,
	labs records.LabOrderRepo,
	bills records.BillRepo,
	payments records.PaymentRepo,
	admissions records.AdmissionRepo,
	txManager tx.Manager,
	log *logger.Logger,
) *Service {
	return &Service{
		allocator:  allocator,
		patients:   patients,
		visits:     visits,
		labs:       labs,
		bills:      bills,
		payments:   payments,
		admissions: admissions,
		txManager:  txManager,
		log:        log,
		now:        time.Now,
	}
}

// CreatePatientInput carries new patient data.
type CreatePatientInput struct {
	FullName string
	Phone    string
}

func (i CreatePatientInput) Validate() error {
	if i.FullName == "" {
		return apperror.NewValidation("full name is required")
	}
	return nil
}

// CreatePatient registers a patient, issuing the registration number.
func (s *Service) CreatePatient(ctx context.Context, input CreatePatientInput) (*records.Patient, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var patient *records.Patient
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.allocator.Next(ctx, sequence.KindRegistration, s.now().Year())
		if err != nil {
			return err
		}

		patient = &records.Patient{
			ID:                 id.New(),
			RegistrationNumber: number,
			FullName:           input.FullName,
			Phone:              input.Phone,
			CreatedAt:          s.now().UTC(),
		}
		return s.patients.Create(ctx, patient)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Infow("patient registered",
		"patient_id", patient.ID, "registration_number", patient.RegistrationNumber)
	return patient, nil
}

// CreateVisitInput carries new booking data.
type CreateVisitInput struct {
	PatientID   id.ID
	BookingDate time.Time
	Department  string
}

func (i CreateVisitInput) Validate() error {
	if id.IsNil(i.PatientID) {
		return apperror.NewMissingReference("patient_id")
	}
	if i.BookingDate.IsZero() {
		return apperror.NewValidation("booking date is required")
	}
	return nil
}

// CreateVisit books an outpatient visit. Visits carry no counter of
// their own: they get the next per-day serial and a copy of the
// patient's registration number.
func (s *Service) CreateVisit(ctx context.Context, input CreateVisitInput) (*records.Visit, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var visit *records.Visit
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		patient, err := s.patients.GetByID(ctx, input.PatientID)
		if err != nil {
			return err
		}

		serial, err := s.visits.NextDaySerial(ctx, input.BookingDate)
		if err != nil {
			return err
		}

		visit = &records.Visit{
			ID:                 id.New(),
			PatientID:          patient.ID,
			RegistrationNumber: patient.RegistrationNumber,
			BookingDate:        input.BookingDate,
			DaySerial:          serial,
			Department:         input.Department,
			CreatedAt:          s.now().UTC(),
		}
		return s.visits.Create(ctx, visit)
	})
	if err != nil {
		return nil, err
	}
	return visit, nil
}

// CreateLabOrderInput carries new lab order data.
type CreateLabOrderInput struct {
	PatientID id.ID
	TestName  string
}

func (i CreateLabOrderInput) Validate() error {
	if id.IsNil(i.PatientID) {
		return apperror.NewMissingReference("patient_id")
	}
	if i.TestName == "" {
		return apperror.NewValidation("test name is required")
	}
	return nil
}

// CreateLabOrder issues a lab number and stores the order.
func (s *Service) CreateLabOrder(ctx context.Context, input CreateLabOrderInput) (*records.LabOrder, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var order *records.LabOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		patient, err := s.patients.GetByID(ctx, input.PatientID)
		if err != nil {
			return err
		}

		number, err := s.allocator.Next(ctx, sequence.KindLab, s.now().Year())
		if err != nil {
			return err
		}

		order = &records.LabOrder{
			ID:                 id.New(),
			PatientID:          patient.ID,
			LabNumber:          number,
			RegistrationNumber: patient.RegistrationNumber,
			TestName:           input.TestName,
			CreatedAt:          s.now().UTC(),
		}
		return s.labs.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateBillInput carries new bill data. VisitID is optional: bills can
// be raised against a visit or standalone.
type CreateBillInput struct {
	PatientID id.ID
	VisitID   *id.ID
	Amount    decimal.Decimal
}

func (i CreateBillInput) Validate() error {
	if id.IsNil(i.PatientID) {
		return apperror.NewMissingReference("patient_id")
	}
	if i.Amount.IsNegative() {
		return apperror.NewValidation("amount must not be negative")
	}
	return nil
}

// CreateBill issues an invoice number and snapshots the patient into the
// bill. When a visit is given, the bill is linked back to it.
func (s *Service) CreateBill(ctx context.Context, input CreateBillInput) (*records.Bill, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var bill *records.Bill
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		patient, err := s.patients.GetByID(ctx, input.PatientID)
		if err != nil {
			return err
		}

		number, err := s.allocator.Next(ctx, sequence.KindInvoice, s.now().Year())
		if err != nil {
			return err
		}

		bill = &records.Bill{
			ID:                        id.New(),
			VisitID:                   input.VisitID,
			BillNumber:                number,
			PatientID:                 patient.ID,
			PatientRegistrationNumber: patient.RegistrationNumber,
			PatientName:               patient.FullName,
			Amount:                    input.Amount,
			CreatedAt:                 s.now().UTC(),
		}
		if err := s.bills.Create(ctx, bill); err != nil {
			return err
		}

		if input.VisitID != nil {
			return s.visits.AttachBill(ctx, *input.VisitID, bill.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// CreatePaymentInput carries new payment data.
type CreatePaymentInput struct {
	BillID    id.ID
	Amount    decimal.Decimal
	Method    string
	Reference string
}

func (i CreatePaymentInput) Validate() error {
	if id.IsNil(i.BillID) {
		return apperror.NewMissingReference("bill_id")
	}
	if i.Amount.IsNegative() {
		return apperror.NewValidation("amount must not be negative")
	}
	return nil
}

// CreatePayment issues a payment number and copies the bill's invoice
// number onto the receipt.
func (s *Service) CreatePayment(ctx context.Context, input CreatePaymentInput) (*records.Payment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var payment *records.Payment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.bills.GetByID(ctx, input.BillID)
		if err != nil {
			return err
		}

		number, err := s.allocator.Next(ctx, sequence.KindPayment, s.now().Year())
		if err != nil {
			return err
		}

		payment = &records.Payment{
			ID:            id.New(),
			BillID:        bill.ID,
			PaymentNumber: number,
			InvoiceNumber: bill.BillNumber,
			Amount:        input.Amount,
			Method:        input.Method,
			Reference:     input.Reference,
			CreatedAt:     s.now().UTC(),
		}
		return s.payments.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// CreateAdmissionInput carries new admission data.
type CreateAdmissionInput struct {
	PatientID  id.ID
	Ward       string
	AdmittedAt time.Time
}

func (i CreateAdmissionInput) Validate() error {
	if id.IsNil(i.PatientID) {
		return apperror.NewMissingReference("patient_id")
	}
	return nil
}

// CreateAdmission issues a booking number for an inpatient stay.
// The counter year follows the admission date, not the clock.
func (s *Service) CreateAdmission(ctx context.Context, input CreateAdmissionInput) (*records.Admission, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	admittedAt := input.AdmittedAt
	if admittedAt.IsZero() {
		admittedAt = s.now().UTC()
	}

	var admission *records.Admission
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		patient, err := s.patients.GetByID(ctx, input.PatientID)
		if err != nil {
			return err
		}

		number, err := s.allocator.Next(ctx, sequence.KindBooking, admittedAt.Year())
		if err != nil {
			return err
		}

		admission = &records.Admission{
			ID:                 id.New(),
			PatientID:          patient.ID,
			BookingNumber:      number,
			RegistrationNumber: patient.RegistrationNumber,
			Ward:               input.Ward,
			AdmittedAt:         admittedAt,
			CreatedAt:          s.now().UTC(),
		}
		return s.admissions.Create(ctx, admission)
	})
	if err != nil {
		return nil, err
	}
	return admission, nil
}
