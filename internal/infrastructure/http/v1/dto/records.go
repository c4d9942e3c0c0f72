package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"clinicore/internal/domain/records"
)

// --- Requests ---

// CreatePatientRequest registers a new patient.
type CreatePatientRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone"`
}

// CreateVisitRequest books an outpatient visit.
type CreateVisitRequest struct {
	PatientID   string    `json:"patientId" binding:"required,uuid"`
	BookingDate time.Time `json:"bookingDate" binding:"required"`
	Department  string    `json:"department"`
}

// CreateLabOrderRequest orders a lab test.
type CreateLabOrderRequest struct {
	PatientID string `json:"patientId" binding:"required,uuid"`
	TestName  string `json:"testName" binding:"required"`
}

// CreateBillRequest raises a bill, optionally against a visit.
type CreateBillRequest struct {
	PatientID string          `json:"patientId" binding:"required,uuid"`
	VisitID   *string         `json:"visitId" binding:"omitempty,uuid"`
	Amount    decimal.Decimal `json:"amount"`
}

// CreatePaymentRequest records money received against a bill.
type CreatePaymentRequest struct {
	BillID    string          `json:"billId" binding:"required,uuid"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
}

// CreateAdmissionRequest books an inpatient stay.
type CreateAdmissionRequest struct {
	PatientID  string    `json:"patientId" binding:"required,uuid"`
	Ward       string    `json:"ward"`
	AdmittedAt time.Time `json:"admittedAt"`
}

// --- Responses ---

// PatientResponse is the API view of a patient.
type PatientResponse struct {
	ID                 string    `json:"id"`
	RegistrationNumber string    `json:"registrationNumber"`
	FullName           string    `json:"fullName"`
	Phone              string    `json:"phone,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

func FromPatient(p *records.Patient) PatientResponse {
	return PatientResponse{
		ID:                 p.ID.String(),
		RegistrationNumber: p.RegistrationNumber,
		FullName:           p.FullName,
		Phone:              p.Phone,
		CreatedAt:          p.CreatedAt,
	}
}

// VisitResponse is the API view of a visit.
type VisitResponse struct {
	ID                 string    `json:"id"`
	PatientID          string    `json:"patientId"`
	RegistrationNumber string    `json:"registrationNumber"`
	BookingDate        time.Time `json:"bookingDate"`
	DaySerial          int       `json:"daySerial"`
	Department         string    `json:"department,omitempty"`
	BillID             *string   `json:"billId,omitempty"`
}

func FromVisit(v *records.Visit) VisitResponse {
	resp := VisitResponse{
		ID:                 v.ID.String(),
		PatientID:          v.PatientID.String(),
		RegistrationNumber: v.RegistrationNumber,
		BookingDate:        v.BookingDate,
		DaySerial:          v.DaySerial,
		Department:         v.Department,
	}
	if v.BillID != nil {
		s := v.BillID.String()
		resp.BillID = &s
	}
	return resp
}

// LabOrderResponse is the API view of a lab order.
type LabOrderResponse struct {
	ID                 string    `json:"id"`
	PatientID          string    `json:"patientId"`
	LabNumber          string    `json:"labNumber"`
	RegistrationNumber string    `json:"registrationNumber"`
	TestName           string    `json:"testName"`
	CreatedAt          time.Time `json:"createdAt"`
}

func FromLabOrder(o *records.LabOrder) LabOrderResponse {
	return LabOrderResponse{
		ID:                 o.ID.String(),
		PatientID:          o.PatientID.String(),
		LabNumber:          o.LabNumber,
		RegistrationNumber: o.RegistrationNumber,
		TestName:           o.TestName,
		CreatedAt:          o.CreatedAt,
	}
}

// BillResponse is the API view of a bill.
type BillResponse struct {
	ID                        string          `json:"id"`
	BillNumber                string          `json:"billNumber"`
	VisitID                   *string         `json:"visitId,omitempty"`
	PatientID                 string          `json:"patientId"`
	PatientRegistrationNumber string          `json:"patientRegistrationNumber"`
	PatientName               string          `json:"patientName"`
	Amount                    decimal.Decimal `json:"amount"`
	CreatedAt                 time.Time       `json:"createdAt"`
}

func FromBill(b *records.Bill) BillResponse {
	resp := BillResponse{
		ID:                        b.ID.String(),
		BillNumber:                b.BillNumber,
		PatientID:                 b.PatientID.String(),
		PatientRegistrationNumber: b.PatientRegistrationNumber,
		PatientName:               b.PatientName,
		Amount:                    b.Amount,
		CreatedAt:                 b.CreatedAt,
	}
	if b.VisitID != nil {
		s := b.VisitID.String()
		resp.VisitID = &s
	}
	return resp
}

// PaymentResponse is the API view of a payment.
type PaymentResponse struct {
	ID            string          `json:"id"`
	PaymentNumber string          `json:"paymentNumber"`
	InvoiceNumber string          `json:"invoiceNumber"`
	BillID        string          `json:"billId"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func FromPayment(p *records.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		PaymentNumber: p.PaymentNumber,
		InvoiceNumber: p.InvoiceNumber,
		BillID:        p.BillID.String(),
		Amount:        p.Amount,
		Method:        p.Method,
		Reference:     p.Reference,
		CreatedAt:     p.CreatedAt,
	}
}

// AdmissionResponse is the API view of an admission.
type AdmissionResponse struct {
	ID                 string    `json:"id"`
	BookingNumber      string    `json:"bookingNumber"`
	PatientID          string    `json:"patientId"`
	RegistrationNumber string    `json:"registrationNumber"`
	Ward               string    `json:"ward,omitempty"`
	AdmittedAt         time.Time `json:"admittedAt"`
}

func FromAdmission(a *records.Admission) AdmissionResponse {
	return AdmissionResponse{
		ID:                 a.ID.String(),
		BookingNumber:      a.BookingNumber,
		PatientID:          a.PatientID.String(),
		RegistrationNumber: a.RegistrationNumber,
		Ward:               a.Ward,
		AdmittedAt:         a.AdmittedAt,
	}
}
