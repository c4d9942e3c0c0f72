package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"clinicore/internal/core/id"
	"clinicore/internal/domain/records"
	"clinicore/internal/domain/registry"
	"clinicore/internal/infrastructure/http/v1/dto"
)

// RecordsHandler serves record creation and lookup endpoints.
type RecordsHandler struct {
	*BaseHandler
	service  *registry.Service
	patients records.PatientRepo
}

func NewRecordsHandler(service *registry.Service, patients records.PatientRepo) *RecordsHandler {
	return &RecordsHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
		patients:    patients,
	}
}

// CreatePatient handles POST /patients.
func (h *RecordsHandler) CreatePatient(c *gin.Context) {
	var req dto.CreatePatientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.CreatePatient(c.Request.Context(), registry.CreatePatientInput{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromPatient(patient))
}

// GetPatient handles GET /patients/:id.
func (h *RecordsHandler) GetPatient(c *gin.Context) {
	patientID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	patient, err := h.patients.GetByID(c.Request.Context(), patientID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromPatient(patient))
}

// CreateVisit handles POST /visits.
func (h *RecordsHandler) CreateVisit(c *gin.Context) {
	var req dto.CreateVisitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	visit, err := h.service.CreateVisit(c.Request.Context(), registry.CreateVisitInput{
		PatientID:   id.MustParse(req.PatientID),
		BookingDate: req.BookingDate,
		Department:  req.Department,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromVisit(visit))
}

// CreateLabOrder handles POST /lab-orders.
func (h *RecordsHandler) CreateLabOrder(c *gin.Context) {
	var req dto.CreateLabOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.service.CreateLabOrder(c.Request.Context(), registry.CreateLabOrderInput{
		PatientID: id.MustParse(req.PatientID),
		TestName:  req.TestName,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromLabOrder(order))
}

// CreateBill handles POST /bills.
func (h *RecordsHandler) CreateBill(c *gin.Context) {
	var req dto.CreateBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input := registry.CreateBillInput{
		PatientID: id.MustParse(req.PatientID),
		Amount:    req.Amount,
	}
	if req.VisitID != nil {
		visitID := id.MustParse(*req.VisitID)
		input.VisitID = &visitID
	}

	bill, err := h.service.CreateBill(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromBill(bill))
}

// CreatePayment handles POST /payments.
func (h *RecordsHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.service.CreatePayment(c.Request.Context(), registry.CreatePaymentInput{
		BillID:    id.MustParse(req.BillID),
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromPayment(payment))
}

// CreateAdmission handles POST /admissions.
func (h *RecordsHandler) CreateAdmission(c *gin.Context) {
	var req dto.CreateAdmissionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	admittedAt := req.AdmittedAt
	if admittedAt.IsZero() {
		admittedAt = time.Now().UTC()
	}

	admission, err := h.service.CreateAdmission(c.Request.Context(), registry.CreateAdmissionInput{
		PatientID:  id.MustParse(req.PatientID),
		Ward:       req.Ward,
		AdmittedAt: admittedAt,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromAdmission(admission))
}
