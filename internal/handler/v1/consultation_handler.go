package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
)

type ConsultationHandler struct {
	svc *service.ConsultationService
}

func NewConsultationHandler(svc *service.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{svc: svc}
}

type createConsultationRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	// Defaults to the caller.
	VeterinarianID *uuid.UUID      `json:"veterinarian_id"`
	Date           time.Time       `json:"date"`
	Reason         string          `json:"reason"`
	Anamnesis      string          `json:"anamnesis"`
	WeightKg       decimal.Decimal `json:"weight_kg"`
}

func (h *ConsultationHandler) Create(c *gin.Context) {
	var req createConsultationRequest
	if !bindJSON(c, &req) {
		return
	}
	vetID := currentUser(c).UserID
	if req.VeterinarianID != nil {
		vetID = *req.VeterinarianID
	}
	out, err := h.svc.CreateConsultation(c.Request.Context(), &consultation.CreateConsultationCommand{
		PatientID:      req.PatientID,
		VeterinarianID: vetID,
		Date:           req.Date,
		Reason:         req.Reason,
		Anamnesis:      req.Anamnesis,
		WeightKg:       req.WeightKg,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, out)
}

func (h *ConsultationHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.GetConsultation(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *ConsultationHandler) List(c *gin.Context) {
	patientID, ok := queryUUID(c, "patient_id")
	if !ok {
		return
	}
	vetID, ok := queryUUID(c, "veterinarian_id")
	if !ok {
		return
	}
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}
	page, err := h.svc.ListConsultations(c.Request.Context(), &consultation.ListConsultationsQuery{
		PatientID:      patientID,
		VeterinarianID: vetID,
		Status:         queryEnum[consultation.Status](c, "status"),
		DateFrom:       from,
		DateTo:         to,
		Page:           parseQueryInt(c, "page", 1),
		PageSize:       parseQueryInt(c, "page_size", 20),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

type updateConsultationRequest struct {
	Date      *time.Time       `json:"date"`
	Reason    *string          `json:"reason"`
	Anamnesis *string          `json:"anamnesis"`
	Diagnosis *string          `json:"diagnosis"`
	Treatment *string          `json:"treatment"`
	WeightKg  *decimal.Decimal `json:"weight_kg"`
}

func (h *ConsultationHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updateConsultationRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.svc.UpdateConsultation(c.Request.Context(), id, &consultation.UpdateConsultationCommand{
		Date:      req.Date,
		Reason:    req.Reason,
		Anamnesis: req.Anamnesis,
		Diagnosis: req.Diagnosis,
		Treatment: req.Treatment,
		WeightKg:  req.WeightKg,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

type addServiceRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
}

func (h *ConsultationHandler) AddService(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req addServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := h.svc.AddService(c.Request.Context(), id, req.ServiceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, line)
}

type addSupplyRequest struct {
	SupplyID   uuid.UUID `json:"supply_id" binding:"required"`
	Days       int       `json:"days"`
	Containers int64     `json:"containers"`
}

func (h *ConsultationHandler) AddSupply(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req addSupplyRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := h.svc.AddSupply(c.Request.Context(), id, &consultation.AddSupplyCommand{
		SupplyID:   req.SupplyID,
		Days:       req.Days,
		Containers: req.Containers,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, line)
}

func (h *ConsultationHandler) RemoveLine(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseUUID(c, "lineID")
	if !ok {
		return
	}
	if err := h.svc.RemoveLine(c.Request.Context(), id, lineID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Confirm closes the consultation and discounts its supplies.
func (h *ConsultationHandler) Confirm(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.Confirm(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *ConsultationHandler) Cancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.svc.CancelConsultation(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}
