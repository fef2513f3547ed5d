package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/hospitalization"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
)

type HospitalizationHandler struct {
	svc *service.HospitalizationService
}

func NewHospitalizationHandler(svc *service.HospitalizationService) *HospitalizationHandler {
	return &HospitalizationHandler{svc: svc}
}

type admitRequest struct {
	PatientID      uuid.UUID       `json:"patient_id" binding:"required"`
	VeterinarianID *uuid.UUID      `json:"veterinarian_id"`
	AdmittedAt     time.Time       `json:"admitted_at"`
	Reason         string          `json:"reason"`
	Notes          string          `json:"notes"`
	DailyRate      decimal.Decimal `json:"daily_rate"`
}

func (h *HospitalizationHandler) Admit(c *gin.Context) {
	var req admitRequest
	if !bindJSON(c, &req) {
		return
	}
	vetID := currentUser(c).UserID
	if req.VeterinarianID != nil {
		vetID = *req.VeterinarianID
	}
	out, err := h.svc.Admit(c.Request.Context(), &hospitalization.AdmitCommand{
		PatientID:      req.PatientID,
		VeterinarianID: vetID,
		AdmittedAt:     req.AdmittedAt,
		Reason:         req.Reason,
		Notes:          req.Notes,
		DailyRate:      req.DailyRate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, out)
}

func (h *HospitalizationHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.GetHospitalization(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}

func (h *HospitalizationHandler) List(c *gin.Context) {
	patientID, ok := queryUUID(c, "patient_id")
	if !ok {
		return
	}
	page, err := h.svc.ListHospitalizations(c.Request.Context(), &hospitalization.ListHospitalizationsQuery{
		PatientID: patientID,
		Status:    queryEnum[hospitalization.Status](c, "status"),
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "page_size", 20),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

func (h *HospitalizationHandler) AddSupply(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req addSupplyRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := h.svc.AddSupply(c.Request.Context(), id, &hospitalization.AddSupplyCommand{
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

func (h *HospitalizationHandler) Discharge(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.Discharge(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, out)
}
