package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
)

type PatientHandler struct {
	svc *service.PatientService
}

func NewPatientHandler(svc *service.PatientService) *PatientHandler {
	return &PatientHandler{svc: svc}
}

type createPatientRequest struct {
	OwnerID   uuid.UUID       `json:"owner_id" binding:"required"`
	Name      string          `json:"name"`
	Species   patient.Species `json:"species"`
	Breed     string          `json:"breed"`
	Sex       patient.Sex     `json:"sex"`
	BirthDate *time.Time      `json:"birth_date"`
	WeightKg  decimal.Decimal `json:"weight_kg"`
	Microchip string          `json:"microchip"`
	Notes     string          `json:"notes"`
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.CreatePatient(c.Request.Context(), &patient.CreatePatientCommand{
		OwnerID:   req.OwnerID,
		Name:      req.Name,
		Species:   req.Species,
		Breed:     req.Breed,
		Sex:       req.Sex,
		BirthDate: req.BirthDate,
		WeightKg:  req.WeightKg,
		Microchip: req.Microchip,
		Notes:     req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetPatient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

type updatePatientRequest struct {
	Name      *string          `json:"name"`
	Species   *patient.Species `json:"species"`
	Breed     *string          `json:"breed"`
	Sex       *patient.Sex     `json:"sex"`
	BirthDate *time.Time       `json:"birth_date"`
	WeightKg  *decimal.Decimal `json:"weight_kg"`
	Microchip *string          `json:"microchip"`
	Status    *patient.Status  `json:"status"`
	Notes     *string          `json:"notes"`
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updatePatientRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.UpdatePatient(c.Request.Context(), id, &patient.UpdatePatientCommand{
		Name:      req.Name,
		Species:   req.Species,
		Breed:     req.Breed,
		Sex:       req.Sex,
		BirthDate: req.BirthDate,
		WeightKg:  req.WeightKg,
		Microchip: req.Microchip,
		Status:    req.Status,
		Notes:     req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) List(c *gin.Context) {
	ownerID, ok := queryUUID(c, "owner_id")
	if !ok {
		return
	}
	page, err := h.svc.ListPatients(c.Request.Context(), &patient.ListPatientsQuery{
		Search:   c.Query("search"),
		OwnerID:  ownerID,
		Species:  queryEnum[patient.Species](c, "species"),
		Status:   queryEnum[patient.Status](c, "status"),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

type transferRequest struct {
	OwnerID uuid.UUID `json:"owner_id" binding:"required"`
	Reason  string    `json:"reason"`
}

func (h *PatientHandler) Transfer(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req transferRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.TransferOwnership(c.Request.Context(), id, req.OwnerID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *PatientHandler) MarkDeceased(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.MarkDeceased(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePatient(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
