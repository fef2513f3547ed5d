package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
)

type AppointmentHandler struct {
	svc *service.AppointmentService
}

func NewAppointmentHandler(svc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

type scheduleRequest struct {
	PatientID      uuid.UUID                   `json:"patient_id" binding:"required"`
	VeterinarianID uuid.UUID                   `json:"veterinarian_id" binding:"required"`
	ScheduledAt    time.Time                   `json:"scheduled_at" binding:"required"`
	DurationMins   int                         `json:"duration_mins"`
	Type           appointment.AppointmentType `json:"type" binding:"required"`
	Reason         string                      `json:"reason"`
	Notes          string                      `json:"notes"`
}

func (h *AppointmentHandler) Schedule(c *gin.Context) {
	var req scheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.DurationMins == 0 {
		req.DurationMins = 30
	}
	a, err := h.svc.ScheduleAppointment(c.Request.Context(), &appointment.CreateAppointmentCommand{
		PatientID:      req.PatientID,
		VeterinarianID: req.VeterinarianID,
		ScheduledAt:    req.ScheduledAt,
		DurationMins:   req.DurationMins,
		Type:           req.Type,
		Reason:         req.Reason,
		Notes:          req.Notes,
		CreatedBy:      currentUser(c).UserID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
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
	page, err := h.svc.ListAppointments(c.Request.Context(), &appointment.ListAppointmentsQuery{
		PatientID:      patientID,
		VeterinarianID: vetID,
		Status:         queryEnum[appointment.AppointmentStatus](c, "status"),
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

type statusRequest struct {
	Status appointment.AppointmentStatus `json:"status" binding:"required"`
	Reason string                        `json:"reason"`
}

// UpdateStatus moves the appointment along its state machine.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var (
		a   *appointment.Appointment
		err error
	)
	switch req.Status {
	case appointment.StatusConfirmed:
		a, err = h.svc.ConfirmAppointment(ctx, id)
	case appointment.StatusInProgress:
		a, err = h.svc.StartAppointment(ctx, id)
	case appointment.StatusCompleted:
		a, err = h.svc.CompleteAppointment(ctx, id)
	case appointment.StatusNoShow:
		a, err = h.svc.MarkNoShow(ctx, id)
	case appointment.StatusCancelled:
		a, err = h.svc.CancelAppointment(ctx, id, req.Reason)
	default:
		err = appointment.ErrInvalidStatusTransition
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type rescheduleRequest struct {
	ScheduledAt  time.Time `json:"scheduled_at" binding:"required"`
	DurationMins int       `json:"duration_mins"`
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req rescheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.svc.Reschedule(c.Request.Context(), id, &appointment.RescheduleCommand{
		ScheduledAt:  req.ScheduledAt,
		DurationMins: req.DurationMins,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}
