package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/catalog"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/hospitalization"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/owner"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/sale"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/inventory"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/rut"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

var (
	notFoundErrors = []error{
		repository.ErrUserNotFound,
		owner.ErrOwnerNotFound,
		patient.ErrPatientNotFound,
		supply.ErrSupplyNotFound,
		catalog.ErrServiceNotFound,
		consultation.ErrConsultationNotFound,
		consultation.ErrLineNotFound,
		hospitalization.ErrHospitalizationNotFound,
		sale.ErrSaleNotFound,
		sale.ErrItemNotFound,
		sale.ErrSessionNotFound,
		appointment.ErrAppointmentNotFound,
	}

	conflictErrors = []error{
		repository.ErrUserAlreadyExists,
		owner.ErrOwnerAlreadyExists,
		owner.ErrOwnerHasPatients,
		supply.ErrSupplyAlreadyExists,
		appointment.ErrAppointmentConflict,
		hospitalization.ErrAlreadyHospitalized,
		sale.ErrSessionAlreadyOpen,
		inventory.ErrAlreadyDiscounted,
		inventory.ErrAlreadyRestored,
	}

	// Requests that are well formed but not valid for the record's state.
	stateErrors = []error{
		consultation.ErrNotDraft,
		hospitalization.ErrNotActive,
		sale.ErrNotDraft,
		sale.ErrNotPaid,
		sale.ErrEmptySale,
		sale.ErrNoOpenSession,
		sale.ErrSessionClosed,
		appointment.ErrInvalidStatusTransition,
		patient.ErrPatientDeceased,
		supply.ErrSupplyInactive,
		supply.ErrWeightRequired,
		supply.ErrWeightOutOfRange,
		supply.ErrDoseNotConfigured,
		catalog.ErrServiceInactive,
		service.ErrNotVeterinarian,
	}

	badRequestErrors = []error{
		rut.ErrInvalid,
		patient.ErrInvalidSpecies,
		patient.ErrInvalidSex,
		patient.ErrInvalidStatus,
		patient.ErrInvalidBirthDate,
		patient.ErrInvalidWeight,
		patient.ErrSameOwner,
		supply.ErrInvalidFormat,
		supply.ErrInvalidKind,
		supply.ErrInvalidQuantity,
		supply.ErrInvalidPrice,
		catalog.ErrInvalidCategory,
		catalog.ErrInvalidPrice,
		catalog.ErrDuplicatedSupply,
		consultation.ErrInvalidDays,
		hospitalization.ErrInvalidDailyRate,
		sale.ErrInvalidPaymentMethod,
		sale.ErrInvalidItem,
		sale.ErrInvalidDiscount,
		appointment.ErrScheduledInPast,
		appointment.ErrInvalidDuration,
		appointment.ErrInvalidAppointmentType,
		inventory.ErrReasonRequired,
		history.ErrInvalidFilter,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	var shortage *inventory.ShortageError
	if errors.As(err, &shortage) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   shortage.Error(),
			Code:    "INSUFFICIENT_STOCK",
			Details: shortage.Shortages,
		})
		return
	}

	switch {
	case isAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case isAny(err, conflictErrors):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case isAny(err, stateErrors):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})

	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "ACCOUNT_INACTIVE"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}

// queryUUID reads an optional uuid filter. A malformed value is answered with
// 400 and ok=false.
func queryUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": must be a valid UUID"})
		return nil, false
	}
	return &id, true
}

// queryTime reads an optional RFC 3339 timestamp.
func queryTime(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": must be RFC 3339"})
		return nil, false
	}
	return &t, true
}

func queryEnum[T ~string](c *gin.Context, key string) *T {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v := T(raw)
	return &v
}

func currentUser(c *gin.Context) *domain.Claims {
	claims, _ := middleware.ClaimsFrom(c)
	return claims
}
