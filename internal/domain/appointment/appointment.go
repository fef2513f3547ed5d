package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

type AppointmentType string

const (
	TypeConsultation AppointmentType = "consultation"
	TypeVaccination  AppointmentType = "vaccination"
	TypeSurgery      AppointmentType = "surgery"
	TypeGrooming     AppointmentType = "grooming"
	TypeControl      AppointmentType = "control"
)

func (t AppointmentType) IsValid() bool {
	switch t {
	case TypeConsultation, TypeVaccination, TypeSurgery, TypeGrooming, TypeControl:
		return true
	}
	return false
}

// State transitions possibilities:
//
//	scheduled → confirmed → in_progress → completed
//	scheduled → cancelled
//	confirmed → cancelled
//	confirmed → no_show (if patient doesn't arrive)
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

const (
	MinDurationMins = 5
	MaxDurationMins = 480
)

var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled:  {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusNoShow, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

type Appointment struct {
	domain.Model
	audit.Tracker `gorm:"-" json:"-"`

	PatientID      uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	VeterinarianID uuid.UUID `gorm:"column:veterinarian_id;type:uuid;not null;index" json:"veterinarian_id"`

	ScheduledAt  time.Time         `gorm:"column:scheduled_at;not null;index" json:"scheduled_at"`
	DurationMins int               `gorm:"column:duration_mins;not null;default:30" json:"duration_mins"`
	Type         AppointmentType   `gorm:"column:type;type:varchar(30);not null;index" json:"type"`
	Status       AppointmentStatus `gorm:"column:status;type:varchar(20);not null;default:'scheduled';index" json:"status"`

	Reason string `gorm:"column:reason;type:text" json:"reason,omitempty"`
	Notes  string `gorm:"column:notes;type:text" json:"notes,omitempty"`

	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason,omitempty"`
	CompletedAt        *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMins) * time.Minute)
}

func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	for _, s := range transitions[a.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// Transition moves to next, stamping completion when it applies.
func (a *Appointment) Transition(next AppointmentStatus, at time.Time) error {
	if !a.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	a.Status = next
	if next == StatusCompleted {
		a.CompletedAt = &at
	}
	return nil
}

func (a *Appointment) Cancel(reason string, at time.Time) error {
	if err := a.Transition(StatusCancelled, at); err != nil {
		return err
	}
	a.CancelledAt = &at
	a.CancellationReason = reason
	return nil
}

// Blocking reports whether the appointment still holds its time slot.
func (a *Appointment) Blocking() bool {
	return a.Status != StatusCancelled && a.Status != StatusNoShow
}

func (a *Appointment) AuditEntity() history.EntityType { return history.EntityAppointment }

func (a *Appointment) AuditKey() string { return a.ID.String() }

func (a *Appointment) AuditFields() audit.Fields {
	return audit.Fields{
		"patient_id":          audit.UUID(a.PatientID),
		"veterinarian_id":     audit.UUID(a.VeterinarianID),
		"scheduled_at":        audit.Time(a.ScheduledAt),
		"duration_mins":       int64(a.DurationMins),
		"type":                string(a.Type),
		"status":              string(a.Status),
		"reason":              a.Reason,
		"cancellation_reason": a.CancellationReason,
	}
}

var auditRules = audit.Rules{
	"status": {Kind: history.KindStatusChanged, Criticity: history.CriticityLow},
}

func (a *Appointment) AuditRules() audit.Rules { return auditRules }

type CreateAppointmentCommand struct {
	PatientID      uuid.UUID
	VeterinarianID uuid.UUID
	ScheduledAt    time.Time
	DurationMins   int
	Type           AppointmentType
	Reason         string
	Notes          string
	CreatedBy      uuid.UUID
}

type RescheduleCommand struct {
	ScheduledAt  time.Time
	DurationMins int
}

type ListAppointmentsQuery struct {
	PatientID      *uuid.UUID
	VeterinarianID *uuid.UUID
	Status         *AppointmentStatus
	DateFrom       *time.Time
	DateTo         *time.Time
	Page           int
	PageSize       int
}

type PagedAppointments struct {
	Appointments []*Appointment `json:"appointments"`
	TotalCount   int64          `json:"total_count"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	TotalPages   int            `json:"total_pages"`
}
