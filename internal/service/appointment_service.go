package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/metrics"
)

type AppointmentService struct {
	repo        appointment.Repository
	patientRepo patient.Repository
	users       UserLookup
	metrics     *metrics.Collector
	log         *zap.Logger
	now         func() time.Time
}

func NewAppointmentService(
	repo appointment.Repository,
	patientRepo patient.Repository,
	users UserLookup,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{repo: repo, patientRepo: patientRepo, users: users, metrics: m, log: log, now: time.Now}
}

func (s *AppointmentService) ScheduleAppointment(ctx context.Context, cmd *appointment.CreateAppointmentCommand) (*appointment.Appointment, error) {
	if cmd.ScheduledAt.Before(s.now()) {
		return nil, appointment.ErrScheduledInPast
	}
	if cmd.DurationMins < appointment.MinDurationMins || cmd.DurationMins > appointment.MaxDurationMins {
		return nil, appointment.ErrInvalidDuration
	}
	if !cmd.Type.IsValid() {
		return nil, appointment.ErrInvalidAppointmentType
	}

	p, err := s.patientRepo.GetByID(ctx, cmd.PatientID)
	if err != nil {
		return nil, fmt.Errorf("verifying patient: %w", err)
	}
	if err := p.Treatable(); err != nil {
		return nil, err
	}
	if err := requireVeterinarian(ctx, s.users, cmd.VeterinarianID); err != nil {
		return nil, err
	}

	start := cmd.ScheduledAt.UTC()
	end := start.Add(time.Duration(cmd.DurationMins) * time.Minute)
	conflict, err := s.repo.HasConflict(ctx, cmd.VeterinarianID, start, end, nil)
	if err != nil {
		return nil, fmt.Errorf("checking conflicts: %w", err)
	}
	if conflict {
		return nil, appointment.ErrAppointmentConflict
	}

	a := &appointment.Appointment{
		PatientID:      cmd.PatientID,
		VeterinarianID: cmd.VeterinarianID,
		ScheduledAt:    start,
		DurationMins:   cmd.DurationMins,
		Type:           cmd.Type,
		Status:         appointment.StatusScheduled,
		Reason:         strings.TrimSpace(cmd.Reason),
		Notes:          cmd.Notes,
		CreatedBy:      cmd.CreatedBy,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	s.log.Info("appointment scheduled",
		zap.String("appointment_id", a.ID.String()),
		zap.String("veterinarian_id", a.VeterinarianID.String()),
		zap.Time("at", a.ScheduledAt),
	)
	return a, nil
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentService) ListAppointments(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	return s.repo.List(ctx, q)
}

func (s *AppointmentService) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusConfirmed)
}

func (s *AppointmentService) StartAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusInProgress)
}

func (s *AppointmentService) CompleteAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusCompleted)
}

func (s *AppointmentService) MarkNoShow(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusNoShow)
}

func (s *AppointmentService) CancelAppointment(ctx context.Context, id uuid.UUID, reason string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if err := a.Cancel(reason, s.now().UTC()); err != nil {
		return nil, err
	}
	if reason != "" {
		ctx = audit.WithReason(ctx, reason)
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}
	s.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	return a, nil
}

// Reschedule moves a scheduled or confirmed appointment. The new slot is
// checked for conflicts ignoring the appointment itself, and the status goes
// back to scheduled.
func (s *AppointmentService) Reschedule(ctx context.Context, id uuid.UUID, cmd *appointment.RescheduleCommand) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != appointment.StatusScheduled && a.Status != appointment.StatusConfirmed {
		return nil, appointment.ErrInvalidStatusTransition
	}
	if cmd.ScheduledAt.Before(s.now()) {
		return nil, appointment.ErrScheduledInPast
	}
	duration := cmd.DurationMins
	if duration == 0 {
		duration = a.DurationMins
	}
	if duration < appointment.MinDurationMins || duration > appointment.MaxDurationMins {
		return nil, appointment.ErrInvalidDuration
	}

	start := cmd.ScheduledAt.UTC()
	end := start.Add(time.Duration(duration) * time.Minute)
	conflict, err := s.repo.HasConflict(ctx, a.VeterinarianID, start, end, &a.ID)
	if err != nil {
		return nil, fmt.Errorf("checking conflicts: %w", err)
	}
	if conflict {
		return nil, appointment.ErrAppointmentConflict
	}

	a.ScheduledAt = start
	a.DurationMins = duration
	a.Status = appointment.StatusScheduled
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("saving appointment: %w", err)
	}
	return a, nil
}

func (s *AppointmentService) transition(ctx context.Context, id uuid.UUID, next appointment.AppointmentStatus) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Transition(next, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}
	s.metrics.AppointmentsTotal.WithLabelValues(string(next)).Inc()
	return a, nil
}
