package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/appointment"
)

func TestAppointmentScheduling(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := NewAppointmentService(e.store.Appointments, e.store.Patients, e.store.Users, e.metrics, e.log)
	svc.now = func() time.Time { return now }

	vet := e.user(t, domain.RoleVeterinarian)
	p := e.patient(t, "5")
	cmd := func(at time.Time, mins int) *appointment.CreateAppointmentCommand {
		return &appointment.CreateAppointmentCommand{
			PatientID: p.ID, VeterinarianID: vet.ID, ScheduledAt: at, DurationMins: mins, Type: appointment.TypeConsultation,
		}
	}

	first, err := svc.ScheduleAppointment(ctx, cmd(now.Add(time.Hour), 30))
	require.NoError(t, err)

	tests := []struct {
		name string
		cmd  *appointment.CreateAppointmentCommand
		want error
	}{
		{"past", cmd(now.Add(-time.Minute), 30), appointment.ErrScheduledInPast},
		{"too short", cmd(now.Add(2*time.Hour), 4), appointment.ErrInvalidDuration},
		{"too long", cmd(now.Add(2*time.Hour), 481), appointment.ErrInvalidDuration},
		{"overlap", cmd(now.Add(time.Hour+15*time.Minute), 30), appointment.ErrAppointmentConflict},
		{"covers", cmd(now.Add(30*time.Minute), 120), appointment.ErrAppointmentConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ScheduleAppointment(ctx, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = svc.ScheduleAppointment(ctx, cmd(now.Add(time.Hour+30*time.Minute), 30))
	require.NoError(t, err, "back-to-back slots do not overlap")

	_, err = svc.CancelAppointment(ctx, first.ID, "owner called")
	require.NoError(t, err)
	_, err = svc.ScheduleAppointment(ctx, cmd(now.Add(time.Hour), 30))
	require.NoError(t, err, "cancelled slots are free again")
}

func TestAppointmentTransitions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewAppointmentService(e.store.Appointments, e.store.Patients, e.store.Users, e.metrics, e.log)

	vet := e.user(t, domain.RoleVeterinarian)
	p := e.patient(t, "5")
	a, err := svc.ScheduleAppointment(ctx, &appointment.CreateAppointmentCommand{
		PatientID: p.ID, VeterinarianID: vet.ID, ScheduledAt: time.Now().Add(time.Hour), DurationMins: 20, Type: appointment.TypeVaccination,
	})
	require.NoError(t, err)

	_, err = svc.CompleteAppointment(ctx, a.ID)
	assert.ErrorIs(t, err, appointment.ErrInvalidStatusTransition)

	_, err = svc.ConfirmAppointment(ctx, a.ID)
	require.NoError(t, err)
	_, err = svc.StartAppointment(ctx, a.ID)
	require.NoError(t, err)
	done, err := svc.CompleteAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	_, err = svc.MarkNoShow(ctx, a.ID)
	assert.ErrorIs(t, err, appointment.ErrInvalidStatusTransition)
}

func TestReschedule(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewAppointmentService(e.store.Appointments, e.store.Patients, e.store.Users, e.metrics, e.log)

	vet := e.user(t, domain.RoleVeterinarian)
	p := e.patient(t, "5")
	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	a, err := svc.ScheduleAppointment(ctx, &appointment.CreateAppointmentCommand{
		PatientID: p.ID, VeterinarianID: vet.ID, ScheduledAt: start, DurationMins: 60, Type: appointment.TypeSurgery,
	})
	require.NoError(t, err)

	// Overlapping only itself is fine.
	moved, err := svc.Reschedule(ctx, a.ID, &appointment.RescheduleCommand{ScheduledAt: start.Add(30 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, 60, moved.DurationMins)
	assert.True(t, moved.ScheduledAt.Equal(start.Add(30*time.Minute).UTC()))
}
