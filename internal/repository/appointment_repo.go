package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/appointment"
)

type AppointmentRepo struct {
	db *gorm.DB
}

var _ appointment.Repository = (*AppointmentRepo)(nil)

func (r *AppointmentRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err, appointment.ErrAppointmentNotFound)
	}
	return &a, nil
}

func (r *AppointmentRepo) Save(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error
}

// HasConflict loads the veterinarian's blocking appointments that start before
// end and checks the overlap in Go, which keeps the query portable.
func (r *AppointmentRepo) HasConflict(ctx context.Context, vetID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx).
		Where("veterinarian_id = ? AND status NOT IN ?", vetID, []appointment.AppointmentStatus{appointment.StatusCancelled, appointment.StatusNoShow}).
		Where("scheduled_at < ? AND scheduled_at >= ?", end, start.Add(-appointment.MaxDurationMins*time.Minute))
	if excludeID != nil {
		db = db.Where("id <> ?", *excludeID)
	}

	var rows []*appointment.Appointment
	if err := db.Find(&rows).Error; err != nil {
		return false, err
	}
	for _, a := range rows {
		if a.ScheduledAt.Before(end) && a.EndsAt().After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *AppointmentRepo) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	db := r.db.WithContext(ctx).Model(&appointment.Appointment{})
	if q.PatientID != nil {
		db = db.Where("patient_id = ?", *q.PatientID)
	}
	if q.VeterinarianID != nil {
		db = db.Where("veterinarian_id = ?", *q.VeterinarianID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.DateFrom != nil {
		db = db.Where("scheduled_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		db = db.Where("scheduled_at < ?", *q.DateTo)
	}

	var rows []*appointment.Appointment
	p, total, err := paginate(db, q.Page, q.PageSize, "scheduled_at", &rows)
	if err != nil {
		return nil, err
	}
	return &appointment.PagedAppointments{
		Appointments: rows,
		TotalCount:   total,
		Page:         p.Page,
		PageSize:     p.PageSize,
		TotalPages:   domain.TotalPages(total, p.PageSize),
	}, nil
}
