package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Save(ctx context.Context, a *Appointment) error
	List(ctx context.Context, q *ListAppointmentsQuery) (*PagedAppointments, error)

	// HasConflict checks whether a veterinarian already has a blocking
	// appointment overlapping [start, end).
	HasConflict(ctx context.Context, vetID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
}
