package consultation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Consultation) error

	// GetByID loads the consultation with its service and supply lines.
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)

	// GetForUpdate is GetByID holding a row lock on the consultation until the
	// surrounding transaction ends. Lines are read after the lock is taken.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Consultation, error)

	// Save writes the consultation header only; lines have their own methods.
	Save(ctx context.Context, c *Consultation) error

	AddService(ctx context.Context, l *ServiceLine) error
	AddSupply(ctx context.Context, l *SupplyLine) error
	RemoveLine(ctx context.Context, consultationID, lineID uuid.UUID) error
	SaveSupplyLines(ctx context.Context, lines []SupplyLine) error
	List(ctx context.Context, q *ListConsultationsQuery) (*PagedConsultations, error)
}
