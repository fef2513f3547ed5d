package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key. Returns ErrPatientNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// Save writes every column through the audited path.
	Save(ctx context.Context, p *Patient) error

	SoftDelete(ctx context.Context, p *Patient) error

	// List returns a paginated, filtered list of patients.
	List(ctx context.Context, q *ListPatientsQuery) (*PagedPatients, error)

	CountActiveByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
