package hospitalization

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, h *Hospitalization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hospitalization, error)

	// GetForUpdate is GetByID holding a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Hospitalization, error)
	Save(ctx context.Context, h *Hospitalization) error
	AddSupply(ctx context.Context, l *SupplyLine) error
	SaveSupplyLines(ctx context.Context, lines []SupplyLine) error

	// HasActive reports whether the patient has a stay that was not discharged.
	HasActive(ctx context.Context, patientID uuid.UUID) (bool, error)

	List(ctx context.Context, q *ListHospitalizationsQuery) (*PagedHospitalizations, error)
}
