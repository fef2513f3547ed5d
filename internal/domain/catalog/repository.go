package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists the service together with its default supplies.
	Create(ctx context.Context, s *Service) error

	// GetByID loads the service with its default supplies.
	GetByID(ctx context.Context, id uuid.UUID) (*Service, error)

	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Service, error)
	Save(ctx context.Context, s *Service) error
	ReplaceSupplies(ctx context.Context, serviceID uuid.UUID, supplies []ServiceSupply) error
	List(ctx context.Context, q *ListServicesQuery) (*PagedServices, error)
}
