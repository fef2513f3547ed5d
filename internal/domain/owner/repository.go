package owner

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new owner. Returns ErrOwnerAlreadyExists on duplicate RUT.
	Create(ctx context.Context, o *Owner) error

	// GetByID returns ErrOwnerNotFound if the owner does not exist or was deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*Owner, error)

	GetByRUT(ctx context.Context, rut string) (*Owner, error)
	Save(ctx context.Context, o *Owner) error
	SoftDelete(ctx context.Context, o *Owner) error
	List(ctx context.Context, q *ListOwnersQuery) (*PagedOwners, error)
	ExistsByRUT(ctx context.Context, rut string) (bool, error)
}
