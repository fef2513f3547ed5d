package supply

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new supply. Returns ErrSupplyAlreadyExists on duplicate code.
	Create(ctx context.Context, s *Supply) error

	GetByID(ctx context.Context, id uuid.UUID) (*Supply, error)

	// LockByIDs loads the supplies in id order holding a row lock until the
	// surrounding transaction ends.
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*Supply, error)

	// Save writes every column of an existing supply.
	Save(ctx context.Context, s *Supply) error

	ExistsByCode(ctx context.Context, code string) (bool, error)

	List(ctx context.Context, q *ListSuppliesQuery) (*PagedSupplies, error)

	AppendMovements(ctx context.Context, ms []*Movement) error

	ListMovements(ctx context.Context, q *ListMovementsQuery) (*PagedMovements, error)
}
