package sale

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, s *Sale) error

	// GetByID loads the sale with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	Save(ctx context.Context, s *Sale) error
	AddItem(ctx context.Context, it *Item) error
	RemoveItem(ctx context.Context, saleID, itemID uuid.UUID) error
	List(ctx context.Context, q *ListSalesQuery) (*PagedSales, error)

	// CashNet returns cash collected minus cash voided within the session.
	CashNet(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *CashSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*CashSession, error)

	// GetOpen returns ErrNoOpenSession when the register is closed.
	GetOpen(ctx context.Context) (*CashSession, error)

	// LockOpen is GetOpen holding a row lock until the transaction ends.
	LockOpen(ctx context.Context) (*CashSession, error)

	Save(ctx context.Context, s *CashSession) error
}
