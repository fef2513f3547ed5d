package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/sale"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/repository"
)

type CashService struct {
	store *repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewCashService(store *repository.Store, log *zap.Logger) *CashService {
	return &CashService{store: store, log: log, now: time.Now}
}

// Open starts a register session. Only one may be open at a time.
func (s *CashService) Open(ctx context.Context, by uuid.UUID, openingAmount decimal.Decimal, notes string) (*sale.CashSession, error) {
	if openingAmount.IsNegative() {
		return nil, &ValidationError{Fields: []string{"opening_amount cannot be negative"}}
	}

	_, err := s.store.Sessions.GetOpen(ctx)
	switch {
	case err == nil:
		return nil, sale.ErrSessionAlreadyOpen
	case !errors.Is(err, sale.ErrNoOpenSession):
		return nil, fmt.Errorf("checking open session: %w", err)
	}

	cs := &sale.CashSession{
		OpenedBy:      by,
		OpenedAt:      s.now().UTC(),
		OpeningAmount: openingAmount,
		Status:        sale.SessionOpen,
		Notes:         notes,
	}
	if err := s.store.Sessions.Create(ctx, cs); err != nil {
		return nil, err
	}

	s.log.Info("cash session opened",
		zap.String("session_id", cs.ID.String()),
		zap.String("opening", openingAmount.StringFixed(2)),
	)
	return cs, nil
}

// Close settles the open session against the counted cash.
func (s *CashService) Close(ctx context.Context, by uuid.UUID, counted decimal.Decimal, notes string) (*sale.CashSession, error) {
	if counted.IsNegative() {
		return nil, &ValidationError{Fields: []string{"counted_amount cannot be negative"}}
	}

	var out *sale.CashSession
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		cs, err := tx.Sessions.LockOpen(ctx)
		if err != nil {
			return err
		}
		net, err := tx.Sales.CashNet(ctx, cs.ID)
		if err != nil {
			return fmt.Errorf("summing cash: %w", err)
		}
		if err := cs.Close(by, s.now().UTC(), counted, net); err != nil {
			return err
		}
		if notes != "" {
			cs.Notes = notes
		}
		if err := tx.Sessions.Save(ctx, cs); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		out = cs
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := s.log.Info
	if !out.Difference.IsZero() {
		log = s.log.Warn
	}
	log("cash session closed",
		zap.String("session_id", out.ID.String()),
		zap.String("expected", out.ExpectedAmount.StringFixed(2)),
		zap.String("counted", out.CountedAmount.StringFixed(2)),
		zap.String("difference", out.Difference.StringFixed(2)),
	)
	return out, nil
}

func (s *CashService) Current(ctx context.Context) (*sale.CashSession, error) {
	return s.store.Sessions.GetOpen(ctx)
}

func (s *CashService) GetSession(ctx context.Context, id uuid.UUID) (*sale.CashSession, error) {
	return s.store.Sessions.GetByID(ctx, id)
}
