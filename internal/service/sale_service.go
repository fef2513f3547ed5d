package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/catalog"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/sale"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/inventory"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/metrics"
)

type SaleService struct {
	store   *repository.Store
	engine  *inventory.Engine
	metrics *metrics.Collector
	log     *zap.Logger
	now     func() time.Time
}

func NewSaleService(store *repository.Store, engine *inventory.Engine, m *metrics.Collector, log *zap.Logger) *SaleService {
	return &SaleService{store: store, engine: engine, metrics: m, log: log, now: time.Now}
}

// CreateSale opens a draft in the current register session.
func (s *SaleService) CreateSale(ctx context.Context, cmd *sale.CreateSaleCommand) (*sale.Sale, error) {
	if cmd.Discount.IsNegative() {
		return nil, sale.ErrInvalidDiscount
	}
	cs, err := s.store.Sessions.GetOpen(ctx)
	if err != nil {
		return nil, err
	}
	if cmd.OwnerID != nil {
		if _, err := s.store.Owners.GetByID(ctx, *cmd.OwnerID); err != nil {
			return nil, fmt.Errorf("verifying owner: %w", err)
		}
	}

	sl := &sale.Sale{
		SessionID: cs.ID,
		OwnerID:   cmd.OwnerID,
		CreatedBy: cmd.CreatedBy,
		Status:    sale.StatusDraft,
		Discount:  cmd.Discount,
	}
	if err := s.store.Sales.Create(ctx, sl); err != nil {
		return nil, fmt.Errorf("creating sale: %w", err)
	}
	return sl, nil
}

func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	return s.store.Sales.GetByID(ctx, id)
}

func (s *SaleService) ListSales(ctx context.Context, q *sale.ListSalesQuery) (*sale.PagedSales, error) {
	return s.store.Sales.List(ctx, q)
}

// AddItem adds a supply or service at its current price.
func (s *SaleService) AddItem(ctx context.Context, id uuid.UUID, cmd *sale.AddItemCommand) (*sale.Item, error) {
	if cmd.Quantity <= 0 {
		return nil, supply.ErrInvalidQuantity
	}
	sl, err := s.store.Sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sl.Status != sale.StatusDraft {
		return nil, sale.ErrNotDraft
	}

	it := &sale.Item{SaleID: id, Kind: cmd.Kind, Quantity: cmd.Quantity}
	switch cmd.Kind {
	case sale.ItemSupply:
		if cmd.SupplyID == nil {
			return nil, sale.ErrInvalidItem
		}
		sp, err := s.store.Supplies.GetByID(ctx, *cmd.SupplyID)
		if err != nil {
			return nil, err
		}
		if !sp.Active {
			return nil, supply.ErrSupplyInactive
		}
		it.SupplyID = &sp.ID
		it.Description = sp.Name
		it.UnitPrice = sp.SalePrice
	case sale.ItemService:
		if cmd.ServiceID == nil {
			return nil, sale.ErrInvalidItem
		}
		svc, err := s.store.Services.GetByID(ctx, *cmd.ServiceID)
		if err != nil {
			return nil, err
		}
		if !svc.Active {
			return nil, catalog.ErrServiceInactive
		}
		it.ServiceID = &svc.ID
		it.Description = svc.Name
		it.UnitPrice = svc.Price
	default:
		return nil, sale.ErrInvalidItem
	}

	if err := s.store.Sales.AddItem(ctx, it); err != nil {
		return nil, fmt.Errorf("adding item: %w", err)
	}
	return it, nil
}

func (s *SaleService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) error {
	sl, err := s.store.Sales.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sl.Status != sale.StatusDraft {
		return sale.ErrNotDraft
	}
	return s.store.Sales.RemoveItem(ctx, id, itemID)
}

// Pay charges the sale in the open session and takes its supply items out of
// stock. A second call fails with inventory.ErrAlreadyDiscounted.
func (s *SaleService) Pay(ctx context.Context, id uuid.UUID, method sale.PaymentMethod) (*sale.Sale, error) {
	if !method.IsValid() {
		return nil, sale.ErrInvalidPaymentMethod
	}
	origin := inventory.Origin{Type: supply.OriginSale, ID: id}
	ctx = audit.WithReason(ctx, "sale "+id.String()+" paid")

	var out *sale.Sale
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		cs, err := tx.Sessions.LockOpen(ctx)
		if err != nil {
			return err
		}
		sl, err := tx.Sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sl.Status == sale.StatusVoided {
			return sale.ErrNotDraft
		}
		if err := s.engine.ClaimOrigin(ctx, tx, "sales", id); err != nil {
			return err
		}
		if len(sl.Items) == 0 {
			return sale.ErrEmptySale
		}

		if _, err := s.engine.Discount(ctx, tx.Supplies, origin, supplyItems(sl.Items)); err != nil {
			return err
		}

		sl.SessionID = cs.ID
		if err := sl.Pay(method, s.now().UTC()); err != nil {
			return err
		}
		if err := tx.Sales.Save(ctx, sl); err != nil {
			return fmt.Errorf("saving sale: %w", err)
		}
		out = sl
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SalesTotal.WithLabelValues(string(sale.StatusPaid), string(method)).Inc()
	s.log.Info("sale paid",
		zap.String("sale_id", id.String()),
		zap.String("method", string(method)),
		zap.String("total", out.Total.StringFixed(2)),
	)
	return out, nil
}

// Void cancels a paid sale and puts its supplies back once. Cash sales can
// only be voided while the session that collected them is still open.
func (s *SaleService) Void(ctx context.Context, id uuid.UUID, reason string) (*sale.Sale, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, inventory.ErrReasonRequired
	}
	origin := inventory.Origin{Type: supply.OriginSale, ID: id}
	ctx = audit.WithReason(ctx, reason)

	var out *sale.Sale
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		sl, err := tx.Sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sl.Status != sale.StatusPaid {
			if sl.Status == sale.StatusVoided {
				return inventory.ErrAlreadyRestored
			}
			return sale.ErrNotPaid
		}
		if sl.PaymentMethod == sale.PaymentCash {
			cs, err := tx.Sessions.GetByID(ctx, sl.SessionID)
			if err != nil {
				return err
			}
			if !cs.IsOpen() {
				return sale.ErrSessionClosed
			}
		}
		if err := s.engine.ClaimRestore(ctx, tx, "sales", id); err != nil {
			return err
		}

		if _, err := s.engine.Restore(ctx, tx.Supplies, origin, supplyItems(sl.Items)); err != nil {
			return err
		}

		if err := sl.Void(reason, s.now().UTC()); err != nil {
			return err
		}
		if err := tx.Sales.Save(ctx, sl); err != nil {
			return fmt.Errorf("saving sale: %w", err)
		}
		out = sl
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SalesTotal.WithLabelValues(string(sale.StatusVoided), string(out.PaymentMethod)).Inc()
	s.log.Warn("sale voided",
		zap.String("sale_id", id.String()),
		zap.String("reason", reason),
		zap.String("total", out.Total.StringFixed(2)),
	)
	return out, nil
}

func supplyItems(items []sale.Item) []inventory.Line {
	out := make([]inventory.Line, 0, len(items))
	for _, it := range items {
		if it.Kind == sale.ItemSupply && it.SupplyID != nil {
			out = append(out, inventory.Line{SupplyID: *it.SupplyID, Containers: it.Quantity})
		}
	}
	return out
}
