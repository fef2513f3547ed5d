// Package inventory moves stock. Every change goes through a locked, audited
// save of the supply plus an append-only movement row, inside the caller's
// transaction.
package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/metrics"
)

// Stock is the part of the supply repository the engine writes through. It
// must be bound to the surrounding transaction.
type Stock interface {
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*supply.Supply, error)
	Save(ctx context.Context, s *supply.Supply) error
	AppendMovements(ctx context.Context, ms []*supply.Movement) error
}

// Claimer flips a one-way boolean flag on a row.
type Claimer interface {
	ClaimFlag(ctx context.Context, table, column string, id uuid.UUID) (bool, error)
}

// Origin is the record a stock movement belongs to.
type Origin struct {
	Type supply.OriginType
	ID   uuid.UUID
}

func (o Origin) String() string {
	return string(o.Type) + " " + o.ID.String()
}

// Line asks for whole containers of one supply.
type Line struct {
	SupplyID   uuid.UUID
	Containers int64
}

type Engine struct {
	log     *zap.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

func NewEngine(log *zap.Logger, m *metrics.Collector) *Engine {
	return &Engine{log: log.Named("inventory"), metrics: m, now: time.Now}
}

// Merge sums containers per supply and drops empty lines. The result is in
// supply id order.
func Merge(lines []Line) []Line {
	totals := make(map[uuid.UUID]int64, len(lines))
	for _, l := range lines {
		if l.Containers <= 0 {
			continue
		}
		totals[l.SupplyID] += l.Containers
	}
	out := make([]Line, 0, len(totals))
	for id, n := range totals {
		out = append(out, Line{SupplyID: id, Containers: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SupplyID.String() < out[j].SupplyID.String() })
	return out
}

// ClaimOrigin marks the origin row as discounted. It fails with
// ErrAlreadyDiscounted when another call got there first.
func (e *Engine) ClaimOrigin(ctx context.Context, c Claimer, table string, id uuid.UUID) error {
	ok, err := c.ClaimFlag(ctx, table, "stock_discounted", id)
	if err != nil {
		return err
	}
	if !ok {
		e.log.Warn("double discount prevented", zap.String("table", table), zap.String("id", id.String()))
		return ErrAlreadyDiscounted
	}
	return nil
}

// ClaimRestore is ClaimOrigin for the stock_restored flag.
func (e *Engine) ClaimRestore(ctx context.Context, c Claimer, table string, id uuid.UUID) error {
	ok, err := c.ClaimFlag(ctx, table, "stock_restored", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyRestored
	}
	return nil
}

// Discount takes every line out of stock or nothing at all. When any supply
// is inactive or short, the returned *ShortageError lists all of them.
func (e *Engine) Discount(ctx context.Context, stock Stock, origin Origin, lines []Line) ([]*supply.Movement, error) {
	merged := Merge(lines)
	if len(merged) == 0 {
		return nil, nil
	}

	supplies, err := stock.LockByIDs(ctx, ids(merged))
	if err != nil {
		return nil, err
	}
	byID := index(supplies)

	var shortages []Shortage
	for _, l := range merged {
		s := byID[l.SupplyID]
		if !s.Active || s.Stock < l.Containers {
			shortages = append(shortages, Shortage{
				SupplyID:  s.ID,
				Code:      s.Code,
				Name:      s.Name,
				Required:  l.Containers,
				Available: s.Stock,
				Inactive:  !s.Active,
			})
		}
	}
	if len(shortages) > 0 {
		e.metrics.ShortagesTotal.Inc()
		e.log.Info("discount rejected", zap.String("origin", origin.String()), zap.Int("shortages", len(shortages)))
		return nil, &ShortageError{Shortages: shortages}
	}

	ctx = withOriginReason(ctx, origin)
	movements := make([]*supply.Movement, 0, len(merged))
	for _, l := range merged {
		s := byID[l.SupplyID]
		if err := s.Take(l.Containers); err != nil {
			return nil, fmt.Errorf("taking %s: %w", s.Code, err)
		}
		if err := stock.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("saving %s: %w", s.Code, err)
		}
		movements = append(movements, e.movement(ctx, s, supply.MovementOut, -l.Containers, origin, ""))
	}

	if err := stock.AppendMovements(ctx, movements); err != nil {
		return nil, fmt.Errorf("appending movements: %w", err)
	}

	e.metrics.StockDiscountsTotal.WithLabelValues(string(origin.Type)).Inc()
	for _, m := range movements {
		e.metrics.ContainersTotal.WithLabelValues(string(m.Type)).Add(float64(-m.Quantity))
		e.log.Info("stock discounted",
			zap.String("origin", origin.String()),
			zap.String("supply_id", m.SupplyID.String()),
			zap.Int64("quantity", -m.Quantity),
			zap.Int64("balance", m.Balance),
		)
	}
	return movements, nil
}

// Restore puts lines back into stock with return movements.
func (e *Engine) Restore(ctx context.Context, stock Stock, origin Origin, lines []Line) ([]*supply.Movement, error) {
	merged := Merge(lines)
	if len(merged) == 0 {
		return nil, nil
	}

	supplies, err := stock.LockByIDs(ctx, ids(merged))
	if err != nil {
		return nil, err
	}
	byID := index(supplies)

	ctx = withOriginReason(ctx, origin)
	movements := make([]*supply.Movement, 0, len(merged))
	for _, l := range merged {
		s := byID[l.SupplyID]
		if err := s.Put(l.Containers); err != nil {
			return nil, err
		}
		if err := stock.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("saving %s: %w", s.Code, err)
		}
		movements = append(movements, e.movement(ctx, s, supply.MovementReturn, l.Containers, origin, ""))
	}

	if err := stock.AppendMovements(ctx, movements); err != nil {
		return nil, fmt.Errorf("appending movements: %w", err)
	}
	for _, m := range movements {
		e.metrics.ContainersTotal.WithLabelValues(string(m.Type)).Add(float64(m.Quantity))
	}
	e.log.Info("stock restored", zap.String("origin", origin.String()), zap.Int("lines", len(movements)))
	return movements, nil
}

// Restock adds purchased containers. A unit cost, when given, becomes the
// supply's cost price.
func (e *Engine) Restock(ctx context.Context, stock Stock, id uuid.UUID, cmd supply.RestockCommand) (*supply.Supply, *supply.Movement, error) {
	if cmd.Quantity <= 0 {
		return nil, nil, supply.ErrInvalidQuantity
	}
	if cmd.UnitCost != nil && cmd.UnitCost.IsNegative() {
		return nil, nil, supply.ErrInvalidPrice
	}

	s, err := lockOne(ctx, stock, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Put(cmd.Quantity); err != nil {
		return nil, nil, err
	}
	if cmd.UnitCost != nil {
		s.CostPrice = *cmd.UnitCost
	}

	origin := Origin{Type: supply.OriginRestock}
	ctx = audit.WithReason(ctx, reasonOr(ctx, "restock"))
	if err := stock.Save(ctx, s); err != nil {
		return nil, nil, fmt.Errorf("saving %s: %w", s.Code, err)
	}

	m := e.movement(ctx, s, supply.MovementIn, cmd.Quantity, origin, cmd.Note)
	if err := stock.AppendMovements(ctx, []*supply.Movement{m}); err != nil {
		return nil, nil, fmt.Errorf("appending movement: %w", err)
	}

	e.metrics.RestocksTotal.Inc()
	e.metrics.ContainersTotal.WithLabelValues(string(m.Type)).Add(float64(m.Quantity))
	e.log.Info("supply restocked", zap.String("supply_id", s.ID.String()), zap.Int64("quantity", cmd.Quantity), zap.Int64("balance", s.Stock))
	return s, m, nil
}

// Adjust sets stock to a physical count. An unchanged count writes nothing.
func (e *Engine) Adjust(ctx context.Context, stock Stock, id uuid.UUID, cmd supply.AdjustCommand) (*supply.Supply, *supply.Movement, error) {
	if cmd.CountedStock < 0 {
		return nil, nil, supply.ErrNegativeStock
	}
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, nil, ErrReasonRequired
	}

	s, err := lockOne(ctx, stock, id)
	if err != nil {
		return nil, nil, err
	}
	delta := cmd.CountedStock - s.Stock
	if delta == 0 {
		return s, nil, nil
	}
	s.Stock = cmd.CountedStock

	ctx = audit.WithReason(ctx, cmd.Reason)
	if err := stock.Save(ctx, s); err != nil {
		return nil, nil, fmt.Errorf("saving %s: %w", s.Code, err)
	}

	m := e.movement(ctx, s, supply.MovementAdjust, delta, Origin{Type: supply.OriginAdjustment}, cmd.Reason)
	if err := stock.AppendMovements(ctx, []*supply.Movement{m}); err != nil {
		return nil, nil, fmt.Errorf("appending movement: %w", err)
	}

	e.log.Warn("stock adjusted", zap.String("supply_id", s.ID.String()), zap.Int64("delta", delta), zap.String("reason", cmd.Reason))
	return s, m, nil
}

func (e *Engine) movement(ctx context.Context, s *supply.Supply, typ supply.MovementType, qty int64, origin Origin, note string) *supply.Movement {
	m := &supply.Movement{
		OccurredAt: e.now().UTC(),
		SupplyID:   s.ID,
		Type:       typ,
		Quantity:   qty,
		Balance:    s.Stock,
		UnitCost:   s.CostPrice,
		OriginType: origin.Type,
		Note:       note,
		CreatedBy:  audit.ActorFrom(ctx).UserID,
	}
	if origin.ID != uuid.Nil {
		id := origin.ID
		m.OriginID = &id
	}
	return m
}

// Value prices lines at the supplies' current sale price.
func Value(lines []Line, supplies map[uuid.UUID]*supply.Supply) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if s, ok := supplies[l.SupplyID]; ok {
			total = total.Add(s.SalePrice.Mul(decimal.NewFromInt(l.Containers)))
		}
	}
	return total
}

func lockOne(ctx context.Context, stock Stock, id uuid.UUID) (*supply.Supply, error) {
	rows, err := stock.LockByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

func ids(lines []Line) []uuid.UUID {
	out := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		out[i] = l.SupplyID
	}
	return out
}

func index(supplies []*supply.Supply) map[uuid.UUID]*supply.Supply {
	out := make(map[uuid.UUID]*supply.Supply, len(supplies))
	for _, s := range supplies {
		out[s.ID] = s
	}
	return out
}

func withOriginReason(ctx context.Context, origin Origin) context.Context {
	return audit.WithReason(ctx, reasonOr(ctx, origin.String()))
}

func reasonOr(ctx context.Context, fallback string) string {
	if r := audit.ReasonFrom(ctx); r != "" {
		return r
	}
	return fallback
}
