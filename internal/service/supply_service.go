package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/inventory"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/repository"
)

type SupplyService struct {
	store  *repository.Store
	engine *inventory.Engine
	log    *zap.Logger
}

func NewSupplyService(store *repository.Store, engine *inventory.Engine, log *zap.Logger) *SupplyService {
	return &SupplyService{store: store, engine: engine, log: log}
}

func (s *SupplyService) CreateSupply(ctx context.Context, cmd *supply.CreateSupplyCommand) (*supply.Supply, error) {
	if err := validateCreateSupply(cmd); err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(cmd.Code))
	exists, err := s.store.Supplies.ExistsByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("checking uniqueness: %w", err)
	}
	if exists {
		return nil, supply.ErrSupplyAlreadyExists
	}

	sp := &supply.Supply{
		Code:                code,
		Name:                strings.TrimSpace(cmd.Name),
		Kind:                cmd.Kind,
		Format:              cmd.Format,
		DosePerKg:           cmd.DosePerKg,
		ApplicationsPerDay:  cmd.ApplicationsPerDay,
		ContentPerContainer: cmd.ContentPerContainer,
		ContentUnit:         strings.TrimSpace(cmd.ContentUnit),
		MinWeightKg:         cmd.MinWeightKg,
		MaxWeightKg:         cmd.MaxWeightKg,
		MinStock:            cmd.MinStock,
		CostPrice:           cmd.CostPrice,
		SalePrice:           cmd.SalePrice,
		Active:              true,
	}
	if sp.ApplicationsPerDay <= 0 {
		sp.ApplicationsPerDay = 1
	}
	if !sp.ContentPerContainer.IsPositive() {
		sp.ContentPerContainer = decimal.NewFromInt(1)
	}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Supplies.Create(ctx, sp); err != nil {
			return err
		}
		if cmd.InitialStock > 0 {
			restocked, _, err := s.engine.Restock(audit.WithReason(ctx, "initial stock"), tx.Supplies, sp.ID, supply.RestockCommand{
				Quantity: cmd.InitialStock,
				Note:     "initial stock",
			})
			if err != nil {
				return err
			}
			sp = restocked
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to create supply", zap.Error(err))
		return nil, fmt.Errorf("creating supply: %w", err)
	}

	s.log.Info("supply created", zap.String("supply_id", sp.ID.String()), zap.String("code", sp.Code))
	return sp, nil
}

func (s *SupplyService) GetSupply(ctx context.Context, id uuid.UUID) (*supply.Supply, error) {
	return s.store.Supplies.GetByID(ctx, id)
}

// UpdateSupply edits catalog data. Stock only changes through restock,
// adjustment or discounts.
func (s *SupplyService) UpdateSupply(ctx context.Context, id uuid.UUID, cmd *supply.UpdateSupplyCommand) (*supply.Supply, error) {
	var out *supply.Supply
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		rows, err := tx.Supplies.LockByIDs(ctx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		sp := rows[0]

		var v validation
		if cmd.Name != nil {
			v.check(strings.TrimSpace(*cmd.Name) != "", "name cannot be empty")
			sp.Name = strings.TrimSpace(*cmd.Name)
		}
		if cmd.Format != nil {
			v.check(cmd.Format.IsValid(), "format is invalid")
			sp.Format = *cmd.Format
		}
		if cmd.DosePerKg != nil {
			v.check(!cmd.DosePerKg.IsNegative(), "dose_per_kg cannot be negative")
			sp.DosePerKg = *cmd.DosePerKg
		}
		if cmd.ApplicationsPerDay != nil {
			v.check(*cmd.ApplicationsPerDay > 0, "applications_per_day must be positive")
			sp.ApplicationsPerDay = *cmd.ApplicationsPerDay
		}
		if cmd.ContentPerContainer != nil {
			v.check(cmd.ContentPerContainer.IsPositive(), "content_per_container must be positive")
			sp.ContentPerContainer = *cmd.ContentPerContainer
		}
		if cmd.ContentUnit != nil {
			sp.ContentUnit = strings.TrimSpace(*cmd.ContentUnit)
		}
		if cmd.MinWeightKg != nil {
			sp.MinWeightKg = *cmd.MinWeightKg
		}
		if cmd.MaxWeightKg != nil {
			sp.MaxWeightKg = *cmd.MaxWeightKg
		}
		if cmd.MinStock != nil {
			v.check(*cmd.MinStock >= 0, "min_stock cannot be negative")
			sp.MinStock = *cmd.MinStock
		}
		if cmd.CostPrice != nil {
			v.check(!cmd.CostPrice.IsNegative(), "cost_price cannot be negative")
			sp.CostPrice = *cmd.CostPrice
		}
		if cmd.SalePrice != nil {
			v.check(!cmd.SalePrice.IsNegative(), "sale_price cannot be negative")
			sp.SalePrice = *cmd.SalePrice
		}
		v.check(sp.MaxWeightKg.IsZero() || !sp.MaxWeightKg.LessThan(sp.MinWeightKg), "max_weight_kg must not be below min_weight_kg")
		if err := v.err(); err != nil {
			return err
		}

		if err := tx.Supplies.Save(ctx, sp); err != nil {
			return fmt.Errorf("saving supply: %w", err)
		}
		out = sp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SupplyService) ListSupplies(ctx context.Context, q *supply.ListSuppliesQuery) (*supply.PagedSupplies, error) {
	return s.store.Supplies.List(ctx, q)
}

func (s *SupplyService) DeactivateSupply(ctx context.Context, id uuid.UUID) (*supply.Supply, error) {
	var out *supply.Supply
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		rows, err := tx.Supplies.LockByIDs(ctx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		sp := rows[0]
		if !sp.Active {
			out = sp
			return nil
		}
		sp.Active = false
		if err := tx.Supplies.Save(ctx, sp); err != nil {
			return fmt.Errorf("saving supply: %w", err)
		}
		out = sp
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("supply deactivated", zap.String("supply_id", id.String()))
	return out, nil
}

func (s *SupplyService) Restock(ctx context.Context, id uuid.UUID, cmd supply.RestockCommand) (*supply.Supply, *supply.Movement, error) {
	var (
		sp *supply.Supply
		m  *supply.Movement
	)
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		var err error
		sp, m, err = s.engine.Restock(ctx, tx.Supplies, id, cmd)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return sp, m, nil
}

// Adjust sets stock to a physical count. The returned movement is nil when
// the count matched.
func (s *SupplyService) Adjust(ctx context.Context, id uuid.UUID, cmd supply.AdjustCommand) (*supply.Supply, *supply.Movement, error) {
	var (
		sp *supply.Supply
		m  *supply.Movement
	)
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		var err error
		sp, m, err = s.engine.Adjust(ctx, tx.Supplies, id, cmd)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return sp, m, nil
}

// PreviewRequirement computes the containers a treatment would consume without
// touching stock.
func (s *SupplyService) PreviewRequirement(ctx context.Context, id uuid.UUID, req supply.DoseRequest) (*supply.Requirement, error) {
	sp, err := s.store.Supplies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r, err := supply.Require(sp.Dosing(), req)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SupplyService) Movements(ctx context.Context, q *supply.ListMovementsQuery) (*supply.PagedMovements, error) {
	if q.SupplyID != uuid.Nil {
		if _, err := s.store.Supplies.GetByID(ctx, q.SupplyID); err != nil {
			return nil, err
		}
	}
	return s.store.Supplies.ListMovements(ctx, q)
}

func validateCreateSupply(cmd *supply.CreateSupplyCommand) error {
	var v validation

	v.check(strings.TrimSpace(cmd.Code) != "", "code is required")
	v.check(strings.TrimSpace(cmd.Name) != "", "name is required")
	v.check(cmd.Kind.IsValid(), "kind is invalid")
	v.check(cmd.Format.IsValid(), "format is invalid")
	v.check(!cmd.DosePerKg.IsNegative(), "dose_per_kg cannot be negative")
	v.check(cmd.Format == "" || !cmd.Format.WeightBased() || cmd.DosePerKg.IsPositive(), "dose_per_kg is required for weight-based formats")
	v.check(!cmd.ContentPerContainer.IsNegative(), "content_per_container cannot be negative")
	v.check(cmd.InitialStock >= 0, "initial_stock cannot be negative")
	v.check(cmd.MinStock >= 0, "min_stock cannot be negative")
	v.check(!cmd.CostPrice.IsNegative(), "cost_price cannot be negative")
	v.check(!cmd.SalePrice.IsNegative(), "sale_price cannot be negative")
	v.check(cmd.MaxWeightKg.IsZero() || !cmd.MaxWeightKg.LessThan(cmd.MinWeightKg), "max_weight_kg must not be below min_weight_kg")

	return v.err()
}
