package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/catalog"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/repository"
)

type CatalogService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewCatalogService(store *repository.Store, log *zap.Logger) *CatalogService {
	return &CatalogService{store: store, log: log}
}

func (s *CatalogService) CreateService(ctx context.Context, cmd *catalog.CreateServiceCommand) (*catalog.Service, error) {
	var v validation
	v.check(strings.TrimSpace(cmd.Name) != "", "name is required")
	v.check(cmd.Category.IsValid(), "category is invalid")
	v.check(!cmd.Price.IsNegative(), "price cannot be negative")
	if err := v.err(); err != nil {
		return nil, err
	}

	lines, err := s.supplyLines(ctx, s.store, cmd.Supplies)
	if err != nil {
		return nil, err
	}

	svc := &catalog.Service{
		Name:     strings.TrimSpace(cmd.Name),
		Category: cmd.Category,
		Price:    cmd.Price,
		Active:   true,
		Supplies: lines,
	}
	if err := s.store.Services.Create(ctx, svc); err != nil {
		s.log.Error("failed to create service", zap.Error(err))
		return nil, fmt.Errorf("creating service: %w", err)
	}

	s.log.Info("service created", zap.String("service_id", svc.ID.String()), zap.Int("supplies", len(lines)))
	return svc, nil
}

func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	return s.store.Services.GetByID(ctx, id)
}

func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, cmd *catalog.UpdateServiceCommand) (*catalog.Service, error) {
	svc, err := s.store.Services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		if strings.TrimSpace(*cmd.Name) == "" {
			return nil, &ValidationError{Fields: []string{"name cannot be empty"}}
		}
		svc.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Category != nil {
		if !cmd.Category.IsValid() {
			return nil, catalog.ErrInvalidCategory
		}
		svc.Category = *cmd.Category
	}
	if cmd.Price != nil {
		if cmd.Price.IsNegative() {
			return nil, catalog.ErrInvalidPrice
		}
		svc.Price = *cmd.Price
	}

	if err := s.store.Services.Save(ctx, svc); err != nil {
		return nil, fmt.Errorf("saving service: %w", err)
	}
	return svc, nil
}

func (s *CatalogService) ListServices(ctx context.Context, q *catalog.ListServicesQuery) (*catalog.PagedServices, error) {
	return s.store.Services.List(ctx, q)
}

func (s *CatalogService) DeactivateService(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	svc, err := s.store.Services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return svc, nil
	}
	svc.Active = false
	if err := s.store.Services.Save(ctx, svc); err != nil {
		return nil, fmt.Errorf("saving service: %w", err)
	}
	s.log.Info("service deactivated", zap.String("service_id", id.String()))
	return svc, nil
}

// ReplaceSupplies swaps the default supplies of a service as a whole.
func (s *CatalogService) ReplaceSupplies(ctx context.Context, id uuid.UUID, inputs []catalog.SupplyInput) (*catalog.Service, error) {
	var out *catalog.Service
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Services.GetByID(ctx, id); err != nil {
			return err
		}
		lines, err := s.supplyLines(ctx, tx, inputs)
		if err != nil {
			return err
		}
		if err := tx.Services.ReplaceSupplies(ctx, id, lines); err != nil {
			return fmt.Errorf("replacing supplies: %w", err)
		}
		out, err = tx.Services.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CatalogService) supplyLines(ctx context.Context, store *repository.Store, inputs []catalog.SupplyInput) ([]catalog.ServiceSupply, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	seen := make(map[uuid.UUID]bool, len(inputs))
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		if seen[in.SupplyID] {
			return nil, catalog.ErrDuplicatedSupply
		}
		if in.Containers < 0 {
			return nil, supply.ErrInvalidQuantity
		}
		seen[in.SupplyID] = true
		ids = append(ids, in.SupplyID)
	}

	found, err := store.Supplies.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading supplies: %w", err)
	}

	lines := make([]catalog.ServiceSupply, 0, len(inputs))
	for _, in := range inputs {
		if _, ok := found[in.SupplyID]; !ok {
			return nil, fmt.Errorf("supply %s: %w", in.SupplyID, supply.ErrSupplyNotFound)
		}
		days := in.Days
		if days <= 0 {
			days = 1
		}
		lines = append(lines, catalog.ServiceSupply{SupplyID: in.SupplyID, Days: days, Containers: in.Containers})
	}
	return lines, nil
}
