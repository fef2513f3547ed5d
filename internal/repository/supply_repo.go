package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
)

type SupplyRepo struct {
	db *gorm.DB
}

var _ supply.Repository = (*SupplyRepo)(nil)

func (r *SupplyRepo) Create(ctx context.Context, s *supply.Supply) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return supply.ErrSupplyAlreadyExists
	}
	return err
}

func (r *SupplyRepo) GetByID(ctx context.Context, id uuid.UUID) (*supply.Supply, error) {
	var s supply.Supply
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, supply.ErrSupplyNotFound)
	}
	return &s, nil
}

func (r *SupplyRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*supply.Supply, error) {
	out := make(map[uuid.UUID]*supply.Supply, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*supply.Supply
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ID] = s
	}
	return out, nil
}

// LockByIDs takes the row locks in id order so two discounts touching the
// same supplies cannot deadlock. A missing id is ErrSupplyNotFound.
func (r *SupplyRepo) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]*supply.Supply, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	var rows []*supply.Supply
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id IN ?", sorted).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("locking supplies: %w", err)
	}
	if len(rows) != len(sorted) {
		return nil, supply.ErrSupplyNotFound
	}
	return rows, nil
}

func (r *SupplyRepo) Save(ctx context.Context, s *supply.Supply) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

func (r *SupplyRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&supply.Supply{}).Where("code = ?", code).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SupplyRepo) List(ctx context.Context, q *supply.ListSuppliesQuery) (*supply.PagedSupplies, error) {
	db := r.db.WithContext(ctx).Model(&supply.Supply{})
	if q.Search != "" {
		like := likePattern(q.Search)
		db = db.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}
	if q.Kind != nil {
		db = db.Where("kind = ?", *q.Kind)
	}
	if q.LowStock {
		db = db.Where("stock <= min_stock")
	}
	if q.ActiveOnly {
		db = db.Where("active = ?", true)
	}

	var rows []*supply.Supply
	p, total, err := paginate(db, q.Page, q.PageSize, "name", &rows)
	if err != nil {
		return nil, err
	}
	return &supply.PagedSupplies{
		Supplies:   rows,
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: domain.TotalPages(total, p.PageSize),
	}, nil
}

func (r *SupplyRepo) AppendMovements(ctx context.Context, ms []*supply.Movement) error {
	if len(ms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ms).Error
}

func (r *SupplyRepo) ListMovements(ctx context.Context, q *supply.ListMovementsQuery) (*supply.PagedMovements, error) {
	db := r.db.WithContext(ctx).Model(&supply.Movement{})
	if q.SupplyID != uuid.Nil {
		db = db.Where("supply_id = ?", q.SupplyID)
	}
	if q.OriginType != nil {
		db = db.Where("origin_type = ?", *q.OriginType)
	}
	if q.OriginID != nil {
		db = db.Where("origin_id = ?", *q.OriginID)
	}

	var rows []*supply.Movement
	p, total, err := paginate(db, q.Page, q.PageSize, "occurred_at DESC, id", &rows)
	if err != nil {
		return nil, err
	}
	return &supply.PagedMovements{
		Movements:  rows,
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: domain.TotalPages(total, p.PageSize),
	}, nil
}
