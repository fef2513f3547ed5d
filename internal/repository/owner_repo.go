package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/owner"
)

type OwnerRepo struct {
	db *gorm.DB
}

var _ owner.Repository = (*OwnerRepo)(nil)

func (r *OwnerRepo) Create(ctx context.Context, o *owner.Owner) error {
	err := r.db.WithContext(ctx).Create(o).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return owner.ErrOwnerAlreadyExists
	}
	return err
}

func (r *OwnerRepo) GetByID(ctx context.Context, id uuid.UUID) (*owner.Owner, error) {
	var o owner.Owner
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err, owner.ErrOwnerNotFound)
	}
	return &o, nil
}

func (r *OwnerRepo) GetByRUT(ctx context.Context, rut string) (*owner.Owner, error) {
	var o owner.Owner
	if err := r.db.WithContext(ctx).Where("rut = ?", rut).First(&o).Error; err != nil {
		return nil, notFound(err, owner.ErrOwnerNotFound)
	}
	return &o, nil
}

func (r *OwnerRepo) Save(ctx context.Context, o *owner.Owner) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(o).Error
}

func (r *OwnerRepo) SoftDelete(ctx context.Context, o *owner.Owner) error {
	return r.db.WithContext(ctx).Delete(o).Error
}

func (r *OwnerRepo) ExistsByRUT(ctx context.Context, rut string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&owner.Owner{}).Where("rut = ?", rut).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *OwnerRepo) List(ctx context.Context, q *owner.ListOwnersQuery) (*owner.PagedOwners, error) {
	db := r.db.WithContext(ctx).Model(&owner.Owner{})
	if q.Search != "" {
		like := likePattern(q.Search)
		db = db.Where("LOWER(first_name || ' ' || last_name) LIKE ? OR LOWER(rut) LIKE ?", like, like)
	}

	var rows []*owner.Owner
	p, total, err := paginate(db, q.Page, q.PageSize, "last_name, first_name", &rows)
	if err != nil {
		return nil, err
	}
	return &owner.PagedOwners{
		Owners:     rows,
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: domain.TotalPages(total, p.PageSize),
	}, nil
}
