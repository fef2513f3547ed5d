package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/catalog"
)

type ServiceRepo struct {
	db *gorm.DB
}

var _ catalog.Repository = (*ServiceRepo)(nil)

func (r *ServiceRepo) Create(ctx context.Context, s *catalog.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ServiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	var s catalog.Service
	if err := r.db.WithContext(ctx).Preload("Supplies").First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, catalog.ErrServiceNotFound)
	}
	return &s, nil
}

func (r *ServiceRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []*catalog.Service
	if err := r.db.WithContext(ctx).Preload("Supplies").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ServiceRepo) Save(ctx context.Context, s *catalog.Service) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

func (r *ServiceRepo) ReplaceSupplies(ctx context.Context, serviceID uuid.UUID, supplies []catalog.ServiceSupply) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("service_id = ?", serviceID).Delete(&catalog.ServiceSupply{}).Error; err != nil {
		return err
	}
	if len(supplies) == 0 {
		return nil
	}
	for i := range supplies {
		supplies[i].ID = uuid.Nil
		supplies[i].ServiceID = serviceID
	}
	return db.Create(&supplies).Error
}

func (r *ServiceRepo) List(ctx context.Context, q *catalog.ListServicesQuery) (*catalog.PagedServices, error) {
	db := r.db.WithContext(ctx).Model(&catalog.Service{})
	if q.Search != "" {
		db = db.Where("LOWER(name) LIKE ?", likePattern(q.Search))
	}
	if q.Category != nil {
		db = db.Where("category = ?", *q.Category)
	}
	if q.ActiveOnly {
		db = db.Where("active = ?", true)
	}

	var rows []*catalog.Service
	p, total, err := paginate(db, q.Page, q.PageSize, "name", &rows, "Supplies")
	if err != nil {
		return nil, err
	}
	return &catalog.PagedServices{
		Services:   rows,
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: domain.TotalPages(total, p.PageSize),
	}, nil
}
