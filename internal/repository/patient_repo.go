package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/patient"
)

type PatientRepo struct {
	db *gorm.DB
}

var _ patient.Repository = (*PatientRepo)(nil)

func (r *PatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, patient.ErrPatientNotFound)
	}
	return &p, nil
}

func (r *PatientRepo) Save(ctx context.Context, p *patient.Patient) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *PatientRepo) SoftDelete(ctx context.Context, p *patient.Patient) error {
	return r.db.WithContext(ctx).Delete(p).Error
}

func (r *PatientRepo) CountActiveByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&patient.Patient{}).
		Where("owner_id = ? AND status <> ?", ownerID, patient.StatusDeceased).
		Count(&n).Error
	return n, err
}

func (r *PatientRepo) List(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	db := r.db.WithContext(ctx).Model(&patient.Patient{})
	if q.Search != "" {
		like := likePattern(q.Search)
		db = db.Where("LOWER(name) LIKE ? OR LOWER(microchip) LIKE ?", like, like)
	}
	if q.OwnerID != nil {
		db = db.Where("owner_id = ?", *q.OwnerID)
	}
	if q.Species != nil {
		db = db.Where("species = ?", *q.Species)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}

	var rows []*patient.Patient
	p, total, err := paginate(db, q.Page, q.PageSize, "name", &rows)
	if err != nil {
		return nil, err
	}
	return &patient.PagedPatients{
		Patients:   rows,
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: domain.TotalPages(total, p.PageSize),
	}, nil
}
