package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/hospitalization"
)

type HospitalizationRepo struct {
	db *gorm.DB
}

var _ hospitalization.Repository = (*HospitalizationRepo)(nil)

// Create maps the one-active-stay index violation to ErrAlreadyHospitalized.
func (r *HospitalizationRepo) Create(ctx context.Context, h *hospitalization.Hospitalization) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(h).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return hospitalization.ErrAlreadyHospitalized
	}
	return err
}

func (r *HospitalizationRepo) GetByID(ctx context.Context, id uuid.UUID) (*hospitalization.Hospitalization, error) {
	var h hospitalization.Hospitalization
	if err := r.db.WithContext(ctx).Preload("Supplies").First(&h, "id = ?", id).Error; err != nil {
		return nil, notFound(err, hospitalization.ErrHospitalizationNotFound)
	}
	return &h, nil
}

func (r *HospitalizationRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*hospitalization.Hospitalization, error) {
	var h hospitalization.Hospitalization
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Preload("Supplies").
		First(&h, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, hospitalization.ErrHospitalizationNotFound)
	}
	return &h, nil
}

func (r *HospitalizationRepo) Save(ctx context.Context, h *hospitalization.Hospitalization) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(h).Error
}

func (r *HospitalizationRepo) AddSupply(ctx context.Context, l *hospitalization.SupplyLine) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *HospitalizationRepo) SaveSupplyLines(ctx context.Context, lines []hospitalization.SupplyLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Save(&lines).Error
}

func (r *HospitalizationRepo) HasActive(ctx context.Context, patientID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&hospitalization.Hospitalization{}).
		Where("patient_id = ? AND status = ?", patientID, hospitalization.StatusActive).
		Count(&n).Error
	return n > 0, err
}

func (r *HospitalizationRepo) List(ctx context.Context, q *hospitalization.ListHospitalizationsQuery) (*hospitalization.PagedHospitalizations, error) {
	db := r.db.WithContext(ctx).Model(&hospitalization.Hospitalization{})
	if q.PatientID != nil {
		db = db.Where("patient_id = ?", *q.PatientID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}

	var rows []*hospitalization.Hospitalization
	p, total, err := paginate(db, q.Page, q.PageSize, "admitted_at DESC", &rows, "Supplies")
	if err != nil {
		return nil, err
	}
	return &hospitalization.PagedHospitalizations{
		Hospitalizations: rows,
		TotalCount:       total,
		Page:             p.Page,
		PageSize:         p.PageSize,
		TotalPages:       domain.TotalPages(total, p.PageSize),
	}, nil
}
