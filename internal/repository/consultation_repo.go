package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/consultation"
)

type ConsultationRepo struct {
	db *gorm.DB
}

var _ consultation.Repository = (*ConsultationRepo)(nil)

func (r *ConsultationRepo) Create(ctx context.Context, c *consultation.Consultation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *ConsultationRepo) GetByID(ctx context.Context, id uuid.UUID) (*consultation.Consultation, error) {
	var c consultation.Consultation
	err := r.db.WithContext(ctx).
		Preload("Services").
		Preload("Supplies").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, consultation.ErrConsultationNotFound)
	}
	return &c, nil
}

func (r *ConsultationRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*consultation.Consultation, error) {
	var c consultation.Consultation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Preload("Services").
		Preload("Supplies").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, consultation.ErrConsultationNotFound)
	}
	return &c, nil
}

func (r *ConsultationRepo) Save(ctx context.Context, c *consultation.Consultation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (r *ConsultationRepo) AddService(ctx context.Context, l *consultation.ServiceLine) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *ConsultationRepo) AddSupply(ctx context.Context, l *consultation.SupplyLine) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// RemoveLine deletes a service or supply line of the consultation.
func (r *ConsultationRepo) RemoveLine(ctx context.Context, consultationID, lineID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	res := db.Where("id = ? AND consultation_id = ?", lineID, consultationID).Delete(&consultation.ServiceLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	res = db.Where("id = ? AND consultation_id = ?", lineID, consultationID).Delete(&consultation.SupplyLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return consultation.ErrLineNotFound
	}
	return nil
}

// SaveSupplyLines upserts the given lines, inserting the ones without an id.
func (r *ConsultationRepo) SaveSupplyLines(ctx context.Context, lines []consultation.SupplyLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Save(&lines).Error
}

func (r *ConsultationRepo) List(ctx context.Context, q *consultation.ListConsultationsQuery) (*consultation.PagedConsultations, error) {
	db := r.db.WithContext(ctx).Model(&consultation.Consultation{})
	if q.PatientID != nil {
		db = db.Where("patient_id = ?", *q.PatientID)
	}
	if q.VeterinarianID != nil {
		db = db.Where("veterinarian_id = ?", *q.VeterinarianID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.DateFrom != nil {
		db = db.Where("date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		db = db.Where("date < ?", *q.DateTo)
	}

	var rows []*consultation.Consultation
	p, total, err := paginate(db, q.Page, q.PageSize, "date DESC", &rows, "Services", "Supplies")
	if err != nil {
		return nil, err
	}
	return &consultation.PagedConsultations{
		Consultations: rows,
		TotalCount:    total,
		Page:          p.Page,
		PageSize:      p.PageSize,
		TotalPages:    domain.TotalPages(total, p.PageSize),
	}, nil
}
