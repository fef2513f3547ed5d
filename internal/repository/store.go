// Package repository implements the domain repositories on gorm.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
)

// Store groups every repository over one connection. Inside InTx all of them
// share the transaction.
type Store struct {
	db *gorm.DB

	Users            *UserRepo
	Owners           *OwnerRepo
	Patients         *PatientRepo
	Supplies         *SupplyRepo
	Services         *ServiceRepo
	Consultations    *ConsultationRepo
	Hospitalizations *HospitalizationRepo
	Sales            *SaleRepo
	Sessions         *SessionRepo
	Appointments     *AppointmentRepo
	History          *HistoryRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:               db,
		Users:            &UserRepo{db: db},
		Owners:           &OwnerRepo{db: db},
		Patients:         &PatientRepo{db: db},
		Supplies:         &SupplyRepo{db: db},
		Services:         &ServiceRepo{db: db},
		Consultations:    &ConsultationRepo{db: db},
		Hospitalizations: &HospitalizationRepo{db: db},
		Sales:            &SaleRepo{db: db},
		Sessions:         &SessionRepo{db: db},
		Appointments:     &AppointmentRepo{db: db},
		History:          &HistoryRepo{db: db},
	}
}

// InTx runs fn in a transaction. Returning an error rolls back every write
// made through tx, history events included.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// ClaimFlag flips a boolean column from false to true on one row and reports
// whether this call did it. It runs as a plain table update so the audit
// plugin does not see it; the owning entity's save records the change.
func (s *Store) ClaimFlag(ctx context.Context, table, column string, id uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).
		Table(table).
		Where("id = ? AND "+column+" = ?", id, false).
		Updates(map[string]any{column: true})
	if res.Error != nil {
		return false, fmt.Errorf("claiming %s.%s: %w", table, column, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// paginate counts q and loads one page of it into dest. Preloads apply to the
// page query only.
func paginate(q *gorm.DB, page, pageSize int, order string, dest any, preloads ...string) (domain.Page, int64, error) {
	p := domain.Page{Page: page, PageSize: pageSize}.Normalize()

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return p, 0, fmt.Errorf("counting: %w", err)
	}
	for _, name := range preloads {
		q = q.Preload(name)
	}
	if err := q.Order(order).Limit(p.PageSize).Offset(p.Offset()).Find(dest).Error; err != nil {
		return p, 0, fmt.Errorf("listing: %w", err)
	}
	return p, total, nil
}
