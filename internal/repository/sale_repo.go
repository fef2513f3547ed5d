package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/sale"
)

type SaleRepo struct {
	db *gorm.DB
}

var _ sale.Repository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *SaleRepo) GetByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.db.WithContext(ctx).Preload("Items").First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, sale.ErrSaleNotFound)
	}
	return &s, nil
}

func (r *SaleRepo) Save(ctx context.Context, s *sale.Sale) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

func (r *SaleRepo) AddItem(ctx context.Context, it *sale.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *SaleRepo) RemoveItem(ctx context.Context, saleID, itemID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND sale_id = ?", itemID, saleID).Delete(&sale.Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sale.ErrItemNotFound
	}
	return nil
}

func (r *SaleRepo) CashNet(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	sum := func(where string, args ...any) (decimal.Decimal, error) {
		var v decimal.NullDecimal
		err := r.db.WithContext(ctx).Model(&sale.Sale{}).
			Select("SUM(total)").
			Where(where, args...).
			Row().Scan(&v)
		return v.Decimal, err
	}

	collected, err := sum("session_id = ? AND payment_method = ? AND paid_at IS NOT NULL", sessionID, sale.PaymentCash)
	if err != nil {
		return decimal.Zero, err
	}
	voided, err := sum("session_id = ? AND payment_method = ? AND status = ?", sessionID, sale.PaymentCash, sale.StatusVoided)
	if err != nil {
		return decimal.Zero, err
	}
	return collected.Sub(voided), nil
}

func (r *SaleRepo) List(ctx context.Context, q *sale.ListSalesQuery) (*sale.PagedSales, error) {
	db := r.db.WithContext(ctx).Model(&sale.Sale{})
	if q.SessionID != nil {
		db = db.Where("session_id = ?", *q.SessionID)
	}
	if q.OwnerID != nil {
		db = db.Where("owner_id = ?", *q.OwnerID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.DateFrom != nil {
		db = db.Where("created_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		db = db.Where("created_at < ?", *q.DateTo)
	}

	var rows []*sale.Sale
	p, total, err := paginate(db, q.Page, q.PageSize, "created_at DESC", &rows, "Items")
	if err != nil {
		return nil, err
	}
	return &sale.PagedSales{
		Sales:      rows,
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: domain.TotalPages(total, p.PageSize),
	}, nil
}

type SessionRepo struct {
	db *gorm.DB
}

var _ sale.SessionRepository = (*SessionRepo)(nil)

// Create maps the one-open-session index violation to ErrSessionAlreadyOpen.
func (r *SessionRepo) Create(ctx context.Context, s *sale.CashSession) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sale.ErrSessionAlreadyOpen
	}
	return err
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*sale.CashSession, error) {
	var s sale.CashSession
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, sale.ErrSessionNotFound)
	}
	return &s, nil
}

func (r *SessionRepo) GetOpen(ctx context.Context) (*sale.CashSession, error) {
	return r.open(r.db.WithContext(ctx))
}

func (r *SessionRepo) LockOpen(ctx context.Context) (*sale.CashSession, error) {
	return r.open(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}))
}

func (r *SessionRepo) open(db *gorm.DB) (*sale.CashSession, error) {
	var s sale.CashSession
	if err := db.Where("status = ?", sale.SessionOpen).First(&s).Error; err != nil {
		return nil, notFound(err, sale.ErrNoOpenSession)
	}
	return &s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s *sale.CashSession) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}
