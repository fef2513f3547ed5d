package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

// Status transitions:
//
//	draft → paid → voided
type Status string

const (
	StatusDraft  Status = "draft"
	StatusPaid   Status = "paid"
	StatusVoided Status = "voided"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentDebit    PaymentMethod = "debit"
	PaymentCredit   PaymentMethod = "credit"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentDebit, PaymentCredit, PaymentTransfer:
		return true
	}
	return false
}

type Sale struct {
	domain.Model
	audit.Tracker `gorm:"-" json:"-"`

	SessionID uuid.UUID  `gorm:"column:session_id;type:uuid;not null;index" json:"session_id"`
	OwnerID   *uuid.UUID `gorm:"column:owner_id;type:uuid;index" json:"owner_id,omitempty"`
	CreatedBy uuid.UUID  `gorm:"column:created_by;type:uuid;not null" json:"created_by"`

	Status        Status          `gorm:"column:status;type:varchar(10);not null;default:'draft';index" json:"status"`
	PaymentMethod PaymentMethod   `gorm:"column:payment_method;type:varchar(20)" json:"payment_method,omitempty"`
	Discount      decimal.Decimal `gorm:"column:discount;type:decimal(12,2);not null;default:0" json:"discount"`
	Total         decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null;default:0" json:"total"`

	StockDiscounted bool `gorm:"column:stock_discounted;not null;default:false" json:"stock_discounted"`
	StockRestored   bool `gorm:"column:stock_restored;not null;default:false" json:"stock_restored"`

	PaidAt     *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	VoidedAt   *time.Time `gorm:"column:voided_at" json:"voided_at,omitempty"`
	VoidReason string     `gorm:"column:void_reason;type:text" json:"void_reason,omitempty"`

	Items []Item `gorm:"foreignKey:SaleID" json:"items"`
}

func (Sale) TableName() string {
	return "sales"
}

type ItemKind string

const (
	ItemSupply  ItemKind = "supply"
	ItemService ItemKind = "service"
)

// Item is one sale line. UnitPrice is a snapshot of the catalog price.
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID      uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index" json:"sale_id"`
	Kind        ItemKind        `gorm:"column:kind;type:varchar(10);not null" json:"kind"`
	SupplyID    *uuid.UUID      `gorm:"column:supply_id;type:uuid;index" json:"supply_id,omitempty"`
	ServiceID   *uuid.UUID      `gorm:"column:service_id;type:uuid" json:"service_id,omitempty"`
	Description string          `gorm:"column:description;type:varchar(200);not null" json:"description"`
	Quantity    int64           `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:decimal(12,2);not null" json:"subtotal"`
}

func (Item) TableName() string {
	return "sale_items"
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
	return nil
}

// Gross is the sum of item subtotals before the discount.
func (s *Sale) Gross() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return total
}

// ComputeTotal applies the discount and never goes below zero.
func (s *Sale) ComputeTotal() decimal.Decimal {
	total := s.Gross().Sub(s.Discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (s *Sale) Pay(method PaymentMethod, at time.Time) error {
	if s.Status != StatusDraft {
		return ErrNotDraft
	}
	if !method.IsValid() {
		return ErrInvalidPaymentMethod
	}
	if len(s.Items) == 0 {
		return ErrEmptySale
	}
	s.PaymentMethod = method
	s.Total = s.ComputeTotal()
	s.Status = StatusPaid
	s.StockDiscounted = true
	s.PaidAt = &at
	return nil
}

func (s *Sale) Void(reason string, at time.Time) error {
	if s.Status != StatusPaid {
		return ErrNotPaid
	}
	s.Status = StatusVoided
	s.StockRestored = true
	s.VoidedAt = &at
	s.VoidReason = reason
	return nil
}

func (s *Sale) AuditEntity() history.EntityType { return history.EntitySale }

func (s *Sale) AuditKey() string { return s.ID.String() }

func (s *Sale) AuditFields() audit.Fields {
	return audit.Fields{
		"session_id":       audit.UUID(s.SessionID),
		"owner_id":         audit.UUIDPtr(s.OwnerID),
		"status":           string(s.Status),
		"payment_method":   string(s.PaymentMethod),
		"discount":         audit.Decimal(s.Discount),
		"total":            audit.Decimal(s.Total),
		"stock_discounted": s.StockDiscounted,
		"stock_restored":   s.StockRestored,
		"void_reason":      s.VoidReason,
	}
}

var saleRules = audit.Rules{
	"status":   {Kind: history.KindStatusChanged, Level: saleStatusLevel},
	"discount": {Kind: history.KindPriceChanged, Criticity: history.CriticityMedium},
}

func saleStatusLevel(ch history.Change, _ audit.Fields) history.Criticity {
	if ch.After == string(StatusVoided) {
		return history.CriticityHigh
	}
	return history.CriticityMedium
}

func (s *Sale) AuditRules() audit.Rules { return saleRules }

type CreateSaleCommand struct {
	OwnerID   *uuid.UUID
	Discount  decimal.Decimal
	CreatedBy uuid.UUID
}

type AddItemCommand struct {
	Kind      ItemKind
	SupplyID  *uuid.UUID
	ServiceID *uuid.UUID
	Quantity  int64
}

type ListSalesQuery struct {
	SessionID *uuid.UUID
	OwnerID   *uuid.UUID
	Status    *Status
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

type PagedSales struct {
	Sales      []*Sale `json:"sales"`
	TotalCount int64   `json:"total_count"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}
