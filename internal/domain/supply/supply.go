package supply

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

type Kind string

const (
	KindMedication Kind = "medication"
	KindMaterial   Kind = "material"
)

func (k Kind) IsValid() bool {
	return k == KindMedication || k == KindMaterial
}

// Supply is a stocked medication or material. Stock counts whole containers.
type Supply struct {
	domain.Model
	audit.Tracker `gorm:"-" json:"-"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Code string `gorm:"column:code;type:varchar(40);uniqueIndex;not null" json:"code"`
	Name string `gorm:"column:name;type:varchar(200);not null;index" json:"name"`
	Kind Kind   `gorm:"column:kind;type:varchar(20);not null;index" json:"kind"`

	Format              Format          `gorm:"column:format;type:varchar(20);not null" json:"format"`
	DosePerKg           decimal.Decimal `gorm:"column:dose_per_kg;type:decimal(12,4);not null;default:0" json:"dose_per_kg"`
	ApplicationsPerDay  int             `gorm:"column:applications_per_day;not null;default:1" json:"applications_per_day"`
	ContentPerContainer decimal.Decimal `gorm:"column:content_per_container;type:decimal(12,4);not null;default:1" json:"content_per_container"`
	ContentUnit         string          `gorm:"column:content_unit;type:varchar(20)" json:"content_unit"`
	MinWeightKg         decimal.Decimal `gorm:"column:min_weight_kg;type:decimal(8,2);not null;default:0" json:"min_weight_kg"`
	MaxWeightKg         decimal.Decimal `gorm:"column:max_weight_kg;type:decimal(8,2);not null;default:0" json:"max_weight_kg"`

	Stock    int64 `gorm:"column:stock;not null;default:0;check:chk_supplies_stock,stock >= 0" json:"stock"`
	MinStock int64 `gorm:"column:min_stock;not null;default:0" json:"min_stock"`

	CostPrice decimal.Decimal `gorm:"column:cost_price;type:decimal(12,2);not null;default:0" json:"cost_price"`
	SalePrice decimal.Decimal `gorm:"column:sale_price;type:decimal(12,2);not null;default:0" json:"sale_price"`

	Active bool `gorm:"column:active;not null;default:true;index" json:"active"`
}

func (Supply) TableName() string {
	return "supplies"
}

func (s *Supply) Dosing() Dosing {
	return Dosing{
		Format:              s.Format,
		DosePerKg:           s.DosePerKg,
		ApplicationsPerDay:  s.ApplicationsPerDay,
		ContentPerContainer: s.ContentPerContainer,
		MinWeightKg:         s.MinWeightKg,
		MaxWeightKg:         s.MaxWeightKg,
	}
}

func (s *Supply) IsLow() bool {
	return s.Stock <= s.MinStock
}

// Take removes qty containers from stock.
func (s *Supply) Take(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !s.Active {
		return ErrSupplyInactive
	}
	if s.Stock < qty {
		return ErrNegativeStock
	}
	s.Stock -= qty
	return nil
}

// Put adds qty containers to stock.
func (s *Supply) Put(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	s.Stock += qty
	return nil
}

func (s *Supply) AuditEntity() history.EntityType { return history.EntitySupply }

func (s *Supply) AuditKey() string { return s.ID.String() }

func (s *Supply) AuditFields() audit.Fields {
	return audit.Fields{
		"code":                  s.Code,
		"name":                  s.Name,
		"kind":                  string(s.Kind),
		"format":                string(s.Format),
		"dose_per_kg":           audit.Decimal(s.DosePerKg),
		"applications_per_day":  int64(s.ApplicationsPerDay),
		"content_per_container": audit.Decimal(s.ContentPerContainer),
		"min_weight_kg":         audit.Decimal(s.MinWeightKg),
		"max_weight_kg":         audit.Decimal(s.MaxWeightKg),
		"stock":                 s.Stock,
		"min_stock":             s.MinStock,
		"cost_price":            audit.Decimal(s.CostPrice),
		"sale_price":            audit.Decimal(s.SalePrice),
		"active":                s.Active,
	}
}

var auditRules = audit.Rules{
	"sale_price": {Kind: history.KindPriceChanged, Criticity: history.CriticityMedium},
	"cost_price": {Kind: history.KindPriceChanged, Criticity: history.CriticityMedium},
	"active":     {Kind: history.KindStatusChanged, Criticity: history.CriticityMedium},
	"stock":      {Kind: history.KindStockChanged, Level: stockLevel},
}

// stockLevel escalates stock events as the balance approaches zero.
func stockLevel(ch history.Change, after audit.Fields) history.Criticity {
	stock, _ := ch.After.(int64)
	minStock, _ := after["min_stock"].(int64)
	switch {
	case stock <= 0:
		return history.CriticityCritical
	case stock <= minStock:
		return history.CriticityHigh
	}
	return history.CriticityLow
}

func (s *Supply) AuditRules() audit.Rules { return auditRules }

type MovementType string

const (
	MovementIn     MovementType = "in"
	MovementOut    MovementType = "out"
	MovementReturn MovementType = "return"
	MovementAdjust MovementType = "adjust"
)

// OriginType names the record that caused a movement.
type OriginType string

const (
	OriginConsultation    OriginType = "consultation"
	OriginHospitalization OriginType = "hospitalization"
	OriginSale            OriginType = "sale"
	OriginRestock         OriginType = "restock"
	OriginAdjustment      OriginType = "adjustment"
)

// Movement is one append-only line of the stock ledger. Quantity is signed.
type Movement struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	OccurredAt time.Time    `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
	SupplyID   uuid.UUID    `gorm:"column:supply_id;type:uuid;not null;index" json:"supply_id"`
	Type       MovementType `gorm:"column:type;type:varchar(10);not null" json:"type"`

	Quantity int64 `gorm:"column:quantity;not null" json:"quantity"`
	Balance  int64 `gorm:"column:balance;not null" json:"balance"`

	UnitCost   decimal.Decimal `gorm:"column:unit_cost;type:decimal(12,2);not null;default:0" json:"unit_cost"`
	OriginType OriginType      `gorm:"column:origin_type;type:varchar(30);not null;index:idx_movements_origin" json:"origin_type"`
	OriginID   *uuid.UUID      `gorm:"column:origin_id;type:uuid;index:idx_movements_origin" json:"origin_id,omitempty"`
	Note       string          `gorm:"column:note;type:text" json:"note,omitempty"`
	CreatedBy  *uuid.UUID      `gorm:"column:created_by;type:uuid" json:"created_by,omitempty"`
}

func (Movement) TableName() string {
	return "stock_movements"
}

func (m *Movement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.OccurredAt.IsZero() {
		m.OccurredAt = time.Now().UTC()
	}
	return nil
}

func (m *Movement) BeforeUpdate(tx *gorm.DB) error {
	return history.ErrImmutable
}

func (m *Movement) BeforeDelete(tx *gorm.DB) error {
	return history.ErrImmutable
}

type CreateSupplyCommand struct {
	Code                string
	Name                string
	Kind                Kind
	Format              Format
	DosePerKg           decimal.Decimal
	ApplicationsPerDay  int
	ContentPerContainer decimal.Decimal
	ContentUnit         string
	MinWeightKg         decimal.Decimal
	MaxWeightKg         decimal.Decimal
	InitialStock        int64
	MinStock            int64
	CostPrice           decimal.Decimal
	SalePrice           decimal.Decimal
}

type UpdateSupplyCommand struct {
	Name                *string
	Format              *Format
	DosePerKg           *decimal.Decimal
	ApplicationsPerDay  *int
	ContentPerContainer *decimal.Decimal
	ContentUnit         *string
	MinWeightKg         *decimal.Decimal
	MaxWeightKg         *decimal.Decimal
	MinStock            *int64
	CostPrice           *decimal.Decimal
	SalePrice           *decimal.Decimal
}

type RestockCommand struct {
	Quantity int64
	UnitCost *decimal.Decimal
	Note     string
}

type AdjustCommand struct {
	CountedStock int64
	Reason       string
}

type ListSuppliesQuery struct {
	Search     string
	Kind       *Kind
	LowStock   bool
	ActiveOnly bool
	Page       int
	PageSize   int
}

type PagedSupplies struct {
	Supplies   []*Supply `json:"supplies"`
	TotalCount int64     `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

type ListMovementsQuery struct {
	SupplyID   uuid.UUID
	OriginType *OriginType
	OriginID   *uuid.UUID
	Page       int
	PageSize   int
}

type PagedMovements struct {
	Movements  []*Movement `json:"movements"`
	TotalCount int64       `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// Label is used in log lines and summaries.
func (s *Supply) Label() string {
	return s.Code + " " + s.Name + " (" + strconv.FormatInt(s.Stock, 10) + ")"
}
