// Package catalog holds the billable clinic services and the supplies each
// one consumes by default.
package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

type Category string

const (
	CategoryConsultation Category = "consultation"
	CategoryVaccination  Category = "vaccination"
	CategorySurgery      Category = "surgery"
	CategoryLaboratory   Category = "laboratory"
	CategoryGrooming     Category = "grooming"
	CategoryOther        Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryConsultation, CategoryVaccination, CategorySurgery, CategoryLaboratory, CategoryGrooming, CategoryOther:
		return true
	}
	return false
}

type Service struct {
	domain.Model
	audit.Tracker `gorm:"-" json:"-"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string          `gorm:"column:name;type:varchar(200);not null;index" json:"name"`
	Category Category        `gorm:"column:category;type:varchar(30);not null;index" json:"category"`
	Price    decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null;default:0" json:"price"`
	Active   bool            `gorm:"column:active;not null;default:true;index" json:"active"`

	Supplies []ServiceSupply `gorm:"foreignKey:ServiceID" json:"supplies,omitempty"`
}

func (Service) TableName() string {
	return "services"
}

// ServiceSupply is a supply consumed every time the service is performed.
// Containers, when positive, overrides the dose computation.
type ServiceSupply struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceID  uuid.UUID `gorm:"column:service_id;type:uuid;not null;index" json:"service_id"`
	SupplyID   uuid.UUID `gorm:"column:supply_id;type:uuid;not null;index" json:"supply_id"`
	Days       int       `gorm:"column:days;not null;default:1" json:"days"`
	Containers int64     `gorm:"column:containers;not null;default:0" json:"containers"`
}

func (ServiceSupply) TableName() string {
	return "service_supplies"
}

func (s *ServiceSupply) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Service) AuditEntity() history.EntityType { return history.EntityService }

func (s *Service) AuditKey() string { return s.ID.String() }

func (s *Service) AuditFields() audit.Fields {
	return audit.Fields{
		"name":     s.Name,
		"category": string(s.Category),
		"price":    audit.Decimal(s.Price),
		"active":   s.Active,
	}
}

var auditRules = audit.Rules{
	"price":  {Kind: history.KindPriceChanged, Criticity: history.CriticityMedium},
	"active": {Kind: history.KindStatusChanged, Criticity: history.CriticityMedium},
}

func (s *Service) AuditRules() audit.Rules { return auditRules }

type SupplyInput struct {
	SupplyID   uuid.UUID
	Days       int
	Containers int64
}

type CreateServiceCommand struct {
	Name     string
	Category Category
	Price    decimal.Decimal
	Supplies []SupplyInput
}

type UpdateServiceCommand struct {
	Name     *string
	Category *Category
	Price    *decimal.Decimal
}

type ListServicesQuery struct {
	Search     string
	Category   *Category
	ActiveOnly bool
	Page       int
	PageSize   int
}

type PagedServices struct {
	Services   []*Service `json:"services"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
