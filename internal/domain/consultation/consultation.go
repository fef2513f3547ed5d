package consultation

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
//	draft → confirmed
//	draft → cancelled
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

type Consultation struct {
	domain.Model
	audit.Tracker `gorm:"-" json:"-"`

	PatientID      uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	VeterinarianID uuid.UUID `gorm:"column:veterinarian_id;type:uuid;not null;index" json:"veterinarian_id"`
	Date           time.Time `gorm:"column:date;not null;index" json:"date"`

	Reason    string          `gorm:"column:reason;type:text" json:"reason"`
	Anamnesis string          `gorm:"column:anamnesis;type:text" json:"anamnesis,omitempty"`
	Diagnosis string          `gorm:"column:diagnosis;type:text" json:"diagnosis,omitempty"`
	Treatment string          `gorm:"column:treatment;type:text" json:"treatment,omitempty"`
	WeightKg  decimal.Decimal `gorm:"column:weight_kg;type:decimal(8,2);not null;default:0" json:"weight_kg"`

	Status          Status          `gorm:"column:status;type:varchar(20);not null;default:'draft';index" json:"status"`
	Total           decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null;default:0" json:"total"`
	StockDiscounted bool            `gorm:"column:stock_discounted;not null;default:false" json:"stock_discounted"`
	ConfirmedAt     *time.Time      `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`

	Services []ServiceLine `gorm:"foreignKey:ConsultationID" json:"services"`
	Supplies []SupplyLine  `gorm:"foreignKey:ConsultationID" json:"supplies"`
}

func (Consultation) TableName() string {
	return "consultations"
}

func (c *Consultation) IsDraft() bool {
	return c.Status == StatusDraft
}

func (c *Consultation) Confirm(total decimal.Decimal, at time.Time) error {
	if !c.IsDraft() {
		return ErrNotDraft
	}
	c.Status = StatusConfirmed
	c.Total = total
	c.StockDiscounted = true
	c.ConfirmedAt = &at
	return nil
}

func (c *Consultation) Cancel() error {
	if !c.IsDraft() {
		return ErrNotDraft
	}
	c.Status = StatusCancelled
	return nil
}

// ServiceLine is a catalog service performed during the visit. Price is a
// snapshot taken when the line was added.
type ServiceLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ConsultationID uuid.UUID       `gorm:"column:consultation_id;type:uuid;not null;index" json:"consultation_id"`
	ServiceID      uuid.UUID       `gorm:"column:service_id;type:uuid;not null" json:"service_id"`
	Name           string          `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Price          decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
}

func (ServiceLine) TableName() string {
	return "consultation_services"
}

func (l *ServiceLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// SupplyLine is a medication or material used during the visit. Computed is
// filled on confirmation; ServiceID is set for lines expanded from a
// service's default supplies.
type SupplyLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ConsultationID uuid.UUID       `gorm:"column:consultation_id;type:uuid;not null;index" json:"consultation_id"`
	SupplyID       uuid.UUID       `gorm:"column:supply_id;type:uuid;not null;index" json:"supply_id"`
	ServiceID      *uuid.UUID      `gorm:"column:service_id;type:uuid" json:"service_id,omitempty"`
	Days           int             `gorm:"column:days;not null;default:1" json:"days"`
	Containers     int64           `gorm:"column:containers;not null;default:0" json:"containers"`
	Computed       int64           `gorm:"column:computed;not null;default:0" json:"computed"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null;default:0" json:"unit_price"`
}

func (SupplyLine) TableName() string {
	return "consultation_supplies"
}

func (l *SupplyLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Billable reports whether the line is charged on its own. Lines expanded
// from a service are covered by the service price.
func (l *SupplyLine) Billable() bool {
	return l.ServiceID == nil
}

func (c *Consultation) AuditEntity() history.EntityType { return history.EntityConsultation }

func (c *Consultation) AuditKey() string { return c.ID.String() }

func (c *Consultation) AuditFields() audit.Fields {
	return audit.Fields{
		"patient_id":       audit.UUID(c.PatientID),
		"veterinarian_id":  audit.UUID(c.VeterinarianID),
		"date":             audit.Time(c.Date),
		"reason":           c.Reason,
		"anamnesis":        c.Anamnesis,
		"diagnosis":        c.Diagnosis,
		"treatment":        c.Treatment,
		"weight_kg":        audit.Decimal(c.WeightKg),
		"status":           string(c.Status),
		"total":            audit.Decimal(c.Total),
		"stock_discounted": c.StockDiscounted,
	}
}

var auditRules = audit.Rules{
	"status": {Kind: history.KindStatusChanged, Criticity: history.CriticityMedium},
}

func (c *Consultation) AuditRules() audit.Rules { return auditRules }

type CreateConsultationCommand struct {
	PatientID      uuid.UUID
	VeterinarianID uuid.UUID
	Date           time.Time
	Reason         string
	Anamnesis      string
	WeightKg       decimal.Decimal
}

type UpdateConsultationCommand struct {
	Date      *time.Time
	Reason    *string
	Anamnesis *string
	Diagnosis *string
	Treatment *string
	WeightKg  *decimal.Decimal
}

type AddSupplyCommand struct {
	SupplyID   uuid.UUID
	Days       int
	Containers int64
}

type ListConsultationsQuery struct {
	PatientID      *uuid.UUID
	VeterinarianID *uuid.UUID
	Status         *Status
	DateFrom       *time.Time
	DateTo         *time.Time
	Page           int
	PageSize       int
}

type PagedConsultations struct {
	Consultations []*Consultation `json:"consultations"`
	TotalCount    int64           `json:"total_count"`
	Page          int             `json:"page"`
	PageSize      int             `json:"page_size"`
	TotalPages    int             `json:"total_pages"`
}
