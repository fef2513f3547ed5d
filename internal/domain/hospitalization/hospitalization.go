package hospitalization

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusDischarged Status = "discharged"
)

type Hospitalization struct {
	domain.Model
	audit.Tracker `gorm:"-" json:"-"`

	PatientID      uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	VeterinarianID uuid.UUID  `gorm:"column:veterinarian_id;type:uuid;not null;index" json:"veterinarian_id"`
	AdmittedAt     time.Time  `gorm:"column:admitted_at;not null;index" json:"admitted_at"`
	DischargedAt   *time.Time `gorm:"column:discharged_at" json:"discharged_at,omitempty"`

	Reason    string          `gorm:"column:reason;type:text;not null" json:"reason"`
	Notes     string          `gorm:"column:notes;type:text" json:"notes,omitempty"`
	DailyRate decimal.Decimal `gorm:"column:daily_rate;type:decimal(12,2);not null;default:0" json:"daily_rate"`

	Status          Status          `gorm:"column:status;type:varchar(20);not null;default:'active';index" json:"status"`
	DaysStayed      int             `gorm:"column:days_stayed;not null;default:0" json:"days_stayed"`
	Total           decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null;default:0" json:"total"`
	StockDiscounted bool            `gorm:"column:stock_discounted;not null;default:false" json:"stock_discounted"`

	Supplies []SupplyLine `gorm:"foreignKey:HospitalizationID" json:"supplies"`
}

func (Hospitalization) TableName() string {
	return "hospitalizations"
}

func (h *Hospitalization) IsActive() bool {
	return h.Status == StatusActive
}

// StayDays counts started days between admission and at, with a minimum of one.
func (h *Hospitalization) StayDays(at time.Time) int {
	hours := at.Sub(h.AdmittedAt).Hours()
	days := int(hours / 24)
	if float64(days*24) < hours {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

func (h *Hospitalization) Discharge(at time.Time, supplies decimal.Decimal) error {
	if !h.IsActive() {
		return ErrNotActive
	}
	h.DaysStayed = h.StayDays(at)
	h.Total = h.DailyRate.Mul(decimal.NewFromInt(int64(h.DaysStayed))).Add(supplies)
	h.Status = StatusDischarged
	h.DischargedAt = &at
	h.StockDiscounted = true
	return nil
}

type SupplyLine struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	HospitalizationID uuid.UUID       `gorm:"column:hospitalization_id;type:uuid;not null;index" json:"hospitalization_id"`
	SupplyID          uuid.UUID       `gorm:"column:supply_id;type:uuid;not null;index" json:"supply_id"`
	Days              int             `gorm:"column:days;not null;default:1" json:"days"`
	Containers        int64           `gorm:"column:containers;not null;default:0" json:"containers"`
	Computed          int64           `gorm:"column:computed;not null;default:0" json:"computed"`
	UnitPrice         decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null;default:0" json:"unit_price"`
	AddedAt           time.Time       `gorm:"column:added_at;not null" json:"added_at"`
}

func (SupplyLine) TableName() string {
	return "hospitalization_supplies"
}

func (l *SupplyLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.AddedAt.IsZero() {
		l.AddedAt = time.Now().UTC()
	}
	return nil
}

func (h *Hospitalization) AuditEntity() history.EntityType { return history.EntityHospitalization }

func (h *Hospitalization) AuditKey() string { return h.ID.String() }

func (h *Hospitalization) AuditFields() audit.Fields {
	return audit.Fields{
		"patient_id":       audit.UUID(h.PatientID),
		"veterinarian_id":  audit.UUID(h.VeterinarianID),
		"admitted_at":      audit.Time(h.AdmittedAt),
		"discharged_at":    audit.TimePtr(h.DischargedAt),
		"reason":           h.Reason,
		"notes":            h.Notes,
		"daily_rate":       audit.Decimal(h.DailyRate),
		"status":           string(h.Status),
		"days_stayed":      int64(h.DaysStayed),
		"total":            audit.Decimal(h.Total),
		"stock_discounted": h.StockDiscounted,
	}
}

var auditRules = audit.Rules{
	"status":     {Kind: history.KindStatusChanged, Criticity: history.CriticityMedium},
	"daily_rate": {Kind: history.KindPriceChanged, Criticity: history.CriticityMedium},
}

func (h *Hospitalization) AuditRules() audit.Rules { return auditRules }

type AdmitCommand struct {
	PatientID      uuid.UUID
	VeterinarianID uuid.UUID
	AdmittedAt     time.Time
	Reason         string
	Notes          string
	DailyRate      decimal.Decimal
}

type AddSupplyCommand struct {
	SupplyID   uuid.UUID
	Days       int
	Containers int64
}

type ListHospitalizationsQuery struct {
	PatientID *uuid.UUID
	Status    *Status
	Page      int
	PageSize  int
}

type PagedHospitalizations struct {
	Hospitalizations []*Hospitalization `json:"hospitalizations"`
	TotalCount       int64              `json:"total_count"`
	Page             int                `json:"page"`
	PageSize         int                `json:"page_size"`
	TotalPages       int                `json:"total_pages"`
}
