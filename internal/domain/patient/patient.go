package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

type Species string

const (
	SpeciesCanine Species = "canine"
	SpeciesFeline Species = "feline"
	SpeciesExotic Species = "exotic"
	SpeciesOther  Species = "other"
)

func (s Species) IsValid() bool {
	switch s {
	case SpeciesCanine, SpeciesFeline, SpeciesExotic, SpeciesOther:
		return true
	}
	return false
}

type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func (s Sex) IsValid() bool {
	switch s {
	case SexMale, SexFemale, SexUnknown:
		return true
	}
	return false
}

// Status represents the lifecycle state of a patient record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeceased Status = "deceased"
)

type Patient struct {
	domain.Model
	audit.Tracker `gorm:"-" json:"-"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	OwnerID uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`

	Name      string          `gorm:"column:name;type:varchar(100);not null;index" json:"name"`
	Species   Species         `gorm:"column:species;type:varchar(20);not null;index" json:"species"`
	Breed     string          `gorm:"column:breed;type:varchar(100)" json:"breed,omitempty"`
	Sex       Sex             `gorm:"column:sex;type:varchar(10);not null;default:'unknown'" json:"sex"`
	BirthDate *time.Time      `gorm:"column:birth_date" json:"birth_date,omitempty"`
	WeightKg  decimal.Decimal `gorm:"column:weight_kg;type:decimal(8,2);not null;default:0" json:"weight_kg"`
	Microchip string          `gorm:"column:microchip;type:varchar(30);index" json:"microchip,omitempty"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'active';index" json:"status"`
	Notes  string `gorm:"column:notes;type:text" json:"notes,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) IsDeceased() bool {
	return p.Status == StatusDeceased
}

// Treatable returns ErrPatientDeceased for patients who can no longer be
// consulted, hospitalized or scheduled.
func (p *Patient) Treatable() error {
	if p.IsDeceased() {
		return ErrPatientDeceased
	}
	return nil
}

// AgeYears returns whole years since birth, or -1 when the birth date is unknown.
func (p *Patient) AgeYears(now time.Time) int {
	if p.BirthDate == nil {
		return -1
	}
	b := *p.BirthDate
	years := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		years--
	}
	return years
}

func (p *Patient) TransferTo(ownerID uuid.UUID) error {
	if err := p.Treatable(); err != nil {
		return err
	}
	if ownerID == p.OwnerID {
		return ErrSameOwner
	}
	p.OwnerID = ownerID
	return nil
}

func (p *Patient) MarkDeceased() error {
	if p.IsDeceased() {
		return ErrPatientDeceased
	}
	p.Status = StatusDeceased
	return nil
}

// RecordWeight keeps the last positive weight seen at a visit.
func (p *Patient) RecordWeight(kg decimal.Decimal) {
	if kg.IsPositive() {
		p.WeightKg = kg
	}
}

func (p *Patient) DisplayName() string {
	return strings.TrimSpace(p.Name)
}

func (p *Patient) AuditEntity() history.EntityType { return history.EntityPatient }

func (p *Patient) AuditKey() string { return p.ID.String() }

func (p *Patient) AuditFields() audit.Fields {
	return audit.Fields{
		"owner_id":   audit.UUID(p.OwnerID),
		"name":       p.Name,
		"species":    string(p.Species),
		"breed":      p.Breed,
		"sex":        string(p.Sex),
		"birth_date": audit.TimePtr(p.BirthDate),
		"weight_kg":  audit.Decimal(p.WeightKg),
		"microchip":  p.Microchip,
		"status":     string(p.Status),
		"notes":      p.Notes,
	}
}

var auditRules = audit.Rules{
	"owner_id": {Kind: history.KindOwnershipChanged, Criticity: history.CriticityHigh},
	"status":   {Kind: history.KindStatusChanged, Level: statusLevel},
}

func statusLevel(ch history.Change, _ audit.Fields) history.Criticity {
	if ch.After == string(StatusDeceased) {
		return history.CriticityCritical
	}
	return history.CriticityMedium
}

func (p *Patient) AuditRules() audit.Rules { return auditRules }

type CreatePatientCommand struct {
	OwnerID   uuid.UUID
	Name      string
	Species   Species
	Breed     string
	Sex       Sex
	BirthDate *time.Time
	WeightKg  decimal.Decimal
	Microchip string
	Notes     string
}

type UpdatePatientCommand struct {
	Name      *string
	Species   *Species
	Breed     *string
	Sex       *Sex
	BirthDate *time.Time
	WeightKg  *decimal.Decimal
	Microchip *string
	Status    *Status // active or inactive; deceased goes through MarkDeceased
	Notes     *string
}

// ListPatientsQuery defines filtering and pagination for patient list queries.
type ListPatientsQuery struct {
	Search   string // name or microchip
	OwnerID  *uuid.UUID
	Species  *Species
	Status   *Status
	Page     int
	PageSize int
}

type PagedPatients struct {
	Patients   []*Patient `json:"patients"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
