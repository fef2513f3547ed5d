// Package history holds the append-only audit trail.
package history

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrImmutable     = errors.New("history events are append-only")
	ErrInvalidFilter = errors.New("invalid history filter")
)

type EntityType string

const (
	EntityUser            EntityType = "user"
	EntityOwner           EntityType = "owner"
	EntityPatient         EntityType = "patient"
	EntitySupply          EntityType = "supply"
	EntityService         EntityType = "service"
	EntityConsultation    EntityType = "consultation"
	EntityHospitalization EntityType = "hospitalization"
	EntitySale            EntityType = "sale"
	EntityCashSession     EntityType = "cash_session"
	EntityAppointment     EntityType = "appointment"
)

type Kind string

const (
	KindCreated          Kind = "created"
	KindUpdated          Kind = "updated"
	KindPriceChanged     Kind = "price_changed"
	KindStockChanged     Kind = "stock_changed"
	KindOwnershipChanged Kind = "ownership_changed"
	KindStatusChanged    Kind = "status_changed"
	KindDeleted          Kind = "deleted"
	KindLogin            Kind = "login"
	KindLoginFailed      Kind = "login_failed"
)

// Priority orders field-change kinds when several fields change in one write.
// Kinds outside the field-change set have no priority.
func (k Kind) Priority() int {
	switch k {
	case KindOwnershipChanged:
		return 4
	case KindStatusChanged:
		return 3
	case KindPriceChanged:
		return 2
	case KindStockChanged:
		return 1
	}
	return 0
}

type Criticity string

const (
	CriticityLow      Criticity = "low"
	CriticityMedium   Criticity = "medium"
	CriticityHigh     Criticity = "high"
	CriticityCritical Criticity = "critical"
)

func (c Criticity) Level() int {
	switch c {
	case CriticityMedium:
		return 1
	case CriticityHigh:
		return 2
	case CriticityCritical:
		return 3
	}
	return 0
}

func (c Criticity) IsValid() bool {
	switch c {
	case CriticityLow, CriticityMedium, CriticityHigh, CriticityCritical:
		return true
	}
	return false
}

// Max returns the more severe of the two levels.
func Max(a, b Criticity) Criticity {
	if b.Level() > a.Level() {
		return b
	}
	return a
}

// Change is one field's before/after pair inside an event diff.
type Change struct {
	Field  string `json:"field"`
	Before any    `json:"before"`
	After  any    `json:"after"`
}

type Event struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null;index" json:"occurred_at"`

	EntityType EntityType `gorm:"column:entity_type;type:varchar(40);not null;index:idx_history_entity" json:"entity_type"`
	EntityID   string     `gorm:"column:entity_id;type:varchar(64);not null;index:idx_history_entity" json:"entity_id"`
	Kind       Kind       `gorm:"column:kind;type:varchar(30);not null;index" json:"kind"`
	Criticity  Criticity  `gorm:"column:criticity;type:varchar(10);not null;index" json:"criticity"`
	Summary    string     `gorm:"column:summary;type:text" json:"summary"`

	Changes datatypes.JSON `gorm:"column:changes" json:"changes"`

	ActorID   *uuid.UUID `gorm:"column:actor_id;type:uuid;index" json:"actor_id,omitempty"`
	ActorRole string     `gorm:"column:actor_role;type:varchar(30)" json:"actor_role,omitempty"`
	Reason    string     `gorm:"column:reason;type:text" json:"reason,omitempty"`
	RequestID string     `gorm:"column:request_id;type:varchar(64)" json:"request_id,omitempty"`
}

func (Event) TableName() string {
	return "history_events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return nil
}

func (e *Event) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutable
}

func (e *Event) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutable
}

type ListQuery struct {
	EntityType   *EntityType
	EntityID     string
	Kind         *Kind
	MinCriticity *Criticity
	From         *time.Time
	To           *time.Time
	Page         int
	PageSize     int
}

type PagedEvents struct {
	Events     []*Event `json:"events"`
	TotalCount int64    `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}
