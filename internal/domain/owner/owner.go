package owner

import (
	"strings"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

// Owner is the person responsible for one or more patients.
type Owner struct {
	domain.Model
	audit.Tracker `gorm:"-" json:"-"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	RUT       string `gorm:"column:rut;type:varchar(12);uniqueIndex;not null" json:"rut"`
	FirstName string `gorm:"column:first_name;type:varchar(100);not null" json:"first_name"`
	LastName  string `gorm:"column:last_name;type:varchar(100);not null" json:"last_name"`
	Phone     string `gorm:"column:phone;type:varchar(20)" json:"phone,omitempty"`
	Email     string `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
	Address   string `gorm:"column:address;type:text" json:"address,omitempty"`
}

func (Owner) TableName() string {
	return "owners"
}

func (o *Owner) FullName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

func (o *Owner) AuditEntity() history.EntityType { return history.EntityOwner }

func (o *Owner) AuditKey() string { return o.ID.String() }

func (o *Owner) AuditFields() audit.Fields {
	return audit.Fields{
		"rut":        o.RUT,
		"first_name": o.FirstName,
		"last_name":  o.LastName,
		"phone":      o.Phone,
		"email":      o.Email,
		"address":    o.Address,
	}
}

// AuditRules is empty: every owner change is a plain update.
func (o *Owner) AuditRules() audit.Rules { return nil }

type CreateOwnerCommand struct {
	RUT       string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Address   string
}

type UpdateOwnerCommand struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	Address   *string
}

type ListOwnersQuery struct {
	Search   string // name or RUT
	Page     int
	PageSize int
}

type PagedOwners struct {
	Owners     []*Owner `json:"owners"`
	TotalCount int64    `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}
