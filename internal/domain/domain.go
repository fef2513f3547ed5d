package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleVeterinarian Role = "veterinarian"
	RoleAssistant    Role = "assistant"
	RoleCashier      Role = "cashier"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleVeterinarian, RoleAssistant, RoleCashier:
		return true
	}
	return false
}

// Model carries the identity and timestamps shared by every table.
type Model struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type User struct {
	Model

	RUT          string `gorm:"column:rut;type:varchar(12);uniqueIndex;not null" json:"rut"`
	FullName     string `gorm:"column:full_name;type:varchar(200);not null" json:"full_name"`
	Email        string `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         Role   `gorm:"column:role;type:varchar(30);not null;index" json:"role"`

	IsActive         bool       `gorm:"column:is_active;default:true;index" json:"is_active"`
	FailedLoginCount int        `gorm:"column:failed_login_count;default:0" json:"-"`
	LockedUntil      *time.Time `gorm:"column:locked_until" json:"-"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// IsLocked returns true if the account is temporarily locked due to failed logins.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID uuid.UUID `json:"sub"`
	RUT    string    `json:"rut"`
	Role   Role      `json:"role"`
}

// Page normalizes pagination input; size is capped at 100.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) Normalize() Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 || p.PageSize > 100 {
		p.PageSize = 20
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
