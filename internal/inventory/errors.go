package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrAlreadyDiscounted = errors.New("stock was already discounted for this record")
	ErrAlreadyRestored   = errors.New("stock was already restored for this record")
	ErrReasonRequired    = errors.New("adjustment reason is required")
)

// Shortage describes one supply that cannot cover its line.
type Shortage struct {
	SupplyID  uuid.UUID `json:"supply_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Required  int64     `json:"required"`
	Available int64     `json:"available"`
	Inactive  bool      `json:"inactive,omitempty"`
}

// ShortageError lists every short supply of a rejected discount.
type ShortageError struct {
	Shortages []Shortage
}

func (e *ShortageError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		if s.Inactive {
			parts = append(parts, fmt.Sprintf("%s inactive", s.Code))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s needs %d, has %d", s.Code, s.Required, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}
