package supply

import "errors"

var (
	ErrSupplyNotFound      = errors.New("supply not found")
	ErrSupplyAlreadyExists = errors.New("supply with this code already exists")
	ErrSupplyInactive      = errors.New("supply is inactive")
	ErrInvalidFormat       = errors.New("invalid dosing format")
	ErrInvalidKind         = errors.New("invalid supply kind")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrNegativeStock       = errors.New("stock cannot be negative")
	ErrInvalidPrice        = errors.New("price cannot be negative")
	ErrWeightRequired      = errors.New("patient weight is required for this supply")
	ErrWeightOutOfRange    = errors.New("patient weight is outside the supply's weight band")
	ErrDoseNotConfigured   = errors.New("supply has no dose per kg configured")
)
