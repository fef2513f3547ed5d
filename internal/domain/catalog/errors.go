package catalog

import "errors"

var (
	ErrServiceNotFound  = errors.New("service not found")
	ErrServiceInactive  = errors.New("service is inactive")
	ErrInvalidCategory  = errors.New("invalid service category")
	ErrInvalidPrice     = errors.New("price cannot be negative")
	ErrDuplicatedSupply = errors.New("supply listed more than once for this service")
)
