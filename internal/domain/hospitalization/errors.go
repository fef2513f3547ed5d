package hospitalization

import "errors"

var (
	ErrHospitalizationNotFound = errors.New("hospitalization not found")
	ErrNotActive               = errors.New("hospitalization is not active")
	ErrAlreadyHospitalized     = errors.New("patient already has an active hospitalization")
	ErrInvalidDailyRate        = errors.New("daily rate cannot be negative")
)
