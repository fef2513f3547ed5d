package consultation

import "errors"

var (
	ErrConsultationNotFound = errors.New("consultation not found")
	ErrNotDraft             = errors.New("consultation is no longer a draft")
	ErrLineNotFound         = errors.New("consultation line not found")
	ErrInvalidDays          = errors.New("treatment days cannot be negative")
)
