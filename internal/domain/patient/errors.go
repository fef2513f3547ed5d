package patient

import "errors"

var (
	ErrPatientNotFound  = errors.New("patient not found")
	ErrPatientDeceased  = errors.New("operation not permitted: patient is deceased")
	ErrInvalidSpecies   = errors.New("invalid species value")
	ErrInvalidSex       = errors.New("invalid sex value")
	ErrInvalidStatus    = errors.New("invalid patient status")
	ErrInvalidBirthDate = errors.New("birth date cannot be in the future")
	ErrInvalidWeight    = errors.New("weight cannot be negative")
	ErrSameOwner        = errors.New("patient already belongs to this owner")
)
