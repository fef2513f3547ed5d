package owner

import "errors"

var (
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrOwnerAlreadyExists = errors.New("owner with this RUT already exists")
	ErrOwnerHasPatients   = errors.New("owner still has active patients")
)
