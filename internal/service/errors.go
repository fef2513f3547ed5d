package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/repository"
)

var (
	ErrForbidden       = errors.New("forbidden: insufficient permissions")
	ErrNotVeterinarian = errors.New("user is not an active veterinarian")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// validation collects field problems; err returns nil when there are none.
type validation []string

func (v *validation) add(msg string) {
	*v = append(*v, msg)
}

func (v *validation) check(ok bool, msg string) {
	if !ok {
		v.add(msg)
	}
}

func (v validation) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

// UserLookup is the slice of the user repository the clinical services need.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// requireVeterinarian accepts active veterinarians and admins.
func requireVeterinarian(ctx context.Context, users UserLookup, id uuid.UUID) error {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotVeterinarian
		}
		return fmt.Errorf("verifying veterinarian: %w", err)
	}
	if !u.IsActive || (u.Role != domain.RoleVeterinarian && u.Role != domain.RoleAdmin) {
		return ErrNotVeterinarian
	}
	return nil
}
