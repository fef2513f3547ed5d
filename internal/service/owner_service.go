package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/owner"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/rut"
)

type OwnerService struct {
	repo        owner.Repository
	patientRepo patient.Repository
	log         *zap.Logger
}

func NewOwnerService(repo owner.Repository, patientRepo patient.Repository, log *zap.Logger) *OwnerService {
	return &OwnerService{repo: repo, patientRepo: patientRepo, log: log}
}

func (s *OwnerService) CreateOwner(ctx context.Context, cmd *owner.CreateOwnerCommand) (*owner.Owner, error) {
	var v validation
	id, err := rut.Normalize(cmd.RUT)
	v.check(err == nil, "rut is invalid")
	v.check(strings.TrimSpace(cmd.FirstName) != "", "first_name is required")
	v.check(strings.TrimSpace(cmd.LastName) != "", "last_name is required")
	if err := v.err(); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByRUT(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("checking uniqueness: %w", err)
	}
	if exists {
		return nil, owner.ErrOwnerAlreadyExists
	}

	o := &owner.Owner{
		RUT:       id,
		FirstName: strings.TrimSpace(cmd.FirstName),
		LastName:  strings.TrimSpace(cmd.LastName),
		Phone:     strings.TrimSpace(cmd.Phone),
		Email:     strings.ToLower(strings.TrimSpace(cmd.Email)),
		Address:   strings.TrimSpace(cmd.Address),
	}
	if err := s.repo.Create(ctx, o); err != nil {
		s.log.Error("failed to create owner", zap.Error(err))
		return nil, fmt.Errorf("creating owner: %w", err)
	}

	s.log.Info("owner created", zap.String("owner_id", o.ID.String()))
	return o, nil
}

func (s *OwnerService) GetOwner(ctx context.Context, id uuid.UUID) (*owner.Owner, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OwnerService) UpdateOwner(ctx context.Context, id uuid.UUID, cmd *owner.UpdateOwnerCommand) (*owner.Owner, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var v validation
	if cmd.FirstName != nil {
		v.check(strings.TrimSpace(*cmd.FirstName) != "", "first_name cannot be empty")
		o.FirstName = strings.TrimSpace(*cmd.FirstName)
	}
	if cmd.LastName != nil {
		v.check(strings.TrimSpace(*cmd.LastName) != "", "last_name cannot be empty")
		o.LastName = strings.TrimSpace(*cmd.LastName)
	}
	if err := v.err(); err != nil {
		return nil, err
	}
	if cmd.Phone != nil {
		o.Phone = strings.TrimSpace(*cmd.Phone)
	}
	if cmd.Email != nil {
		o.Email = strings.ToLower(strings.TrimSpace(*cmd.Email))
	}
	if cmd.Address != nil {
		o.Address = strings.TrimSpace(*cmd.Address)
	}

	if err := s.repo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("saving owner: %w", err)
	}
	return o, nil
}

func (s *OwnerService) ListOwners(ctx context.Context, q *owner.ListOwnersQuery) (*owner.PagedOwners, error) {
	return s.repo.List(ctx, q)
}

// DeleteOwner soft-deletes an owner with no active patients.
func (s *OwnerService) DeleteOwner(ctx context.Context, id uuid.UUID) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.patientRepo.CountActiveByOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("counting patients: %w", err)
	}
	if n > 0 {
		return owner.ErrOwnerHasPatients
	}

	if err := s.repo.SoftDelete(ctx, o); err != nil {
		return fmt.Errorf("deleting owner: %w", err)
	}
	s.log.Info("owner deleted", zap.String("owner_id", id.String()))
	return nil
}
