package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/owner"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/patient"
)

type PatientService struct {
	repo      patient.Repository
	ownerRepo owner.Repository
	log       *zap.Logger
}

func NewPatientService(repo patient.Repository, ownerRepo owner.Repository, log *zap.Logger) *PatientService {
	return &PatientService{
		repo:      repo,
		ownerRepo: ownerRepo,
		log:       log,
	}
}

func (s *PatientService) CreatePatient(ctx context.Context, cmd *patient.CreatePatientCommand) (*patient.Patient, error) {
	if err := validateCreatePatient(cmd); err != nil {
		return nil, err
	}

	if _, err := s.ownerRepo.GetByID(ctx, cmd.OwnerID); err != nil {
		return nil, fmt.Errorf("verifying owner: %w", err)
	}

	p := &patient.Patient{
		OwnerID:   cmd.OwnerID,
		Name:      strings.TrimSpace(cmd.Name),
		Species:   cmd.Species,
		Breed:     strings.TrimSpace(cmd.Breed),
		Sex:       cmd.Sex,
		BirthDate: cmd.BirthDate,
		WeightKg:  cmd.WeightKg,
		Microchip: strings.TrimSpace(cmd.Microchip),
		Status:    patient.StatusActive,
		Notes:     cmd.Notes,
	}
	if p.Sex == "" {
		p.Sex = patient.SexUnknown
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	s.log.Info("patient created",
		zap.String("patient_id", p.ID.String()),
		zap.String("owner_id", p.OwnerID.String()),
	)

	return p, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PatientService) UpdatePatient(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Treatable(); err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		if strings.TrimSpace(*cmd.Name) == "" {
			return nil, &ValidationError{Fields: []string{"name cannot be empty"}}
		}
		p.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Species != nil {
		if !cmd.Species.IsValid() {
			return nil, patient.ErrInvalidSpecies
		}
		p.Species = *cmd.Species
	}
	if cmd.Sex != nil {
		if !cmd.Sex.IsValid() {
			return nil, patient.ErrInvalidSex
		}
		p.Sex = *cmd.Sex
	}
	if cmd.BirthDate != nil {
		if cmd.BirthDate.After(time.Now()) {
			return nil, patient.ErrInvalidBirthDate
		}
		p.BirthDate = cmd.BirthDate
	}
	if cmd.WeightKg != nil {
		if cmd.WeightKg.IsNegative() {
			return nil, patient.ErrInvalidWeight
		}
		p.WeightKg = *cmd.WeightKg
	}
	if cmd.Status != nil {
		if *cmd.Status != patient.StatusActive && *cmd.Status != patient.StatusInactive {
			return nil, patient.ErrInvalidStatus
		}
		p.Status = *cmd.Status
	}
	if cmd.Breed != nil {
		p.Breed = strings.TrimSpace(*cmd.Breed)
	}
	if cmd.Microchip != nil {
		p.Microchip = strings.TrimSpace(*cmd.Microchip)
	}
	if cmd.Notes != nil {
		p.Notes = *cmd.Notes
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving patient: %w", err)
	}
	return p, nil
}

func (s *PatientService) ListPatients(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	return s.repo.List(ctx, q)
}

// TransferOwnership moves a patient to another existing owner.
func (s *PatientService) TransferOwnership(ctx context.Context, id, newOwnerID uuid.UUID, reason string) (*patient.Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownerRepo.GetByID(ctx, newOwnerID); err != nil {
		return nil, fmt.Errorf("verifying owner: %w", err)
	}

	from := p.OwnerID
	if err := p.TransferTo(newOwnerID); err != nil {
		return nil, err
	}

	if reason != "" {
		ctx = audit.WithReason(ctx, reason)
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving patient: %w", err)
	}

	s.log.Info("patient transferred",
		zap.String("patient_id", p.ID.String()),
		zap.String("from_owner", from.String()),
		zap.String("to_owner", newOwnerID.String()),
	)
	return p, nil
}

func (s *PatientService) MarkDeceased(ctx context.Context, id uuid.UUID, reason string) (*patient.Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.MarkDeceased(); err != nil {
		return nil, err
	}

	if reason != "" {
		ctx = audit.WithReason(ctx, reason)
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving patient: %w", err)
	}

	s.log.Info("patient marked deceased", zap.String("patient_id", p.ID.String()))
	return p, nil
}

func (s *PatientService) DeletePatient(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, p)
}

func validateCreatePatient(cmd *patient.CreatePatientCommand) error {
	var v validation

	v.check(cmd.OwnerID != uuid.Nil, "owner_id is required")
	v.check(strings.TrimSpace(cmd.Name) != "", "name is required")
	v.check(cmd.Species.IsValid(), "species is invalid")
	v.check(cmd.Sex == "" || cmd.Sex.IsValid(), "sex is invalid")
	v.check(cmd.BirthDate == nil || !cmd.BirthDate.After(time.Now()), "birth_date cannot be in the future")
	v.check(!cmd.WeightKg.IsNegative(), "weight_kg cannot be negative")

	return v.err()
}
