package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/hospitalization"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/inventory"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/repository"
)

type HospitalizationService struct {
	store  *repository.Store
	engine *inventory.Engine
	log    *zap.Logger
	now    func() time.Time
}

func NewHospitalizationService(store *repository.Store, engine *inventory.Engine, log *zap.Logger) *HospitalizationService {
	return &HospitalizationService{store: store, engine: engine, log: log, now: time.Now}
}

func (s *HospitalizationService) Admit(ctx context.Context, cmd *hospitalization.AdmitCommand) (*hospitalization.Hospitalization, error) {
	var v validation
	v.check(cmd.PatientID != uuid.Nil, "patient_id is required")
	v.check(cmd.VeterinarianID != uuid.Nil, "veterinarian_id is required")
	v.check(strings.TrimSpace(cmd.Reason) != "", "reason is required")
	if err := v.err(); err != nil {
		return nil, err
	}
	if cmd.DailyRate.IsNegative() {
		return nil, hospitalization.ErrInvalidDailyRate
	}

	p, err := s.store.Patients.GetByID(ctx, cmd.PatientID)
	if err != nil {
		return nil, fmt.Errorf("verifying patient: %w", err)
	}
	if err := p.Treatable(); err != nil {
		return nil, err
	}
	if err := requireVeterinarian(ctx, s.store.Users, cmd.VeterinarianID); err != nil {
		return nil, err
	}

	active, err := s.store.Hospitalizations.HasActive(ctx, cmd.PatientID)
	if err != nil {
		return nil, fmt.Errorf("checking active stays: %w", err)
	}
	if active {
		return nil, hospitalization.ErrAlreadyHospitalized
	}

	admitted := cmd.AdmittedAt
	if admitted.IsZero() {
		admitted = s.now()
	}
	h := &hospitalization.Hospitalization{
		PatientID:      cmd.PatientID,
		VeterinarianID: cmd.VeterinarianID,
		AdmittedAt:     admitted.UTC(),
		Reason:         strings.TrimSpace(cmd.Reason),
		Notes:          cmd.Notes,
		DailyRate:      cmd.DailyRate,
		Status:         hospitalization.StatusActive,
	}
	if err := s.store.Hospitalizations.Create(ctx, h); err != nil {
		return nil, err
	}

	s.log.Info("patient admitted",
		zap.String("hospitalization_id", h.ID.String()),
		zap.String("patient_id", h.PatientID.String()),
	)
	return h, nil
}

func (s *HospitalizationService) GetHospitalization(ctx context.Context, id uuid.UUID) (*hospitalization.Hospitalization, error) {
	return s.store.Hospitalizations.GetByID(ctx, id)
}

func (s *HospitalizationService) ListHospitalizations(ctx context.Context, q *hospitalization.ListHospitalizationsQuery) (*hospitalization.PagedHospitalizations, error) {
	return s.store.Hospitalizations.List(ctx, q)
}

func (s *HospitalizationService) AddSupply(ctx context.Context, id uuid.UUID, cmd *hospitalization.AddSupplyCommand) (*hospitalization.SupplyLine, error) {
	if cmd.Days < 0 || cmd.Containers < 0 {
		return nil, supply.ErrInvalidQuantity
	}

	var out *hospitalization.SupplyLine
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		h, err := tx.Hospitalizations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !h.IsActive() {
			return hospitalization.ErrNotActive
		}
		sp, err := tx.Supplies.GetByID(ctx, cmd.SupplyID)
		if err != nil {
			return err
		}
		if !sp.Active {
			return supply.ErrSupplyInactive
		}

		l := &hospitalization.SupplyLine{
			HospitalizationID: id,
			SupplyID:          sp.ID,
			Days:              cmd.Days,
			Containers:        cmd.Containers,
			UnitPrice:         sp.SalePrice,
			AddedAt:           s.now().UTC(),
		}
		if err := tx.Hospitalizations.AddSupply(ctx, l); err != nil {
			return fmt.Errorf("adding supply: %w", err)
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Discharge ends the stay, discounts every supply line at the patient's
// current weight and bills days stayed plus supplies.
func (s *HospitalizationService) Discharge(ctx context.Context, id uuid.UUID) (*hospitalization.Hospitalization, error) {
	origin := inventory.Origin{Type: supply.OriginHospitalization, ID: id}
	ctx = audit.WithReason(ctx, "hospitalization "+id.String()+" discharged")

	var out *hospitalization.Hospitalization
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		h, err := tx.Hospitalizations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.engine.ClaimOrigin(ctx, tx, "hospitalizations", id); err != nil {
			return err
		}
		if !h.IsActive() {
			return hospitalization.ErrNotActive
		}

		p, err := tx.Patients.GetByID(ctx, h.PatientID)
		if err != nil {
			return fmt.Errorf("loading patient: %w", err)
		}

		lines := h.Supplies
		ids := make([]uuid.UUID, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.SupplyID)
		}
		supplies, err := tx.Supplies.GetByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("loading supplies: %w", err)
		}

		wanted := make([]inventory.Line, 0, len(lines))
		suppliesTotal := decimal.Zero
		for i := range lines {
			l := &lines[i]
			sp, ok := supplies[l.SupplyID]
			if !ok {
				return fmt.Errorf("supply %s: %w", l.SupplyID, supply.ErrSupplyNotFound)
			}
			req, err := supply.Require(sp.Dosing(), supply.DoseRequest{WeightKg: p.WeightKg, Days: l.Days, Containers: l.Containers})
			if err != nil {
				return fmt.Errorf("supply %s: %w", sp.Code, err)
			}
			l.Computed = req.Containers
			suppliesTotal = suppliesTotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Computed)))
			wanted = append(wanted, inventory.Line{SupplyID: l.SupplyID, Containers: l.Computed})
		}

		if _, err := s.engine.Discount(ctx, tx.Supplies, origin, wanted); err != nil {
			return err
		}
		if err := tx.Hospitalizations.SaveSupplyLines(ctx, lines); err != nil {
			return fmt.Errorf("saving supply lines: %w", err)
		}

		if err := h.Discharge(s.now().UTC(), suppliesTotal); err != nil {
			return err
		}
		if err := tx.Hospitalizations.Save(ctx, h); err != nil {
			return fmt.Errorf("saving hospitalization: %w", err)
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("patient discharged",
		zap.String("hospitalization_id", id.String()),
		zap.Int("days", out.DaysStayed),
		zap.String("total", out.Total.StringFixed(2)),
	)
	return out, nil
}
