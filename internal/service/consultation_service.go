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
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/catalog"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/inventory"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/repository"
)

type ConsultationService struct {
	store  *repository.Store
	engine *inventory.Engine
	log    *zap.Logger
	now    func() time.Time
}

func NewConsultationService(store *repository.Store, engine *inventory.Engine, log *zap.Logger) *ConsultationService {
	return &ConsultationService{store: store, engine: engine, log: log, now: time.Now}
}

func (s *ConsultationService) CreateConsultation(ctx context.Context, cmd *consultation.CreateConsultationCommand) (*consultation.Consultation, error) {
	var v validation
	v.check(cmd.PatientID != uuid.Nil, "patient_id is required")
	v.check(cmd.VeterinarianID != uuid.Nil, "veterinarian_id is required")
	v.check(!cmd.WeightKg.IsNegative(), "weight_kg cannot be negative")
	if err := v.err(); err != nil {
		return nil, err
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

	date := cmd.Date
	if date.IsZero() {
		date = s.now()
	}

	c := &consultation.Consultation{
		PatientID:      cmd.PatientID,
		VeterinarianID: cmd.VeterinarianID,
		Date:           date.UTC(),
		Reason:         strings.TrimSpace(cmd.Reason),
		Anamnesis:      cmd.Anamnesis,
		WeightKg:       cmd.WeightKg,
		Status:         consultation.StatusDraft,
	}
	if err := s.store.Consultations.Create(ctx, c); err != nil {
		s.log.Error("failed to create consultation", zap.Error(err))
		return nil, fmt.Errorf("creating consultation: %w", err)
	}

	s.log.Info("consultation opened",
		zap.String("consultation_id", c.ID.String()),
		zap.String("patient_id", c.PatientID.String()),
	)
	return c, nil
}

func (s *ConsultationService) GetConsultation(ctx context.Context, id uuid.UUID) (*consultation.Consultation, error) {
	return s.store.Consultations.GetByID(ctx, id)
}

func (s *ConsultationService) ListConsultations(ctx context.Context, q *consultation.ListConsultationsQuery) (*consultation.PagedConsultations, error) {
	return s.store.Consultations.List(ctx, q)
}

func (s *ConsultationService) UpdateConsultation(ctx context.Context, id uuid.UUID, cmd *consultation.UpdateConsultationCommand) (*consultation.Consultation, error) {
	if cmd.WeightKg != nil && cmd.WeightKg.IsNegative() {
		return nil, &ValidationError{Fields: []string{"weight_kg cannot be negative"}}
	}

	var out *consultation.Consultation
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		c, err := s.draft(ctx, tx, id)
		if err != nil {
			return err
		}

		if cmd.Date != nil {
			c.Date = cmd.Date.UTC()
		}
		if cmd.Reason != nil {
			c.Reason = strings.TrimSpace(*cmd.Reason)
		}
		if cmd.Anamnesis != nil {
			c.Anamnesis = *cmd.Anamnesis
		}
		if cmd.Diagnosis != nil {
			c.Diagnosis = *cmd.Diagnosis
		}
		if cmd.Treatment != nil {
			c.Treatment = *cmd.Treatment
		}
		if cmd.WeightKg != nil {
			c.WeightKg = *cmd.WeightKg
		}

		if err := tx.Consultations.Save(ctx, c); err != nil {
			return fmt.Errorf("saving consultation: %w", err)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddService adds an active catalog service at its current price.
func (s *ConsultationService) AddService(ctx context.Context, id, serviceID uuid.UUID) (*consultation.ServiceLine, error) {
	var out *consultation.ServiceLine
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if _, err := s.draft(ctx, tx, id); err != nil {
			return err
		}
		svc, err := tx.Services.GetByID(ctx, serviceID)
		if err != nil {
			return err
		}
		if !svc.Active {
			return catalog.ErrServiceInactive
		}

		l := &consultation.ServiceLine{
			ConsultationID: id,
			ServiceID:      svc.ID,
			Name:           svc.Name,
			Price:          svc.Price,
		}
		if err := tx.Consultations.AddService(ctx, l); err != nil {
			return fmt.Errorf("adding service: %w", err)
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ConsultationService) AddSupply(ctx context.Context, id uuid.UUID, cmd *consultation.AddSupplyCommand) (*consultation.SupplyLine, error) {
	if cmd.Days < 0 {
		return nil, consultation.ErrInvalidDays
	}
	if cmd.Containers < 0 {
		return nil, supply.ErrInvalidQuantity
	}

	var out *consultation.SupplyLine
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if _, err := s.draft(ctx, tx, id); err != nil {
			return err
		}
		sp, err := tx.Supplies.GetByID(ctx, cmd.SupplyID)
		if err != nil {
			return err
		}
		if !sp.Active {
			return supply.ErrSupplyInactive
		}

		l := &consultation.SupplyLine{
			ConsultationID: id,
			SupplyID:       sp.ID,
			Days:           cmd.Days,
			Containers:     cmd.Containers,
			UnitPrice:      sp.SalePrice,
		}
		if err := tx.Consultations.AddSupply(ctx, l); err != nil {
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

func (s *ConsultationService) RemoveLine(ctx context.Context, id, lineID uuid.UUID) error {
	return s.store.InTx(ctx, func(tx *repository.Store) error {
		if _, err := s.draft(ctx, tx, id); err != nil {
			return err
		}
		return tx.Consultations.RemoveLine(ctx, id, lineID)
	})
}

func (s *ConsultationService) CancelConsultation(ctx context.Context, id uuid.UUID, reason string) (*consultation.Consultation, error) {
	if reason != "" {
		ctx = audit.WithReason(ctx, reason)
	}

	var out *consultation.Consultation
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		c, err := tx.Consultations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := c.Cancel(); err != nil {
			return err
		}
		if err := tx.Consultations.Save(ctx, c); err != nil {
			return fmt.Errorf("saving consultation: %w", err)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Confirm closes the consultation and takes its supplies out of stock in one
// transaction. Default supplies of the performed services are expanded into
// lines of their own. A second call fails with inventory.ErrAlreadyDiscounted.
func (s *ConsultationService) Confirm(ctx context.Context, id uuid.UUID) (*consultation.Consultation, error) {
	origin := inventory.Origin{Type: supply.OriginConsultation, ID: id}
	ctx = audit.WithReason(ctx, "consultation "+id.String()+" confirmed")

	var out *consultation.Consultation
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		c, err := tx.Consultations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c.Status == consultation.StatusCancelled {
			return consultation.ErrNotDraft
		}
		if err := s.engine.ClaimOrigin(ctx, tx, "consultations", id); err != nil {
			return err
		}

		p, err := tx.Patients.GetByID(ctx, c.PatientID)
		if err != nil {
			return fmt.Errorf("loading patient: %w", err)
		}
		if err := p.Treatable(); err != nil {
			return err
		}
		if c.WeightKg.IsPositive() && !c.WeightKg.Equal(p.WeightKg) {
			p.RecordWeight(c.WeightKg)
			if err := tx.Patients.Save(ctx, p); err != nil {
				return fmt.Errorf("recording weight: %w", err)
			}
		}
		weight := c.WeightKg
		if !weight.IsPositive() {
			weight = p.WeightKg
		}

		lines, err := s.expandServiceSupplies(ctx, tx, c)
		if err != nil {
			return err
		}

		supplies, err := tx.Supplies.GetByIDs(ctx, supplyIDs(lines))
		if err != nil {
			return fmt.Errorf("loading supplies: %w", err)
		}

		wanted := make([]inventory.Line, 0, len(lines))
		for i := range lines {
			l := &lines[i]
			sp, ok := supplies[l.SupplyID]
			if !ok {
				return fmt.Errorf("supply %s: %w", l.SupplyID, supply.ErrSupplyNotFound)
			}
			req, err := supply.Require(sp.Dosing(), supply.DoseRequest{WeightKg: weight, Days: l.Days, Containers: l.Containers})
			if err != nil {
				return fmt.Errorf("supply %s: %w", sp.Code, err)
			}
			l.Computed = req.Containers
			l.UnitPrice = sp.SalePrice
			wanted = append(wanted, inventory.Line{SupplyID: l.SupplyID, Containers: l.Computed})
		}

		if _, err := s.engine.Discount(ctx, tx.Supplies, origin, wanted); err != nil {
			return err
		}
		if err := tx.Consultations.SaveSupplyLines(ctx, lines); err != nil {
			return fmt.Errorf("saving supply lines: %w", err)
		}

		if err := c.Confirm(consultationTotal(c.Services, lines), s.now().UTC()); err != nil {
			return err
		}
		c.Supplies = lines
		if err := tx.Consultations.Save(ctx, c); err != nil {
			return fmt.Errorf("saving consultation: %w", err)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("consultation confirmed",
		zap.String("consultation_id", id.String()),
		zap.String("total", out.Total.StringFixed(2)),
		zap.Int("supply_lines", len(out.Supplies)),
	)
	return out, nil
}

// expandServiceSupplies returns the consultation's own supply lines followed by
// one line per default supply of each performed service.
func (s *ConsultationService) expandServiceSupplies(ctx context.Context, tx *repository.Store, c *consultation.Consultation) ([]consultation.SupplyLine, error) {
	lines := append([]consultation.SupplyLine(nil), c.Supplies...)
	if len(c.Services) == 0 {
		return lines, nil
	}

	ids := make([]uuid.UUID, 0, len(c.Services))
	for _, l := range c.Services {
		ids = append(ids, l.ServiceID)
	}
	services, err := tx.Services.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading services: %w", err)
	}
	byID := make(map[uuid.UUID]int, len(services))
	for i, svc := range services {
		byID[svc.ID] = i
	}

	for _, sl := range c.Services {
		i, ok := byID[sl.ServiceID]
		if !ok {
			continue
		}
		svc := services[i]
		for _, d := range svc.Supplies {
			serviceID := svc.ID
			lines = append(lines, consultation.SupplyLine{
				ConsultationID: c.ID,
				SupplyID:       d.SupplyID,
				ServiceID:      &serviceID,
				Days:           d.Days,
				Containers:     d.Containers,
			})
		}
	}
	return lines, nil
}

// draft loads a draft consultation under a row lock. Callers run inside a
// transaction so that line edits and Confirm serialize on the same row.
func (s *ConsultationService) draft(ctx context.Context, tx *repository.Store, id uuid.UUID) (*consultation.Consultation, error) {
	c, err := tx.Consultations.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsDraft() {
		return nil, consultation.ErrNotDraft
	}
	return c, nil
}

// consultationTotal is the service prices plus the supplies charged on their own.
func consultationTotal(services []consultation.ServiceLine, supplies []consultation.SupplyLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range services {
		total = total.Add(l.Price)
	}
	for _, l := range supplies {
		if l.Billable() {
			total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Computed)))
		}
	}
	return total
}

func supplyIDs(lines []consultation.SupplyLine) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.SupplyID)
	}
	return out
}
