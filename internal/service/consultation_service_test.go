package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/catalog"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/inventory"
)

func newConsultation(t *testing.T, e *env, svc *ConsultationService, p *patient.Patient, weight string) *consultation.Consultation {
	t.Helper()
	vet := e.user(t, domain.RoleVeterinarian)
	c, err := svc.CreateConsultation(asActor(vet), &consultation.CreateConsultationCommand{
		PatientID:      p.ID,
		VeterinarianID: vet.ID,
		Reason:         "skin rash",
		WeightKg:       dec(weight),
	})
	require.NoError(t, err)
	return c
}

func TestConfirmDiscountsStockOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewConsultationService(e.store, e.engine, e.log)
	cat := NewCatalogService(e.store, e.log)

	p := e.patient(t, "20")
	amox := e.tablets(t, "AMOX", 10, "2500")
	gloves := e.tablets(t, "GLOVE", 5, "300")

	exam, err := cat.CreateService(ctx, &catalog.CreateServiceCommand{
		Name:     "Dermatology exam",
		Category: catalog.CategoryConsultation,
		Price:    dec("15000"),
		Supplies: []catalog.SupplyInput{{SupplyID: gloves.ID, Containers: 1}},
	})
	require.NoError(t, err)

	c := newConsultation(t, e, svc, p, "0")
	_, err = svc.AddService(ctx, c.ID, exam.ID)
	require.NoError(t, err)
	_, err = svc.AddSupply(ctx, c.ID, &consultation.AddSupplyCommand{SupplyID: amox.ID, Days: 5})
	require.NoError(t, err)

	got, err := svc.Confirm(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, consultation.StatusConfirmed, got.Status)
	assert.True(t, got.StockDiscounted)
	assert.NotNil(t, got.ConfirmedAt)
	// 0.25 tab/kg x 20 kg x 5 days = 25 tablets = 3 boxes; gloves are covered by the exam.
	assert.True(t, dec("22500").Equal(got.Total), "total %s", got.Total)
	assert.Equal(t, int64(7), e.stock(t, amox.ID))
	assert.Equal(t, int64(4), e.stock(t, gloves.ID))

	reloaded, err := svc.GetConsultation(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Supplies, 2)
	for _, l := range reloaded.Supplies {
		if l.SupplyID == amox.ID {
			assert.Equal(t, int64(3), l.Computed)
			assert.True(t, l.Billable())
		} else {
			assert.Equal(t, int64(1), l.Computed)
			assert.False(t, l.Billable())
		}
	}

	_, err = svc.Confirm(ctx, c.ID)
	assert.ErrorIs(t, err, inventory.ErrAlreadyDiscounted)
	assert.Equal(t, int64(7), e.stock(t, amox.ID))

	events := e.events(t, history.EntityConsultation, c.ID.String())
	assert.Contains(t, kinds(events), history.KindStatusChanged)
}

func TestConfirmWithShortageWritesNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewConsultationService(e.store, e.engine, e.log)

	p := e.patient(t, "20")
	amox := e.tablets(t, "AMOX", 1, "2500")
	meds := e.tablets(t, "MEDS", 0, "100")

	c := newConsultation(t, e, svc, p, "0")
	_, err := svc.AddSupply(ctx, c.ID, &consultation.AddSupplyCommand{SupplyID: amox.ID, Days: 5})
	require.NoError(t, err)
	_, err = svc.AddSupply(ctx, c.ID, &consultation.AddSupplyCommand{SupplyID: meds.ID, Containers: 2})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, c.ID)
	var shortage *inventory.ShortageError
	require.True(t, errors.As(err, &shortage), "got %v", err)
	assert.Len(t, shortage.Shortages, 2)

	after, err := svc.GetConsultation(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, consultation.StatusDraft, after.Status)
	assert.False(t, after.StockDiscounted)
	assert.Equal(t, int64(1), e.stock(t, amox.ID))

	moves, err := e.store.Supplies.ListMovements(ctx, &supply.ListMovementsQuery{OriginID: &c.ID})
	require.NoError(t, err)
	assert.Zero(t, moves.TotalCount)

	// Restocking lets the same draft go through.
	_, _, err = NewSupplyService(e.store, e.engine, e.log).Restock(ctx, amox.ID, supply.RestockCommand{Quantity: 5})
	require.NoError(t, err)
	_, _, err = NewSupplyService(e.store, e.engine, e.log).Restock(ctx, meds.ID, supply.RestockCommand{Quantity: 2})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), e.stock(t, amox.ID))
	assert.Equal(t, int64(0), e.stock(t, meds.ID))
}

func TestConfirmRecordsVisitWeight(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewConsultationService(e.store, e.engine, e.log)

	p := e.patient(t, "20")
	amox := e.tablets(t, "AMOX", 10, "1000")

	c := newConsultation(t, e, svc, p, "40")
	_, err := svc.AddSupply(ctx, c.ID, &consultation.AddSupplyCommand{SupplyID: amox.ID, Days: 5})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, c.ID)
	require.NoError(t, err)

	// 0.25 x 40 x 5 = 50 tablets = 5 boxes
	assert.Equal(t, int64(5), e.stock(t, amox.ID))

	updated, err := e.store.Patients.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, dec("40").Equal(updated.WeightKg))
}

func TestConfirmNeedsWeightForWeightBasedSupply(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewConsultationService(e.store, e.engine, e.log)

	p := e.patient(t, "0")
	amox := e.tablets(t, "AMOX", 10, "1000")

	c := newConsultation(t, e, svc, p, "0")
	_, err := svc.AddSupply(ctx, c.ID, &consultation.AddSupplyCommand{SupplyID: amox.ID, Days: 2})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, c.ID)
	assert.ErrorIs(t, err, supply.ErrWeightRequired)
	assert.Equal(t, int64(10), e.stock(t, amox.ID))
}

func TestDraftOnlyOperations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewConsultationService(e.store, e.engine, e.log)

	p := e.patient(t, "8")
	amox := e.tablets(t, "AMOX", 10, "1000")
	c := newConsultation(t, e, svc, p, "0")

	line, err := svc.AddSupply(ctx, c.ID, &consultation.AddSupplyCommand{SupplyID: amox.ID, Days: 1})
	require.NoError(t, err)
	require.NoError(t, svc.RemoveLine(ctx, c.ID, line.ID))
	assert.ErrorIs(t, svc.RemoveLine(ctx, c.ID, line.ID), consultation.ErrLineNotFound)

	diagnosis := "dermatitis"
	updated, err := svc.UpdateConsultation(ctx, c.ID, &consultation.UpdateConsultationCommand{Diagnosis: &diagnosis})
	require.NoError(t, err)
	assert.Equal(t, diagnosis, updated.Diagnosis)

	_, err = svc.CancelConsultation(ctx, c.ID, "owner left")
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, c.ID)
	assert.ErrorIs(t, err, consultation.ErrNotDraft)
	_, err = svc.AddSupply(ctx, c.ID, &consultation.AddSupplyCommand{SupplyID: amox.ID})
	assert.ErrorIs(t, err, consultation.ErrNotDraft)
}

func TestCreateConsultationChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewConsultationService(e.store, e.engine, e.log)
	pats := NewPatientService(e.store.Patients, e.store.Owners, e.log)

	p := e.patient(t, "8")
	vet := e.user(t, domain.RoleVeterinarian)
	cashier := e.user(t, domain.RoleCashier)

	_, err := svc.CreateConsultation(ctx, &consultation.CreateConsultationCommand{PatientID: p.ID, VeterinarianID: cashier.ID})
	assert.ErrorIs(t, err, ErrNotVeterinarian)

	_, err = pats.MarkDeceased(ctx, p.ID, "")
	require.NoError(t, err)
	_, err = svc.CreateConsultation(ctx, &consultation.CreateConsultationCommand{PatientID: p.ID, VeterinarianID: vet.ID, Date: time.Now()})
	assert.ErrorIs(t, err, patient.ErrPatientDeceased)
}

func TestLineEditsSerializeWithConfirm(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewConsultationService(e.store, e.engine, e.log)

	p := e.patient(t, "20")
	amox := e.tablets(t, "AMOX", 100, "2500")

	var discounted int64
	for i := 0; i < 10; i++ {
		c := newConsultation(t, e, svc, p, "0")
		_, err := svc.AddSupply(ctx, c.ID, &consultation.AddSupplyCommand{SupplyID: amox.ID, Containers: 1})
		require.NoError(t, err)

		var wg sync.WaitGroup
		var confirmErr, addErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, confirmErr = svc.Confirm(ctx, c.ID)
		}()
		go func() {
			defer wg.Done()
			_, addErr = svc.AddSupply(ctx, c.ID, &consultation.AddSupplyCommand{SupplyID: amox.ID, Containers: 2})
		}()
		wg.Wait()
		require.NoError(t, confirmErr)

		got, err := svc.GetConsultation(ctx, c.ID)
		require.NoError(t, err)
		if addErr != nil {
			require.ErrorIs(t, addErr, consultation.ErrNotDraft)
			assert.Len(t, got.Supplies, 1)
		} else {
			assert.Len(t, got.Supplies, 2)
		}
		for _, l := range got.Supplies {
			assert.Equal(t, l.Containers, l.Computed, "every stored line is discounted")
			discounted += l.Computed
		}
	}

	assert.Equal(t, 100-discounted, e.stock(t, amox.ID))
}
