package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/hospitalization"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/inventory"
)

func TestHospitalizationLifecycle(t *testing.T) {
	e := newEnv(t)
	vet := e.user(t, domain.RoleVeterinarian)
	ctx := asActor(vet)
	svc := NewHospitalizationService(e.store, e.engine, e.log)

	admitted := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return admitted.Add(50 * time.Hour) }

	p := e.patient(t, "20")
	drug := e.tablets(t, "MELOX", 5, "2500")

	h, err := svc.Admit(ctx, &hospitalization.AdmitCommand{
		PatientID: p.ID, VeterinarianID: vet.ID, AdmittedAt: admitted, Reason: "post-op observation", DailyRate: dec("15000"),
	})
	require.NoError(t, err)

	_, err = svc.Admit(ctx, &hospitalization.AdmitCommand{PatientID: p.ID, VeterinarianID: vet.ID, Reason: "again"})
	assert.ErrorIs(t, err, hospitalization.ErrAlreadyHospitalized)

	// 0.25 * 20kg * 5 days = 25 tablets, three boxes.
	_, err = svc.AddSupply(ctx, h.ID, &hospitalization.AddSupplyCommand{SupplyID: drug.ID, Days: 5})
	require.NoError(t, err)

	out, err := svc.Discharge(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, hospitalization.StatusDischarged, out.Status)
	assert.Equal(t, 3, out.DaysStayed)
	assert.True(t, dec("52500").Equal(out.Total), "total %s", out.Total)
	assert.Equal(t, int64(2), e.stock(t, drug.ID))

	_, err = svc.Discharge(ctx, h.ID)
	assert.ErrorIs(t, err, inventory.ErrAlreadyDiscounted)
	assert.Equal(t, int64(2), e.stock(t, drug.ID))

	_, err = svc.AddSupply(ctx, h.ID, &hospitalization.AddSupplyCommand{SupplyID: drug.ID, Days: 1})
	assert.ErrorIs(t, err, hospitalization.ErrNotActive)

	_, err = svc.Admit(ctx, &hospitalization.AdmitCommand{PatientID: p.ID, VeterinarianID: vet.ID, Reason: "relapse"})
	require.NoError(t, err, "a discharged patient can be admitted again")
}

func TestDischargeShortageKeepsStayActive(t *testing.T) {
	e := newEnv(t)
	vet := e.user(t, domain.RoleVeterinarian)
	ctx := asActor(vet)
	svc := NewHospitalizationService(e.store, e.engine, e.log)

	p := e.patient(t, "20")
	drug := e.tablets(t, "FLUID", 1, "100")
	h, err := svc.Admit(ctx, &hospitalization.AdmitCommand{PatientID: p.ID, VeterinarianID: vet.ID, Reason: "dehydration"})
	require.NoError(t, err)
	_, err = svc.AddSupply(ctx, h.ID, &hospitalization.AddSupplyCommand{SupplyID: drug.ID, Containers: 4})
	require.NoError(t, err)

	_, err = svc.Discharge(ctx, h.ID)
	var shortage *inventory.ShortageError
	require.ErrorAs(t, err, &shortage)

	got, err := svc.GetHospitalization(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive())
	assert.False(t, got.StockDiscounted)
	assert.Equal(t, int64(1), e.stock(t, drug.ID))

	_, err = svc.AddSupply(ctx, h.ID, &hospitalization.AddSupplyCommand{SupplyID: drug.ID, Days: -1})
	assert.ErrorIs(t, err, supply.ErrInvalidQuantity)
}

func TestAdmitValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewHospitalizationService(e.store, e.engine, e.log)
	cashier := e.user(t, domain.RoleCashier)
	p := e.patient(t, "3")

	_, err := svc.Admit(ctx, &hospitalization.AdmitCommand{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)

	_, err = svc.Admit(ctx, &hospitalization.AdmitCommand{PatientID: p.ID, VeterinarianID: cashier.ID, Reason: "x", DailyRate: dec("-1")})
	assert.ErrorIs(t, err, hospitalization.ErrInvalidDailyRate)

	_, err = svc.Admit(ctx, &hospitalization.AdmitCommand{PatientID: p.ID, VeterinarianID: cashier.ID, Reason: "x"})
	assert.ErrorIs(t, err, ErrNotVeterinarian)
}

func TestAddSupplySerializesWithDischarge(t *testing.T) {
	e := newEnv(t)
	vet := e.user(t, domain.RoleVeterinarian)
	ctx := asActor(vet)
	svc := NewHospitalizationService(e.store, e.engine, e.log)

	p := e.patient(t, "20")
	drug := e.tablets(t, "MELOX", 100, "2500")

	var discounted int64
	for i := 0; i < 10; i++ {
		h, err := svc.Admit(ctx, &hospitalization.AdmitCommand{
			PatientID: p.ID, VeterinarianID: vet.ID, Reason: "observation", DailyRate: dec("1000"),
		})
		require.NoError(t, err)
		_, err = svc.AddSupply(ctx, h.ID, &hospitalization.AddSupplyCommand{SupplyID: drug.ID, Containers: 1})
		require.NoError(t, err)

		var wg sync.WaitGroup
		var dischargeErr, addErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, dischargeErr = svc.Discharge(ctx, h.ID)
		}()
		go func() {
			defer wg.Done()
			_, addErr = svc.AddSupply(ctx, h.ID, &hospitalization.AddSupplyCommand{SupplyID: drug.ID, Containers: 2})
		}()
		wg.Wait()
		require.NoError(t, dischargeErr)

		got, err := svc.GetHospitalization(ctx, h.ID)
		require.NoError(t, err)
		if addErr != nil {
			require.ErrorIs(t, addErr, hospitalization.ErrNotActive)
			assert.Len(t, got.Supplies, 1)
		} else {
			assert.Len(t, got.Supplies, 2)
		}
		for _, l := range got.Supplies {
			assert.Equal(t, l.Containers, l.Computed, "every stored line is discounted")
			discounted += l.Computed
		}
	}

	assert.Equal(t, 100-discounted, e.stock(t, drug.ID))
}
