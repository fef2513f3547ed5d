package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/catalog"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
)

func TestCreateSupplyWithInitialStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewSupplyService(e.store, e.engine, e.log)

	_, err := svc.CreateSupply(ctx, &supply.CreateSupplyCommand{Code: "X", Name: "X", Kind: supply.KindMedication, Format: supply.FormatLiquid})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	s, err := svc.CreateSupply(ctx, &supply.CreateSupplyCommand{
		Code:                "amx-250",
		Name:                "Amoxicillin 250mg/5ml",
		Kind:                supply.KindMedication,
		Format:              supply.FormatLiquid,
		DosePerKg:           dec("0.5"),
		ApplicationsPerDay:  2,
		ContentPerContainer: dec("60"),
		ContentUnit:         "ml",
		InitialStock:        12,
		MinStock:            3,
		SalePrice:           dec("8990"),
	})
	require.NoError(t, err)
	assert.Equal(t, "AMX-250", s.Code)
	assert.Equal(t, int64(12), s.Stock)

	_, err = svc.CreateSupply(ctx, &supply.CreateSupplyCommand{Code: "AMX-250", Name: "dup", Kind: supply.KindMaterial, Format: supply.FormatUnit})
	assert.ErrorIs(t, err, supply.ErrSupplyAlreadyExists)

	moves, err := svc.Movements(ctx, &supply.ListMovementsQuery{SupplyID: s.ID})
	require.NoError(t, err)
	require.Len(t, moves.Movements, 1)
	assert.Equal(t, supply.MovementIn, moves.Movements[0].Type)
	assert.Equal(t, int64(12), moves.Movements[0].Balance)

	req, err := svc.PreviewRequirement(ctx, s.ID, supply.DoseRequest{WeightKg: dec("10.5"), Days: 6})
	require.NoError(t, err)
	assert.Equal(t, int64(2), req.Containers)
	assert.Equal(t, int64(12), e.stock(t, s.ID))
}

func TestSupplyPriceChangeIsAudited(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewSupplyService(e.store, e.engine, e.log)
	s := e.tablets(t, "MEL", 10, "1000")

	price := dec("1200")
	_, err := svc.UpdateSupply(ctx, s.ID, &supply.UpdateSupplyCommand{SalePrice: &price})
	require.NoError(t, err)

	negative := dec("-1")
	_, err = svc.UpdateSupply(ctx, s.ID, &supply.UpdateSupplyCommand{CostPrice: &negative})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.DeactivateSupply(ctx, s.ID)
	require.NoError(t, err)

	events := e.events(t, history.EntitySupply, s.ID.String())
	assert.Equal(t, []history.Kind{history.KindStatusChanged, history.KindPriceChanged, history.KindCreated}, kinds(events))

	page, err := svc.ListSupplies(ctx, &supply.ListSuppliesQuery{ActiveOnly: true})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
}

func TestLowStockFilter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewSupplyService(e.store, e.engine, e.log)

	low := e.tablets(t, "LOW", 1, "10")
	min := int64(2)
	_, err := svc.UpdateSupply(ctx, low.ID, &supply.UpdateSupplyCommand{MinStock: &min})
	require.NoError(t, err)
	e.tablets(t, "OK", 50, "10")

	page, err := svc.ListSupplies(ctx, &supply.ListSuppliesQuery{LowStock: true})
	require.NoError(t, err)
	require.Len(t, page.Supplies, 1)
	assert.Equal(t, "LOW", page.Supplies[0].Code)
}

func TestReplaceServiceSupplies(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewCatalogService(e.store, e.log)
	a, b := e.tablets(t, "A", 1, "1"), e.tablets(t, "B", 1, "1")

	created, err := svc.CreateService(ctx, &catalog.CreateServiceCommand{
		Name: "Vaccine", Category: catalog.CategoryVaccination, Price: dec("9000"),
		Supplies: []catalog.SupplyInput{{SupplyID: a.ID, Containers: 1}},
	})
	require.NoError(t, err)

	_, err = svc.ReplaceSupplies(ctx, created.ID, []catalog.SupplyInput{{SupplyID: b.ID}, {SupplyID: b.ID}})
	assert.ErrorIs(t, err, catalog.ErrDuplicatedSupply)

	got, err := svc.ReplaceSupplies(ctx, created.ID, []catalog.SupplyInput{{SupplyID: b.ID, Days: 0, Containers: 2}})
	require.NoError(t, err)
	require.Len(t, got.Supplies, 1)
	assert.Equal(t, b.ID, got.Supplies[0].SupplyID)
	assert.Equal(t, 1, got.Supplies[0].Days)

	price := dec("9500")
	_, err = svc.UpdateService(ctx, created.ID, &catalog.UpdateServiceCommand{Price: &price})
	require.NoError(t, err)
	events := e.events(t, history.EntityService, created.ID.String())
	assert.Equal(t, history.KindPriceChanged, events[0].Kind)
}
