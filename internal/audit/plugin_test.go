package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/testutil"
)

func newSupply() *supply.Supply {
	return &supply.Supply{
		Code:                "AMX-250",
		Name:                "Amoxicilina 250mg/5ml",
		Kind:                supply.KindMedication,
		Format:              supply.FormatLiquid,
		DosePerKg:           decimal.RequireFromString("0.5"),
		ApplicationsPerDay:  2,
		ContentPerContainer: decimal.NewFromInt(60),
		Stock:               10,
		MinStock:            3,
		CostPrice:           decimal.NewFromInt(4000),
		SalePrice:           decimal.NewFromInt(6500),
		Active:              true,
	}
}

func events(t *testing.T, db *gorm.DB, entityID string) []history.Event {
	t.Helper()
	var out []history.Event
	require.NoError(t, db.Where("entity_id = ?", entityID).Order("occurred_at, kind").Find(&out).Error)
	return out
}

func TestPluginRecordsCreate(t *testing.T) {
	db := testutil.DB(t)
	actor := uuid.New()
	ctx := audit.WithActor(context.Background(), audit.Actor{UserID: &actor, Role: "admin", RequestID: "req-1"})

	s := newSupply()
	require.NoError(t, db.WithContext(ctx).Create(s).Error)

	evs := events(t, db, s.ID.String())
	require.Len(t, evs, 1)
	assert.Equal(t, history.KindCreated, evs[0].Kind)
	assert.Equal(t, history.EntitySupply, evs[0].EntityType)
	assert.Equal(t, &actor, evs[0].ActorID)
	assert.Equal(t, "req-1", evs[0].RequestID)
}

func TestPluginPriceAndStockInOneWrite(t *testing.T) {
	db := testutil.DB(t)
	s := newSupply()
	require.NoError(t, db.Create(s).Error)

	var loaded supply.Supply
	require.NoError(t, db.First(&loaded, "id = ?", s.ID).Error)
	loaded.SalePrice = decimal.NewFromInt(7000)
	loaded.Stock = 0

	ctx := audit.WithReason(context.Background(), "recount")
	require.NoError(t, db.WithContext(ctx).Omit(clause.Associations).Save(&loaded).Error)

	evs := events(t, db, s.ID.String())
	require.Len(t, evs, 3)

	var price, stock *history.Event
	for i := range evs {
		switch evs[i].Kind {
		case history.KindPriceChanged:
			price = &evs[i]
		case history.KindStockChanged:
			stock = &evs[i]
		}
	}
	require.NotNil(t, price)
	require.NotNil(t, stock)

	assert.Equal(t, history.CriticityCritical, price.Criticity)
	assert.Equal(t, "recount", price.Reason)

	var changes []history.Change
	require.NoError(t, json.Unmarshal(price.Changes, &changes))
	assert.Len(t, changes, 2)

	require.NoError(t, json.Unmarshal(stock.Changes, &changes))
	require.Len(t, changes, 1)
	assert.Equal(t, "stock", changes[0].Field)
	assert.Equal(t, history.CriticityCritical, stock.Criticity)
}

func TestPluginStockEscalation(t *testing.T) {
	db := testutil.DB(t)
	s := newSupply()
	require.NoError(t, db.Create(s).Error)

	var loaded supply.Supply
	require.NoError(t, db.First(&loaded, "id = ?", s.ID).Error)
	loaded.Stock = 3 // at min stock
	require.NoError(t, db.Omit(clause.Associations).Save(&loaded).Error)

	evs := events(t, db, s.ID.String())
	require.Len(t, evs, 2)
	assert.Equal(t, history.KindStockChanged, evs[1].Kind)
	assert.Equal(t, history.CriticityHigh, evs[1].Criticity)
	assert.Equal(t, "stock: 10 -> 3", evs[1].Summary)
}

func TestPluginRollsBackWithTransaction(t *testing.T) {
	db := testutil.DB(t)
	s := newSupply()
	require.NoError(t, db.Create(s).Error)

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		var loaded supply.Supply
		if err := tx.First(&loaded, "id = ?", s.ID).Error; err != nil {
			return err
		}
		loaded.Stock = 1
		if err := tx.Omit(clause.Associations).Save(&loaded).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Len(t, events(t, db, s.ID.String()), 1)
}

func TestPluginSkipsTableUpdates(t *testing.T) {
	db := testutil.DB(t)
	s := newSupply()
	require.NoError(t, db.Create(s).Error)

	require.NoError(t, db.Table("supplies").Where("id = ?", s.ID).Updates(map[string]any{"min_stock": 5}).Error)
	assert.Len(t, events(t, db, s.ID.String()), 1)
}

func TestPluginUpdateWithoutSnapshot(t *testing.T) {
	db := testutil.DB(t)
	s := newSupply()
	require.NoError(t, db.Create(s).Error)

	fresh := newSupply()
	fresh.ID = s.ID
	fresh.CreatedAt = s.CreatedAt
	fresh.Name = "renamed"
	require.NoError(t, db.Omit(clause.Associations).Save(fresh).Error)

	evs := events(t, db, s.ID.String())
	require.Len(t, evs, 2)
	assert.Equal(t, history.KindUpdated, evs[1].Kind)
	assert.Equal(t, "updated without snapshot", evs[1].Summary)
}

func TestPluginEventHookAndSoftDelete(t *testing.T) {
	var seen []history.Kind
	db := testutil.DB(t, audit.WithEventHook(func(e *history.Event) { seen = append(seen, e.Kind) }))

	s := newSupply()
	require.NoError(t, db.Create(s).Error)
	require.NoError(t, db.Delete(s).Error)

	assert.Equal(t, []history.Kind{history.KindCreated, history.KindDeleted}, seen)
}

func TestEventsAreImmutable(t *testing.T) {
	db := testutil.DB(t)
	s := newSupply()
	require.NoError(t, db.Create(s).Error)

	evs := events(t, db, s.ID.String())
	require.Len(t, evs, 1)

	ev := evs[0]
	ev.Summary = "tampered"
	assert.ErrorIs(t, db.Save(&ev).Error, history.ErrImmutable)
	assert.ErrorIs(t, db.Delete(&ev).Error, history.ErrImmutable)
}

func TestMovementsAreImmutable(t *testing.T) {
	db := testutil.DB(t)
	s := newSupply()
	require.NoError(t, db.Create(s).Error)

	m := &supply.Movement{
		SupplyID:   s.ID,
		Type:       supply.MovementIn,
		Quantity:   5,
		Balance:    5,
		OriginType: supply.OriginRestock,
	}
	require.NoError(t, db.Create(m).Error)

	m.Quantity = 50
	assert.ErrorIs(t, db.Save(m).Error, history.ErrImmutable)
	assert.ErrorIs(t, db.Delete(m).Error, history.ErrImmutable)

	var stored supply.Movement
	require.NoError(t, db.First(&stored, "id = ?", m.ID).Error)
	assert.Equal(t, int64(5), stored.Quantity)
}
