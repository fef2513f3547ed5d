package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/catalog"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/sale"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/inventory"
)

type saleFixture struct {
	*env
	cash    *CashService
	sales   *SaleService
	cashier *domain.User
}

func newSaleFixture(t *testing.T) saleFixture {
	t.Helper()
	e := newEnv(t)
	return saleFixture{
		env:     e,
		cash:    NewCashService(e.store, e.log),
		sales:   NewSaleService(e.store, e.engine, e.metrics, e.log),
		cashier: e.user(t, domain.RoleCashier),
	}
}

func (f saleFixture) draft(t *testing.T, discount string, items ...*sale.AddItemCommand) *sale.Sale {
	t.Helper()
	ctx := asActor(f.cashier)
	s, err := f.sales.CreateSale(ctx, &sale.CreateSaleCommand{CreatedBy: f.cashier.ID, Discount: dec(discount)})
	require.NoError(t, err)
	for _, it := range items {
		_, err := f.sales.AddItem(ctx, s.ID, it)
		require.NoError(t, err)
	}
	return s
}

func supplyItem(id uuid.UUID, qty int64) *sale.AddItemCommand {
	return &sale.AddItemCommand{Kind: sale.ItemSupply, SupplyID: &id, Quantity: qty}
}

func TestSaleNeedsOpenSession(t *testing.T) {
	f := newSaleFixture(t)
	_, err := f.sales.CreateSale(context.Background(), &sale.CreateSaleCommand{CreatedBy: f.cashier.ID})
	assert.ErrorIs(t, err, sale.ErrNoOpenSession)
}

func TestPayAndVoid(t *testing.T) {
	f := newSaleFixture(t)
	ctx := asActor(f.cashier)

	_, err := f.cash.Open(ctx, f.cashier.ID, dec("10000"), "")
	require.NoError(t, err)
	_, err = f.cash.Open(ctx, f.cashier.ID, dec("0"), "")
	assert.ErrorIs(t, err, sale.ErrSessionAlreadyOpen)

	shampoo := f.tablets(t, "SHAMPOO", 4, "5990")
	bath, err := NewCatalogService(f.store, f.log).CreateService(ctx, &catalog.CreateServiceCommand{
		Name: "Bath", Category: catalog.CategoryGrooming, Price: dec("12000"),
	})
	require.NoError(t, err)

	s := f.draft(t, "990",
		supplyItem(shampoo.ID, 3),
		&sale.AddItemCommand{Kind: sale.ItemService, ServiceID: &bath.ID, Quantity: 1},
	)

	paid, err := f.sales.Pay(ctx, s.ID, sale.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusPaid, paid.Status)
	// 3 x 5990 + 12000 - 990
	assert.True(t, dec("28980").Equal(paid.Total), "total %s", paid.Total)
	assert.Equal(t, int64(1), f.stock(t, shampoo.ID))

	_, err = f.sales.Pay(ctx, s.ID, sale.PaymentCash)
	assert.ErrorIs(t, err, inventory.ErrAlreadyDiscounted)
	assert.Equal(t, int64(1), f.stock(t, shampoo.ID))

	_, err = f.sales.Void(ctx, s.ID, "")
	assert.ErrorIs(t, err, inventory.ErrReasonRequired)

	voided, err := f.sales.Void(ctx, s.ID, "wrong product")
	require.NoError(t, err)
	assert.Equal(t, sale.StatusVoided, voided.Status)
	assert.Equal(t, int64(4), f.stock(t, shampoo.ID))

	_, err = f.sales.Void(ctx, s.ID, "again")
	assert.ErrorIs(t, err, inventory.ErrAlreadyRestored)
	assert.Equal(t, int64(4), f.stock(t, shampoo.ID))

	events := f.events(t, history.EntitySale, s.ID.String())
	var statuses []string
	for _, ev := range events {
		if ev.Kind == history.KindStatusChanged {
			statuses = append(statuses, string(ev.Criticity))
		}
	}
	assert.ElementsMatch(t, []string{"medium", "high"}, statuses)
}

func TestPayShortageKeepsDraft(t *testing.T) {
	f := newSaleFixture(t)
	ctx := asActor(f.cashier)
	_, err := f.cash.Open(ctx, f.cashier.ID, decimal.Zero, "")
	require.NoError(t, err)

	food := f.tablets(t, "FOOD", 1, "30000")
	s := f.draft(t, "0", supplyItem(food.ID, 2))

	_, err = f.sales.Pay(ctx, s.ID, sale.PaymentDebit)
	var shortage *inventory.ShortageError
	require.ErrorAs(t, err, &shortage)

	after, err := f.sales.GetSale(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusDraft, after.Status)
	assert.False(t, after.StockDiscounted)
}

func TestCloseSessionBalances(t *testing.T) {
	f := newSaleFixture(t)
	ctx := asActor(f.cashier)

	_, err := f.cash.Open(ctx, f.cashier.ID, dec("5000"), "")
	require.NoError(t, err)
	food := f.tablets(t, "FOOD", 10, "1000")

	cashSale := f.draft(t, "0", supplyItem(food.ID, 3))
	_, err = f.sales.Pay(ctx, cashSale.ID, sale.PaymentCash)
	require.NoError(t, err)

	cardSale := f.draft(t, "0", supplyItem(food.ID, 2))
	_, err = f.sales.Pay(ctx, cardSale.ID, sale.PaymentCredit)
	require.NoError(t, err)

	voided := f.draft(t, "0", supplyItem(food.ID, 1))
	_, err = f.sales.Pay(ctx, voided.ID, sale.PaymentCash)
	require.NoError(t, err)
	_, err = f.sales.Void(ctx, voided.ID, "duplicate")
	require.NoError(t, err)

	closed, err := f.cash.Close(ctx, f.cashier.ID, dec("7500"), "")
	require.NoError(t, err)
	assert.Equal(t, sale.SessionClosed, closed.Status)
	// 5000 opening + 3000 cash + 1000 cash - 1000 voided
	assert.True(t, dec("8000").Equal(closed.ExpectedAmount), "expected %s", closed.ExpectedAmount)
	assert.True(t, dec("-500").Equal(closed.Difference), "difference %s", closed.Difference)

	_, err = f.cash.Current(ctx)
	assert.ErrorIs(t, err, sale.ErrNoOpenSession)

	events := f.events(t, history.EntityCashSession, closed.ID.String())
	require.NotEmpty(t, events)
	assert.Equal(t, history.KindStatusChanged, events[0].Kind)
	assert.Equal(t, history.CriticityHigh, events[0].Criticity)
}

func TestCashVoidAfterCloseIsRefused(t *testing.T) {
	f := newSaleFixture(t)
	ctx := asActor(f.cashier)

	_, err := f.cash.Open(ctx, f.cashier.ID, decimal.Zero, "")
	require.NoError(t, err)
	food := f.tablets(t, "FOOD", 10, "1000")
	s := f.draft(t, "0", supplyItem(food.ID, 1))
	_, err = f.sales.Pay(ctx, s.ID, sale.PaymentCash)
	require.NoError(t, err)
	_, err = f.cash.Close(ctx, f.cashier.ID, dec("1000"), "")
	require.NoError(t, err)

	_, err = f.sales.Void(ctx, s.ID, "late")
	assert.ErrorIs(t, err, sale.ErrSessionClosed)
}

func TestCardVoidAfterCloseRestoresStock(t *testing.T) {
	f := newSaleFixture(t)
	ctx := asActor(f.cashier)

	_, err := f.cash.Open(ctx, f.cashier.ID, decimal.Zero, "")
	require.NoError(t, err)
	food := f.tablets(t, "FOOD", 10, "1000")
	s := f.draft(t, "0", supplyItem(food.ID, 2))
	_, err = f.sales.Pay(ctx, s.ID, sale.PaymentDebit)
	require.NoError(t, err)
	_, err = f.cash.Close(ctx, f.cashier.ID, decimal.Zero, "")
	require.NoError(t, err)

	voided, err := f.sales.Void(ctx, s.ID, "card chargeback")
	require.NoError(t, err)
	assert.Equal(t, sale.StatusVoided, voided.Status)
	assert.Equal(t, int64(10), f.stock(t, food.ID))
}
