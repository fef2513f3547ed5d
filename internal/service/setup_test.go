package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/config"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/owner"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/inventory"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/testutil"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/metrics"
)

type env struct {
	store   *repository.Store
	engine  *inventory.Engine
	metrics *metrics.Collector
	log     *zap.Logger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := testutil.Logger(t)
	m := metrics.NewCollector("test")
	return &env{
		store:   repository.NewStore(testutil.DB(t)),
		engine:  inventory.NewEngine(log, m),
		metrics: m,
		log:     log,
	}
}

func (e *env) recorder(t *testing.T) *AccessRecorder {
	t.Helper()
	r := NewAccessRecorder(e.store.History, config.AuditConfig{BufferSize: 16, ShutdownTimeout: 5 * time.Second}, e.metrics, e.log)
	t.Cleanup(r.Shutdown)
	return r
}

func (e *env) user(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		RUT:          uuid.NewString()[:12],
		FullName:     "Dr. " + string(role),
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.store.Users.Create(context.Background(), u))
	return u
}

func (e *env) owner(t *testing.T) *owner.Owner {
	t.Helper()
	o := &owner.Owner{RUT: uuid.NewString()[:12], FirstName: "Ana", LastName: "Rojas"}
	require.NoError(t, e.store.Owners.Create(context.Background(), o))
	return o
}

func (e *env) patient(t *testing.T, weight string) *patient.Patient {
	t.Helper()
	p := &patient.Patient{
		OwnerID:  e.owner(t).ID,
		Name:     "Luna",
		Species:  patient.SpeciesCanine,
		Sex:      patient.SexFemale,
		WeightKg: decimal.RequireFromString(weight),
		Status:   patient.StatusActive,
	}
	require.NoError(t, e.store.Patients.Create(context.Background(), p))
	return p
}

// tablets creates a tablet supply dosed at 0.25 per kg once a day, ten per box.
func (e *env) tablets(t *testing.T, code string, stock int64, price string) *supply.Supply {
	t.Helper()
	s := &supply.Supply{
		Code:                code,
		Name:                "tablets " + code,
		Kind:                supply.KindMedication,
		Format:              supply.FormatTablet,
		DosePerKg:           decimal.RequireFromString("0.25"),
		ApplicationsPerDay:  1,
		ContentPerContainer: decimal.NewFromInt(10),
		Stock:               stock,
		CostPrice:           decimal.NewFromInt(1000),
		SalePrice:           decimal.RequireFromString(price),
		Active:              true,
	}
	require.NoError(t, e.store.Supplies.Create(context.Background(), s))
	return s
}

func (e *env) stock(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	s, err := e.store.Supplies.GetByID(context.Background(), id)
	require.NoError(t, err)
	return s.Stock
}

func (e *env) events(t *testing.T, entity history.EntityType, id string) []*history.Event {
	t.Helper()
	page, err := e.store.History.List(context.Background(), &history.ListQuery{EntityType: &entity, EntityID: id, PageSize: 100})
	require.NoError(t, err)
	return page.Events
}

func asActor(u *domain.User) context.Context {
	return audit.WithActor(context.Background(), audit.Actor{UserID: &u.ID, Role: string(u.Role), RequestID: "req-test"})
}

func kinds(events []*history.Event) []history.Kind {
	out := make([]history.Kind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
