// Package app wires repositories, services and handlers into one HTTP
// engine.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/config"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/handler"
	v1 "github.com/dmehra2102/prod-golang-projects/vetcare/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/inventory"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/metrics"
)

type App struct {
	Router *gin.Engine
	Auth   *service.AuthService
	Access *service.AccessRecorder

	global *middleware.IPLimiter
	login  *middleware.IPLimiter
	log    *zap.Logger
}

// New builds the application on an open database. The audit plugin must
// already be installed on db.
func New(cfg *config.Config, db *gorm.DB, m *metrics.Collector, log *zap.Logger) (*App, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}

	store := repository.NewStore(db)
	engine := inventory.NewEngine(log, m)
	jwt := auth.NewJWTManager(cfg.JWT)
	access := service.NewAccessRecorder(store.History, cfg.Audit, m, log)

	authSvc := service.NewAuthService(store.Users, jwt, access, log)
	handlers := v1.Handlers{
		Auth:            v1.NewAuthHandler(authSvc),
		Owners:          v1.NewOwnerHandler(service.NewOwnerService(store.Owners, store.Patients, log)),
		Patients:        v1.NewPatientHandler(service.NewPatientService(store.Patients, store.Owners, log)),
		Supplies:        v1.NewSupplyHandler(service.NewSupplyService(store, engine, log)),
		Catalog:         v1.NewCatalogHandler(service.NewCatalogService(store, log)),
		Consultations:   v1.NewConsultationHandler(service.NewConsultationService(store, engine, log)),
		Hospitalization: v1.NewHospitalizationHandler(service.NewHospitalizationService(store, engine, log)),
		Sales:           v1.NewSaleHandler(service.NewSaleService(store, engine, m, log), service.NewCashService(store, log)),
		Appointments:    v1.NewAppointmentHandler(service.NewAppointmentService(store.Appointments, store.Patients, store.Users, m, log)),
		History:         v1.NewHistoryHandler(service.NewHistoryService(store.History)),
	}

	global, login := handler.NewLimiters(cfg.RateLimit)
	router := handler.NewRouter(handler.RouterConfig{
		Config:   cfg,
		Handlers: handlers,
		Tokens:   jwt,
		Metrics:  m,
		DB:       sqlDB,
		Log:      log,
		Global:   global,
		Login:    login,
	})

	return &App{
		Router: router,
		Auth:   authSvc,
		Access: access,
		global: global,
		login:  login,
		log:    log,
	}, nil
}

// SweepLimiters forgets idle rate limit buckets until ctx ends.
func (a *App) SweepLimiters(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			a.global.Sweep()
			a.login.Sweep()
		}
	}
}

// Close flushes pending access records.
func (a *App) Close() {
	a.Access.Shutdown()
}
