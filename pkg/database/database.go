package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/config"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/catalog"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/hospitalization"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/owner"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/sale"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/supply"
)

// Connect opens the configured database and installs plugins (the audit
// plugin in practice) before any query runs.
func Connect(cfg config.DatabaseConfig, log *zap.Logger, plugins ...gorm.Plugin) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	default:
		gormCfg.PrepareStmt = true
		dialector = postgres.New(postgres.Config{DSN: cfg.DSN()})
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	for _, p := range plugins {
		if err := db.Use(p); err != nil {
			return nil, fmt.Errorf("installing plugin %s: %w", p.Name(), err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&domain.User{},
		&history.Event{},
		&owner.Owner{},
		&patient.Patient{},
		&supply.Supply{},
		&supply.Movement{},
		&catalog.Service{},
		&catalog.ServiceSupply{},
		&consultation.Consultation{},
		&consultation.ServiceLine{},
		&consultation.SupplyLine{},
		&hospitalization.Hospitalization{},
		&hospitalization.SupplyLine{},
		&sale.CashSession{},
		&sale.Sale{},
		&sale.Item{},
		&appointment.Appointment{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// createIndexes adds the partial indexes AutoMigrate cannot express. Both
// postgres and sqlite accept this syntax.
func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		{
			name:  "idx_cash_sessions_single_open",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_sessions_single_open ON cash_sessions (status) WHERE status = 'open'`,
		},
		{
			name:  "idx_hospitalizations_single_active",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS idx_hospitalizations_single_active ON hospitalizations (patient_id) WHERE status = 'active'`,
		},
		{
			name:  "idx_appointments_vet_schedule",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_vet_schedule ON appointments (veterinarian_id, scheduled_at) WHERE status NOT IN ('cancelled', 'no_show')`,
		},
		{
			name:  "idx_supplies_low_stock",
			query: `CREATE INDEX IF NOT EXISTS idx_supplies_low_stock ON supplies (stock, min_stock) WHERE deleted_at IS NULL AND active`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("%s: %w", idx.name, err)
		}
	}
	return nil
}
