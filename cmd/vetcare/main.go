package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/app"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/config"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/tracer"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "vetcare",
		Short:         "Veterinary clinic backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// deps holds what every sub-command needs.
type deps struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Collector
	db      *gorm.DB
}

func bootstrap() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.App, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	m := metrics.NewCollector("vetcare")
	db, err := database.Connect(cfg.Database, log, audit.NewPlugin(log, audit.WithEventHook(m.ObserveEvent)))
	if err != nil {
		return nil, err
	}
	return &deps{cfg: cfg, log: log, metrics: m, db: db}, nil
}

func (r *deps) close() {
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = r.log.Sync()
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			if migrate {
				if err := database.Migrate(rt.db, rt.log); err != nil {
					return err
				}
			}
			return serve(cmd.Context(), rt)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run schema migrations before serving")
	return cmd
}

func serve(parent context.Context, rt *deps) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(ctx, rt.cfg.Tracing, rt.cfg.App.Version)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			rt.log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	a, err := app.New(rt.cfg, rt.db, rt.metrics, rt.log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         rt.cfg.Server.Address(),
		Handler:      a.Router,
		ReadTimeout:  rt.cfg.Server.ReadTimeout,
		WriteTimeout: rt.cfg.Server.WriteTimeout,
		IdleTimeout:  rt.cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.SweepLimiters(gctx, time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		rt.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()
			return database.Migrate(rt.db, rt.log)
		},
	}
}

func createUserCmd() *cobra.Command {
	var cmdIn service.CreateUserCommand
	var role string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			a, err := app.New(rt.cfg, rt.db, rt.metrics, rt.log)
			if err != nil {
				return err
			}
			defer a.Close()

			cmdIn.Role = domain.Role(role)
			u, err := a.Auth.CreateUser(cmd.Context(), &cmdIn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.RUT, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&cmdIn.RUT, "rut", "", "RUT, with or without dots")
	cmd.Flags().StringVar(&cmdIn.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&cmdIn.Email, "email", "", "email")
	cmd.Flags().StringVar(&cmdIn.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "admin, veterinarian, assistant or cashier")
	_ = cmd.MarkFlagRequired("rut")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
