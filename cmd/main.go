// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/salon-booking/internal/auth"
	"github.com/Shivanand-hulikatti/salon-booking/internal/config"
	"github.com/Shivanand-hulikatti/salon-booking/internal/database"
	"github.com/Shivanand-hulikatti/salon-booking/internal/handler"
	"github.com/Shivanand-hulikatti/salon-booking/internal/logging"
	"github.com/Shivanand-hulikatti/salon-booking/internal/metrics"
	"github.com/Shivanand-hulikatti/salon-booking/internal/notify"
	"github.com/Shivanand-hulikatti/salon-booking/internal/repository"
	"github.com/Shivanand-hulikatti/salon-booking/internal/service"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.Database.DSN(), logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if len(cfg.Admins) == 0 {
		logger.Warn("ADMINS is empty; admin login will reject every attempt")
	}

	// ── 2. Wire up layers ────────────────────────────────────────────────
	sender, err := notify.New(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("notifier: %w", err)
	}
	logger.Info("email transport ready", "provider", cfg.Email.Provider)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	appointmentSvc := service.NewAppointmentService(
		repository.NewCustomerRepository(pool),
		repository.NewServiceRepository(pool),
		repository.NewAppointmentRepository(pool),
		repository.NewEmailLogRepository(pool),
		sender,
		logger,
		service.Options{
			SendTimeout: cfg.Email.SendTimeout,
			Metrics:     metrics.NewLifecycleMetrics(reg),
		},
	)

	// ── 3. Build the router ───────────────────────────────────────────────
	router := handler.NewRouter(handler.RouterConfig{
		Appointments: handler.NewAppointmentHandler(appointmentSvc, logger),
		Admin:        handler.NewAdminHandler(auth.NewGate(cfg.Admins)),
		Logger:       logger,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		WebDir:       cfg.WebDir,
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	// Let queued notifications record their outcome before the pool closes.
	if err := appointmentSvc.Drain(shutdownCtx); err != nil {
		logger.Warn("notifications still in flight at shutdown", "error", err)
	}
	logger.Info("server stopped")
	return nil
}
