package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jipl/complaint-register/internal/config"
	"github.com/jipl/complaint-register/internal/database"
	"github.com/jipl/complaint-register/internal/export"
	"github.com/jipl/complaint-register/internal/http/handler"
	"github.com/jipl/complaint-register/internal/http/middleware"
	"github.com/jipl/complaint-register/internal/http/router"
	"github.com/jipl/complaint-register/internal/logger"
	"github.com/jipl/complaint-register/internal/repository"
	"github.com/jipl/complaint-register/internal/service"
	"go.uber.org/zap"
)

// @title JIPL Complaint Register API
// @version 1.0
// @description Complaint registration, numbering and monthly reporting backend

// @host localhost:8080
// @BasePath /api/v1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
		zap.String("database", cfg.Database.Path),
	)

	// Open the embedded store
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Keep the schema current for fresh installs; goose migrations cover
	// upgrades of existing databases via cmd/migrate
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	complaintRepo := repository.NewComplaintRepository(db)

	// Initialize services
	exporter := export.NewExporter(cfg.Export.OutputDir, log)
	complaintService := service.NewComplaintService(complaintRepo, cfg.Numbering, log)
	reportService := service.NewReportService(complaintRepo, exporter, cfg.Numbering, log)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	complaintHandler := handler.NewComplaintHandler(complaintService, log)
	reportHandler := handler.NewReportHandler(reportService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		rateLimiter,
		complaintHandler,
		reportHandler,
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
