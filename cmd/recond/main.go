package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldbook-vn/recon-backend/internal/adapters/bankfeed"
	"github.com/fieldbook-vn/recon-backend/internal/api"
	"github.com/fieldbook-vn/recon-backend/internal/application/recon"
	"github.com/fieldbook-vn/recon-backend/internal/domain/matcher"
	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/config"
	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/logging"
	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/storage"
)

func main() {
	var (
		configFile = flag.String("config", "config.yaml", "Configuration file path")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Load configuration
	cfg := config.LoadOrEnvWithPath(*configFile)
	if *verbose {
		cfg.Observability.Logging.Level = "debug"
	}

	// Setup logging
	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "RECOND")

	if cfg.Bank.Endpoint == "" {
		logger.Error("bank feed endpoint is not configured")
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	// Initialize the bank feed client and matching engine
	feedClient := bankfeed.NewClient(cfg.Bank, logger)
	m := matcher.NewMatcher(matcher.Config{
		AmountTolerance: cfg.Recon.AmountTolerance,
	})

	orchestrator := recon.NewOrchestrator(feedClient, m, store, logger)
	scheduler := recon.NewScheduler(orchestrator, cfg.Recon.PollInterval, logger)

	// Start the API server
	server := api.NewServer(api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
	}, store, scheduler, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	scheduler.Start()

	logger.Info("reconciliation daemon started",
		slog.Int("api_port", cfg.API.Port),
		slog.Duration("poll_interval", cfg.Recon.PollInterval),
		slog.Int64("amount_tolerance", cfg.Recon.AmountTolerance),
	)

	// Wait for shutdown signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("API server failed", slog.String("error", err.Error()))
		}
	}

	// Stop taking on new work, let the in-flight run finish
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("reconciliation daemon stopped")
}
