package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/fieldbook-vn/recon-backend/internal/adapters/bankfeed"
	"github.com/fieldbook-vn/recon-backend/internal/application/recon"
	"github.com/fieldbook-vn/recon-backend/internal/domain/matcher"
	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/config"
	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/logging"
	"github.com/fieldbook-vn/recon-backend/internal/infrastructure/storage"
)

// reconcile runs a single reconciliation pass and exits. Useful for cron
// setups and for verifying configuration before starting the daemon.
func main() {
	var (
		configFile = flag.String("config", "config.yaml", "Configuration file path")
		timeout    = flag.Duration("timeout", 5*time.Minute, "Maximum run duration")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg := config.LoadOrEnvWithPath(*configFile)
	if *verbose {
		cfg.Observability.Logging.Level = "debug"
	}

	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "RECONCILE")

	if cfg.Bank.Endpoint == "" {
		logger.Error("bank feed endpoint is not configured")
		os.Exit(1)
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	feedClient := bankfeed.NewClient(cfg.Bank, logger)
	m := matcher.NewMatcher(matcher.Config{
		AmountTolerance: cfg.Recon.AmountTolerance,
	})

	orchestrator := recon.NewOrchestrator(feedClient, m, store, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	summary, err := orchestrator.Run(ctx, recon.TriggerManual)
	if err != nil {
		logger.Error("reconciliation run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("reconciliation run completed",
		slog.Int("scanned", summary.Scanned),
		slog.Int("matched", summary.Matched),
		slog.Int("failed", summary.Failed),
	)
}
