package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dosepilot/dosepilot/internal/api"
	"github.com/dosepilot/dosepilot/internal/catalog"
	"github.com/dosepilot/dosepilot/internal/config"
	"github.com/dosepilot/dosepilot/internal/cron"
	"github.com/dosepilot/dosepilot/internal/engine"
	"github.com/dosepilot/dosepilot/internal/metrics"
	"github.com/dosepilot/dosepilot/internal/store"
	"github.com/dosepilot/dosepilot/internal/wearable"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	version    = "dev"
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting dosepilot",
		zap.String("version", version),
	)

	// Load configuration
	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize data store
	db, err := store.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer db.Close()

	// Wearable provider
	provider, err := wearable.NewProvider(&cfg.Wearable, logger)
	if err != nil {
		logger.Fatal("Failed to initialize wearable provider", zap.Error(err))
	}

	// Dosing engine, seeded with the built-in catalog until a file loads.
	eng := engine.New(db, catalog.Default(), provider, logger)

	var watcher *catalog.Watcher
	if cfg.Catalog.Path != "" {
		if cfg.Catalog.Watch {
			watcher, err = catalog.NewWatcher(cfg.Catalog.Path, logger, eng.SetCatalog)
			if err != nil {
				logger.Fatal("Failed to watch catalog", zap.Error(err))
			}
			defer watcher.Close()
		} else {
			cat, err := catalog.LoadFile(cfg.Catalog.Path)
			if err != nil {
				logger.Fatal("Failed to load catalog", zap.Error(err))
			}
			eng.SetCatalog(cat)
		}
		logger.Info("Loaded catalog file",
			zap.String("path", cfg.Catalog.Path),
			zap.Int("supplements", eng.Catalog().Len()),
			zap.Bool("watch", cfg.Catalog.Watch),
		)
	}

	// Background jobs
	var runner *cron.Runner
	if cfg.Scheduler.Enabled {
		runner, err = cron.NewRunner(cfg.Scheduler, eng, db, logger)
		if err != nil {
			logger.Fatal("Failed to initialize scheduler", zap.Error(err))
		}
		if err := runner.Start(); err != nil {
			logger.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// Initialize and start API server
	server := api.New(cfg, db, eng, metrics.New(), logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("address", cfg.Server.Address),
		zap.Int("port", cfg.Server.Port),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	if runner != nil {
		runner.Stop()
	}
	if err := server.Shutdown(); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
}
