package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/imedwei/timedtask/internal/config"
	"github.com/imedwei/timedtask/internal/health"
	"github.com/imedwei/timedtask/internal/metrics"
	"github.com/imedwei/timedtask/internal/server"
	"github.com/imedwei/timedtask/internal/snapshot"
	"github.com/imedwei/timedtask/internal/storage"
)

var version = "dev"

func main() {
	// Set up logger
	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("snapshotd starting", "version", version)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logLevel.Set(cfg.LogLevel)

	// Log configuration (without sensitive data)
	logger.Info("Configuration loaded",
		"source_path", cfg.SourcePath,
		"storage_provider", cfg.StorageProvider,
		"snapshot_prefix", cfg.SnapshotPrefix,
		"poll_interval", cfg.PollInterval,
		"debounce_interval", cfg.DebounceInterval,
		"sync_interval", cfg.SyncInterval,
		"prune_interval", cfg.PruneInterval,
		"retention_days", cfg.RetentionDays,
	)

	metrics.Info.WithLabelValues(version, cfg.StorageProvider).Set(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create storage provider
	storageProvider, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Error("Failed to create storage provider", "error", err)
		os.Exit(1)
	}

	shipper, err := snapshot.NewShipper(cfg, snapshot.NewFileSource(cfg.SourcePath), storageProvider, logger, nil)
	if err != nil {
		logger.Error("Failed to create snapshot shipper", "error", err)
		os.Exit(1)
	}

	// Start metrics server if enabled
	var httpServer *server.Server
	var wg sync.WaitGroup

	if cfg.MetricsPort > 0 {
		serverConfig := server.DefaultConfig()
		serverConfig.Port = cfg.MetricsPort
		httpServer = server.New(serverConfig, logger)

		httpServer.RegisterHealthCheck("tasks", health.TaskCheck(shipper.Status))
		httpServer.RegisterHealthCheck("storage", health.StorageCheck(shipper.StorageStatus))

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := httpServer.Start(); err != nil {
				logger.Error("HTTP server failed", "error", err)
			}
		}()
	}

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := shipper.Run(ctx); err != nil {
		logger.Error("Snapshot shipper failed", "error", err)
		os.Exit(1)
	}

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
	}

	wg.Wait()
	logger.Info("snapshotd stopped")
}
