// Package main is the entry point for the radio directory server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/radiodir/internal/config"
	"github.com/vyrodovalexey/radiodir/internal/logging"
	"github.com/vyrodovalexey/radiodir/internal/server"
	"github.com/vyrodovalexey/radiodir/internal/store"
)

// storeOpenTimeout bounds connecting to and migrating the database.
const storeOpenTimeout = 15 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	// Initialize logger
	logger, err := initLogger(cfg)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.String("log_file", cfg.LogFile),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.Strings("cors_allowed_origins", cfg.CORSAllowedOrigins),
		zap.Float64("rate_limit_rps", cfg.RateLimitRPS),
	)

	stationStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open station store", zap.Error(err))
		return 1
	}
	defer func() {
		if err := stationStore.Close(); err != nil {
			logger.Warn("closing station store", zap.Error(err))
		}
	}()

	srv := server.New(cfg, logger, stationStore)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// initLogger builds the application logger from the configuration.
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
}

// openStore opens the backend selected by the database URL.
func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpenTimeout)
	defer cancel()

	s, err := store.Open(ctx, cfg.DatabaseURL, store.Options{MaxOpenConns: cfg.DBMaxOpenConns}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.DatabaseURL, err)
	}
	return s, nil
}
