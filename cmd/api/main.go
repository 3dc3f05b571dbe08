// Command api serves NPB projections over HTTP.
//
// Usage:
//
//	npb-api
//	API_PORT=8080 NPB_DATA_DIR=data/raw npb-api

// @title NPB Projections API
// @version 1.0.0
// @description Next-season NPB player projections, linear-weights value metrics, Pythagorean records and projected standings.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name NPB Projections
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/npb-projections/internal/api"
	"github.com/albapepper/npb-projections/internal/api/handler"
	"github.com/albapepper/npb-projections/internal/cache"
	"github.com/albapepper/npb-projections/internal/config"
	"github.com/albapepper/npb-projections/internal/db"
	"github.com/albapepper/npb-projections/internal/forecast"
	"github.com/albapepper/npb-projections/internal/maintenance"
	"github.com/albapepper/npb-projections/internal/store"

	_ "github.com/albapepper/npb-projections/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}
	model, err := config.LoadModel(cfg.ModelFile)
	if err != nil {
		logger.Error("Failed to load model parameters", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Database is optional; it backs /health/db and publish-on-reload.
	var (
		pool    *db.Pool
		checker handler.HealthChecker
	)
	if cfg.DatabaseURL != "" {
		logger.Info("Connecting to database...")
		pool, err = db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		checker = pool
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
	}

	// Initialize cache
	var appCache cache.Store
	if cfg.CacheEnabled && cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		appCache = rc
		logger.Info("Cache initialized", "backend", "redis")
	} else {
		mc := cache.New(cfg.CacheEnabled)
		defer mc.Close()
		appCache = mc
		logger.Info("Cache initialized", "backend", "memory", "enabled", cfg.CacheEnabled)
	}

	// Build the first snapshot before accepting traffic
	var snapshots forecast.Holder
	target := cfg.TargetYear()
	load := func(context.Context) (*forecast.Snapshot, error) {
		return forecast.Load(cfg.DataDir, model, target, logger)
	}
	var publish maintenance.Publisher
	if cfg.PublishOnReload && pool != nil {
		publish = func(ctx context.Context, s *forecast.Snapshot) error {
			if err := store.EnsureSchema(ctx, pool); err != nil {
				return err
			}
			_, err := store.Publish(ctx, pool, s, logger)
			return err
		}
	}
	start := time.Now()
	if err := maintenance.Reload(ctx, &snapshots, load, publish, logger); err != nil {
		if snapshots.Load() == nil {
			logger.Error("Failed to build snapshot", "dir", cfg.DataDir, "target", target, "error", err)
			os.Exit(1)
		}
		logger.Warn("Initial publish failed", "error", err)
	}
	logger.Info("Snapshot ready", "target", target, "duration", time.Since(start).Round(time.Millisecond))

	// Start refresh ticker
	go maintenance.Start(ctx, []maintenance.Task{
		maintenance.ReloadTask(cfg.RefreshInterval, &snapshots, load, publish, logger),
	}, logger)

	// Create router
	router := api.NewRouter(&snapshots, appCache, checker, cfg, logger)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting NPB Projections API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
