package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homemeal/homemeal-backend/config"
	"github.com/homemeal/homemeal-backend/internal/app"
	"github.com/homemeal/homemeal-backend/internal/db"
	"github.com/homemeal/homemeal-backend/internal/metrics"
	"github.com/homemeal/homemeal-backend/internal/scheduler"
	"github.com/homemeal/homemeal-backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logger.Initialize(logger.Config{
		Level:       cfg.Server.LogLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.LogFormat == "console",
	})

	logger.Info("Starting homeMeal core", map[string]interface{}{
		"environment":     cfg.Server.Environment,
		"log_level":       cfg.Server.LogLevel,
		"session_backend": cfg.Session.Backend,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(db.GetDB()); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if cfg.Server.SeedDemo {
		if err := db.Seed(db.GetDB(), cfg.Catalog.Categories); err != nil {
			logger.Warn("Failed to seed database", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	registry, closeRegistry, err := app.NewRegistry(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize session registry", err)
	}
	defer func() {
		if err := closeRegistry(); err != nil {
			logger.Error("Failed to close session registry", err)
		}
	}()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promRegistry)

	core := app.New(cfg, db.GetDB(), registry, m)

	sweeper := scheduler.NewSessionSweeper(core.Registry, cfg.Session.SweepSchedule, m)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start session sweeper", err)
	}
	defer sweeper.Stop()

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Metrics listener started", map[string]interface{}{
				"address": cfg.Metrics.Addr,
			})
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics listener failed", err)
			}
		}()
	}

	logger.Info("Core ready", map[string]interface{}{
		"pid":        os.Getpid(),
		"categories": len(core.CatalogService.Categories()),
	})

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("Failed to stop metrics listener", err)
		}
	}
	logger.Info("Stopped")
}
