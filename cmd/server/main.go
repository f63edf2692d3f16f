// Package main is the entry point for the CutlyAI inventory API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MelvinKr/CutlyAI/internal/config"
	"github.com/MelvinKr/CutlyAI/internal/domain/catalog"
	"github.com/MelvinKr/CutlyAI/internal/domain/catalog/importer"
	"github.com/MelvinKr/CutlyAI/internal/domain/search"
	"github.com/MelvinKr/CutlyAI/internal/domain/stock"
	"github.com/MelvinKr/CutlyAI/internal/events"
	"github.com/MelvinKr/CutlyAI/internal/infrastructure/auth"
	v1 "github.com/MelvinKr/CutlyAI/internal/infrastructure/http/v1"
	"github.com/MelvinKr/CutlyAI/internal/infrastructure/http/v1/middleware"
	"github.com/MelvinKr/CutlyAI/internal/infrastructure/storage/postgres"
	"github.com/MelvinKr/CutlyAI/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting cutlyai server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.URL)
	poolCfg.MaxConns = cfg.DB.MaxConns
	if cfg.DB.MinConns > 0 {
		poolCfg.MinConns = cfg.DB.MinConns
	}
	if cfg.DB.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.DB.MaxConnLifetime
	}
	if cfg.DB.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.DB.MaxConnIdleTime
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if cfg.Migrations.Auto {
		if err := postgres.Migrate(ctx, cfg.DB.URL, cfg.Migrations.Path); err != nil {
			log.Fatalw("failed to run migrations", "error", err)
		}
	}

	// --- Domain wiring ---
	txManager := postgres.NewTxManager(pool)
	productRepo := postgres.NewProductRepo(txManager)
	stockRepo := postgres.NewStockRepo(txManager)

	hub := events.NewHub()

	catalogService := catalog.NewService(productRepo, hub)
	ledger := stock.NewLedger(stockRepo, txManager, hub)
	projections := stock.NewProjectionReader(stockRepo, time.Now)
	searchService := search.NewService(productRepo, projections)
	importService := importer.NewService(productRepo, hub)

	// --- Token validation (optional) ---
	var validator middleware.JWTValidator
	if cfg.JWT.Secret != "" {
		validator = auth.NewJWTService(cfg.JWT.Secret)
		log.Info("token validation enabled")
	} else {
		log.Warn("token validation disabled, trusting tenant header")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:         pool,
		Logger:       log,
		Catalog:      catalogService,
		Ledger:       ledger,
		Search:       searchService,
		Importer:     importService,
		Hub:          hub,
		JWTValidator: validator,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
