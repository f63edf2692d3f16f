// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/MelvinKr/CutlyAI/internal/domain/catalog"
	"github.com/MelvinKr/CutlyAI/internal/domain/catalog/importer"
	"github.com/MelvinKr/CutlyAI/internal/domain/search"
	"github.com/MelvinKr/CutlyAI/internal/domain/stock"
	"github.com/MelvinKr/CutlyAI/internal/events"
	"github.com/MelvinKr/CutlyAI/internal/infrastructure/http/v1/handlers"
	"github.com/MelvinKr/CutlyAI/internal/infrastructure/http/v1/middleware"
	"github.com/MelvinKr/CutlyAI/internal/infrastructure/storage/postgres"
	"github.com/MelvinKr/CutlyAI/pkg/logger"
)

// RouterConfig holds the dependencies of the HTTP layer.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	Catalog  *catalog.Service
	Ledger   *stock.Ledger
	Search   *search.Service
	Importer *importer.Service
	Hub      *events.Hub

	// JWTValidator is optional; when nil the API trusts the X-Tenant-ID
	// header alone (development, or a trusted gateway in front).
	JWTValidator middleware.JWTValidator
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	productHandler := handlers.NewProductHandler(base, cfg.Catalog, cfg.Search)
	stockHandler := handlers.NewStockHandler(base, cfg.Ledger)
	importHandler := handlers.NewImportHandler(base, cfg.Importer)
	feedHandler := handlers.NewFeedHandler(base, cfg.Hub)

	// API v1: tenant scoping first, then optional token validation
	api := router.Group("/api/v1")
	api.Use(middleware.Tenant())
	if cfg.JWTValidator != nil {
		api.Use(middleware.Auth(cfg.JWTValidator))
	}

	products := api.Group("/products")
	{
		products.POST("", productHandler.Create)
		products.GET("", productHandler.List)
		products.POST("/import", importHandler.Upload)
		products.GET("/:id", productHandler.Get)
		products.PUT("/:id", productHandler.Update)
		products.POST("/:id/archive", productHandler.Archive)
		products.POST("/:id/restore", productHandler.Restore)
		products.GET("/:id/batches", stockHandler.Batches)
		products.GET("/:id/movements", stockHandler.Movements)
	}

	stockGroup := api.Group("/stock")
	{
		stockGroup.POST("/receive", stockHandler.Receive)
		stockGroup.POST("/adjust", stockHandler.Adjust)
		stockGroup.GET("/batches/:id/reconcile", stockHandler.Reconcile)
	}

	api.GET("/feed", feedHandler.Stream)

	return router
}
