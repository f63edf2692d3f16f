// Package main provides a CLI tool for seeding a demo tenant.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MelvinKr/CutlyAI/internal/config"
	"github.com/MelvinKr/CutlyAI/internal/domain/catalog"
	"github.com/MelvinKr/CutlyAI/internal/domain/stock"
	"github.com/MelvinKr/CutlyAI/internal/events"
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
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	tenantID := os.Getenv("CUTLY_SEED_TENANT")
	if tenantID == "" {
		tenantID = "demo"
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.URL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	if cfg.Migrations.Auto {
		if err := postgres.Migrate(ctx, cfg.DB.URL, cfg.Migrations.Path); err != nil {
			log.Fatalw("failed to run migrations", "error", err)
		}
	}

	txManager := postgres.NewTxManager(pool)
	productRepo := postgres.NewProductRepo(txManager)
	stockRepo := postgres.NewStockRepo(txManager)

	catalogService := catalog.NewService(productRepo, events.NopPublisher{})
	ledger := stock.NewLedger(stockRepo, txManager, events.NopPublisher{})

	if err := seedDemo(ctx, tenantID, catalogService, ledger, productRepo, log); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}
}

type demoProduct struct {
	sku         string
	name        string
	category    string
	retailPrice string
	costPrice   string
	threshold   int
	batches     []demoBatch
}

type demoBatch struct {
	code string
	qty  int64
}

var demoProducts = []demoProduct{
	{
		sku: "SKU-DEM-1", name: "Shampoing Doux", category: string(catalog.CategoryShampoo),
		retailPrice: "9.9", costPrice: "4.0", threshold: 5,
		batches: []demoBatch{{code: "BATCH-A", qty: 2}, {code: "BATCH-B", qty: 1}},
	},
	{
		sku: "SKU-DEM-2", name: "Coloration Intense", category: string(catalog.CategoryColoration),
		retailPrice: "19.9", costPrice: "9.0", threshold: 3,
		batches: []demoBatch{{code: "BATCH-C", qty: 5}},
	},
	{
		sku: "SKU-DEM-3", name: "Soin Réparateur", category: string(catalog.CategoryCare),
		retailPrice: "14.9", costPrice: "6.0", threshold: 10,
	},
}

// seedDemo creates the demo catalog and initial stock. Idempotent: skipped
// entirely when the tenant already has any of the demo products.
func seedDemo(
	ctx context.Context,
	tenantID string,
	catalogService *catalog.Service,
	ledger *stock.Ledger,
	repo catalog.Repository,
	log *logger.Logger,
) error {
	existing, err := repo.FindBySKU(ctx, tenantID, demoProducts[0].sku)
	if err != nil {
		return fmt.Errorf("check existing seed: %w", err)
	}
	if existing != nil {
		log.Infow("demo data already present, skipping", "tenant_id", tenantID)
		return nil
	}

	brand := "CoiffIA"
	start := time.Now()

	for _, dp := range demoProducts {
		product := catalog.NewProduct(tenantID, dp.sku, dp.name)
		product.Brand = &brand
		product.Category = dp.category
		product.RetailPrice = decimal.RequireFromString(dp.retailPrice)
		product.CostPrice = decimal.RequireFromString(dp.costPrice)
		product.MinStockThreshold = dp.threshold

		if err := catalogService.Create(ctx, product); err != nil {
			return fmt.Errorf("create product %s: %w", dp.sku, err)
		}

		for _, b := range dp.batches {
			input := stock.BatchInput{
				BatchCode: b.code,
				UnitCost:  &product.CostPrice,
			}
			if _, err := ledger.Receive(ctx, tenantID, product.ID, input, b.qty); err != nil {
				return fmt.Errorf("receive batch %s: %w", b.code, err)
			}
		}
	}

	log.Infow("demo data seeded",
		"tenant_id", tenantID,
		"products", len(demoProducts),
		"took_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
