package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
	"github.com/MelvinKr/CutlyAI/internal/events"
	"github.com/MelvinKr/CutlyAI/pkg/logger"
)

// Table is the persisted table name; part of the wire contract other tooling
// depends on.
const Table = "products"

// Service provides business operations for the product catalog.
// The tenant is always passed explicitly; route handlers are thin adapters.
type Service struct {
	repo Repository
	feed events.Publisher
}

// NewService creates a catalog service.
func NewService(repo Repository, feed events.Publisher) *Service {
	if feed == nil {
		feed = events.NopPublisher{}
	}
	return &Service{repo: repo, feed: feed}
}

// Create validates and inserts a new product.
//
// SKU uniqueness is pre-checked here as a fast path for user-facing messages;
// the authoritative guard is the store-level unique index on (tenant_id, sku),
// whose violation the repository also surfaces as a duplicate error.
func (s *Service) Create(ctx context.Context, p *Product) error {
	p.Normalize()
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkSKUAvailable(ctx, p.TenantID, p.SKU, id.Nil()); err != nil {
		return err
	}

	if id.IsNil(p.ID) {
		p.ID = id.New()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}

	s.feed.Publish(ctx, events.Event{
		Type:     events.EventInsert,
		Table:    Table,
		TenantID: p.TenantID,
		Row:      p,
	})

	logger.Info(ctx, "product created", "product_id", p.ID, "sku", p.SKU)
	return nil
}

// Update validates and saves an existing product.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if id.IsNil(p.ID) {
		return apperror.NewValidation("product id is required").
			WithDetail("field", "id")
	}

	p.Normalize()
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkSKUAvailable(ctx, p.TenantID, p.SKU, p.ID); err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}

	s.feed.Publish(ctx, events.Event{
		Type:     events.EventUpdate,
		Table:    Table,
		TenantID: p.TenantID,
		Row:      p,
	})

	logger.Info(ctx, "product updated", "product_id", p.ID, "sku", p.SKU)
	return nil
}

// Archive soft-deletes a product by flipping is_active to false.
// This is the single deletion policy: batches and movements that reference
// the product stay valid, and the SKU remains reserved for the tenant.
func (s *Service) Archive(ctx context.Context, tenantID string, productID id.ID) error {
	if tenantID == "" {
		return apperror.NewValidation("tenant is required")
	}

	if err := s.repo.SetActive(ctx, tenantID, productID, false); err != nil {
		return err
	}

	s.feed.Publish(ctx, events.Event{
		Type:     events.EventUpdate,
		Table:    Table,
		TenantID: tenantID,
		Row:      map[string]any{"id": productID, "is_active": false},
	})

	logger.Info(ctx, "product archived", "product_id", productID)
	return nil
}

// Restore re-activates an archived product.
func (s *Service) Restore(ctx context.Context, tenantID string, productID id.ID) error {
	if tenantID == "" {
		return apperror.NewValidation("tenant is required")
	}

	if err := s.repo.SetActive(ctx, tenantID, productID, true); err != nil {
		return err
	}

	s.feed.Publish(ctx, events.Event{
		Type:     events.EventUpdate,
		Table:    Table,
		TenantID: tenantID,
		Row:      map[string]any{"id": productID, "is_active": true},
	})

	return nil
}

// Get retrieves a product scoped by tenant.
func (s *Service) Get(ctx context.Context, tenantID string, productID id.ID) (*Product, error) {
	if tenantID == "" {
		return nil, apperror.NewValidation("tenant is required")
	}
	return s.repo.GetByID(ctx, tenantID, productID)
}

// checkSKUAvailable returns a duplicate error when another product of the
// tenant already uses the SKU.
func (s *Service) checkSKUAvailable(ctx context.Context, tenantID, sku string, excludeID id.ID) error {
	existing, err := s.repo.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return apperror.NewDuplicate("product", "sku", sku)
	}
	return nil
}
