package catalog

import (
	"context"

	"github.com/MelvinKr/CutlyAI/internal/core/id"
)

// ListFilter contains filtering options for product listings.
// All queries are additionally scoped by tenant.
type ListFilter struct {
	// Search is a case-insensitive substring matched against sku, name,
	// brand and category.
	Search string

	// Category filters by exact category.
	Category string

	// ActiveOnly excludes archived products.
	ActiveOnly bool

	// Pagination
	Limit  int
	Offset int
}

// ListResult contains one page of products and the exact total count.
type ListResult struct {
	Items      []Product `json:"items"`
	TotalCount int64     `json:"totalCount"`
	Limit      int       `json:"limit"`
	Offset     int       `json:"offset"`
}

// Repository defines persistence operations for products.
type Repository interface {
	// Create inserts a new product. A unique-constraint violation on
	// (tenant_id, sku) is surfaced as a duplicate error.
	Create(ctx context.Context, p *Product) error

	// Update modifies an existing product, scoped by tenant.
	Update(ctx context.Context, p *Product) error

	// UpdateBySKU modifies the product identified by (tenant, sku).
	// Used by the CSV upsert, which matches rows by SKU.
	UpdateBySKU(ctx context.Context, p *Product) error

	// InsertMany bulk-inserts products in one statement.
	InsertMany(ctx context.Context, products []*Product) error

	// GetByID retrieves a product scoped by tenant.
	GetByID(ctx context.Context, tenantID string, productID id.ID) (*Product, error)

	// FindBySKU retrieves a product by its normalized SKU, or nil when absent.
	FindBySKU(ctx context.Context, tenantID, sku string) (*Product, error)

	// ExistingSKUs returns the subset of skus that already exist for the
	// tenant. One query over the distinct SKU set, not per-row.
	ExistingSKUs(ctx context.Context, tenantID string, skus []string) (map[string]bool, error)

	// SetActive flips the is_active flag (archive / restore).
	SetActive(ctx context.Context, tenantID string, productID id.ID, active bool) error

	// List retrieves one page of products with an exact total count,
	// ordered by name asc, updated_at desc, id asc.
	List(ctx context.Context, tenantID string, filter ListFilter) (ListResult, error)
}
