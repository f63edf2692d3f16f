// Package catalog provides the product catalog: salon products identified by
// a SKU unique within their tenant.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
)

// Category is the product category.
type Category string

const (
	CategoryShampoo     Category = "shampoings"
	CategoryColoration  Category = "colorations"
	CategoryCare        Category = "soins"
	CategoryAccessories Category = "accessoires"
)

// maxTaxRate caps the configurable tax rate.
var maxTaxRate = decimal.NewFromFloat(0.30)

// Product represents a catalog item scoped to a tenant.
type Product struct {
	ID       id.ID  `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenantId"`

	// SKU is unique per tenant, stored case-normalized upper.
	SKU  string `db:"sku" json:"sku"`
	Name string `db:"name" json:"name"`

	Brand    *string `db:"brand" json:"brand,omitempty"`
	Category string  `db:"category" json:"category"`

	Unit     string   `db:"unit" json:"unit"`
	UnitSize *float64 `db:"unit_size" json:"unitSize,omitempty"`

	RetailPrice decimal.Decimal `db:"retail_price" json:"retailPrice"`
	CostPrice   decimal.Decimal `db:"cost_price" json:"costPrice"`
	TaxRate     decimal.Decimal `db:"tax_rate" json:"taxRate"`

	// MinStockThreshold marks the product as under-stocked when total
	// quantity on hand falls to or below it (0 disables the check).
	MinStockThreshold int `db:"min_stock_threshold" json:"minStockThreshold"`

	IsActive      bool `db:"is_active" json:"isActive"`
	ExpiresInDays *int `db:"expires_in_days" json:"expiresInDays,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates a Product with generated ID and normalized SKU.
func NewProduct(tenantID, sku, name string) *Product {
	return &Product{
		ID:          id.New(),
		TenantID:    tenantID,
		SKU:         NormalizeSKU(sku),
		Name:        strings.TrimSpace(name),
		Unit:        "unit",
		RetailPrice: decimal.Zero,
		CostPrice:   decimal.Zero,
		TaxRate:     decimal.Zero,
		IsActive:    true,
	}
}

// NormalizeSKU trims and upper-cases a SKU for per-tenant uniqueness.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// Normalize applies canonical forms before validation or persistence.
func (p *Product) Normalize() {
	p.SKU = NormalizeSKU(p.SKU)
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Unit == "" {
		p.Unit = "unit"
	}
	if p.Brand != nil {
		b := strings.TrimSpace(*p.Brand)
		if b == "" {
			p.Brand = nil
		} else {
			p.Brand = &b
		}
	}
}

// Validate checks product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if p.TenantID == "" {
		return apperror.NewValidation("tenant is required").
			WithDetail("field", "tenantId")
	}

	if len(p.SKU) < 2 {
		return apperror.NewValidation("sku too short").
			WithDetail("field", "sku")
	}

	if len(p.Name) < 2 {
		return apperror.NewValidation("name too short").
			WithDetail("field", "name")
	}

	if len(p.Category) < 2 {
		return apperror.NewValidation("category is required").
			WithDetail("field", "category")
	}

	if p.RetailPrice.IsNegative() {
		return apperror.NewValidation("retail price cannot be negative").
			WithDetail("field", "retailPrice")
	}

	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price cannot be negative").
			WithDetail("field", "costPrice")
	}

	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(maxTaxRate) {
		return apperror.NewValidation("tax rate must be between 0 and 0.3").
			WithDetail("field", "taxRate")
	}

	if p.MinStockThreshold < 0 {
		return apperror.NewValidation("minimum stock threshold cannot be negative").
			WithDetail("field", "minStockThreshold")
	}

	if p.ExpiresInDays != nil && *p.ExpiresInDays < 0 {
		return apperror.NewValidation("expires_in_days cannot be negative").
			WithDetail("field", "expiresInDays")
	}

	return nil
}

// Archive soft-deletes the product. Batches and movements referencing it
// remain valid; hard deletion is intentionally not exposed.
func (p *Product) Archive() {
	p.IsActive = false
}
