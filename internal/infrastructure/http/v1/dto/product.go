package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MelvinKr/CutlyAI/internal/domain/catalog"
	"github.com/MelvinKr/CutlyAI/internal/domain/search"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	SKU               string          `json:"sku" binding:"required"`
	Name              string          `json:"name" binding:"required"`
	Brand             *string         `json:"brand"`
	Category          string          `json:"category"`
	Unit              string          `json:"unit"`
	UnitSize          *float64        `json:"unitSize"`
	RetailPrice       decimal.Decimal `json:"retailPrice"`
	CostPrice         decimal.Decimal `json:"costPrice"`
	TaxRate           decimal.Decimal `json:"taxRate"`
	MinStockThreshold int             `json:"minStockThreshold"`
	ExpiresInDays     *int            `json:"expiresInDays"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity(tenantID string) *catalog.Product {
	p := catalog.NewProduct(tenantID, r.SKU, r.Name)
	p.Brand = r.Brand
	p.Category = r.Category
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.UnitSize = r.UnitSize
	p.RetailPrice = r.RetailPrice
	p.CostPrice = r.CostPrice
	p.TaxRate = r.TaxRate
	p.MinStockThreshold = r.MinStockThreshold
	p.ExpiresInDays = r.ExpiresInDays
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	SKU               string          `json:"sku" binding:"required"`
	Name              string          `json:"name" binding:"required"`
	Brand             *string         `json:"brand"`
	Category          string          `json:"category"`
	Unit              string          `json:"unit"`
	UnitSize          *float64        `json:"unitSize"`
	RetailPrice       decimal.Decimal `json:"retailPrice"`
	CostPrice         decimal.Decimal `json:"costPrice"`
	TaxRate           decimal.Decimal `json:"taxRate"`
	MinStockThreshold int             `json:"minStockThreshold"`
	ExpiresInDays     *int            `json:"expiresInDays"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *catalog.Product) {
	p.SKU = r.SKU
	p.Name = r.Name
	p.Brand = r.Brand
	p.Category = r.Category
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.UnitSize = r.UnitSize
	p.RetailPrice = r.RetailPrice
	p.CostPrice = r.CostPrice
	p.TaxRate = r.TaxRate
	p.MinStockThreshold = r.MinStockThreshold
	p.ExpiresInDays = r.ExpiresInDays
}

// ListProductsRequest holds the query parameters of the product listing.
type ListProductsRequest struct {
	PaginationRequest
	Query          string `form:"q"`
	Category       string `form:"category"`
	ActiveOnly     bool   `form:"activeOnly"`
	UnderThreshold bool   `form:"underThreshold"`
	ExpiringSoon   bool   `form:"expiringSoon"`
}

// ToFilter converts query parameters to a search filter.
func (r *ListProductsRequest) ToFilter() search.Filter {
	return search.Filter{
		Query:          r.Query,
		Category:       r.Category,
		ActiveOnly:     r.ActiveOnly,
		UnderThreshold: r.UnderThreshold,
		ExpiringSoon:   r.ExpiringSoon,
		Page:           r.Page,
		PageSize:       r.PageSize,
	}
}

// --- Response DTOs ---

// ProductResponse is the API representation of a product.
type ProductResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Brand             *string         `json:"brand,omitempty"`
	Category          string          `json:"category"`
	Unit              string          `json:"unit"`
	UnitSize          *float64        `json:"unitSize,omitempty"`
	RetailPrice       decimal.Decimal `json:"retailPrice"`
	CostPrice         decimal.Decimal `json:"costPrice"`
	TaxRate           decimal.Decimal `json:"taxRate"`
	MinStockThreshold int             `json:"minStockThreshold"`
	IsActive          bool            `json:"isActive"`
	ExpiresInDays     *int            `json:"expiresInDays,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// FromProduct converts domain entity to response DTO.
func FromProduct(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID.String(),
		SKU:               p.SKU,
		Name:              p.Name,
		Brand:             p.Brand,
		Category:          p.Category,
		Unit:              p.Unit,
		UnitSize:          p.UnitSize,
		RetailPrice:       p.RetailPrice,
		CostPrice:         p.CostPrice,
		TaxRate:           p.TaxRate,
		MinStockThreshold: p.MinStockThreshold,
		IsActive:          p.IsActive,
		ExpiresInDays:     p.ExpiresInDays,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ProductRowResponse is one listing row: product plus stock projection.
type ProductRowResponse struct {
	ProductResponse
	StockTotal    int64 `json:"stockTotal"`
	ExpiringCount int   `json:"expiringCount"`
}

// FromSearchRow converts a search row to response DTO.
func FromSearchRow(row search.Row) ProductRowResponse {
	return ProductRowResponse{
		ProductResponse: FromProduct(&row.Product),
		StockTotal:      row.StockTotal,
		ExpiringCount:   row.ExpiringCount,
	}
}
