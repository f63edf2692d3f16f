// Package search provides the paginated product listing, enriched with the
// read-side stock projection.
package search

import (
	"context"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
	"github.com/MelvinKr/CutlyAI/internal/domain/catalog"
	"github.com/MelvinKr/CutlyAI/internal/domain/stock"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Filter holds the listing inputs.
type Filter struct {
	// Query is a case-insensitive substring matched against sku, name,
	// brand and category.
	Query    string
	Category string

	ActiveOnly bool

	// UnderThreshold and ExpiringSoon are applied post-fetch, in memory, on
	// the already-paginated page. See Result.Rows.
	UnderThreshold bool
	ExpiringSoon   bool

	Page     int
	PageSize int
}

// Row is a product with its stock projection merged in.
type Row struct {
	catalog.Product
	StockTotal    int64 `json:"stockTotal"`
	ExpiringCount int   `json:"expiringCount"`
}

// Result is one page of the listing.
//
// Total counts catalog rows matching the query/category filters, before the
// post-fetch flags. When UnderThreshold or ExpiringSoon is set, a page may
// hold fewer than PageSize rows even though later pages match; callers
// needing exact filtered pagination must push the predicate into the store.
type Result struct {
	Rows     []Row `json:"rows"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// Service composes catalog rows with the stock projection.
type Service struct {
	products    catalog.Repository
	projections *stock.ProjectionReader
}

// NewService creates a search service.
func NewService(products catalog.Repository, projections *stock.ProjectionReader) *Service {
	return &Service{products: products, projections: projections}
}

// ListProducts returns one page of products ordered by name asc then
// updated_at desc, tie-broken by id for stable pagination. The projection is
// computed over the page's ids only, bounding its cost by the page size.
func (s *Service) ListProducts(ctx context.Context, tenantID string, filter Filter) (Result, error) {
	if tenantID == "" {
		return Result{}, apperror.NewValidation("tenant is required")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	listed, err := s.products.List(ctx, tenantID, catalog.ListFilter{
		Search:     filter.Query,
		Category:   filter.Category,
		ActiveOnly: filter.ActiveOnly,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	})
	if err != nil {
		return Result{}, err
	}

	ids := make([]id.ID, len(listed.Items))
	for i, p := range listed.Items {
		ids[i] = p.ID
	}

	projections, err := s.projections.ForProducts(ctx, tenantID, ids)
	if err != nil {
		return Result{}, err
	}

	rows := make([]Row, 0, len(listed.Items))
	for _, p := range listed.Items {
		proj := projections[p.ID]
		row := Row{
			Product:       p,
			StockTotal:    proj.StockTotal,
			ExpiringCount: proj.ExpiringCount,
		}

		if filter.UnderThreshold && !row.isUnderThreshold() {
			continue
		}
		if filter.ExpiringSoon && row.ExpiringCount == 0 {
			continue
		}
		rows = append(rows, row)
	}

	return Result{
		Rows:     rows,
		Total:    listed.TotalCount,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// isUnderThreshold reports whether aggregate stock sits at or below the
// configured minimum; a zero threshold disables the check.
func (r Row) isUnderThreshold() bool {
	return r.MinStockThreshold > 0 && r.StockTotal <= int64(r.MinStockThreshold)
}
