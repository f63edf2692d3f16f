package importer

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/domain/catalog"
	"github.com/MelvinKr/CutlyAI/internal/events"
	"github.com/MelvinKr/CutlyAI/pkg/logger"
)

// insertChunkSize bounds the rows per bulk insert statement.
const insertChunkSize = 50

// RowError attributes a failure to one input row.
type RowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// Report is the outcome of one bulk upsert. Row-level problems never abort
// the batch; Created + Updated + len(Errors) always equals the input size.
type Report struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors"`
}

// Service applies CSV rows to the catalog.
type Service struct {
	repo catalog.Repository
	feed events.Publisher
}

// NewService creates an importer.
func NewService(repo catalog.Repository, feed events.Publisher) *Service {
	if feed == nil {
		feed = events.NopPublisher{}
	}
	return &Service{repo: repo, feed: feed}
}

// indexed carries a validated product together with its input row index for
// error attribution.
type indexed struct {
	index   int
	product *catalog.Product
}

// BulkUpsert validates rows independently, partitions them by SKU existence
// with one query over the distinct SKU set, inserts new rows in bounded
// chunks, and updates existing ones individually keyed by (tenant, sku).
//
// A failing insert chunk is retried row by row, so errors land on the rows
// that actually failed instead of the whole chunk.
func (s *Service) BulkUpsert(ctx context.Context, tenantID string, rows []Row) (Report, error) {
	report := Report{Errors: []RowError{}}
	if tenantID == "" {
		return report, apperror.NewValidation("tenant is required")
	}

	valid := make([]indexed, 0, len(rows))
	for i, row := range rows {
		product, err := rowToProduct(ctx, tenantID, row)
		if err != nil {
			report.Errors = append(report.Errors, RowError{Index: i, Message: errMessage(err)})
			continue
		}
		valid = append(valid, indexed{index: i, product: product})
	}

	if len(valid) == 0 {
		return report, nil
	}

	seen := make(map[string]bool, len(valid))
	skus := make([]string, 0, len(valid))
	for _, v := range valid {
		if !seen[v.product.SKU] {
			seen[v.product.SKU] = true
			skus = append(skus, v.product.SKU)
		}
	}

	existing, err := s.repo.ExistingSKUs(ctx, tenantID, skus)
	if err != nil {
		return report, err
	}

	var toInsert, toUpdate []indexed
	for _, v := range valid {
		if existing[v.product.SKU] {
			toUpdate = append(toUpdate, v)
		} else {
			toInsert = append(toInsert, v)
			// Later rows with the same new SKU are updates of the first.
			existing[v.product.SKU] = true
		}
	}

	for start := 0; start < len(toInsert); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(toInsert) {
			end = len(toInsert)
		}
		s.insertChunk(ctx, tenantID, toInsert[start:end], &report)
	}

	for _, v := range toUpdate {
		if err := s.repo.UpdateBySKU(ctx, v.product); err != nil {
			report.Errors = append(report.Errors, RowError{Index: v.index, Message: errMessage(err)})
			continue
		}
		report.Updated++
		s.feed.Publish(ctx, events.Event{
			Type:     events.EventUpdate,
			Table:    catalog.Table,
			TenantID: tenantID,
			Row:      v.product,
		})
	}

	logger.Info(ctx, "csv bulk upsert finished",
		"rows", len(rows),
		"created", report.Created,
		"updated", report.Updated,
		"errors", len(report.Errors),
	)

	return report, nil
}

// insertChunk bulk-inserts one chunk; on failure it falls back to row-by-row
// inserts for precise error attribution.
func (s *Service) insertChunk(ctx context.Context, tenantID string, chunk []indexed, report *Report) {
	products := make([]*catalog.Product, len(chunk))
	for i, v := range chunk {
		products[i] = v.product
	}

	if err := s.repo.InsertMany(ctx, products); err == nil {
		report.Created += len(chunk)
		for _, v := range chunk {
			s.publishInsert(ctx, tenantID, v.product)
		}
		return
	}

	for _, v := range chunk {
		if err := s.repo.Create(ctx, v.product); err != nil {
			report.Errors = append(report.Errors, RowError{Index: v.index, Message: errMessage(err)})
			continue
		}
		report.Created++
		s.publishInsert(ctx, tenantID, v.product)
	}
}

func (s *Service) publishInsert(ctx context.Context, tenantID string, p *catalog.Product) {
	s.feed.Publish(ctx, events.Event{
		Type:     events.EventInsert,
		Table:    catalog.Table,
		TenantID: tenantID,
		Row:      p,
	})
}

// rowToProduct validates one raw row against the product rules.
func rowToProduct(ctx context.Context, tenantID string, row Row) (*catalog.Product, error) {
	p := catalog.NewProduct(tenantID, row.SKU, row.Name)
	p.Category = row.Category
	if row.Brand != "" {
		brand := row.Brand
		p.Brand = &brand
	}
	if row.Unit != "" {
		p.Unit = row.Unit
	}

	if row.UnitSize != "" {
		size, err := strconv.ParseFloat(row.UnitSize, 64)
		if err != nil {
			return nil, apperror.NewValidation("invalid unit_size").WithDetail("value", row.UnitSize)
		}
		p.UnitSize = &size
	}

	var err error
	if p.RetailPrice, err = parseDecimal(row.RetailPrice, "retail_price"); err != nil {
		return nil, err
	}
	if p.CostPrice, err = parseDecimal(row.CostPrice, "cost_price"); err != nil {
		return nil, err
	}
	if p.TaxRate, err = parseDecimal(row.TaxRate, "tax_rate"); err != nil {
		return nil, err
	}

	if row.MinStockThreshold != "" {
		threshold, err := strconv.Atoi(row.MinStockThreshold)
		if err != nil {
			return nil, apperror.NewValidation("invalid min_stock_threshold").WithDetail("value", row.MinStockThreshold)
		}
		p.MinStockThreshold = threshold
	}

	if row.ExpiresInDays != "" {
		days, err := strconv.Atoi(row.ExpiresInDays)
		if err != nil {
			return nil, apperror.NewValidation("invalid expires_in_days").WithDetail("value", row.ExpiresInDays)
		}
		p.ExpiresInDays = &days
	}

	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt

	p.Normalize()
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func parseDecimal(value, field string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperror.NewValidation("invalid " + field).WithDetail("value", value)
	}
	return d, nil
}

// errMessage keeps the human-readable part of an error for row reports.
func errMessage(err error) string {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
