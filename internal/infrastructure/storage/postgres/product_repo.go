package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
	"github.com/MelvinKr/CutlyAI/internal/domain/catalog"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// Compile-time check
var _ catalog.Repository = (*ProductRepo)(nil)

// ProductRepo is the PostgreSQL implementation of catalog.Repository.
// Every query is scoped by tenant_id.
type ProductRepo struct {
	txManager  *TxManager
	selectCols []string
}

// NewProductRepo creates a product repository.
func NewProductRepo(txManager *TxManager) *ProductRepo {
	return &ProductRepo{
		txManager:  txManager,
		selectCols: ExtractDBColumns[catalog.Product](),
	}
}

// builder returns a squirrel builder with PostgreSQL placeholders.
func (r *ProductRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a product; a unique violation on (tenant_id, sku) becomes a
// duplicate error so that racing creates that slip past the app-level check
// still surface cleanly.
func (r *ProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	q := r.builder().
		Insert(catalog.Table).
		SetMap(StructToMap(p))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("product", "sku", p.SKU)
		}
		return apperror.NewStore(err)
	}
	return nil
}

// Update modifies a product scoped by (id, tenant_id).
func (r *ProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	data := StructToMap(p)
	delete(data, "id")
	delete(data, "tenant_id")
	delete(data, "created_at")

	q := r.builder().
		Update(catalog.Table).
		SetMap(data).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"tenant_id": p.TenantID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("product", "sku", p.SKU)
		}
		return apperror.NewStore(err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID.String())
	}
	return nil
}

// UpdateBySKU modifies the product identified by (tenant_id, sku).
func (r *ProductRepo) UpdateBySKU(ctx context.Context, p *catalog.Product) error {
	data := StructToMap(p)
	delete(data, "id")
	delete(data, "tenant_id")
	delete(data, "sku")
	delete(data, "created_at")

	q := r.builder().
		Update(catalog.Table).
		SetMap(data).
		Where(squirrel.Eq{"tenant_id": p.TenantID}).
		Where(squirrel.Eq{"sku": p.SKU})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewStore(err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.SKU)
	}
	return nil
}

// InsertMany bulk-inserts products in one statement.
func (r *ProductRepo) InsertMany(ctx context.Context, products []*catalog.Product) error {
	if len(products) == 0 {
		return nil
	}

	q := r.builder().
		Insert(catalog.Table).
		Columns(r.selectCols...)
	for _, p := range products {
		data := StructToMap(p)
		values := make([]any, len(r.selectCols))
		for i, col := range r.selectCols {
			values[i] = data[col]
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build bulk insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("product", "sku", "")
		}
		return apperror.NewStore(err)
	}
	return nil
}

// GetByID retrieves a product scoped by tenant.
func (r *ProductRepo) GetByID(ctx context.Context, tenantID string, productID id.ID) (*catalog.Product, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(catalog.Table).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p catalog.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, apperror.NewStore(err)
	}
	return &p, nil
}

// FindBySKU retrieves a product by normalized SKU, or nil when absent.
func (r *ProductRepo) FindBySKU(ctx context.Context, tenantID, sku string) (*catalog.Product, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(catalog.Table).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"sku": catalog.NormalizeSKU(sku)}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p catalog.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, apperror.NewStore(err)
	}
	return &p, nil
}

// ExistingSKUs returns which of the given SKUs already exist for the tenant.
func (r *ProductRepo) ExistingSKUs(ctx context.Context, tenantID string, skus []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(skus))
	if len(skus) == 0 {
		return existing, nil
	}

	q := r.builder().
		Select("sku").
		From(catalog.Table).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"sku": skus})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var found []string
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &found, sql, args...); err != nil {
		return nil, apperror.NewStore(err)
	}

	for _, sku := range found {
		existing[sku] = true
	}
	return existing, nil
}

// SetActive flips the is_active flag.
func (r *ProductRepo) SetActive(ctx context.Context, tenantID string, productID id.ID, active bool) error {
	q := r.builder().
		Update(catalog.Table).
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"tenant_id": tenantID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewStore(err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

// List retrieves one page of products with an exact total count.
func (r *ProductRepo) List(ctx context.Context, tenantID string, filter catalog.ListFilter) (catalog.ListResult, error) {
	result := catalog.ListResult{
		Items:  []catalog.Product{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	base := r.buildListQuery(tenantID, filter)

	countQ := r.builder().
		Select("COUNT(*)").
		FromSelect(base, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, apperror.NewStore(err)
	}

	q := base.OrderBy("name ASC", "updated_at DESC", "id ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, apperror.NewStore(err)
	}
	return result, nil
}

// buildListQuery applies the tenant scope and the text/category/active
// filters; ordering and pagination are layered on top by List.
func (r *ProductRepo) buildListQuery(tenantID string, filter catalog.ListFilter) squirrel.SelectBuilder {
	q := r.builder().
		Select(r.selectCols...).
		From(catalog.Table).
		Where(squirrel.Eq{"tenant_id": tenantID})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"sku": pattern},
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"brand": pattern},
			squirrel.ILike{"category": pattern},
		})
	}

	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}

	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	return q
}

// isUniqueViolation reports whether err is a PostgreSQL unique violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
