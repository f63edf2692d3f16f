package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
	"github.com/MelvinKr/CutlyAI/internal/domain/stock"
)

// Compile-time check
var _ stock.Repository = (*StockRepo)(nil)

// StockRepo is the PostgreSQL implementation of stock.Repository, covering
// both batches and movements: they form one aggregate and are always written
// together.
type StockRepo struct {
	txManager    *TxManager
	batchCols    []string
	movementCols []string
}

// NewStockRepo creates a stock repository.
func NewStockRepo(txManager *TxManager) *StockRepo {
	return &StockRepo{
		txManager:    txManager,
		batchCols:    ExtractDBColumns[stock.Batch](),
		movementCols: ExtractDBColumns[stock.Movement](),
	}
}

func (r *StockRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetBatch retrieves a batch scoped by tenant.
func (r *StockRepo) GetBatch(ctx context.Context, tenantID string, batchID id.ID) (*stock.Batch, error) {
	q := r.builder().
		Select(r.batchCols...).
		From(stock.TableBatches).
		Where(squirrel.Eq{"id": batchID}).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b stock.Batch
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("batch", batchID.String())
		}
		return nil, apperror.NewStore(err)
	}
	return &b, nil
}

// FindBatchByCode retrieves a batch by (tenant, product, batch_code), or nil.
func (r *StockRepo) FindBatchByCode(ctx context.Context, tenantID string, productID id.ID, code string) (*stock.Batch, error) {
	q := r.builder().
		Select(r.batchCols...).
		From(stock.TableBatches).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"batch_code": code}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b stock.Batch
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, apperror.NewStore(err)
	}
	return &b, nil
}

// CreateBatch inserts a new batch row.
func (r *StockRepo) CreateBatch(ctx context.Context, b *stock.Batch) error {
	q := r.builder().
		Insert(stock.TableBatches).
		SetMap(StructToMap(b))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewStore(err)
	}
	return nil
}

// AddQuantity applies the delta as a store-level increment guarded against
// going negative. The guard in the WHERE clause makes the check and the
// update one atomic statement; the table's CHECK constraint backs it up.
func (r *StockRepo) AddQuantity(ctx context.Context, tenantID string, batchID id.ID, delta int64) (int64, error) {
	const sql = `
		UPDATE product_batches
		SET qty_on_hand = qty_on_hand + $1
		WHERE id = $2 AND tenant_id = $3 AND qty_on_hand + $1 >= 0
		RETURNING qty_on_hand`

	querier := r.txManager.GetQuerier(ctx)

	var newQty int64
	err := querier.QueryRow(ctx, sql, delta, batchID, tenantID).Scan(&newQty)
	if err == nil {
		return newQty, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewStore(err)
	}

	// No row matched: either the batch is missing or the guard rejected.
	exists, existsErr := r.batchExists(ctx, tenantID, batchID)
	if existsErr != nil {
		return 0, existsErr
	}
	if !exists {
		return 0, apperror.NewNotFound("batch", batchID.String())
	}
	return 0, stock.ErrWouldGoNegative
}

func (r *StockRepo) batchExists(ctx context.Context, tenantID string, batchID id.ID) (bool, error) {
	const sql = `SELECT 1 FROM product_batches WHERE id = $1 AND tenant_id = $2 LIMIT 1`

	querier := r.txManager.GetQuerier(ctx)
	var one int
	err := querier.QueryRow(ctx, sql, batchID, tenantID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperror.NewStore(err)
	}
	return true, nil
}

// AppendMovement inserts a movement record. Movements are never updated or
// deleted.
func (r *StockRepo) AppendMovement(ctx context.Context, m *stock.Movement) error {
	q := r.builder().
		Insert(stock.TableMovements).
		SetMap(StructToMap(m))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewStore(err)
	}
	return nil
}

// ListBatches returns all batches of a product, newest receipt first.
func (r *StockRepo) ListBatches(ctx context.Context, tenantID string, productID id.ID) ([]stock.Batch, error) {
	q := r.builder().
		Select(r.batchCols...).
		From(stock.TableBatches).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("received_at DESC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	batches := []stock.Batch{}
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &batches, sql, args...); err != nil {
		return nil, apperror.NewStore(err)
	}
	return batches, nil
}

// ListMovements returns a product's movement history, newest first.
func (r *StockRepo) ListMovements(ctx context.Context, tenantID string, productID id.ID, limit int) ([]stock.Movement, error) {
	q := r.builder().
		Select(r.movementCols...).
		From(stock.TableMovements).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	movements := []stock.Movement{}
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, apperror.NewStore(err)
	}
	return movements, nil
}

// LotsForProducts fetches the projection input rows in one query.
func (r *StockRepo) LotsForProducts(ctx context.Context, tenantID string, productIDs []id.ID) ([]stock.Lot, error) {
	if len(productIDs) == 0 {
		return []stock.Lot{}, nil
	}

	q := r.builder().
		Select("product_id", "qty_on_hand", "exp_date").
		From(stock.TableBatches).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"product_id": productIDs})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lots := []stock.Lot{}
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lots, sql, args...); err != nil {
		return nil, apperror.NewStore(err)
	}
	return lots, nil
}

// SumMovements returns the signed sum of a batch's movements.
func (r *StockRepo) SumMovements(ctx context.Context, tenantID string, batchID id.ID) (int64, error) {
	const sql = `
		SELECT COALESCE(SUM(qty), 0)
		FROM stock_movements
		WHERE tenant_id = $1 AND batch_id = $2`

	querier := r.txManager.GetQuerier(ctx)
	var sum int64
	if err := querier.QueryRow(ctx, sql, tenantID, batchID).Scan(&sum); err != nil {
		return 0, apperror.NewStore(err)
	}
	return sum, nil
}
