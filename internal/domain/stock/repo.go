package stock

import (
	"context"
	"errors"
	"time"

	"github.com/MelvinKr/CutlyAI/internal/core/id"
)

// ErrWouldGoNegative is returned by AddQuantity when the conditional update
// matched the batch but the guard qty_on_hand + delta >= 0 rejected it.
var ErrWouldGoNegative = errors.New("quantity would go negative")

// Lot is the slice of a batch row the projection folds over.
type Lot struct {
	ProductID id.ID      `db:"product_id"`
	QtyOnHand int64      `db:"qty_on_hand"`
	ExpDate   *time.Time `db:"exp_date"`
}

// Repository defines persistence operations for batches and movements.
// Mutating operations participate in the caller's transaction.
type Repository interface {
	// GetBatch retrieves a batch scoped by tenant; not-found is an error.
	GetBatch(ctx context.Context, tenantID string, batchID id.ID) (*Batch, error)

	// FindBatchByCode retrieves a batch by (tenant, product, batch_code),
	// or nil when no such batch exists.
	FindBatchByCode(ctx context.Context, tenantID string, productID id.ID, code string) (*Batch, error)

	// CreateBatch inserts a new batch row.
	CreateBatch(ctx context.Context, b *Batch) error

	// AddQuantity atomically applies qty_on_hand = qty_on_hand + delta,
	// guarded by qty_on_hand + delta >= 0, and returns the new quantity.
	// Returns ErrWouldGoNegative when the guard rejects the update and a
	// not-found error when the batch does not exist for the tenant.
	AddQuantity(ctx context.Context, tenantID string, batchID id.ID, delta int64) (int64, error)

	// AppendMovement inserts an immutable movement record.
	AppendMovement(ctx context.Context, m *Movement) error

	// ListBatches returns all batches of a product, newest receipt first.
	ListBatches(ctx context.Context, tenantID string, productID id.ID) ([]Batch, error)

	// ListMovements returns a product's movement history, newest first.
	ListMovements(ctx context.Context, tenantID string, productID id.ID, limit int) ([]Movement, error)

	// LotsForProducts returns the batch rows of the given products in one
	// query, for the read-side projection.
	LotsForProducts(ctx context.Context, tenantID string, productIDs []id.ID) ([]Lot, error)

	// SumMovements returns the sum of movement quantities for a batch.
	// Used to verify the reconciliation invariant qty_on_hand == sum(qty).
	SumMovements(ctx context.Context, tenantID string, batchID id.ID) (int64, error)
}
