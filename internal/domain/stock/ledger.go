package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
	"github.com/MelvinKr/CutlyAI/internal/core/tx"
	"github.com/MelvinKr/CutlyAI/internal/events"
	"github.com/MelvinKr/CutlyAI/pkg/logger"
)

// Ledger mutates batch quantities. Every mutation runs the quantity update
// and the movement append in one transaction, so the ledger and the counter
// can never diverge on a partial failure, and concurrent callers cannot lose
// updates: the increment is applied by the store, not computed from a stale
// read.
type Ledger struct {
	repo      Repository
	txManager tx.ReadOnlyManager
	feed      events.Publisher
}

// NewLedger creates a batch ledger.
func NewLedger(repo Repository, txManager tx.ReadOnlyManager, feed events.Publisher) *Ledger {
	if feed == nil {
		feed = events.NopPublisher{}
	}
	return &Ledger{repo: repo, txManager: txManager, feed: feed}
}

// Receive books qtyIn units into a batch of the product, resolving the batch
// per BatchInput: explicit id, then code lookup, then a new batch. Appends an
// IN movement in the same transaction. Returns the batch with its updated
// quantity.
func (l *Ledger) Receive(ctx context.Context, tenantID string, productID id.ID, input BatchInput, qtyIn int64) (*Batch, error) {
	if tenantID == "" {
		return nil, apperror.NewValidation("tenant is required")
	}
	if id.IsNil(productID) {
		return nil, apperror.NewValidation("product is required")
	}
	if qtyIn <= 0 {
		return nil, apperror.NewValidation("quantity received must be positive").
			WithDetail("qty_in", qtyIn)
	}

	var (
		batch   *Batch
		created bool
	)

	err := l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		batch, created, err = l.resolveBatch(ctx, tenantID, productID, input)
		if err != nil {
			return err
		}

		newQty, err := l.repo.AddQuantity(ctx, tenantID, batch.ID, qtyIn)
		if err != nil {
			return fmt.Errorf("add quantity: %w", err)
		}
		batch.QtyOnHand = newQty

		movement := &Movement{
			ID:        id.New(),
			TenantID:  tenantID,
			ProductID: productID,
			BatchID:   batch.ID,
			Type:      MovementIN,
			Qty:       qtyIn,
			Reason:    "reception",
			CreatedAt: time.Now().UTC(),
		}
		if err := l.repo.AppendMovement(ctx, movement); err != nil {
			return fmt.Errorf("append movement: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	batchEvent := events.EventUpdate
	if created {
		batchEvent = events.EventInsert
	}
	l.feed.Publish(ctx, events.Event{
		Type:     batchEvent,
		Table:    TableBatches,
		TenantID: tenantID,
		Row:      batch,
	})

	logger.Info(ctx, "stock received",
		"product_id", productID,
		"batch_id", batch.ID,
		"qty_in", qtyIn,
		"qty_on_hand", batch.QtyOnHand,
	)

	return batch, nil
}

// Adjust applies a signed delta to a batch and appends an ADJUST movement in
// the same transaction. An adjustment that would drive the quantity below
// zero fails with a negative-stock error: no write, no movement.
func (l *Ledger) Adjust(ctx context.Context, tenantID string, productID, batchID id.ID, delta int64, reason string) (*Batch, error) {
	if tenantID == "" {
		return nil, apperror.NewValidation("tenant is required")
	}
	if id.IsNil(productID) || id.IsNil(batchID) {
		return nil, apperror.NewValidation("product and batch are required")
	}
	if delta == 0 {
		return nil, apperror.NewValidation("delta must be non-zero (may be negative)").
			WithDetail("delta", delta)
	}
	if reason == "" {
		reason = "ajustement"
	}

	var batch *Batch

	err := l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		newQty, err := l.repo.AddQuantity(ctx, tenantID, batchID, delta)
		if errors.Is(err, ErrWouldGoNegative) {
			current, getErr := l.repo.GetBatch(ctx, tenantID, batchID)
			if getErr != nil {
				return getErr
			}
			return apperror.NewNegativeStock(batchID.String(), current.QtyOnHand, delta)
		}
		if err != nil {
			return fmt.Errorf("add quantity: %w", err)
		}

		batch, err = l.repo.GetBatch(ctx, tenantID, batchID)
		if err != nil {
			return err
		}
		batch.QtyOnHand = newQty

		movement := &Movement{
			ID:        id.New(),
			TenantID:  tenantID,
			ProductID: productID,
			BatchID:   batchID,
			Type:      MovementADJUST,
			Qty:       delta,
			Reason:    reason,
			CreatedAt: time.Now().UTC(),
		}
		if err := l.repo.AppendMovement(ctx, movement); err != nil {
			return fmt.Errorf("append movement: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	l.feed.Publish(ctx, events.Event{
		Type:     events.EventUpdate,
		Table:    TableBatches,
		TenantID: tenantID,
		Row:      batch,
	})

	logger.Info(ctx, "stock adjusted",
		"product_id", productID,
		"batch_id", batchID,
		"delta", delta,
		"reason", reason,
		"qty_on_hand", batch.QtyOnHand,
	)

	return batch, nil
}

// Batches lists all batches of a product.
func (l *Ledger) Batches(ctx context.Context, tenantID string, productID id.ID) ([]Batch, error) {
	if tenantID == "" {
		return nil, apperror.NewValidation("tenant is required")
	}
	return l.repo.ListBatches(ctx, tenantID, productID)
}

// Movements lists a product's movement history, newest first.
func (l *Ledger) Movements(ctx context.Context, tenantID string, productID id.ID, limit int) ([]Movement, error) {
	if tenantID == "" {
		return nil, apperror.NewValidation("tenant is required")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return l.repo.ListMovements(ctx, tenantID, productID, limit)
}

// Reconcile verifies the movement/quantity invariant for one batch:
// qty_on_hand must equal the sum of its movements. Returns both values.
// Both reads run in one read-only transaction so a concurrent receipt
// cannot show up as spurious drift.
func (l *Ledger) Reconcile(ctx context.Context, tenantID string, batchID id.ID) (onHand, movementSum int64, err error) {
	err = l.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		batch, err := l.repo.GetBatch(ctx, tenantID, batchID)
		if err != nil {
			return err
		}
		sum, err := l.repo.SumMovements(ctx, tenantID, batchID)
		if err != nil {
			return err
		}
		onHand, movementSum = batch.QtyOnHand, sum
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	if onHand != movementSum {
		logger.Warn(ctx, "batch ledger drift detected",
			"batch_id", batchID,
			"qty_on_hand", onHand,
			"movement_sum", movementSum,
		)
	}
	return onHand, movementSum, nil
}

// resolveBatch locates or creates the batch a receipt targets.
func (l *Ledger) resolveBatch(ctx context.Context, tenantID string, productID id.ID, input BatchInput) (batch *Batch, created bool, err error) {
	if input.BatchID != nil && !id.IsNil(*input.BatchID) {
		batch, err = l.repo.GetBatch(ctx, tenantID, *input.BatchID)
		return batch, false, err
	}

	if input.BatchCode != "" {
		batch, err = l.repo.FindBatchByCode(ctx, tenantID, productID, input.BatchCode)
		if err != nil {
			return nil, false, fmt.Errorf("find batch by code: %w", err)
		}
		if batch != nil {
			return batch, false, nil
		}
	}

	cost := decimal.Zero
	if input.UnitCost != nil {
		cost = *input.UnitCost
	}
	var code *string
	if input.BatchCode != "" {
		code = &input.BatchCode
	}

	batch = &Batch{
		ID:         id.New(),
		TenantID:   tenantID,
		ProductID:  productID,
		BatchCode:  code,
		ExpDate:    input.ExpDate,
		SupplierID: input.SupplierID,
		CostPrice:  cost,
		QtyOnHand:  0,
		ReceivedAt: time.Now().UTC(),
	}
	if err := l.repo.CreateBatch(ctx, batch); err != nil {
		return nil, false, fmt.Errorf("create batch: %w", err)
	}
	return batch, true, nil
}
