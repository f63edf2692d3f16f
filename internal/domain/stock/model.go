// Package stock provides the batch ledger: physical lots of product with a
// quantity on hand, mutated only through receipts and adjustments, each
// mirrored by an append-only movement record.
package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MelvinKr/CutlyAI/internal/core/id"
)

// Persisted table names; part of the wire contract other tooling depends on.
const (
	TableBatches   = "product_batches"
	TableMovements = "stock_movements"
)

// MovementType classifies a quantity change.
type MovementType string

const (
	// MovementIN records a stock receipt; qty is always positive.
	MovementIN MovementType = "IN"

	// MovementADJUST records a manual correction; qty is signed.
	MovementADJUST MovementType = "ADJUST"
)

// Batch represents a physical lot of a product.
// QtyOnHand never goes negative: the application refuses adjustments below
// zero and the store backs this with a CHECK constraint.
type Batch struct {
	ID        id.ID     `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenantId"`
	ProductID id.ID     `db:"product_id" json:"productId"`

	BatchCode  *string    `db:"batch_code" json:"batchCode,omitempty"`
	ExpDate    *time.Time `db:"exp_date" json:"expDate,omitempty"`
	SupplierID *string    `db:"supplier_id" json:"supplierId,omitempty"`

	CostPrice decimal.Decimal `db:"cost_price" json:"costPrice"`
	QtyOnHand int64           `db:"qty_on_hand" json:"qtyOnHand"`

	ReceivedAt time.Time `db:"received_at" json:"receivedAt"`
}

// Movement is an immutable ledger entry recording one quantity change
// applied to a batch. The sum of a batch's movements equals its QtyOnHand;
// both are written in the same transaction.
type Movement struct {
	ID        id.ID        `db:"id" json:"id"`
	TenantID  string       `db:"tenant_id" json:"tenantId"`
	ProductID id.ID        `db:"product_id" json:"productId"`
	BatchID   id.ID        `db:"batch_id" json:"batchId"`
	Type      MovementType `db:"type" json:"type"`
	Qty       int64        `db:"qty" json:"qty"`
	Reason    string       `db:"reason" json:"reason"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}

// BatchInput identifies or describes the batch a receipt targets.
// Resolution order: BatchID when set, then lookup by BatchCode, then a new
// batch created from the descriptive fields.
type BatchInput struct {
	BatchID    *id.ID
	BatchCode  string
	ExpDate    *time.Time
	SupplierID *string
	UnitCost   *decimal.Decimal
}
