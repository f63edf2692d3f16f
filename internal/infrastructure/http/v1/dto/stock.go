package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
	"github.com/MelvinKr/CutlyAI/internal/domain/stock"
)

// --- Request DTOs ---

// ReceiveStockRequest is the request body for receiving stock into a batch.
// The batch is addressed by batchId when known, otherwise by batchCode; with
// neither set a new batch is created from the descriptive fields.
type ReceiveStockRequest struct {
	ProductID  string           `json:"productId" binding:"required"`
	BatchID    *string          `json:"batchId"`
	BatchCode  string           `json:"batchCode"`
	ExpDate    *time.Time       `json:"expDate"`
	SupplierID *string          `json:"supplierId"`
	UnitCost   *decimal.Decimal `json:"unitCost"`
	Qty        int64            `json:"qty" binding:"required"`
}

// ToBatchInput converts the request to a domain batch input.
func (r *ReceiveStockRequest) ToBatchInput() (stock.BatchInput, error) {
	input := stock.BatchInput{
		BatchCode:  r.BatchCode,
		ExpDate:    r.ExpDate,
		SupplierID: r.SupplierID,
		UnitCost:   r.UnitCost,
	}
	if r.BatchID != nil && *r.BatchID != "" {
		parsed, err := id.Parse(*r.BatchID)
		if err != nil {
			return stock.BatchInput{}, apperror.NewValidation("invalid batchId format")
		}
		input.BatchID = &parsed
	}
	return input, nil
}

// AdjustStockRequest is the request body for a manual stock correction.
type AdjustStockRequest struct {
	ProductID string `json:"productId" binding:"required"`
	BatchID   string `json:"batchId" binding:"required"`
	Delta     int64  `json:"delta" binding:"required"`
	Reason    string `json:"reason"`
}

// --- Response DTOs ---

// BatchResponse is the API representation of a batch.
type BatchResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"productId"`
	BatchCode  *string         `json:"batchCode,omitempty"`
	ExpDate    *time.Time      `json:"expDate,omitempty"`
	SupplierID *string         `json:"supplierId,omitempty"`
	CostPrice  decimal.Decimal `json:"costPrice"`
	QtyOnHand  int64           `json:"qtyOnHand"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// FromBatch converts domain entity to response DTO.
func FromBatch(b *stock.Batch) BatchResponse {
	return BatchResponse{
		ID:         b.ID.String(),
		ProductID:  b.ProductID.String(),
		BatchCode:  b.BatchCode,
		ExpDate:    b.ExpDate,
		SupplierID: b.SupplierID,
		CostPrice:  b.CostPrice,
		QtyOnHand:  b.QtyOnHand,
		ReceivedAt: b.ReceivedAt,
	}
}

// MovementResponse is the API representation of a ledger entry.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	BatchID   string    `json:"batchId"`
	Type      string    `json:"type"`
	Qty       int64     `json:"qty"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromMovement converts domain entity to response DTO.
func FromMovement(m stock.Movement) MovementResponse {
	return MovementResponse{
		ID:        m.ID.String(),
		ProductID: m.ProductID.String(),
		BatchID:   m.BatchID.String(),
		Type:      string(m.Type),
		Qty:       m.Qty,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt,
	}
}

// BatchListResponse wraps a product's batches.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
}

// MovementListResponse wraps a product's movement history.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
}

// ReconcileResponse reports a batch's quantity against its movement sum.
type ReconcileResponse struct {
	BatchID     string `json:"batchId"`
	QtyOnHand   int64  `json:"qtyOnHand"`
	MovementSum int64  `json:"movementSum"`
	Consistent  bool   `json:"consistent"`
}
