package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
	"github.com/MelvinKr/CutlyAI/internal/domain/stock"
	"github.com/MelvinKr/CutlyAI/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the batch ledger.
type StockHandler struct {
	*BaseHandler
	ledger *stock.Ledger
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, ledger *stock.Ledger) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		ledger:      ledger,
	}
}

// Receive handles POST /stock/receive
func (h *StockHandler) Receive(c *gin.Context) {
	var req dto.ReceiveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	input, err := req.ToBatchInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	batch, err := h.ledger.Receive(c.Request.Context(), h.TenantID(c), productID, input, req.Qty)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromBatch(batch))
}

// Adjust handles POST /stock/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	batchID, err := id.Parse(req.BatchID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid batchId format"))
		return
	}

	batch, err := h.ledger.Adjust(c.Request.Context(), h.TenantID(c), productID, batchID, req.Delta, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromBatch(batch))
}

// Batches handles GET /products/:id/batches
func (h *StockHandler) Batches(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id format"))
		return
	}

	batches, err := h.ledger.Batches(c.Request.Context(), h.TenantID(c), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.BatchResponse, len(batches))
	for i := range batches {
		items[i] = dto.FromBatch(&batches[i])
	}

	c.JSON(http.StatusOK, dto.BatchListResponse{Items: items})
}

// Movements handles GET /products/:id/movements
func (h *StockHandler) Movements(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id format"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 100)

	movements, err := h.ledger.Movements(c.Request.Context(), h.TenantID(c), productID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromMovement(m)
	}

	c.JSON(http.StatusOK, dto.MovementListResponse{Items: items})
}

// Reconcile handles GET /stock/batches/:id/reconcile
func (h *StockHandler) Reconcile(c *gin.Context) {
	batchID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid batch id format"))
		return
	}

	onHand, movementSum, err := h.ledger.Reconcile(c.Request.Context(), h.TenantID(c), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ReconcileResponse{
		BatchID:     batchID.String(),
		QtyOnHand:   onHand,
		MovementSum: movementSum,
		Consistent:  onHand == movementSum,
	})
}
