package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
	"github.com/MelvinKr/CutlyAI/internal/domain/catalog"
	"github.com/MelvinKr/CutlyAI/internal/domain/search"
	"github.com/MelvinKr/CutlyAI/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	*BaseHandler
	service *catalog.Service
	search  *search.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *catalog.Service, searchService *search.Service) *ProductHandler {
	return &ProductHandler{
		BaseHandler: base,
		service:     service,
		search:      searchService,
	}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product := req.ToEntity(h.TenantID(c))
	if err := h.service.Create(c.Request.Context(), product); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromProduct(product))
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListProductsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.search.ListProducts(c.Request.Context(), h.TenantID(c), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	rows := make([]dto.ProductRowResponse, len(result.Rows))
	for i, row := range result.Rows {
		rows[i] = dto.FromSearchRow(row)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      rows,
		Pagination: dto.NewPaginationResponse(result.Page, result.PageSize, result.Total),
	})
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.parseID(c)
	if !ok {
		return
	}

	product, err := h.service.Get(c.Request.Context(), h.TenantID(c), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProduct(product))
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.service.Get(c.Request.Context(), h.TenantID(c), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(product)
	if err := h.service.Update(c.Request.Context(), product); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProduct(product))
}

// Archive handles POST /products/:id/archive
func (h *ProductHandler) Archive(c *gin.Context) {
	productID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Archive(c.Request.Context(), h.TenantID(c), productID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Restore handles POST /products/:id/restore
func (h *ProductHandler) Restore(c *gin.Context) {
	productID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Restore(c.Request.Context(), h.TenantID(c), productID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) parseID(c *gin.Context) (id.ID, bool) {
	parsed, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id format"))
		return id.Nil(), false
	}
	return parsed, true
}
