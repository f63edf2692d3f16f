package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/domain/catalog/importer"
	"github.com/MelvinKr/CutlyAI/internal/infrastructure/http/v1/dto"
)

// maxImportSize bounds the accepted CSV upload (8 MiB).
const maxImportSize = 8 << 20

// ImportHandler handles CSV catalog imports.
type ImportHandler struct {
	*BaseHandler
	service *importer.Service
}

// NewImportHandler creates a new import handler.
func NewImportHandler(base *BaseHandler, service *importer.Service) *ImportHandler {
	return &ImportHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Upload handles POST /products/import
// Accepts a multipart form with a "file" field holding the CSV.
func (h *ImportHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("csv file is required").WithDetail("field", "file"))
		return
	}
	if fileHeader.Size > maxImportSize {
		h.Error(c, apperror.NewValidation("csv file too large").
			WithDetail("max_bytes", maxImportSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	defer file.Close()

	rows, err := importer.ParseCSV(file)
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.BulkUpsert(c.Request.Context(), h.TenantID(c), rows)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromImportReport(report))
}
