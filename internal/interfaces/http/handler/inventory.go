package handler

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/pressureflow/backend/internal/application/inventory"
)

// xlsxContentType is the media type of Office Open XML workbooks
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryService is the part of inventory.InventoryService the handler needs
type InventoryService interface {
	List(ctx context.Context) ([]inventoryapp.ItemResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*inventoryapp.ItemResponse, error)
	Create(ctx context.Context, req inventoryapp.CreateItemRequest) (*inventoryapp.ItemResponse, error)
	Update(ctx context.Context, id uuid.UUID, req inventoryapp.UpdateItemRequest) (*inventoryapp.ItemResponse, error)
	Adjust(ctx context.Context, id uuid.UUID, req inventoryapp.AdjustRequest) (*inventoryapp.AdjustResponse, error)
	Logs(ctx context.Context, id uuid.UUID, limit int) ([]inventoryapp.LogEntryResponse, error)
	LowStock(ctx context.Context) ([]inventoryapp.ItemResponse, error)
	Export(ctx context.Context, w io.Writer) error
}

var _ InventoryService = (*inventoryapp.InventoryService)(nil)

// InventoryHandler handles chemical stock requests
type InventoryHandler struct {
	BaseHandler
	inventoryService InventoryService
	now              func() time.Time
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		now:              time.Now,
	}
}

// List handles GET /api/v1/inventory
func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.inventoryService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// GetByID handles GET /api/v1/inventory/:id
func (h *InventoryHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	item, err := h.inventoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Create handles POST /api/v1/inventory
func (h *InventoryHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// Update handles PUT /api/v1/inventory/:id
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req inventoryapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Adjust applies a manual signed correction. Stock never drops below zero;
// the response reports the delta that was really applied.
// POST /api/v1/inventory/:id/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req inventoryapp.AdjustRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.inventoryService.Adjust(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Logs handles GET /api/v1/inventory/:id/logs?limit=
func (h *InventoryHandler) Logs(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.BadRequest(c, "Ongeldige limiet")
			return
		}
		limit = n
	}

	entries, err := h.inventoryService.Logs(c.Request.Context(), id, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// LowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.inventoryService.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// Export sends the stock list as an xlsx workbook. The workbook is built in
// memory first so a failure still yields a JSON error.
// GET /api/v1/inventory/export
func (h *InventoryHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.inventoryService.Export(c.Request.Context(), &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := "voorraad-" + h.now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
