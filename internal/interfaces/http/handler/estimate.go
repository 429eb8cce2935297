package handler

import (
	"context"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	estimateapp "github.com/pressureflow/backend/internal/application/estimate"
	"github.com/pressureflow/backend/internal/infrastructure/printing"
)

// EstimateService is the part of estimate.EstimateService the handler needs
type EstimateService interface {
	Create(ctx context.Context, userID uuid.UUID, req estimateapp.CreateEstimateRequest) (*estimateapp.EstimateResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*estimateapp.EstimateDetailResponse, error)
	List(ctx context.Context, filter estimateapp.EstimateListFilter) ([]estimateapp.EstimateListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req estimateapp.UpdateEstimateRequest) (*estimateapp.EstimateResponse, error)
	Sign(ctx context.Context, id uuid.UUID, req estimateapp.SignRequest) (*estimateapp.EstimateResponse, error)
	Complete(ctx context.Context, id uuid.UUID) (*estimateapp.CompletionResponse, error)
	RenderDocument(ctx context.Context, id uuid.UUID) (*printing.RenderResult, error)
	UploadPhoto(ctx context.Context, estimateID uuid.UUID, req estimateapp.UploadPhotoRequest) (*estimateapp.PhotoResponse, error)
	GetPhoto(ctx context.Context, id uuid.UUID) (*estimateapp.PhotoResponse, error)
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}

var _ EstimateService = (*estimateapp.EstimateService)(nil)

// EstimateHandler handles estimate, document and photo requests
type EstimateHandler struct {
	BaseHandler
	estimateService EstimateService
}

// NewEstimateHandler creates a new EstimateHandler
func NewEstimateHandler(estimateService EstimateService) *EstimateHandler {
	return &EstimateHandler{
		estimateService: estimateService,
	}
}

// Create prices the submitted lines and stores the estimate.
// POST /api/v1/estimates
func (h *EstimateHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authenticatie vereist")
		return
	}

	var req estimateapp.CreateEstimateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	est, err := h.estimateService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, est)
}

// GetByID handles GET /api/v1/estimates/:id
func (h *EstimateHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	est, err := h.estimateService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, est)
}

// List handles GET /api/v1/estimates?status=&customer_id=
func (h *EstimateHandler) List(c *gin.Context) {
	var filter estimateapp.EstimateListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	estimates, err := h.estimateService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, estimates)
}

// Update handles PUT /api/v1/estimates/:id
func (h *EstimateHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req estimateapp.UpdateEstimateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	est, err := h.estimateService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, est)
}

// Sign stores the customer's signature and accepts the quote.
// POST /api/v1/estimates/:id/sign
func (h *EstimateHandler) Sign(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req estimateapp.SignRequest
	if !h.bindJSON(c, &req) {
		return
	}

	est, err := h.estimateService.Sign(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, est)
}

// Complete marks the job voltooid and deducts chemicals from stock. Calling
// it again on a completed estimate deducts nothing.
// POST /api/v1/estimates/:id/complete
func (h *EstimateHandler) Complete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.estimateService.Complete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DownloadPDF streams the quote or invoice document. The file opens inline
// unless ?download=true is given.
// GET /api/v1/estimates/:id/pdf
func (h *EstimateHandler) DownloadPDF(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.estimateService.RenderDocument(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	disposition := "inline"
	if c.Query("download") == "true" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": result.Filename}))
	c.Header("X-Page-Count", strconv.Itoa(result.PageCount))
	c.Data(http.StatusOK, "application/pdf", result.PDFData)
}
