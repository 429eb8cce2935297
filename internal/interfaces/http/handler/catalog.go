package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/pressureflow/backend/internal/application/catalog"
	"github.com/pressureflow/backend/internal/interfaces/http/middleware"
)

// CatalogService is the part of catalog.CatalogService the handler needs
type CatalogService interface {
	ListServices(ctx context.Context, includeInactive bool) ([]catalogapp.ServiceResponse, error)
	GetService(ctx context.Context, id uuid.UUID) (*catalogapp.ServiceResponse, error)
	CreateService(ctx context.Context, req catalogapp.CreateServiceRequest) (*catalogapp.ServiceResponse, error)
	UpdateService(ctx context.Context, id uuid.UUID, req catalogapp.UpdateServiceRequest) (*catalogapp.ServiceResponse, error)
	DeleteService(ctx context.Context, id uuid.UUID) error
	ListUpsells(ctx context.Context, includeInactive bool) ([]catalogapp.UpsellResponse, error)
	CreateUpsell(ctx context.Context, req catalogapp.CreateUpsellRequest) (*catalogapp.UpsellResponse, error)
	UpdateUpsell(ctx context.Context, id uuid.UUID, req catalogapp.UpdateUpsellRequest) (*catalogapp.UpsellResponse, error)
	DeleteUpsell(ctx context.Context, id uuid.UUID) error
}

var _ CatalogService = (*catalogapp.CatalogService)(nil)

// CatalogHandler serves the price list: cleaning services and upsell items
type CatalogHandler struct {
	BaseHandler
	catalogService CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// includeInactive lets admins see deactivated entries with ?all=true
func includeInactive(c *gin.Context) bool {
	return middleware.IsAdmin(c) && c.Query("all") == "true"
}

// ListServices handles GET /api/v1/services
func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.catalogService.ListServices(c.Request.Context(), includeInactive(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, services)
}

// GetService handles GET /api/v1/services/:id
func (h *CatalogHandler) GetService(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	service, err := h.catalogService.GetService(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, service)
}

// CreateService handles POST /api/v1/services
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req catalogapp.CreateServiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	service, err := h.catalogService.CreateService(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, service)
}

// UpdateService handles PUT /api/v1/services/:id
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req catalogapp.UpdateServiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	service, err := h.catalogService.UpdateService(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, service)
}

// DeleteService handles DELETE /api/v1/services/:id
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteService(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListUpsells handles GET /api/v1/upsells
func (h *CatalogHandler) ListUpsells(c *gin.Context) {
	upsells, err := h.catalogService.ListUpsells(c.Request.Context(), includeInactive(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, upsells)
}

// CreateUpsell handles POST /api/v1/upsells
func (h *CatalogHandler) CreateUpsell(c *gin.Context) {
	var req catalogapp.CreateUpsellRequest
	if !h.bindJSON(c, &req) {
		return
	}

	upsell, err := h.catalogService.CreateUpsell(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, upsell)
}

// UpdateUpsell handles PUT /api/v1/upsells/:id
func (h *CatalogHandler) UpdateUpsell(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req catalogapp.UpdateUpsellRequest
	if !h.bindJSON(c, &req) {
		return
	}

	upsell, err := h.catalogService.UpdateUpsell(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, upsell)
}

// DeleteUpsell handles DELETE /api/v1/upsells/:id
func (h *CatalogHandler) DeleteUpsell(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteUpsell(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
