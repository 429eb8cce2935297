package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	settingsapp "github.com/pressureflow/backend/internal/application/settings"
)

// SettingsService is the part of settings.SettingsService the handler needs
type SettingsService interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, values map[string]string) (map[string]string, error)
}

var _ SettingsService = (*settingsapp.SettingsService)(nil)

// SettingsHandler serves the company profile used on documents
type SettingsHandler struct {
	BaseHandler
	settingsService SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	values, err := h.settingsService.GetAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, values)
}

// Update handles PUT /api/v1/settings. Unknown keys and invalid values are
// rejected as a whole.
func (h *SettingsHandler) Update(c *gin.Context) {
	var values map[string]string
	if !h.bindJSON(c, &values) {
		return
	}
	if len(values) == 0 {
		h.BadRequest(c, "Geen instellingen opgegeven")
		return
	}

	updated, err := h.settingsService.Update(c.Request.Context(), values)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, updated)
}
