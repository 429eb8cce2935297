package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/pressureflow/backend/internal/application/dashboard"
	"github.com/pressureflow/backend/internal/interfaces/http/middleware"
)

// DashboardService is the part of dashboard.DashboardService the handler needs
type DashboardService interface {
	Summary(ctx context.Context, isAdmin bool) (*dashboard.Summary, error)
}

var _ DashboardService = (*dashboard.DashboardService)(nil)

// DashboardHandler serves the start screen figures
type DashboardHandler struct {
	BaseHandler
	dashboardService DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get handles GET /api/v1/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context(), middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
