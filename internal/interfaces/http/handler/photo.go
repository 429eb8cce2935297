package handler

import (
	"github.com/gin-gonic/gin"
	estimateapp "github.com/pressureflow/backend/internal/application/estimate"
)

// UploadPhoto handles POST /api/v1/estimates/:id/photos
func (h *EstimateHandler) UploadPhoto(c *gin.Context) {
	estimateID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req estimateapp.UploadPhotoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.PhotoType == "" {
		req.PhotoType = "voor"
	}

	photo, err := h.estimateService.UploadPhoto(c.Request.Context(), estimateID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, photo)
}

// GetPhoto returns metadata and a presigned download URL.
// GET /api/v1/photos/:id
func (h *EstimateHandler) GetPhoto(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	photo, err := h.estimateService.GetPhoto(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, photo)
}

// DeletePhoto handles DELETE /api/v1/photos/:id
func (h *EstimateHandler) DeletePhoto(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.estimateService.DeletePhoto(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
