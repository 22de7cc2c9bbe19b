package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"tryon-backend/application/services"
	"tryon-backend/pkg/auth"
	"tryon-backend/pkg/common"
)

// GalleryHandler serves the image listing endpoint.
type GalleryHandler struct {
	gallery *services.GalleryService
	logger  *zap.Logger
}

// NewGalleryHandler creates a gallery handler.
func NewGalleryHandler(gallery *services.GalleryService, logger *zap.Logger) *GalleryHandler {
	return &GalleryHandler{gallery: gallery, logger: logger}
}

// List handles GET /api/list
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.GetPrincipal(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	query := r.URL.Query()
	req := services.ListRequest{
		TargetUserID: query.Get("targetUserId"),
		BrandID:      query.Get("brandId"),
		BrandName:    query.Get("brand"),
		Cursor:       query.Get("cursor"),
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			common.RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		req.Limit = limit
	}

	result, err := h.gallery.List(r.Context(), principal, req)
	if err != nil {
		h.logger.Error("list failed",
			zap.String("userId", principal.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
