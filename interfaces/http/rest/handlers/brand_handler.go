package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"tryon-backend/application/services"
	"tryon-backend/pkg/auth"
	"tryon-backend/pkg/common"
)

// BrandHandler serves the brand directory endpoints.
type BrandHandler struct {
	brands *services.BrandService
	logger *zap.Logger
}

// NewBrandHandler creates a brand handler.
func NewBrandHandler(brands *services.BrandService, logger *zap.Logger) *BrandHandler {
	return &BrandHandler{brands: brands, logger: logger}
}

// ListMine handles GET /api/brand/list
func (h *BrandHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.GetPrincipal(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	result, err := h.brands.ListMine(r.Context(), principal)
	if err != nil {
		h.logger.Error("brand list failed",
			zap.String("userId", principal.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// ListAll handles GET /api/brand/listAll
func (h *BrandHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.brands.ListAll(r.Context())
	if err != nil {
		h.logger.Error("global brand list failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
