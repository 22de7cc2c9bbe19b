package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"tryon-backend/application/services"
	"tryon-backend/pkg/auth"
	"tryon-backend/pkg/common"
)

// deleteRequest is the wire shape of the deletion endpoint. Exactly one of
// Keys or BrandID selects the mode.
type deleteRequest struct {
	Keys    []string `json:"keys,omitempty"`
	BrandID string   `json:"brandId,omitempty"`
	Cursor  string   `json:"cursor,omitempty"`
}

// DeleteHandler serves the bulk deletion endpoint.
type DeleteHandler struct {
	deletions *services.DeletionService
	logger    *zap.Logger
}

// NewDeleteHandler creates a delete handler.
func NewDeleteHandler(deletions *services.DeletionService, logger *zap.Logger) *DeleteHandler {
	return &DeleteHandler{deletions: deletions, logger: logger}
}

// Delete handles POST /api/delete
func (h *DeleteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.GetPrincipal(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req deleteRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var result *services.DeleteResult
	switch {
	case len(req.Keys) > 0:
		result, err = h.deletions.DeleteByKeys(r.Context(), principal, services.DeleteByKeysRequest{Keys: req.Keys})
	case req.BrandID != "":
		result, err = h.deletions.DeleteByBrand(r.Context(), principal, services.DeleteByBrandRequest{
			BrandID: req.BrandID,
			Cursor:  req.Cursor,
		})
	default:
		common.RespondError(w, http.StatusBadRequest, "either keys or brandId is required")
		return
	}
	if err != nil {
		h.logger.Error("delete failed",
			zap.String("userId", principal.UserID),
			zap.String("brandId", req.BrandID),
			zap.Int("keyCount", len(req.Keys)),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
