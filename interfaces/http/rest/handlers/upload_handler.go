// Package handlers contains the HTTP request handlers of the gallery API.
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"tryon-backend/application/services"
	"tryon-backend/pkg/auth"
	"tryon-backend/pkg/common"
	apperrors "tryon-backend/pkg/errors"
	"tryon-backend/pkg/utils"
)

// maxBodyBytes bounds request bodies. Uploads go directly to storage, so
// API payloads are small JSON documents.
const maxBodyBytes = 1 << 20

// UploadHandler serves the two-phase upload endpoints.
type UploadHandler struct {
	uploads *services.UploadService
	logger  *zap.Logger
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(uploads *services.UploadService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, logger: logger}
}

// Prepare handles POST /api/upload/prepare
func (h *UploadHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.GetPrincipal(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req services.PrepareRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		common.RespondAppError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.uploads.Prepare(r.Context(), principal, req)
	if err != nil {
		h.logger.Error("prepare failed",
			zap.String("userId", principal.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Complete handles POST /api/upload/complete
func (h *UploadHandler) Complete(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.GetPrincipal(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req services.CompleteRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		common.RespondAppError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.uploads.Complete(r.Context(), principal, req)
	if err != nil {
		h.logger.Error("complete failed",
			zap.String("userId", principal.UserID),
			zap.String("brandId", req.BrandID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
