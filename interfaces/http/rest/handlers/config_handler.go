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

// ConfigHandler serves the brand configuration upload endpoints.
type ConfigHandler struct {
	configs *services.ConfigService
	logger  *zap.Logger
}

// NewConfigHandler creates a config handler.
func NewConfigHandler(configs *services.ConfigService, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{configs: configs, logger: logger}
}

// Prepare handles POST /api/config/prepare
func (h *ConfigHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.GetPrincipal(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req services.ConfigPrepareRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		common.RespondAppError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.configs.Prepare(r.Context(), principal, req)
	if err != nil {
		h.logger.Error("config prepare failed",
			zap.String("brandId", req.BrandID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Complete handles POST /api/config/complete
func (h *ConfigHandler) Complete(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.GetPrincipal(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req services.ConfigCompleteRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		common.RespondAppError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.configs.Complete(r.Context(), principal, req)
	if err != nil {
		h.logger.Error("config complete failed",
			zap.String("brandId", req.BrandID),
			zap.String("key", req.Key),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
