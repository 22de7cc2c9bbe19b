package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tryon-backend/application/ports"
	"tryon-backend/domain/gallery"
	"tryon-backend/domain/keys"
	"tryon-backend/infrastructure/config"
	"tryon-backend/pkg/auth"
	apperrors "tryon-backend/pkg/errors"
	"tryon-backend/pkg/utils"
)

const configContentType = "application/json"

// ConfigPrepareRequest asks for a write grant for one brand configuration
// artifact.
type ConfigPrepareRequest struct {
	BrandID  string `json:"brandId" validate:"required"`
	FileName string `json:"fileName" validate:"required"`
	Size     int64  `json:"size,omitempty"`
}

// ConfigPrepareResult carries the minted grant.
type ConfigPrepareResult struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	Method    string `json:"method"`
	ExpiresIn int    `json:"expiresIn"`
}

// ConfigCompleteRequest finalizes a written configuration artifact.
type ConfigCompleteRequest struct {
	Key      string `json:"key" validate:"required"`
	BrandID  string `json:"brandId" validate:"required"`
	FileName string `json:"fileName"`
}

// ConfigCompleteResult reports the finalized artifact and a read grant.
type ConfigCompleteResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ConfigService applies the two-phase upload pattern to brand configuration
// JSON under `{brandId}/config/`. Config artifacts have no per-user
// namespace; the route guard restricts both operations to SuperAdmin.
type ConfigService struct {
	store  ports.ObjectStore
	cfg    *config.Config
	logger *zap.Logger
}

// NewConfigService creates a config service.
func NewConfigService(store ports.ObjectStore, cfg *config.Config, logger *zap.Logger) *ConfigService {
	return &ConfigService{store: store, cfg: cfg, logger: logger}
}

// Prepare mints a presigned PUT for a brand's configuration file.
func (s *ConfigService) Prepare(ctx context.Context, principal *auth.Principal, req ConfigPrepareRequest) (*ConfigPrepareResult, error) {
	if !strings.HasSuffix(strings.ToLower(req.FileName), ".json") {
		return nil, apperrors.NewValidationError("configuration files must be JSON")
	}
	if req.Size > gallery.MaxFileSize {
		return nil, apperrors.NewValidationError("configuration file is too large")
	}

	key, err := keys.ConfigKey(req.BrandID, req.FileName)
	if err != nil {
		return nil, apperrors.NewValidationError("could not derive a storage key").WithCause(err)
	}

	uploadURL, err := s.store.PresignPut(ctx, key, time.Duration(s.cfg.UploadURLExpiration)*time.Second)
	if err != nil {
		return nil, err
	}

	return &ConfigPrepareResult{
		Key:       key,
		UploadURL: uploadURL,
		Method:    "PUT",
		ExpiresIn: s.cfg.UploadURLExpiration,
	}, nil
}

// Complete verifies the written artifact, stamps its metadata and returns a
// read grant.
func (s *ConfigService) Complete(ctx context.Context, principal *auth.Principal, req ConfigCompleteRequest) (*ConfigCompleteResult, error) {
	expectedPrefix := keys.SanitizeSegment(req.BrandID) + "/" + keys.ConfigFolder + "/"
	if !strings.HasPrefix(req.Key, expectedPrefix) {
		return nil, apperrors.NewForbiddenError("key does not belong to the brand's configuration namespace")
	}

	if _, err := s.store.Head(ctx, req.Key); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("configuration file")
		}
		return nil, err
	}

	metadata := gallery.ObjectMetadata{
		Brand:        keys.EncodeMetadataValue(req.BrandID),
		OriginalName: keys.EncodeMetadataValue(req.FileName),
		Owner:        keys.EncodeMetadataValue(principal.UserID),
		UploadDate:   utils.NowRFC3339(),
	}
	if err := s.store.RewriteMetadata(ctx, req.Key, configContentType, metadata.MetadataMap()); err != nil {
		return nil, err
	}

	url, err := s.store.PresignGet(ctx, req.Key, time.Duration(s.cfg.SignedURLExpiration)*time.Second)
	if err != nil {
		return nil, err
	}

	s.logger.Info("configuration updated",
		zap.String("brandId", req.BrandID),
		zap.String("key", req.Key),
	)
	return &ConfigCompleteResult{Key: req.Key, URL: url}, nil
}
