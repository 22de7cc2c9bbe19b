// Package services contains the application layer: orchestration of the
// domain rules over the storage, directory and messaging ports.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tryon-backend/application/ports"
	"tryon-backend/domain/gallery"
	"tryon-backend/domain/keys"
	"tryon-backend/infrastructure/config"
	"tryon-backend/infrastructure/messaging/eventbridge"
	"tryon-backend/pkg/auth"
	apperrors "tryon-backend/pkg/errors"
	"tryon-backend/pkg/observability"
	"tryon-backend/pkg/utils"
)

// PrepareRequest asks for write grants for a batch of files under one brand.
type PrepareRequest struct {
	BrandName string                   `json:"brandName" validate:"required"`
	Files     []gallery.FileDescriptor `json:"files" validate:"required,min=1"`
}

// PrepareItem is the per-file outcome of a prepare call.
type PrepareItem struct {
	FileName  string `json:"fileName"`
	Success   bool   `json:"success"`
	Key       string `json:"key,omitempty"`
	UploadURL string `json:"uploadUrl,omitempty"`
	Method    string `json:"method,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PrepareResult carries the resolved brand and the per-file grants.
type PrepareResult struct {
	BrandID   string        `json:"brandId"`
	BrandName string        `json:"brandName"`
	Items     []PrepareItem `json:"items"`
}

// CompleteItem identifies one object the client claims to have written.
type CompleteItem struct {
	Key      string `json:"key" validate:"required"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
}

// CompleteRequest finalizes a batch of written objects.
type CompleteRequest struct {
	BrandID   string         `json:"brandId" validate:"required"`
	BrandName string         `json:"brandName" validate:"required"`
	Items     []CompleteItem `json:"items" validate:"required,min=1"`
}

// CompleteResultItem is the per-object outcome of a complete call.
type CompleteResultItem struct {
	Key      string `json:"key"`
	FileName string `json:"fileName"`
	Success  bool   `json:"success"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// CompleteSummary aggregates a complete batch.
type CompleteSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// CompleteResult is the full response of a complete call.
type CompleteResult struct {
	Results []CompleteResultItem `json:"results"`
	Summary CompleteSummary      `json:"summary"`
}

// UploadService implements the two-phase upload protocol. Prepare touches
// only the brand directory; Complete verifies and normalizes objects the
// client wrote directly to storage.
type UploadService struct {
	brands      ports.BrandDirectory
	store       ports.ObjectStore
	transformer ports.ImageTransformer
	events      ports.EventPublisher
	metrics     *observability.Metrics
	cfg         *config.Config
	logger      *zap.Logger
}

// NewUploadService creates an upload service.
func NewUploadService(
	brands ports.BrandDirectory,
	store ports.ObjectStore,
	transformer ports.ImageTransformer,
	events ports.EventPublisher,
	metrics *observability.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *UploadService {
	return &UploadService{
		brands:      brands,
		store:       store,
		transformer: transformer,
		events:      events,
		metrics:     metrics,
		cfg:         cfg,
		logger:      logger,
	}
}

// Prepare validates the file descriptors and mints one presigned PUT per
// valid file. Invalid descriptors become per-file failure entries; they
// never abort the batch. No object is written here.
func (s *UploadService) Prepare(ctx context.Context, principal *auth.Principal, req PrepareRequest) (*PrepareResult, error) {
	if strings.TrimSpace(req.BrandName) == "" {
		return nil, apperrors.NewValidationError("brandName is required")
	}
	if len(req.Files) == 0 {
		return nil, apperrors.NewValidationError("files must not be empty")
	}

	brand, err := s.brands.ResolveOrCreate(ctx, principal.UserID, strings.TrimSpace(req.BrandName), principal.Email, principal.GroupsJoined())
	if err != nil {
		return nil, err
	}

	result := &PrepareResult{
		BrandID:   brand.BrandID,
		BrandName: brand.BrandName,
		Items:     make([]PrepareItem, 0, len(req.Files)),
	}
	ttl := time.Duration(s.cfg.UploadURLExpiration) * time.Second

	for _, file := range req.Files {
		item := PrepareItem{FileName: file.Name}

		if reason := validateDescriptor(file); reason != "" {
			item.Error = reason
			result.Items = append(result.Items, item)
			continue
		}

		key, err := keys.ImageKey(principal.UserID, brand.BrandID, file.Name)
		if err != nil {
			item.Error = "could not derive a storage key from the file name"
			result.Items = append(result.Items, item)
			continue
		}

		uploadURL, err := s.store.PresignPut(ctx, key, ttl)
		if err != nil {
			s.logger.Error("failed to presign upload",
				zap.String("key", key),
				zap.Error(err),
			)
			item.Error = "failed to create upload URL"
			result.Items = append(result.Items, item)
			continue
		}

		item.Success = true
		item.Key = key
		item.UploadURL = uploadURL
		item.Method = "PUT"
		item.ExpiresIn = s.cfg.UploadURLExpiration
		result.Items = append(result.Items, item)
	}

	s.metrics.Count(ctx, observability.MetricUploadsPrepared, "prepare", float64(len(result.Items)))
	return result, nil
}

// Complete verifies each written object, rewrites its metadata and issues a
// read grant. Items fail independently; a single aggregate counter bump
// covers the batch's successes.
func (s *UploadService) Complete(ctx context.Context, principal *auth.Principal, req CompleteRequest) (*CompleteResult, error) {
	if strings.TrimSpace(req.BrandID) == "" {
		return nil, apperrors.NewValidationError("brandId is required")
	}
	if strings.TrimSpace(req.BrandName) == "" {
		return nil, apperrors.NewValidationError("brandName is required")
	}
	if len(req.Items) == 0 {
		return nil, apperrors.NewValidationError("items must not be empty")
	}

	ownPrefix := keys.UserPrefix(principal.UserID)
	result := &CompleteResult{Results: make([]CompleteResultItem, 0, len(req.Items))}

	for _, item := range req.Items {
		result.Results = append(result.Results, s.completeOne(ctx, principal, req, ownPrefix, item))
	}

	for _, r := range result.Results {
		result.Summary.Total++
		if r.Success {
			result.Summary.Success++
		} else {
			result.Summary.Failed++
		}
	}

	if result.Summary.Success > 0 {
		if err := s.brands.IncrementUploadCount(ctx, principal.UserID, req.BrandID, result.Summary.Success, principal.Email, principal.GroupsJoined()); err != nil {
			return nil, err
		}
		s.publishUploaded(ctx, principal.UserID, req.BrandID, result.Summary.Success)
	}

	s.metrics.Count(ctx, observability.MetricUploadsCompleted, "complete", float64(result.Summary.Success))
	if result.Summary.Failed > 0 {
		s.metrics.Count(ctx, observability.MetricUploadsFailed, "complete", float64(result.Summary.Failed))
	}
	return result, nil
}

// completeOne runs the verify/normalize/grant sequence for a single object.
func (s *UploadService) completeOne(ctx context.Context, principal *auth.Principal, req CompleteRequest, ownPrefix string, item CompleteItem) CompleteResultItem {
	out := CompleteResultItem{Key: item.Key, FileName: item.FileName}

	if !strings.HasPrefix(item.Key, ownPrefix) {
		out.Error = "forbidden: key is outside the caller's namespace"
		return out
	}

	head, err := s.store.Head(ctx, item.Key)
	if err != nil {
		if apperrors.IsNotFound(err) {
			out.Error = "object was not uploaded"
		} else {
			s.logger.Error("head check failed", zap.String("key", item.Key), zap.Error(err))
			out.Error = "failed to verify uploaded object"
		}
		return out
	}

	contentType, reason := resolveContentType(item.MimeType, head.ContentType)
	if reason != "" {
		out.Error = reason
		return out
	}

	if err := s.transformer.Transform(ctx, item.Key, contentType); err != nil {
		s.logger.Error("transform failed", zap.String("key", item.Key), zap.Error(err))
		out.Error = "failed to process uploaded image"
		return out
	}

	metadata := gallery.ObjectMetadata{
		Brand:        keys.EncodeMetadataValue(req.BrandName),
		OriginalName: keys.EncodeMetadataValue(item.FileName),
		Owner:        keys.EncodeMetadataValue(principal.UserID),
		UploadDate:   utils.NowRFC3339(),
	}
	if err := s.store.RewriteMetadata(ctx, item.Key, contentType, metadata.MetadataMap()); err != nil {
		s.logger.Error("metadata rewrite failed", zap.String("key", item.Key), zap.Error(err))
		out.Error = "failed to finalize uploaded object"
		return out
	}

	url, err := s.store.PresignGet(ctx, item.Key, time.Duration(s.cfg.SignedURLExpiration)*time.Second)
	if err != nil {
		s.logger.Error("failed to presign read", zap.String("key", item.Key), zap.Error(err))
		out.Error = "failed to create download URL"
		return out
	}

	out.Success = true
	out.URL = url
	return out
}

func (s *UploadService) publishUploaded(ctx context.Context, userID, brandID string, count int) {
	err := s.events.Publish(ctx, ports.Event{
		Type: eventbridge.EventImagesUploaded,
		Detail: map[string]interface{}{
			"userId":  userID,
			"brandId": brandID,
			"count":   count,
		},
	})
	if err != nil {
		s.logger.Warn("failed to publish upload event", zap.Error(err))
	}
}

// validateDescriptor returns a human-readable rejection reason, or "" when
// the descriptor is acceptable.
func validateDescriptor(file gallery.FileDescriptor) string {
	if strings.TrimSpace(file.Name) == "" {
		return "file name is required"
	}
	contentType := gallery.NormalizeContentType(file.Type)
	if !gallery.AllowedContentType(contentType) {
		return fmt.Sprintf("unsupported file type %q (allowed: JPEG, PNG, WebP)", file.Type)
	}
	if file.Size <= 0 {
		return "file size must be positive"
	}
	if file.Size > gallery.MaxFileSize {
		return fmt.Sprintf("file exceeds the %d MB limit", gallery.MaxFileSize/(1024*1024))
	}
	return ""
}

// resolveContentType picks the effective content type for a completed
// object. The client-reported type wins over the stored one because the
// write grant carries no Content-Type; storage then records octet-stream.
func resolveContentType(clientType, storedType string) (string, string) {
	effective := gallery.NormalizeContentType(clientType)
	if effective == "" || effective == gallery.ContentTypeOctetStream {
		effective = gallery.NormalizeContentType(storedType)
	}
	if effective == "" || effective == gallery.ContentTypeOctetStream {
		// No usable type from either side. Objects are normalized to JPEG
		// downstream, so record them as such.
		return gallery.ContentTypeJPEG, ""
	}
	if !gallery.AllowedContentType(effective) {
		return "", fmt.Sprintf("unsupported content type %q", effective)
	}
	return effective, ""
}
