package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"tryon-backend/application/ports"
	"tryon-backend/domain/keys"
	"tryon-backend/infrastructure/config"
	"tryon-backend/infrastructure/messaging/eventbridge"
	"tryon-backend/pkg/auth"
	apperrors "tryon-backend/pkg/errors"
	"tryon-backend/pkg/observability"
)

// DeleteByBrandRequest removes every object under one brand of the caller.
// Cursor resumes a previously iteration-capped run.
type DeleteByBrandRequest struct {
	BrandID string `json:"brandId" validate:"required"`
	Cursor  string `json:"cursor,omitempty"`
}

// DeleteByKeysRequest removes an explicit key list.
type DeleteByKeysRequest struct {
	Keys []string `json:"keys" validate:"required,min=1"`
}

// DeleteResult reports how far a deletion got. NextCursor is set when the
// iteration cap stopped a prefix deletion before the namespace was empty.
type DeleteResult struct {
	DeletedCount int                 `json:"deletedCount"`
	Errors       []ports.DeleteError `json:"errors,omitempty"`
	NextCursor   string              `json:"nextCursor,omitempty"`
	Complete     bool                `json:"complete"`
}

// DeletionService removes stored objects, always confined to the caller's
// own namespace.
type DeletionService struct {
	store   ports.ObjectStore
	events  ports.EventPublisher
	metrics *observability.Metrics
	cfg     *config.Config
	logger  *zap.Logger
}

// NewDeletionService creates a deletion service.
func NewDeletionService(store ports.ObjectStore, events ports.EventPublisher, metrics *observability.Metrics, cfg *config.Config, logger *zap.Logger) *DeletionService {
	return &DeletionService{store: store, events: events, metrics: metrics, cfg: cfg, logger: logger}
}

// DeleteByBrand walks `{userId}/{brandId}/` page by page, deleting each
// page before fetching the next. The loop is iteration-capped; a capped run
// returns a cursor to resume from instead of an error.
func (s *DeletionService) DeleteByBrand(ctx context.Context, principal *auth.Principal, req DeleteByBrandRequest) (*DeleteResult, error) {
	if strings.TrimSpace(req.BrandID) == "" {
		return nil, apperrors.NewValidationError("brandId is required")
	}

	prefix := keys.BrandPrefix(principal.UserID, req.BrandID)
	result := &DeleteResult{Complete: true}
	cursor := req.Cursor

	for i := 0; i < s.cfg.DeleteMaxIterations; i++ {
		page, err := s.store.ListPage(ctx, prefix, int32(s.cfg.DeletePageSize), cursor)
		if err != nil {
			return nil, err
		}
		if len(page.Objects) == 0 {
			cursor = ""
			break
		}

		pageKeys := make([]string, 0, len(page.Objects))
		for _, obj := range page.Objects {
			pageKeys = append(pageKeys, obj.Key)
		}
		deleted, failures, err := s.store.DeleteBatch(ctx, pageKeys)
		if err != nil {
			return nil, err
		}
		result.DeletedCount += deleted
		result.Errors = append(result.Errors, failures...)

		if !page.Truncated {
			cursor = ""
			break
		}
		cursor = page.NextCursor
	}

	if cursor != "" {
		result.Complete = false
		result.NextCursor = cursor
		s.logger.Warn("brand deletion stopped at iteration cap",
			zap.String("prefix", prefix),
			zap.Int("deleted", result.DeletedCount),
		)
	}

	s.afterDelete(ctx, principal.UserID, req.BrandID, result.DeletedCount)
	return result, nil
}

// DeleteByKeys deletes an explicit list of keys. Prefix validation is
// all-or-nothing: one foreign key rejects the whole request before anything
// is removed.
func (s *DeletionService) DeleteByKeys(ctx context.Context, principal *auth.Principal, req DeleteByKeysRequest) (*DeleteResult, error) {
	if len(req.Keys) == 0 {
		return nil, apperrors.NewValidationError("keys must not be empty")
	}

	ownPrefix := keys.UserPrefix(principal.UserID)
	for _, key := range req.Keys {
		if !strings.HasPrefix(key, ownPrefix) {
			return nil, apperrors.NewForbiddenError("keys outside the caller's namespace cannot be deleted")
		}
	}

	result := &DeleteResult{Complete: true}
	for start := 0; start < len(req.Keys); start += s.cfg.DeletePageSize {
		end := start + s.cfg.DeletePageSize
		if end > len(req.Keys) {
			end = len(req.Keys)
		}
		deleted, failures, err := s.store.DeleteBatch(ctx, req.Keys[start:end])
		if err != nil {
			return nil, err
		}
		result.DeletedCount += deleted
		result.Errors = append(result.Errors, failures...)
	}

	s.afterDelete(ctx, principal.UserID, "", result.DeletedCount)
	return result, nil
}

func (s *DeletionService) afterDelete(ctx context.Context, userID, brandID string, count int) {
	if count == 0 {
		return
	}
	s.metrics.Count(ctx, observability.MetricObjectsDeleted, "delete", float64(count))
	err := s.events.Publish(ctx, ports.Event{
		Type: eventbridge.EventImagesDeleted,
		Detail: map[string]interface{}{
			"userId":  userID,
			"brandId": brandID,
			"count":   count,
		},
	})
	if err != nil {
		s.logger.Warn("failed to publish delete event", zap.Error(err))
	}
}
