package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"tryon-backend/application/ports"
	"tryon-backend/domain/gallery"
	"tryon-backend/domain/keys"
	"tryon-backend/infrastructure/config"
	"tryon-backend/pkg/auth"
	"tryon-backend/pkg/observability"
	"tryon-backend/pkg/utils"
)

// ListRequest scopes and pages an image listing.
type ListRequest struct {
	TargetUserID string `json:"targetUserId,omitempty"`
	BrandID      string `json:"brandId,omitempty"`
	BrandName    string `json:"brandName,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Cursor       string `json:"cursor,omitempty"`
}

// ListResult is one page of image items.
type ListResult struct {
	Images     []gallery.ImageItem `json:"images"`
	Count      int                 `json:"count"`
	NextCursor string              `json:"nextCursor,omitempty"`
	HasMore    bool                `json:"hasMore"`
}

// GalleryService lists stored images as domain projections with fresh read
// grants.
type GalleryService struct {
	store   ports.ObjectStore
	metrics *observability.Metrics
	cfg     *config.Config
	logger  *zap.Logger
}

// NewGalleryService creates a gallery service.
func NewGalleryService(store ports.ObjectStore, metrics *observability.Metrics, cfg *config.Config, logger *zap.Logger) *GalleryService {
	return &GalleryService{store: store, metrics: metrics, cfg: cfg, logger: logger}
}

// List pages through the caller's namespace and projects each object into
// an ImageItem. Only SuperAdmin may redirect the namespace via
// TargetUserID; for everyone else the field is ignored outright, so a
// forged value can never widen the prefix.
func (s *GalleryService) List(ctx context.Context, principal *auth.Principal, req ListRequest) (*ListResult, error) {
	effectiveUserID := principal.UserID
	if req.TargetUserID != "" && principal.IsSuperAdmin() {
		effectiveUserID = req.TargetUserID
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultListLimit
	}
	if limit > s.cfg.MaxListLimit {
		limit = s.cfg.MaxListLimit
	}

	prefix := keys.UserPrefix(effectiveUserID)
	if req.BrandID != "" {
		prefix = keys.BrandPrefix(effectiveUserID, req.BrandID)
	}

	page, err := s.store.ListPage(ctx, prefix, int32(limit), req.Cursor)
	if err != nil {
		return nil, err
	}

	owner := keys.SanitizeSegment(effectiveUserID)
	images := make([]gallery.ImageItem, 0, len(page.Objects))
	for _, obj := range page.Objects {
		if item, ok := s.project(ctx, owner, req, obj); ok {
			images = append(images, item)
		}
	}

	// Page-local ordering only; cross-page order follows key order.
	sort.Slice(images, func(i, j int) bool {
		return images[i].UploadDate.After(images[j].UploadDate)
	})

	s.metrics.Count(ctx, observability.MetricImagesListed, "list", float64(len(images)))
	return &ListResult{
		Images:     images,
		Count:      len(images),
		NextCursor: page.NextCursor,
		HasMore:    page.Truncated,
	}, nil
}

// project turns one stored object into an image item, or reports that the
// object is not a gallery image for this request. Metadata problems never
// fail the listing; every decode falls back to a key-derived value.
func (s *GalleryService) project(ctx context.Context, owner string, req ListRequest, obj ports.ObjectSummary) (gallery.ImageItem, bool) {
	parsed := keys.ParseKey(obj.Key)
	if parsed.Owner != owner {
		return gallery.ImageItem{}, false
	}
	if parsed.IsConfig || strings.HasSuffix(obj.Key, ".json") || strings.HasSuffix(obj.Key, "/") {
		return gallery.ImageItem{}, false
	}
	if req.BrandID != "" && parsed.BrandID != keys.SanitizeSegment(req.BrandID) {
		return gallery.ImageItem{}, false
	}

	item := gallery.ImageItem{
		ID:           obj.Key,
		Key:          obj.Key,
		Name:         parsed.FileName,
		Brand:        parsed.BrandID,
		BrandID:      parsed.BrandID,
		Size:         obj.Size,
		UploadDate:   obj.LastModified,
		ContentType:  gallery.ContentTypeJPEG,
		URLExpiresIn: s.cfg.SignedURLExpiration,
	}

	head, err := s.store.Head(ctx, obj.Key)
	if err != nil {
		s.logger.Warn("skipping unreadable object", zap.String("key", obj.Key), zap.Error(err))
		return gallery.ImageItem{}, false
	}
	if head.ContentType != "" {
		item.ContentType = head.ContentType
	}
	if v := head.Metadata["brand"]; v != "" {
		item.Brand = keys.DecodeMetadataValue(v)
	}
	if v := head.Metadata["originalname"]; v != "" {
		item.Name = keys.DecodeMetadataValue(v)
	}
	if v := head.Metadata["uploaddate"]; v != "" {
		if t, err := utils.ParseRFC3339(v); err == nil {
			item.UploadDate = t
		}
	}

	if req.BrandName != "" && item.Brand != req.BrandName {
		return gallery.ImageItem{}, false
	}

	url, err := s.store.PresignGet(ctx, obj.Key, time.Duration(s.cfg.SignedURLExpiration)*time.Second)
	if err != nil {
		s.logger.Warn("skipping object without read grant", zap.String("key", obj.Key), zap.Error(err))
		return gallery.ImageItem{}, false
	}
	item.URL = url
	return item, true
}
