// Package ports defines the capability interfaces the application layer
// consumes. Implementations live under infrastructure/.
package ports

import (
	"context"
	"time"

	"tryon-backend/domain/gallery"
)

// BrandDirectory resolves brand names to stable brand ids and keeps the
// per-brand usage counters.
type BrandDirectory interface {
	// ResolveOrCreate returns the live brand for (userID, brandName),
	// creating it on first use. Concurrent first-time creates converge on
	// a single brand id.
	ResolveOrCreate(ctx context.Context, userID, brandName, email, groups string) (*gallery.Brand, error)

	// ListForUser returns all brands in a user's partition.
	ListForUser(ctx context.Context, userID string) ([]gallery.Brand, error)

	// ListAll enumerates every brand in the table. O(table size); callers
	// must restrict it to the highest privilege tier.
	ListAll(ctx context.Context) ([]gallery.Brand, error)

	// IncrementUploadCount atomically bumps the counter and refreshes the
	// updatedAt/email/groups snapshots.
	IncrementUploadCount(ctx context.Context, userID, brandID string, delta int, email, groups string) error
}

// ObjectInfo is the result of an existence probe on a stored object.
type ObjectInfo struct {
	Key          string
	ContentType  string
	Size         int64
	LastModified time.Time
	Metadata     map[string]string
}

// ObjectSummary is one entry of a listing page.
type ObjectSummary struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectPage is one page of a prefix-scoped enumeration. NextCursor is the
// backend's opaque continuation token.
type ObjectPage struct {
	Objects    []ObjectSummary
	NextCursor string
	Truncated  bool
}

// DeleteError reports one key a batch delete could not remove.
type DeleteError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// ObjectStore is the storage backend capability surface. Head returns a
// typed not-found error (pkg/errors) for absent keys.
type ObjectStore interface {
	Head(ctx context.Context, key string) (*ObjectInfo, error)
	ListPage(ctx context.Context, prefix string, maxKeys int32, cursor string) (*ObjectPage, error)
	DeleteBatch(ctx context.Context, keys []string) (deleted int, errs []DeleteError, err error)

	// RewriteMetadata replaces an object's metadata and content type in
	// place without touching its bytes (copy onto the same key with
	// metadata-replace semantics).
	RewriteMetadata(ctx context.Context, key, contentType string, metadata map[string]string) error

	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Event is a domain notification published after state-changing batches.
type Event struct {
	Type   string
	Detail interface{}
}

// EventPublisher pushes domain events to the bus. Implementations are
// best-effort; publishing never fails the request path.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// ImageTransformer optionally re-encodes an uploaded image in place before
// its metadata is rewritten (fixed aspect-ratio JPEG in the reference
// deployment). The core only requires the no-op implementation.
type ImageTransformer interface {
	Transform(ctx context.Context, key, contentType string) error
}

// NopTransformer is the default ImageTransformer.
type NopTransformer struct{}

// Transform leaves the object untouched.
func (NopTransformer) Transform(ctx context.Context, key, contentType string) error { return nil }
