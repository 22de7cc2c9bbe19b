package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tryon-backend/application/ports"
	"tryon-backend/domain/gallery"
	"tryon-backend/infrastructure/config"
	apperrors "tryon-backend/pkg/errors"
	"tryon-backend/pkg/observability"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:         "test",
		BucketName:          "test-bucket",
		BrandTable:          "test-brands",
		UploadURLExpiration: 900,
		SignedURLExpiration: 86400,
		DefaultListLimit:    60,
		MaxListLimit:        200,
		DeletePageSize:      1000,
		DeleteMaxIterations: 500,
	}
}

func testMetrics() *observability.Metrics {
	return observability.NewMetrics("test", nil, zap.NewNop())
}

// fakeBrandDirectory mirrors the conditional-create semantics of the real
// directory: one live brandId per (userId, brandName).
type fakeBrandDirectory struct {
	mu     sync.Mutex
	brands map[string]*gallery.Brand // userId#brandId
	claims map[string]string         // userId#brandName -> brandId
}

func newFakeBrandDirectory() *fakeBrandDirectory {
	return &fakeBrandDirectory{
		brands: make(map[string]*gallery.Brand),
		claims: make(map[string]string),
	}
}

func (f *fakeBrandDirectory) ResolveOrCreate(ctx context.Context, userID, brandName, email, groups string) (*gallery.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if brandID, ok := f.claims[userID+"#"+brandName]; ok {
		brand := *f.brands[userID+"#"+brandID]
		return &brand, nil
	}

	now := time.Now().UTC()
	brand := &gallery.Brand{
		UserID:    userID,
		BrandID:   uuid.New().String(),
		BrandName: brandName,
		Email:     email,
		Groups:    groups,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.claims[userID+"#"+brandName] = brand.BrandID
	f.brands[userID+"#"+brand.BrandID] = brand
	copied := *brand
	return &copied, nil
}

func (f *fakeBrandDirectory) ListForUser(ctx context.Context, userID string) ([]gallery.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []gallery.Brand
	for _, b := range f.brands {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BrandName < out[j].BrandName })
	return out, nil
}

func (f *fakeBrandDirectory) ListAll(ctx context.Context) ([]gallery.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []gallery.Brand
	for _, b := range f.brands {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BrandName < out[j].BrandName })
	return out, nil
}

func (f *fakeBrandDirectory) IncrementUploadCount(ctx context.Context, userID, brandID string, delta int, email, groups string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	brand, ok := f.brands[userID+"#"+brandID]
	if !ok {
		return apperrors.NewNotFoundError("brand")
	}
	brand.UploadCount += delta
	brand.UpdatedAt = time.Now().UTC()
	brand.Email = email
	brand.Groups = groups
	return nil
}

func (f *fakeBrandDirectory) get(userID, brandID string) *gallery.Brand {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.brands[userID+"#"+brandID]; ok {
		copied := *b
		return &copied
	}
	return nil
}

type fakeObject struct {
	contentType  string
	size         int64
	lastModified time.Time
	metadata     map[string]string
}

// fakeObjectStore keeps objects in a map and pages listings in key order,
// using the last returned key as the continuation token.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string]*fakeObject
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string]*fakeObject)}
}

func (f *fakeObjectStore) put(key string, obj fakeObject) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if obj.metadata == nil {
		obj.metadata = make(map[string]string)
	}
	if obj.lastModified.IsZero() {
		obj.lastModified = time.Now().UTC()
	}
	f.objects[key] = &obj
}

func (f *fakeObjectStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeObjectStore) Head(ctx context.Context, key string) (*ports.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj, ok := f.objects[key]
	if !ok {
		return nil, apperrors.NewNotFoundError("object")
	}
	return &ports.ObjectInfo{
		Key:          key,
		ContentType:  obj.contentType,
		Size:         obj.size,
		LastModified: obj.lastModified,
		Metadata:     obj.metadata,
	}, nil
}

func (f *fakeObjectStore) ListPage(ctx context.Context, prefix string, maxKeys int32, cursor string) (*ports.ObjectPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matching []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) && key > cursor {
			matching = append(matching, key)
		}
	}
	sort.Strings(matching)

	page := &ports.ObjectPage{}
	for _, key := range matching {
		if int32(len(page.Objects)) == maxKeys {
			page.Truncated = true
			page.NextCursor = page.Objects[len(page.Objects)-1].Key
			break
		}
		obj := f.objects[key]
		page.Objects = append(page.Objects, ports.ObjectSummary{
			Key:          key,
			Size:         obj.size,
			LastModified: obj.lastModified,
		})
	}
	return page, nil
}

func (f *fakeObjectStore) DeleteBatch(ctx context.Context, keys []string) (int, []ports.DeleteError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	deleted := 0
	for _, key := range keys {
		if _, ok := f.objects[key]; ok {
			delete(f.objects, key)
			deleted++
		}
	}
	return deleted, nil, nil
}

func (f *fakeObjectStore) RewriteMetadata(ctx context.Context, key, contentType string, metadata map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj, ok := f.objects[key]
	if !ok {
		return apperrors.NewNotFoundError("object")
	}
	obj.contentType = contentType
	obj.metadata = metadata
	return nil
}

func (f *fakeObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/get/%s?expires=%d", key, int(ttl.Seconds())), nil
}

func (f *fakeObjectStore) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/put/%s?expires=%d", key, int(ttl.Seconds())), nil
}

// fakePublisher records every published event.
type fakePublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (f *fakePublisher) Publish(ctx context.Context, event ports.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) published() []ports.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.Event(nil), f.events...)
}
