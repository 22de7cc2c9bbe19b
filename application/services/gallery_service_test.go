package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tryon-backend/domain/gallery"
	"tryon-backend/domain/keys"
	"tryon-backend/pkg/auth"
)

func newGalleryFixture() (*GalleryService, *fakeObjectStore) {
	store := newFakeObjectStore()
	svc := NewGalleryService(store, testMetrics(), testConfig(), zap.NewNop())
	return svc, store
}

func putImage(store *fakeObjectStore, userID, brandID, file, brandName, originalName string, uploaded time.Time) string {
	key := userID + "/" + brandID + "/" + file
	store.put(key, fakeObject{
		contentType:  gallery.ContentTypeJPEG,
		size:         1024,
		lastModified: uploaded,
		metadata: map[string]string{
			"brand":        keys.EncodeMetadataValue(brandName),
			"originalname": keys.EncodeMetadataValue(originalName),
			"owner":        keys.EncodeMetadataValue(userID),
			"uploaddate":   uploaded.UTC().Format(time.RFC3339),
		},
	})
	return key
}

func TestGalleryService_List_DecodesMetadata(t *testing.T) {
	svc, store := newGalleryFixture()
	uploaded := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	putImage(store, "u1", "brand-1", "a.jpg", "Nike", "a.png", uploaded)

	result, err := svc.List(context.Background(), adminPrincipal("u1"), ListRequest{BrandID: "brand-1"})

	require.NoError(t, err)
	require.Len(t, result.Images, 1)

	img := result.Images[0]
	assert.Equal(t, "a.png", img.Name)
	assert.Equal(t, "Nike", img.Brand)
	assert.Equal(t, "brand-1", img.BrandID)
	assert.Equal(t, "u1/brand-1/a.jpg", img.Key)
	assert.Equal(t, uploaded, img.UploadDate)
	assert.NotEmpty(t, img.URL)
	assert.Equal(t, 86400, img.URLExpiresIn)
	assert.False(t, result.HasMore)
}

func TestGalleryService_List_IgnoresTargetUserForNonPrivileged(t *testing.T) {
	svc, store := newGalleryFixture()
	putImage(store, "u1", "b1", "mine.jpg", "Nike", "mine.png", time.Now())
	putImage(store, "u2", "b2", "theirs.jpg", "Adidas", "theirs.png", time.Now())

	result, err := svc.List(context.Background(), adminPrincipal("u1"), ListRequest{TargetUserID: "u2"})

	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	for _, img := range result.Images {
		assert.True(t, strings.HasPrefix(img.Key, "u1/"))
	}
}

func TestGalleryService_List_SuperAdminMayTargetAnyUser(t *testing.T) {
	svc, store := newGalleryFixture()
	putImage(store, "u2", "b2", "theirs.jpg", "Adidas", "theirs.png", time.Now())

	principal := &auth.Principal{UserID: "u1", Groups: []string{auth.GroupSuperAdmin}}
	result, err := svc.List(context.Background(), principal, ListRequest{TargetUserID: "u2"})

	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	assert.Equal(t, "u2/b2/theirs.jpg", result.Images[0].Key)
}

func TestGalleryService_List_SkipsConfigAndJSON(t *testing.T) {
	svc, store := newGalleryFixture()
	putImage(store, "u1", "b1", "a.jpg", "Nike", "a.png", time.Now())
	store.put("u1/b1/config/settings.json", fakeObject{contentType: "application/json"})
	store.put("u1/b1/notes.json", fakeObject{contentType: "application/json"})

	result, err := svc.List(context.Background(), adminPrincipal("u1"), ListRequest{})

	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	assert.Equal(t, "u1/b1/a.jpg", result.Images[0].Key)
}

func TestGalleryService_List_BrandNameFilter(t *testing.T) {
	svc, store := newGalleryFixture()
	putImage(store, "u1", "b1", "a.jpg", "Nike", "a.png", time.Now())
	putImage(store, "u1", "b2", "b.jpg", "Adidas", "b.png", time.Now())

	result, err := svc.List(context.Background(), adminPrincipal("u1"), ListRequest{BrandName: "Nike"})

	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	assert.Equal(t, "Nike", result.Images[0].Brand)
}

func TestGalleryService_List_SortsByUploadDateDescending(t *testing.T) {
	svc, store := newGalleryFixture()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	putImage(store, "u1", "b1", "old.jpg", "Nike", "old.png", base)
	putImage(store, "u1", "b1", "new.jpg", "Nike", "new.png", base.Add(time.Hour))
	putImage(store, "u1", "b1", "mid.jpg", "Nike", "mid.png", base.Add(30*time.Minute))

	result, err := svc.List(context.Background(), adminPrincipal("u1"), ListRequest{})

	require.NoError(t, err)
	require.Len(t, result.Images, 3)
	assert.Equal(t, "new.png", result.Images[0].Name)
	assert.Equal(t, "mid.png", result.Images[1].Name)
	assert.Equal(t, "old.png", result.Images[2].Name)
}

func TestGalleryService_List_Paginates(t *testing.T) {
	svc, store := newGalleryFixture()
	for i := 0; i < 5; i++ {
		putImage(store, "u1", "b1", fmt.Sprintf("img-%d.jpg", i), "Nike", fmt.Sprintf("img-%d.png", i), time.Now())
	}

	first, err := svc.List(context.Background(), adminPrincipal("u1"), ListRequest{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, first.Images, 3)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(context.Background(), adminPrincipal("u1"), ListRequest{Limit: 3, Cursor: first.NextCursor})
	require.NoError(t, err)
	assert.Len(t, second.Images, 2)
	assert.False(t, second.HasMore)

	seen := make(map[string]struct{})
	for _, img := range append(first.Images, second.Images...) {
		seen[img.Key] = struct{}{}
	}
	assert.Len(t, seen, 5)
}

func TestGalleryService_List_MetadataFallback(t *testing.T) {
	svc, store := newGalleryFixture()
	store.put("u1/b1/raw.jpg", fakeObject{contentType: gallery.ContentTypeJPEG, size: 10})

	result, err := svc.List(context.Background(), adminPrincipal("u1"), ListRequest{})

	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	// no metadata: fall back to key-derived values
	assert.Equal(t, "raw.jpg", result.Images[0].Name)
	assert.Equal(t, "b1", result.Images[0].Brand)
}
