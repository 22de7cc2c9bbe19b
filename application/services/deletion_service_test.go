package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tryon-backend/infrastructure/messaging/eventbridge"
	apperrors "tryon-backend/pkg/errors"
)

func newDeletionFixture() (*DeletionService, *fakeObjectStore, *fakePublisher) {
	store := newFakeObjectStore()
	events := &fakePublisher{}
	svc := NewDeletionService(store, events, testMetrics(), testConfig(), zap.NewNop())
	return svc, store, events
}

func TestDeletionService_DeleteByBrand_RemovesAllObjects(t *testing.T) {
	svc, store, events := newDeletionFixture()
	for i := 0; i < 4; i++ {
		putImage(store, "u1", "b1", fmt.Sprintf("img-%d.jpg", i), "Nike", "x.png", time.Now())
	}
	putImage(store, "u1", "b2", "keep.jpg", "Adidas", "keep.png", time.Now())

	result, err := svc.DeleteByBrand(context.Background(), adminPrincipal("u1"), DeleteByBrandRequest{BrandID: "b1"})

	require.NoError(t, err)
	assert.Equal(t, 4, result.DeletedCount)
	assert.True(t, result.Complete)
	assert.Empty(t, result.Errors)

	// the other brand survives
	assert.True(t, store.has("u1/b2/keep.jpg"))
	for i := 0; i < 4; i++ {
		assert.False(t, store.has(fmt.Sprintf("u1/b1/img-%d.jpg", i)))
	}

	published := events.published()
	require.Len(t, published, 1)
	assert.Equal(t, eventbridge.EventImagesDeleted, published[0].Type)
}

func TestDeletionService_DeleteByBrand_LoopsOverPages(t *testing.T) {
	svc, store, _ := newDeletionFixture()
	svc.cfg.DeletePageSize = 2
	for i := 0; i < 7; i++ {
		putImage(store, "u1", "b1", fmt.Sprintf("img-%d.jpg", i), "Nike", "x.png", time.Now())
	}

	result, err := svc.DeleteByBrand(context.Background(), adminPrincipal("u1"), DeleteByBrandRequest{BrandID: "b1"})

	require.NoError(t, err)
	assert.Equal(t, 7, result.DeletedCount)
	assert.True(t, result.Complete)
}

func TestDeletionService_DeleteByBrand_IterationCapReturnsCursor(t *testing.T) {
	svc, store, _ := newDeletionFixture()
	svc.cfg.DeletePageSize = 1
	svc.cfg.DeleteMaxIterations = 2
	for i := 0; i < 5; i++ {
		putImage(store, "u1", "b1", fmt.Sprintf("img-%d.jpg", i), "Nike", "x.png", time.Now())
	}

	result, err := svc.DeleteByBrand(context.Background(), adminPrincipal("u1"), DeleteByBrandRequest{BrandID: "b1"})

	require.NoError(t, err)
	assert.Equal(t, 2, result.DeletedCount)
	assert.False(t, result.Complete)
	require.NotEmpty(t, result.NextCursor)

	// resume from the returned cursor with the cap lifted
	svc.cfg.DeleteMaxIterations = 500
	resumed, err := svc.DeleteByBrand(context.Background(), adminPrincipal("u1"), DeleteByBrandRequest{
		BrandID: "b1",
		Cursor:  result.NextCursor,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resumed.DeletedCount)
	assert.True(t, resumed.Complete)
}

func TestDeletionService_DeleteByBrand_EmptyNamespace(t *testing.T) {
	svc, _, events := newDeletionFixture()

	result, err := svc.DeleteByBrand(context.Background(), adminPrincipal("u1"), DeleteByBrandRequest{BrandID: "empty"})

	require.NoError(t, err)
	assert.Equal(t, 0, result.DeletedCount)
	assert.True(t, result.Complete)
	assert.Empty(t, events.published())
}

func TestDeletionService_DeleteByKeys_ForeignPrefixForbidden(t *testing.T) {
	svc, store, _ := newDeletionFixture()
	putImage(store, "u1", "b1", "mine.jpg", "Nike", "mine.png", time.Now())
	putImage(store, "u2", "brandA", "x.jpg", "Adidas", "x.png", time.Now())

	_, err := svc.DeleteByKeys(context.Background(), adminPrincipal("u1"), DeleteByKeysRequest{
		Keys: []string{"u1/b1/mine.jpg", "u2/brandA/x.jpg"},
	})

	assert.True(t, apperrors.IsForbidden(err))
	// all-or-nothing: the caller's own key survives too
	assert.True(t, store.has("u1/b1/mine.jpg"))
	assert.True(t, store.has("u2/brandA/x.jpg"))
}

func TestDeletionService_DeleteByKeys_RemovesOwnKeys(t *testing.T) {
	svc, store, _ := newDeletionFixture()
	putImage(store, "u1", "b1", "a.jpg", "Nike", "a.png", time.Now())
	putImage(store, "u1", "b1", "b.jpg", "Nike", "b.png", time.Now())

	result, err := svc.DeleteByKeys(context.Background(), adminPrincipal("u1"), DeleteByKeysRequest{
		Keys: []string{"u1/b1/a.jpg", "u1/b1/b.jpg"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.DeletedCount)
	assert.False(t, store.has("u1/b1/a.jpg"))
	assert.False(t, store.has("u1/b1/b.jpg"))
}
