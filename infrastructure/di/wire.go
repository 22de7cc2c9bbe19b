//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"tryon-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideS3Client,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideObjectStore,
	ProvideBrandDirectory,
	ProvideEventPublisher,
	ProvideImageTransformer,
	ProvideMetrics,
	ProvideJWTValidator,
	ProvideUploadService,
	ProvideGalleryService,
	ProvideDeletionService,
	ProvideBrandService,
	ProvideConfigService,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
