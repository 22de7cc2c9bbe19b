// Package di assembles the application with google/wire.
package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"tryon-backend/application/ports"
	"tryon-backend/application/services"
	"tryon-backend/infrastructure/config"
	"tryon-backend/infrastructure/messaging/eventbridge"
	"tryon-backend/infrastructure/persistence/dynamodb"
	"tryon-backend/infrastructure/storage/s3"
	"tryon-backend/interfaces/http/rest"
	"tryon-backend/pkg/auth"
	"tryon-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideObjectStore creates the S3-backed object store
func ProvideObjectStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.ObjectStore {
	return s3.NewObjectStore(client, cfg.BucketName, logger)
}

// ProvideBrandDirectory creates the DynamoDB-backed brand directory
func ProvideBrandDirectory(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.BrandDirectory {
	return dynamodb.NewBrandRepository(client, cfg.BrandTable, cfg.BrandScanMaxPages, logger)
}

// ProvideEventPublisher creates the event publisher, or a no-op when no bus
// is configured
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents || cfg.EventBusName == "" {
		return eventbridge.NopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideImageTransformer creates the image transformer. The default is a
// no-op; a re-encoding implementation can be swapped in here.
func ProvideImageTransformer() ports.ImageTransformer {
	return ports.NopTransformer{}
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return observability.NewMetrics("", nil, logger)
	}
	namespace := fmt.Sprintf("TryOn/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideJWTValidator creates the local bearer-token validator. Behind API
// Gateway no secret is configured and the validator stays nil; the auth
// middleware then accepts only the gateway trust path.
func ProvideJWTValidator(cfg *config.Config, logger *zap.Logger) *auth.JWTValidator {
	if cfg.JWTSecret == "" {
		return nil
	}
	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
	if err != nil {
		logger.Warn("jwt validator unavailable", zap.Error(err))
		return nil
	}
	return validator
}

// ProvideUploadService creates the upload service
func ProvideUploadService(
	brands ports.BrandDirectory,
	store ports.ObjectStore,
	transformer ports.ImageTransformer,
	events ports.EventPublisher,
	metrics *observability.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *services.UploadService {
	return services.NewUploadService(brands, store, transformer, events, metrics, cfg, logger)
}

// ProvideGalleryService creates the gallery service
func ProvideGalleryService(store ports.ObjectStore, metrics *observability.Metrics, cfg *config.Config, logger *zap.Logger) *services.GalleryService {
	return services.NewGalleryService(store, metrics, cfg, logger)
}

// ProvideDeletionService creates the deletion service
func ProvideDeletionService(store ports.ObjectStore, events ports.EventPublisher, metrics *observability.Metrics, cfg *config.Config, logger *zap.Logger) *services.DeletionService {
	return services.NewDeletionService(store, events, metrics, cfg, logger)
}

// ProvideBrandService creates the brand service
func ProvideBrandService(brands ports.BrandDirectory, logger *zap.Logger) *services.BrandService {
	return services.NewBrandService(brands, logger)
}

// ProvideConfigService creates the config service
func ProvideConfigService(store ports.ObjectStore, cfg *config.Config, logger *zap.Logger) *services.ConfigService {
	return services.NewConfigService(store, cfg, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	uploads *services.UploadService,
	gallery *services.GalleryService,
	deletions *services.DeletionService,
	brands *services.BrandService,
	configs *services.ConfigService,
	validator *auth.JWTValidator,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(uploads, gallery, deletions, brands, configs, validator, cfg, logger)
}
