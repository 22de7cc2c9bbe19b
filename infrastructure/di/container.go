package di

import (
	"go.uber.org/zap"

	"tryon-backend/application/ports"
	"tryon-backend/application/services"
	"tryon-backend/infrastructure/config"
	"tryon-backend/interfaces/http/rest"
	"tryon-backend/pkg/auth"
	"tryon-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	BrandDirectory  ports.BrandDirectory
	ObjectStore     ports.ObjectStore
	EventPublisher  ports.EventPublisher
	Metrics         *observability.Metrics
	JWTValidator    *auth.JWTValidator
	UploadService   *services.UploadService
	GalleryService  *services.GalleryService
	DeletionService *services.DeletionService
	BrandService    *services.BrandService
	ConfigService   *services.ConfigService
	Router          *rest.Router
}
