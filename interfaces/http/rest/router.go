// Package rest wires the gallery API onto a chi router.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"tryon-backend/application/services"
	"tryon-backend/infrastructure/config"
	"tryon-backend/interfaces/http/rest/handlers"
	"tryon-backend/interfaces/http/rest/middleware"
	"tryon-backend/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	uploads   *services.UploadService
	gallery   *services.GalleryService
	deletions *services.DeletionService
	brands    *services.BrandService
	configs   *services.ConfigService
	validator *auth.JWTValidator
	cfg       *config.Config
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	uploads *services.UploadService,
	gallery *services.GalleryService,
	deletions *services.DeletionService,
	brands *services.BrandService,
	configs *services.ConfigService,
	validator *auth.JWTValidator,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		uploads:   uploads,
		gallery:   gallery,
		deletions: deletions,
		brands:    brands,
		configs:   configs,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api", func(r chi.Router) {
		// Gateway identity headers are trusted only inside Lambda, where
		// the entrypoint strips client-supplied copies before setting them.
		r.Use(middleware.Authenticate(rt.validator, rt.cfg.IsLambda, rt.logger))

		writer := middleware.RequireGroups(auth.GroupAdmin, auth.GroupSuperAdmin)
		reader := middleware.RequireGroups(auth.GroupAdmin, auth.GroupViewData, auth.GroupSuperAdmin)
		superOnly := middleware.RequireGroups(auth.GroupSuperAdmin)

		r.Route("/upload", func(r chi.Router) {
			uploadHandler := handlers.NewUploadHandler(rt.uploads, rt.logger)
			r.With(writer).Post("/prepare", uploadHandler.Prepare)
			r.With(writer).Post("/complete", uploadHandler.Complete)
		})

		r.With(reader).Get("/list", handlers.NewGalleryHandler(rt.gallery, rt.logger).List)

		r.With(writer).Post("/delete", handlers.NewDeleteHandler(rt.deletions, rt.logger).Delete)

		r.Route("/brand", func(r chi.Router) {
			brandHandler := handlers.NewBrandHandler(rt.brands, rt.logger)
			r.With(writer).Get("/list", brandHandler.ListMine)
			r.With(superOnly).Get("/listAll", brandHandler.ListAll)
		})

		r.Route("/config", func(r chi.Router) {
			configHandler := handlers.NewConfigHandler(rt.configs, rt.logger)
			r.With(superOnly).Post("/prepare", configHandler.Prepare)
			r.With(superOnly).Post("/complete", configHandler.Complete)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
