package services

import (
	"context"

	"go.uber.org/zap"

	"tryon-backend/application/ports"
	"tryon-backend/domain/gallery"
	"tryon-backend/pkg/auth"
)

// BrandListResult wraps a brand listing.
type BrandListResult struct {
	Brands []gallery.Brand `json:"brands"`
	Count  int             `json:"count"`
}

// BrandService exposes the brand directory to the API surface.
type BrandService struct {
	brands ports.BrandDirectory
	logger *zap.Logger
}

// NewBrandService creates a brand service.
func NewBrandService(brands ports.BrandDirectory, logger *zap.Logger) *BrandService {
	return &BrandService{brands: brands, logger: logger}
}

// ListMine returns the caller's own brands.
func (s *BrandService) ListMine(ctx context.Context, principal *auth.Principal) (*BrandListResult, error) {
	brands, err := s.brands.ListForUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return &BrandListResult{Brands: brands, Count: len(brands)}, nil
}

// ListAll returns every brand in the directory. The route guard restricts
// this to SuperAdmin; the scan cost makes it unsuitable for anything else.
func (s *BrandService) ListAll(ctx context.Context) (*BrandListResult, error) {
	brands, err := s.brands.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &BrandListResult{Brands: brands, Count: len(brands)}, nil
}
