package service

import (
	"context"
	"fmt"

	g "github.com/serpapi/google-search-results-golang"
	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/config"
	"github.com/AmonApolonio/lookchat/internal/domain"
)

// ProductService resolves an opaque immersive-product page token into the
// search provider's structured product/store data. The provider response
// is passed through verbatim; the client owns its interpretation.
type ProductService struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewProductService creates a new product detail service.
func NewProductService(cfg *config.Config, logger *zap.Logger) *ProductService {
	return &ProductService{cfg: cfg, logger: logger}
}

// Details fetches product details for the given page token.
func (s *ProductService) Details(ctx context.Context, pageToken string) (map[string]any, error) {
	if s.cfg.Serp.APIKey == "" {
		return nil, domain.ErrNotConfigured
	}

	parameter := map[string]string{
		"engine":     "google_immersive_product",
		"page_token": pageToken,
	}

	search := g.NewGoogleSearch(parameter, s.cfg.Serp.APIKey)

	data, err := search.GetJSON()
	if err != nil {
		s.logger.Error("product detail lookup failed", zap.Error(err))
		return nil, fmt.Errorf("product search: %w", err)
	}

	return data, nil
}
