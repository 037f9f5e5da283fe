package catalog

import (
	"context"
	"fmt"

	"github.com/crucial707/product-catalog/internal/models"
	"github.com/crucial707/product-catalog/internal/query"
)

// Search runs a free-text search with column filters and sort directives.
// Unknown filter and sort keys are ignored. An empty result is not an error.
func (s *Service) Search(ctx context.Context, term string, filters, sorts map[string]string) ([]models.Product, error) {
	return s.SearchSpec(ctx, query.Parse(term, filters, sorts))
}

// SearchSpec runs an already parsed search.
func (s *Service) SearchSpec(ctx context.Context, spec query.Spec) ([]models.Product, error) {
	products, err := s.store.SearchProducts(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// List returns products in storage order. A non-positive limit means
// DefaultListLimit; limits above MaxListLimit are capped.
func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Product, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	products, err := s.store.ListProducts(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// GetProduct returns one product or common.ErrNotFound.
func (s *Service) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// Facets collects the non-empty areas and regions of products, in order,
// for the filter controls of a listing page.
func Facets(products []models.Product) (areas, regions []string) {
	areas = []string{}
	regions = []string{}
	for _, p := range products {
		if p.Area != "" {
			areas = append(areas, p.Area)
		}
		if p.Regions != "" {
			regions = append(regions, p.Regions)
		}
	}
	return areas, regions
}
