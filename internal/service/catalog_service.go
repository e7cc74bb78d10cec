package service

import (
	"context"
	"fmt"

	"dental-shop/internal/models"
	"dental-shop/internal/util"

	"go.opentelemetry.io/otel/attribute"
)

const DefaultCatalogLimit = 20

// CatalogService answers stock queries over the product catalog
type CatalogService struct {
	products          ProductStore
	lowStockThreshold int
	maxLimit          int
}

// NewCatalogService creates a new catalog service
func NewCatalogService(products ProductStore, lowStockThreshold, maxLimit int) *CatalogService {
	return &CatalogService{
		products:          products,
		lowStockThreshold: lowStockThreshold,
		maxLimit:          maxLimit,
	}
}

// ListByStock returns up to limit products matching the stock filter. A
// non-positive limit selects the default; larger ones are capped.
func (s *CatalogService) ListByStock(ctx context.Context, filter models.StockFilter, limit int) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListByStock",
		attribute.String("stock", string(filter)),
		attribute.Int("limit", limit))
	defer span.End()

	if limit <= 0 {
		limit = DefaultCatalogLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}

	products, err := s.products.ListProductsByStock(ctx, filter, s.lowStockThreshold, limit)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
