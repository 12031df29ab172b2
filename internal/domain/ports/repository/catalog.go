package repository

import (
	"context"

	"shopify-store-builder/internal/domain/model"
)

// ProductCatalog maps niches to candidate products. An empty slice means
// the catalog has nothing for that niche; it is not an error at this layer.
type ProductCatalog interface {
	ProductsForNiche(ctx context.Context, niche string) ([]model.Product, error)
}
