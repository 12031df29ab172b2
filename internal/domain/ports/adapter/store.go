package adapter

import (
	"context"

	"shopify-store-builder/internal/domain/model"
)

// ProductPayload is the normalized product shape sent to the store backend.
type ProductPayload struct {
	Title       string
	BodyHTML    string
	ProductType string
	Price       string
	ImageURL    string
	ImageAlt    string
}

// StoreAPI is the port for storefront provisioning. The production
// implementation records the store on our side and drives the Shopify
// Admin REST API; tests supply fakes.
type StoreAPI interface {
	// CreateStore provisions a store entity and returns its ID. creds may
	// be nil for stores awaiting OAuth connection.
	CreateStore(ctx context.Context, name, ownerID string, creds *model.StoreCredentials) (storeID string, err error)

	// CreateProduct creates a product record, including the image when the
	// payload carries one.
	CreateProduct(ctx context.Context, storeID string, p ProductPayload) (productID string, err error)

	// UploadProductImage attaches an image to an existing product as a
	// follow-up call. Failures here are non-fatal to the caller.
	UploadProductImage(ctx context.Context, storeID, productID, imageURL, altText string) error

	// ApplyColorScheme writes the palette into the store's active theme.
	ApplyColorScheme(ctx context.Context, storeID string, scheme *model.ColorScheme) error

	// ActivateStore marks the store live.
	ActivateStore(ctx context.Context, storeID string) error
}
