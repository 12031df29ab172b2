package repository

import (
	"context"

	"shopify-store-builder/internal/domain/model"
)

type StoreRepository interface {
	Save(ctx context.Context, tx Tx, store *model.ShopifyStore) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ShopifyStore, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.StoreStatus) error
}
