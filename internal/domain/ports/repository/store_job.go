package repository

import (
	"context"

	"shopify-store-builder/internal/domain/model"
)

type StoreJobRepository interface {
	Save(ctx context.Context, tx Tx, job *model.StoreCreationJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.StoreCreationJob, error)
	FindByUser(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.StoreCreationJob, error)

	// FetchAndMarkRunning atomically picks the oldest queued job and clears
	// its queued flag so no other worker picks it up. Returns
	// domain.ErrNotFound when the queue is empty.
	FetchAndMarkRunning(ctx context.Context) (*model.StoreCreationJob, error)
}
