package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/repository"
	"shopify-store-builder/internal/infra/security"
)

var _ repository.StoreRepository = (*storeRepo)(nil)

type storeRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService
}

func NewStoreRepo(pool *pgxpool.Pool, enc *security.EncryptionService) *storeRepo {
	return &storeRepo{pool: pool, enc: enc}
}

func (r *storeRepo) Save(ctx context.Context, tx repository.Tx, store *model.ShopifyStore) error {
	if store.CreatedAt.IsZero() {
		store.CreatedAt = time.Now()
	}
	store.UpdatedAt = time.Now()

	accessToken, err := r.sealed(store.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	apiSecret, err := r.sealed(store.APISecret)
	if err != nil {
		return fmt.Errorf("encrypt api secret: %w", err)
	}

	const q = `
INSERT INTO shopify_stores
  (id, user_id, store_name, shopify_domain, access_token, api_key, api_secret, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
  store_name = EXCLUDED.store_name,
  shopify_domain = EXCLUDED.shopify_domain,
  access_token = EXCLUDED.access_token,
  api_key = EXCLUDED.api_key,
  api_secret = EXCLUDED.api_secret,
  status = EXCLUDED.status,
  updated_at = EXCLUDED.updated_at;`

	_, err = execSQL(ctx, r.pool, tx, q,
		store.ID, store.UserID, store.StoreName, store.ShopifyDomain,
		accessToken, nullIfEmpty(store.APIKey), apiSecret,
		string(store.Status), store.CreatedAt, store.UpdatedAt)
	return err
}

func (r *storeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ShopifyStore, error) {
	const q = `
SELECT id, user_id, store_name, shopify_domain, access_token, api_key, api_secret, status, created_at, updated_at
FROM shopify_stores WHERE id = $1`

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	var (
		store       model.ShopifyStore
		status      string
		accessToken *string
		apiKey      *string
		apiSecret   *string
	)
	if err := row.Scan(&store.ID, &store.UserID, &store.StoreName, &store.ShopifyDomain,
		&accessToken, &apiKey, &apiSecret, &status, &store.CreatedAt, &store.UpdatedAt); err != nil {
		return nil, translateScanErr(err)
	}
	store.Status = model.StoreStatus(status)
	if apiKey != nil {
		store.APIKey = *apiKey
	}
	if store.AccessToken, err = r.opened(accessToken); err != nil {
		return nil, err
	}
	if store.APISecret, err = r.opened(apiSecret); err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.StoreStatus) error {
	_, err := execSQL(ctx, r.pool, tx,
		`UPDATE shopify_stores SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	return err
}

func (r *storeRepo) sealed(plain string) (*string, error) {
	if plain == "" {
		return nil, nil
	}
	if r.enc == nil {
		return &plain, nil
	}
	ct, err := r.enc.Encrypt(plain)
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *storeRepo) opened(ct *string) (string, error) {
	if ct == nil || *ct == "" {
		return "", nil
	}
	if r.enc == nil {
		return *ct, nil
	}
	return r.enc.Decrypt(*ct)
}
