//go:build !integration

package postgres

import (
	"context"
	"time"

	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/repository"
	red "shopify-store-builder/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerJobRepo mocks the database repository that the job decorator wraps.
type mockInnerJobRepo struct {
	SaveFunc                func(ctx context.Context, tx repository.Tx, job *model.StoreCreationJob) error
	FindByIDFunc            func(ctx context.Context, tx repository.Tx, id string) (*model.StoreCreationJob, error)
	FindByUserFunc          func(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.StoreCreationJob, error)
	FetchAndMarkRunningFunc func(ctx context.Context) (*model.StoreCreationJob, error)
}

func (m *mockInnerJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.StoreCreationJob) error {
	return m.SaveFunc(ctx, tx, job)
}
func (m *mockInnerJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.StoreCreationJob, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerJobRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.StoreCreationJob, error) {
	return m.FindByUserFunc(ctx, tx, userID, offset, limit)
}
func (m *mockInnerJobRepo) FetchAndMarkRunning(ctx context.Context) (*model.StoreCreationJob, error) {
	return m.FetchAndMarkRunningFunc(ctx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
