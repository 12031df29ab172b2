package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/repository"
	"shopify-store-builder/internal/infra/metrics"
	red "shopify-store-builder/internal/infra/redis"
)

var _ repository.StoreJobRepository = (*storeJobRepoCacheDecorator)(nil)

// storeJobRepoCacheDecorator caches job reads so progress polling does not
// hammer the database. Every write path invalidates the cached entry.
type storeJobRepoCacheDecorator struct {
	inner repository.StoreJobRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewStoreJobRepoCacheDecorator(inner repository.StoreJobRepository, cache red.RedisClient) repository.StoreJobRepository {
	return &storeJobRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   30 * time.Second,
	}
}

func jobCacheKey(id string) string {
	return fmt.Sprintf("store_job:%s", id)
}

func userJobsCacheKey(userID string) string {
	return fmt.Sprintf("store_jobs:user:%s", userID)
}

// cacheCopy drops the input snapshot before a job goes to Redis. The
// snapshot carries Shopify credentials, which only ever leave the database
// through the worker path, and that path bypasses the cache.
func cacheCopy(job *model.StoreCreationJob) *model.StoreCreationJob {
	c := *job
	c.Input = nil
	return &c
}

func (d *storeJobRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.StoreCreationJob, error) {
	key := jobCacheKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("store_job", "hit")
		var job model.StoreCreationJob
		if json.Unmarshal([]byte(val), &job) == nil {
			return &job, nil
		}
	}
	if err != nil && err != redis.Nil {
		// Redis error; fall through to the database.
	}

	metrics.IncCacheRequest("store_job", "miss")
	job, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if job != nil {
		bytes, _ := json.Marshal(cacheCopy(job))
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return job, nil
}

func (d *storeJobRepoCacheDecorator) FindByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.StoreCreationJob, error) {
	// Only the first page is worth caching; deep pages go straight through.
	if offset != 0 {
		return d.inner.FindByUser(ctx, tx, userID, offset, limit)
	}

	key := userJobsCacheKey(userID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("store_job_list", "hit")
		var jobs []*model.StoreCreationJob
		if json.Unmarshal([]byte(val), &jobs) == nil {
			return jobs, nil
		}
	}

	metrics.IncCacheRequest("store_job_list", "miss")
	jobs, err := d.inner.FindByUser(ctx, tx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	if len(jobs) > 0 {
		copies := make([]*model.StoreCreationJob, len(jobs))
		for i, j := range jobs {
			copies[i] = cacheCopy(j)
		}
		bytes, _ := json.Marshal(copies)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return jobs, nil
}

// Save invalidates after the write lands, so a read racing the write can
// only repopulate the cache with the committed row.
func (d *storeJobRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, job *model.StoreCreationJob) error {
	if err := d.inner.Save(ctx, tx, job); err != nil {
		return err
	}
	d.cache.Del(ctx, jobCacheKey(job.ID))
	d.cache.Del(ctx, userJobsCacheKey(job.UserID))
	return nil
}

func (d *storeJobRepoCacheDecorator) FetchAndMarkRunning(ctx context.Context) (*model.StoreCreationJob, error) {
	job, err := d.inner.FetchAndMarkRunning(ctx)
	if err != nil {
		return nil, err
	}
	d.cache.Del(ctx, jobCacheKey(job.ID))
	d.cache.Del(ctx, userJobsCacheKey(job.UserID))
	return job, nil
}
