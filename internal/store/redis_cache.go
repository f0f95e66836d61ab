package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/link-shortener/internal/links"
)

var errCacheMiss = errors.New("cache miss")

// RedisCacheRepository wraps a Repository with Redis caching for reads.
type RedisCacheRepository struct {
	store  links.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store links.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "link:",
		ttl:    ttl,
	}
}

// Create stores links in the underlying store and updates the cache.
func (r *RedisCacheRepository) Create(ctx context.Context, batch ...*links.Link) error {
	if err := r.store.Create(ctx, batch...); err != nil {
		return err
	}

	// Write-through: update cache after successful save
	r.cacheLinks(ctx, batch...)

	return nil
}

// Get retrieves a link by its ID, checking cache first.
func (r *RedisCacheRepository) Get(ctx context.Context, id string) (*links.Link, error) {
	if link, err := r.getFromCache(ctx, id); err == nil {
		return link, nil
	}

	// Cache miss - fetch from store
	link, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheLinks(ctx, link)

	return link, nil
}

func (r *RedisCacheRepository) List(ctx context.Context) ([]*links.Link, error) {
	return r.store.List(ctx)
}

func (r *RedisCacheRepository) Exists(ctx context.Context, id string) (bool, error) {
	if n, err := r.client.Exists(ctx, r.prefix+id).Result(); err == nil && n > 0 {
		return true, nil
	}

	return r.store.Exists(ctx, id)
}

func (r *RedisCacheRepository) Update(ctx context.Context, id string, changes links.Changes) (*links.Link, error) {
	link, err := r.store.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	r.evict(ctx, id)
	r.cacheLinks(ctx, link)

	return link, nil
}

func (r *RedisCacheRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}

	r.evict(ctx, id)

	return nil
}

// IncrementVisits updates the store and drops the cached copy so the next read sees the new count.
func (r *RedisCacheRepository) IncrementVisits(ctx context.Context, id string, n int64) error {
	if err := r.store.IncrementVisits(ctx, id, n); err != nil {
		return err
	}

	r.evict(ctx, id)

	return nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, id string) (*links.Link, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+id).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, errCacheMiss
	}

	link := &links.Link{
		ID:             result["link_id"],
		Target:         result["target"],
		ControlKeyHash: result["control_key"],
	}

	if ts, ok := result["added_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			link.AddedAt = time.Unix(0, nanos).UTC()
		}
	}

	if visits, ok := result["visit_count"]; ok {
		link.VisitCount, _ = strconv.ParseInt(visits, 10, 64)
	}

	return link, nil
}

func (r *RedisCacheRepository) cacheLinks(ctx context.Context, batch ...*links.Link) {
	pipe := r.client.Pipeline()

	for _, link := range batch {
		key := r.prefix + link.ID

		pipe.HSet(ctx, key, map[string]interface{}{
			"link_id":     link.ID,
			"target":      link.Target,
			"control_key": link.ControlKeyHash,
			"added_at":    link.AddedAt.UnixNano(),
			"visit_count": link.VisitCount,
		})

		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
	}

	_, _ = pipe.Exec(ctx)
}

func (r *RedisCacheRepository) evict(ctx context.Context, id string) {
	_ = r.client.Del(ctx, r.prefix+id).Err()
}

// Ping checks the wrapped store when it supports health checks.
func (r *RedisCacheRepository) Ping(ctx context.Context) error {
	if p, ok := r.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}

	return nil
}

// Shutdown shuts down the wrapped store. The Redis client is managed externally.
func (r *RedisCacheRepository) Shutdown() error {
	if s, ok := r.store.(interface{ Shutdown() error }); ok {
		return s.Shutdown()
	}

	return nil
}

// Compile-time check.
var _ links.Repository = (*RedisCacheRepository)(nil)
