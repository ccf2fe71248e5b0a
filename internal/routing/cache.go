package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wayfinder/internal/geo"
)

// Cache is the minimal get/set surface the cached router needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// RedisCache stores route results in Redis. Lookup and store failures are
// treated as cache misses; the route API remains the source of truth.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache returns a RedisCache backed by the given client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	_ = c.client.Set(ctx, key, value, ttl).Err()
}

// CachedRouter serves repeated start/end lookups from a cache before falling
// back to the inner Router. Errors are never cached.
type CachedRouter struct {
	inner Router
	cache Cache
	ttl   time.Duration
}

// NewCachedRouter wraps inner with a cache layer. Entries expire after ttl.
func NewCachedRouter(inner Router, cache Cache, ttl time.Duration) *CachedRouter {
	return &CachedRouter{inner: inner, cache: cache, ttl: ttl}
}

// routeKey rounds endpoints to ~0.1m precision so float noise from repeated
// extraction does not fragment the cache.
func routeKey(start, end geo.Coordinate) string {
	return fmt.Sprintf("route:%.6f,%.6f:%.6f,%.6f", start.Lat, start.Lng, end.Lat, end.Lng)
}

func (r *CachedRouter) GetRoute(ctx context.Context, start, end geo.Coordinate) (*Result, error) {
	key := routeKey(start, end)

	if raw, ok := r.cache.Get(ctx, key); ok {
		var res Result
		if err := json.Unmarshal([]byte(raw), &res); err == nil {
			return &res, nil
		}
		// Corrupt entry: fall through and refetch.
	}

	res, err := r.inner.GetRoute(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(res); err == nil {
		r.cache.Set(ctx, key, string(raw), r.ttl)
	}
	return res, nil
}
