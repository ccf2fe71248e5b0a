package infra

import "github.com/redis/go-redis/v9"

// NewRedis creates a Redis client for the route cache.
func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
