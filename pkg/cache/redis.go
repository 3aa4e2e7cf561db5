package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in a shared Redis instance, letting several
// mcpreg serve replicas share one response cache. Expiry is delegated to
// Redis TTLs; a ttl <= 0 is stored with a minimal expiry so the entry is
// gone before anyone can read it, matching the memory backend semantics.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to the Redis instance at addr.
// Keys are namespaced with "mcpreg:" to tolerate a shared database.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: "mcpreg:",
	}
}

// Get retrieves a live value. A missing or expired key is a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores data under key with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Millisecond
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Delete removes the entry for key if present.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
