// Package cache provides TTL response caching for registry requests.
//
// The cache is a pure optimization layer: a miss is never an error, and a
// backend that cannot store an entry degrades to a no-op rather than
// failing the logical call. Entries are opaque byte payloads (JSON-encoded
// registry responses) keyed by deterministic request keys, see [SearchKey],
// [ServerKey] and [ServerNameKey].
//
// Four backends implement [Cache]:
//
//   - [MemoryCache]: per-process map with TTL, the default for serve mode
//   - [FileCache]: JSON files under the cache directory, survives CLI runs
//   - [RedisCache]: shared cache for multi-instance deployments
//   - [NullCache]: no-op, used when caching is disabled
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("cache closed")

// Cache is a TTL key/value store for serialized registry responses.
//
// Get returns (data, true, nil) for a live entry and (nil, false, nil) for
// a miss; expired entries are misses. Set overwrites any existing entry
// under the same key (last writer wins). A ttl <= 0 stores an entry that is
// already expired, which callers use to disable caching for a single call.
//
// Implementations must make individual Get/Set calls atomic with respect to
// each other: a concurrent reader observes either the old or the new value
// for a key, never a partial write.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
