package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process TTL cache backed by a map.
//
// It is safe for concurrent use; a single RWMutex guards the key→entry map.
// Reads opportunistically evict the expired entry they hit, so a map entry
// never outlives its TTL by more than one lookup (plus whatever the
// periodic sweep in serve mode removes).
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	closed  bool

	// now is swappable for tests that simulate the passage of time.
	now func() time.Time
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

// Get retrieves a live value. Expired entries are treated as absent and
// removed on the way out.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	now := c.now()
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if entry.expired(now) {
		c.mu.Lock()
		// Re-check under the write lock; a fresh Set may have raced us.
		if cur, ok := c.entries[key]; ok && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.data, true, nil
}

// Set stores data under key, overwriting any previous entry. A ttl <= 0
// stores an already-expired entry, so every subsequent Get misses.
// Storing never fails; running out of memory is a process-fatal condition,
// not a cache error.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.entries[key] = memEntry{
		data:      data,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Delete removes the entry for key if present.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Sweep removes every expired entry. Serve mode runs this periodically so
// long-lived processes do not accumulate dead entries between lookups.
// Returns the number of entries removed.
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, live or expired.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close releases the entry map. Subsequent Sets fail with ErrClosed.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memEntry)
	c.closed = true
	c.mu.Unlock()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
