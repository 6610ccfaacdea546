package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultLRUSize is the entry limit used when NewLRUCache gets zero.
const DefaultLRUSize = 1024

// LRUCache keeps the most recently used entries in memory. Expired entries
// are dropped lazily on Get.
type LRUCache struct {
	mu    sync.Mutex
	items *lru.Cache[string, memEntry]
	now   func() time.Time
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewLRUCache creates an in-memory cache holding at most size entries.
func NewLRUCache(size int) (Cache, error) {
	if size <= 0 {
		size = DefaultLRUSize
	}
	items, err := lru.New[string, memEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{items: items, now: time.Now}, nil
}

// Get retrieves a value from the cache.
func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.items.Remove(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores a copy of data.
func (c *LRUCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := memEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items.Add(key, e)
	c.mu.Unlock()
	return nil
}

// Delete removes a value from the cache.
func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	c.items.Remove(key)
	c.mu.Unlock()
	return nil
}

// Len reports the number of entries, expired ones included.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}

// Close empties the cache.
func (c *LRUCache) Close() error {
	c.mu.Lock()
	c.items.Purge()
	c.mu.Unlock()
	return nil
}

var _ Cache = (*LRUCache)(nil)
