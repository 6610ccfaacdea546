// Package cache stores computed layouts, relationships and rendered
// artifacts keyed by the content they were computed from.
//
// # Backends
//
//   - [NullCache]: stores nothing; caching disabled
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [LRUCache]: bounded in-memory cache, used by the server
//   - [RedisCache]: shared cache for several server instances
//
// [Open] picks a backend by name from configuration.
//
// # Keys
//
// A [Keyer] derives keys from the SHA-256 of a dataset snapshot plus the
// options of the computation, so an edited record or a changed geometry
// never hits a stale entry. [ScopedKeyer] prefixes every key, separating
// datasets that share one Redis.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// A miss is reported as ok == false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendLRU   = "lru"
	BackendRedis = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Dir     string // file backend
	Size    int    // lru backend
	URL     string // redis backend, e.g. redis://localhost:6379/0
}

// Open returns the backend named by cfg.Backend. An empty name disables
// caching.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		return NewFileCache(cfg.Dir)
	case BackendLRU:
		return NewLRUCache(cfg.Size)
	case BackendRedis:
		return NewRedisCache(ctx, cfg.URL)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// NullCache stores nothing. Every Get is a miss.
type NullCache struct{}

var _ Cache = (*NullCache)(nil)

func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }
