// Package cache provides the key/value store used to memoize upstream
// responses. Two backends exist: Redis for shared deployments and an
// in-process LRU map as fallback. The backend is selected once at
// startup and never re-evaluated while the process lives, to avoid
// split-brain behavior between instances.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Store is the cache interface. Implementations must be safe for
// concurrent use. A policy of "no cache" is expressed by skipping Set,
// never by a zero TTL.
type Store interface {
	// Get returns the value for key, or found=false on a miss.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key for the given TTL. TTL is mandatory.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Healthy reports whether the backend is reachable.
	Healthy(ctx context.Context) bool

	// Name identifies the backend for logs and introspection.
	Name() string

	// Close releases backend resources.
	Close() error
}

// Config holds cache selection options.
type Config struct {
	// RedisURL enables the Redis backend when non-empty.
	RedisURL string

	// ConnectTimeout bounds the startup reachability probe. Default 2s.
	ConnectTimeout time.Duration

	// MemoryMaxEntries bounds the fallback in-process store.
	MemoryMaxEntries int
}

// Select picks the cache backend once at process start: Redis when
// configured and reachable, otherwise the in-process store. The choice
// is logged and callers must not re-run selection at runtime.
func Select(ctx context.Context, cfg Config) Store {
	if cfg.RedisURL != "" {
		store, err := NewRedisStore(ctx, cfg.RedisURL, cfg.ConnectTimeout)
		if err == nil {
			slog.Info("cache backend selected", "backend", store.Name())
			return store
		}
		slog.Warn("shared cache unreachable, falling back to in-process store", "error", err)
	}

	store := NewMemoryStore(cfg.MemoryMaxEntries)
	slog.Info("cache backend selected", "backend", store.Name())
	return store
}
