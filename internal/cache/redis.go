package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultConnectTimeout bounds the startup reachability probe.
const DefaultConnectTimeout = 2 * time.Second

// keyPrefix namespaces façade entries within a shared Redis.
const keyPrefix = "omnihub:cache:"

// RedisStore implements Store on Redis. Suitable for multi-instance
// deployments behind a load balancer.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies reachability with a short
// ping. The returned error means the caller should fall back to the
// in-process store.
func NewRedisStore(ctx context.Context, url string, connectTimeout time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	opts.DialTimeout = connectTimeout

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get retrieves a value from Redis. A missing key is a miss, not an error.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return data, true, nil
}

// Set stores a value with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl is mandatory for cache writes")
	}
	if err := s.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// Delete removes a key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Healthy pings the backend.
func (s *RedisStore) Healthy(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}

// Name identifies the backend.
func (s *RedisStore) Name() string { return "redis" }

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Client exposes the underlying connection so the quota counter can
// share it instead of opening a second pool.
func (s *RedisStore) Client() *redis.Client { return s.client }
