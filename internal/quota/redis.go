package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// counterExpiry keeps a day's counter alive well past its calendar day,
// guaranteeing rollover within two days of the last write.
const counterExpiry = 48 * time.Hour

// RedisCounter implements Counter on a shared Redis, giving quota
// accounting that survives restarts and is consistent across instances.
// This is the only durable state the routing engine writes.
type RedisCounter struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisCounter wraps an existing Redis connection. The connection is
// typically shared with the cache store; Close does not close it.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, now: time.Now}
}

func (c *RedisCounter) key(providerID string) string {
	return fmt.Sprintf("omnihub:quota:%s:%s", providerID, dayKey(c.now()))
}

// Acquire reserves one call by incrementing first and comparing the
// result, so concurrent callers racing at the limit serialize on the
// Redis INCR instead of all reading the same stale count. An over-limit
// increment is rolled back before refusing.
func (c *RedisCounter) Acquire(ctx context.Context, providerID string, limit int) bool {
	key := c.key(providerID)
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterExpiry)
	if _, err := pipe.Exec(ctx); err != nil {
		// Counter unreachable: admit the call rather than starving a
		// healthy provider on a cache hiccup.
		slog.Warn("quota counter increment failed, admitting call", "provider", providerID, "error", err)
		return true
	}
	if limit > 0 && incr.Val() > int64(limit) {
		if err := c.client.Decr(ctx, key).Err(); err != nil {
			slog.Warn("quota counter rollback failed", "provider", providerID, "error", err)
		}
		return false
	}
	return true
}

// Release returns a previously acquired slot.
func (c *RedisCounter) Release(ctx context.Context, providerID string) {
	if err := c.client.Decr(ctx, c.key(providerID)).Err(); err != nil {
		slog.Warn("quota counter release failed", "provider", providerID, "error", err)
	}
}

// Used returns today's held slot count.
func (c *RedisCounter) Used(ctx context.Context, providerID string) int {
	used, err := c.client.Get(ctx, c.key(providerID)).Int()
	if err != nil {
		return 0
	}
	return used
}

// Close is a no-op; the Redis connection belongs to the cache store.
func (c *RedisCounter) Close() error { return nil }
