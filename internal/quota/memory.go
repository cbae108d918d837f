package quota

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// MemoryCounter implements Counter in process memory. Used when the
// shared backend is unavailable; counts are lost at restart, which is a
// documented weakening of the shared counter's guarantee. Stale day keys
// are pruned by a midnight cron job so long-lived processes do not
// accumulate one entry per provider per day.
type MemoryCounter struct {
	mu    sync.Mutex
	used  map[string]int // "<provider>:<YYYY-MM-DD>" -> count
	now   func() time.Time
	sched *cron.Cron
}

// NewMemoryCounter creates an in-process counter with its midnight
// prune job started.
func NewMemoryCounter() *MemoryCounter {
	c := &MemoryCounter{
		used: make(map[string]int),
		now:  time.Now,
	}
	c.sched = cron.New()
	// Prune just after local midnight, once the old day keys are dead.
	_, _ = c.sched.AddFunc("0 0 * * *", c.prune)
	c.sched.Start()
	return c
}

// newMemoryCounterForTest builds a counter without the cron scheduler,
// with an injectable clock.
func newMemoryCounterForTest(now func() time.Time) *MemoryCounter {
	return &MemoryCounter{
		used: make(map[string]int),
		now:  now,
	}
}

func (c *MemoryCounter) key(providerID string) string {
	return providerID + ":" + dayKey(c.now())
}

// Acquire reserves one call, atomically under the counter mutex.
func (c *MemoryCounter) Acquire(_ context.Context, providerID string, limit int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.key(providerID)
	if limit > 0 && c.used[key] >= limit {
		return false
	}
	c.used[key]++
	return true
}

// Release returns a previously acquired slot.
func (c *MemoryCounter) Release(_ context.Context, providerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.key(providerID)
	if c.used[key] > 0 {
		c.used[key]--
	}
}

// Used returns today's held slot count.
func (c *MemoryCounter) Used(_ context.Context, providerID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used[c.key(providerID)]
}

// prune drops counters for days other than today.
func (c *MemoryCounter) prune() {
	today := dayKey(c.now())
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.used {
		if !strings.HasSuffix(key, today) {
			delete(c.used, key)
		}
	}
}

// Close stops the prune job.
func (c *MemoryCounter) Close() error {
	if c.sched != nil {
		c.sched.Stop()
	}
	return nil
}
