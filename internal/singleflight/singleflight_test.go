package singleflight

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupCoalescesConcurrentCalls(t *testing.T) {
	g := NewGroup[string]()
	ctx := context.Background()

	var executions atomic.Int64
	release := make(chan struct{})

	const callers = 50
	var wg sync.WaitGroup
	results := make([]string, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := g.Do(ctx, "key", func() (string, error) {
				executions.Add(1)
				<-release
				return "value", nil
			})
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give the goroutines time to pile onto the in-flight call.
	require.Eventually(t, func() bool { return g.InFlight("key") }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), executions.Load(), "exactly one execution for the shared key")
	for _, v := range results {
		assert.Equal(t, "value", v)
	}
}

func TestGroupDistinctKeysRunIndependently(t *testing.T) {
	g := NewGroup[int]()
	ctx := context.Background()

	var executions atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, _ = g.Do(ctx, string(rune('a'+i)), func() (int, error) {
				executions.Add(1)
				return i, nil
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(4), executions.Load())
}

func TestGroupWaiterHonorsContext(t *testing.T) {
	g := NewGroup[string]()

	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _, _ = g.Do(context.Background(), "key", func() (string, error) {
			close(started)
			<-release
			return "late", nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, shared, err := g.Do(ctx, "key", func() (string, error) {
		t.Fatal("waiter must not execute fn")
		return "", nil
	})
	assert.True(t, shared)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestGroupKeyReusableAfterCompletion(t *testing.T) {
	g := NewGroup[int]()
	ctx := context.Background()

	v, shared, err := g.Do(ctx, "key", func() (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.False(t, shared)
	assert.Equal(t, 1, v)

	v, shared, err = g.Do(ctx, "key", func() (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.False(t, shared)
	assert.Equal(t, 2, v, "a completed key starts a fresh execution")
}
