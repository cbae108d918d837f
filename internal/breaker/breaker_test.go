package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(cfg Config) (*Breaker, *time.Time) {
	b := New(cfg)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b, _ := newTestBreaker(Config{Threshold: 3, RecoveryTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		require.True(t, b.Allow())
		b.RecordFailure()
	}
	assert.Equal(t, Closed, b.Snapshot().State)

	require.True(t, b.Allow())
	b.RecordFailure()

	snap := b.Snapshot()
	assert.Equal(t, Open, snap.State)
	assert.False(t, snap.OpenedAt.IsZero())
	assert.False(t, b.Allow())
}

func TestBreakerSuccessResetsConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(Config{Threshold: 3, RecoveryTimeout: time.Minute})

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	// Failures were not consecutive, so the breaker stays closed.
	assert.Equal(t, Closed, b.Snapshot().State)
	assert.Equal(t, 2, b.Snapshot().Failures)
}

func TestBreakerHalfOpenAfterRecoveryTimeout(t *testing.T) {
	b, now := newTestBreaker(Config{Threshold: 1, RecoveryTimeout: time.Minute})

	b.RecordFailure()
	require.Equal(t, Open, b.Snapshot().State)

	*now = now.Add(59 * time.Second)
	assert.False(t, b.Allow(), "still within recovery timeout")

	*now = now.Add(1 * time.Second)
	assert.True(t, b.Allow(), "probe admitted at exactly the recovery timeout")
	assert.Equal(t, HalfOpen, b.Snapshot().State)

	// Only one probe is admitted while it is in flight.
	assert.False(t, b.Allow())
}

func TestBreakerProbeSuccessCloses(t *testing.T) {
	b, now := newTestBreaker(Config{Threshold: 1, RecoveryTimeout: time.Minute})

	b.RecordFailure()
	*now = now.Add(time.Minute)
	require.True(t, b.Allow())

	b.RecordSuccess()

	snap := b.Snapshot()
	assert.Equal(t, Closed, snap.State)
	assert.Equal(t, 0, snap.Failures)
	assert.True(t, b.Allow())
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	b, now := newTestBreaker(Config{Threshold: 1, RecoveryTimeout: time.Minute})

	b.RecordFailure()
	openedAt := b.Snapshot().OpenedAt

	*now = now.Add(time.Minute)
	require.True(t, b.Allow())
	b.RecordFailure()

	snap := b.Snapshot()
	assert.Equal(t, Open, snap.State)
	assert.True(t, snap.OpenedAt.After(openedAt), "opened-at is re-armed on probe failure")

	// The fresh open window refuses calls again.
	assert.False(t, b.Allow())
	*now = now.Add(time.Minute)
	assert.True(t, b.Allow())
}

func TestBreakerReleaseProbeKeepsHalfOpen(t *testing.T) {
	b, now := newTestBreaker(Config{Threshold: 1, RecoveryTimeout: time.Minute})

	b.RecordFailure()
	*now = now.Add(time.Minute)
	require.True(t, b.Allow())
	require.False(t, b.Allow(), "probe token is held")

	b.ReleaseProbe()

	// The token is back, so the next caller may probe again.
	assert.Equal(t, HalfOpen, b.Snapshot().State)
	assert.True(t, b.Allow())

	b.RecordSuccess()
	assert.Equal(t, Closed, b.Snapshot().State)
}

func TestBreakerReleaseProbeNoopWhenClosed(t *testing.T) {
	b, _ := newTestBreaker(Config{Threshold: 3, RecoveryTimeout: time.Minute})

	b.RecordFailure()
	b.ReleaseProbe()

	snap := b.Snapshot()
	assert.Equal(t, Closed, snap.State)
	assert.Equal(t, 1, snap.Failures)
}

func TestBreakerTransitionHook(t *testing.T) {
	b, now := newTestBreaker(Config{Threshold: 1, RecoveryTimeout: time.Minute})

	type transition struct{ from, to State }
	var seen []transition
	b.SetTransitionHook(func(from, to State) {
		seen = append(seen, transition{from, to})
	})

	b.RecordFailure()
	*now = now.Add(time.Minute)
	b.Allow()
	b.RecordSuccess()

	require.Len(t, seen, 3)
	assert.Equal(t, transition{Closed, Open}, seen[0])
	assert.Equal(t, transition{Open, HalfOpen}, seen[1])
	assert.Equal(t, transition{HalfOpen, Closed}, seen[2])
}

func TestBreakerDefaults(t *testing.T) {
	b := New(Config{})
	assert.Equal(t, DefaultThreshold, b.cfg.Threshold)
	assert.Equal(t, DefaultRecoveryTimeout, b.cfg.RecoveryTimeout)
}
