// Package breaker implements the per-provider circuit breaker that
// short-circuits calls to a repeatedly failing upstream.
package breaker

import (
	"sync"
	"time"
)

// State is the breaker state machine position.
type State int

const (
	// Closed passes calls through.
	Closed State = iota
	// Open short-circuits calls until the recovery timeout elapses.
	Open
	// HalfOpen admits a single probe call.
	HalfOpen
)

// String returns the state name used in logs and introspection.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Defaults applied when a field of Config is zero.
const (
	DefaultThreshold       = 5
	DefaultRecoveryTimeout = 60 * time.Second
)

// Config holds breaker tuning. Both fields are per-provider overridable.
type Config struct {
	// Threshold is the consecutive-failure count that opens the breaker.
	Threshold int
	// RecoveryTimeout is how long the breaker stays open before
	// admitting a probe.
	RecoveryTimeout time.Duration
}

// OnTransition is an optional hook invoked after a state change, outside
// the breaker's critical section. Used by metrics.
type OnTransition func(from, to State)

// Breaker is one provider's three-state circuit breaker.
//
// Closed: failures increment a consecutive counter; reaching the
// threshold opens the breaker. Open: calls are refused until the
// recovery timeout elapses, then one probe is admitted (Half-Open).
// Half-Open: probe success closes the breaker, probe failure reopens it
// and re-arms the timeout. A success in Closed resets the counter.
type Breaker struct {
	mu            sync.Mutex
	cfg           Config
	state         State
	failures      int
	openedAt      time.Time
	probeInFlight bool

	now          func() time.Time
	onTransition OnTransition
}

// New creates a breaker, filling zero config fields with defaults.
func New(cfg Config) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = DefaultRecoveryTimeout
	}
	return &Breaker{cfg: cfg, state: Closed, now: time.Now}
}

// SetTransitionHook installs the transition observer. Call before use.
func (b *Breaker) SetTransitionHook(hook OnTransition) {
	b.onTransition = hook
}

// Allow reports whether a call may proceed. In Open state it admits
// exactly one probe once the recovery timeout has elapsed; concurrent
// callers during the probe are refused.
func (b *Breaker) Allow() bool {
	b.mu.Lock()

	switch b.state {
	case Closed:
		b.mu.Unlock()
		return true
	case Open:
		if b.now().Sub(b.openedAt) >= b.cfg.RecoveryTimeout {
			hook := b.transitionLocked(HalfOpen)
			b.probeInFlight = true
			b.mu.Unlock()
			hook()
			return true
		}
		b.mu.Unlock()
		return false
	case HalfOpen:
		if b.probeInFlight {
			b.mu.Unlock()
			return false
		}
		b.probeInFlight = true
		b.mu.Unlock()
		return true
	}
	b.mu.Unlock()
	return false
}

// ReleaseProbe returns an admitted probe without an outcome, leaving
// the breaker Half-Open so the next caller may probe again. Used when
// an admitted call ends in a way that says nothing about provider
// health (caller error, caller deadline) and so must feed neither
// RecordSuccess nor RecordFailure.
func (b *Breaker) ReleaseProbe() {
	b.mu.Lock()
	if b.state == HalfOpen {
		b.probeInFlight = false
	}
	b.mu.Unlock()
}

// RecordSuccess feeds a successful call outcome into the state machine.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()

	switch b.state {
	case Closed:
		b.failures = 0
		b.mu.Unlock()
	case HalfOpen:
		b.failures = 0
		b.probeInFlight = false
		hook := b.transitionLocked(Closed)
		b.mu.Unlock()
		hook()
	default:
		b.mu.Unlock()
	}
}

// RecordFailure feeds a failed call outcome into the state machine.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()

	switch b.state {
	case Closed:
		b.failures++
		if b.failures >= b.cfg.Threshold {
			b.openedAt = b.now()
			hook := b.transitionLocked(Open)
			b.mu.Unlock()
			hook()
			return
		}
		b.mu.Unlock()
	case HalfOpen:
		b.probeInFlight = false
		b.openedAt = b.now()
		hook := b.transitionLocked(Open)
		b.mu.Unlock()
		hook()
	default:
		b.mu.Unlock()
	}
}

// Snapshot describes the breaker for introspection.
type Snapshot struct {
	State    State
	Failures int
	OpenedAt time.Time
}

// Snapshot returns the current state without affecting it.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{State: b.state, Failures: b.failures, OpenedAt: b.openedAt}
}

// transitionLocked changes state and returns the hook invocation to run
// after the lock is released. Callers must hold b.mu.
func (b *Breaker) transitionLocked(to State) func() {
	from := b.state
	b.state = to
	if b.onTransition == nil || from == to {
		return func() {}
	}
	hook := b.onTransition
	return func() { hook(from, to) }
}
