package router

import "time"

// Observer receives routing events. Metrics collection implements this
// interface so analytics stays an observer of the core rather than a
// dependency of it.
type Observer interface {
	// CallCompleted fires once per call with the terminal outcome
	// ("ok", "cache-hit", or the error kind).
	CallCompleted(category, outcome string, elapsed time.Duration)

	// ProviderAttempt fires once per provider attempt with its outcome.
	ProviderAttempt(providerID, outcome string)

	// CacheEvent fires for cache interactions: "hit", "miss", "bypass",
	// "write", "error".
	CacheEvent(event string)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) CallCompleted(string, string, time.Duration) {}
func (NopObserver) ProviderAttempt(string, string)              {}
func (NopObserver) CacheEvent(string)                           {}
