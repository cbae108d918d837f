// Package observability exposes Prometheus metrics for the routing
// engine. Metrics implement the router's Observer interface so the core
// stays free of any metrics dependency.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"omnihub/internal/breaker"
)

// Metrics collects routing, cache, and breaker counters.
type Metrics struct {
	callsTotal         *prometheus.CounterVec
	callDuration       *prometheus.HistogramVec
	attemptsTotal      *prometheus.CounterVec
	cacheEventsTotal   *prometheus.CounterVec
	breakerTransitions *prometheus.CounterVec
}

// New creates and registers the metric set with the given registry.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omnihub_calls_total",
				Help: "Completed facade calls by category and terminal outcome",
			},
			[]string{"category", "outcome"},
		),
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "omnihub_call_duration_seconds",
				Help:    "End-to-end facade call duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"category"},
		),
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omnihub_provider_attempts_total",
				Help: "Provider attempts by outcome, including skips",
			},
			[]string{"provider", "outcome"},
		),
		cacheEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omnihub_cache_events_total",
				Help: "Cache interactions: hit, miss, bypass, write, error",
			},
			[]string{"event"},
		),
		breakerTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "omnihub_breaker_transitions_total",
				Help: "Circuit breaker state transitions by target state",
			},
			[]string{"provider", "to"},
		),
	}

	registry.MustRegister(
		m.callsTotal,
		m.callDuration,
		m.attemptsTotal,
		m.cacheEventsTotal,
		m.breakerTransitions,
	)
	return m
}

// CallCompleted records one finished facade call.
func (m *Metrics) CallCompleted(category, outcome string, elapsed time.Duration) {
	m.callsTotal.WithLabelValues(category, outcome).Inc()
	m.callDuration.WithLabelValues(category).Observe(elapsed.Seconds())
}

// ProviderAttempt records one provider attempt or skip.
func (m *Metrics) ProviderAttempt(providerID, outcome string) {
	m.attemptsTotal.WithLabelValues(providerID, outcome).Inc()
}

// CacheEvent records one cache interaction.
func (m *Metrics) CacheEvent(event string) {
	m.cacheEventsTotal.WithLabelValues(event).Inc()
}

// BreakerHook returns a transition hook bound to one provider, suitable
// for breaker.SetTransitionHook.
func (m *Metrics) BreakerHook(providerID string) breaker.OnTransition {
	return func(_, to breaker.State) {
		m.breakerTransitions.WithLabelValues(providerID, to.String()).Inc()
	}
}
