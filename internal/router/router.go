// Package router implements the provider-routing engine: for one
// category it walks an ordered fallback chain of providers, gated by
// cache lookups, per-provider daily quotas, and circuit breakers, with
// single-flight deduplication of concurrent identical requests.
package router

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"omnihub/internal/breaker"
	"omnihub/internal/cache"
	"omnihub/internal/core"
	"omnihub/internal/quota"
	"omnihub/internal/singleflight"
)

// Entry pairs a provider with its circuit breaker.
type Entry struct {
	Provider core.Provider
	Breaker  *breaker.Breaker
}

// Config holds router construction options.
type Config struct {
	// Category is the logical capability this router answers.
	Category string

	// TTL is the cache lifetime for successful responses.
	TTL time.Duration

	// Entries is the provider chain. It is sorted by ascending priority
	// at construction; among equal priorities, declaration order wins.
	Entries []Entry

	// Cache memoizes upstream responses. Required.
	Cache cache.Store

	// Quota tracks per-provider daily budgets. Required.
	Quota quota.Counter

	// Observer receives routing events. Nil means no observation.
	Observer Observer
}

// Router answers calls for one category. Stateless across calls except
// through the shared breaker, quota, and cache.
type Router struct {
	category string
	ttl      time.Duration
	entries  []Entry
	cache    cache.Store
	quota    quota.Counter
	flights  *singleflight.Group[*core.Envelope]
	observer Observer
	now      func() time.Time
}

// New creates a router for one category.
func New(cfg Config) *Router {
	entries := make([]Entry, len(cfg.Entries))
	copy(entries, cfg.Entries)
	// Stable: equal priorities keep their declaration order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Provider.Descriptor().Priority < entries[j].Provider.Descriptor().Priority
	})

	observer := cfg.Observer
	if observer == nil {
		observer = NopObserver{}
	}

	return &Router{
		category: cfg.Category,
		ttl:      cfg.TTL,
		entries:  entries,
		cache:    cfg.Cache,
		quota:    cfg.Quota,
		flights:  singleflight.NewGroup[*core.Envelope](),
		observer: observer,
		now:      time.Now,
	}
}

// Category returns the category this router answers.
func (r *Router) Category() string { return r.category }

// Entries exposes the ordered provider chain for introspection.
func (r *Router) Entries() []Entry { return r.entries }

// TTL returns the category's cache lifetime.
func (r *Router) TTL() time.Duration { return r.ttl }

// Call produces an envelope for one request. Concurrent calls sharing a
// fingerprint are coalesced into a single upstream execution.
func (r *Router) Call(ctx context.Context, req core.Request) *core.Envelope {
	started := r.now()

	// An already-elapsed caller deadline short-circuits before any
	// provider or cache work.
	if err := ctx.Err(); err != nil {
		env := failureEnvelope(core.KindDeadlineExceeded, "caller deadline elapsed before routing", nil)
		r.observer.CallCompleted(r.category, string(core.KindDeadlineExceeded), r.now().Sub(started))
		return env
	}

	fingerprint := Fingerprint(r.category, req.Operation, req.Arguments, req.Lang)

	if req.Cache != core.CacheBypass {
		if env := r.cacheLookup(ctx, fingerprint, started); env != nil {
			r.observer.CallCompleted(r.category, core.OutcomeCacheHit, r.now().Sub(started))
			return env
		}
	} else {
		r.observer.CacheEvent("bypass")
	}

	env, _, err := r.flights.Do(ctx, fingerprint, func() (*core.Envelope, error) {
		return r.executeChain(ctx, req, fingerprint), nil
	})
	if err != nil {
		// Waiter abandoned the shared flight because its own deadline
		// elapsed; the owner's execution is unaffected.
		env = failureEnvelope(core.KindDeadlineExceeded, "caller deadline elapsed awaiting in-flight result", nil)
	}

	outcome := core.OutcomeOK
	if !env.Success {
		outcome = string(env.Error.Kind)
	}
	r.observer.CallCompleted(r.category, outcome, r.now().Sub(started))
	return env
}

// cacheLookup returns a completed envelope on hit, nil on miss. Cache
// errors degrade to a miss; cache-unavailable is never terminal.
func (r *Router) cacheLookup(ctx context.Context, fingerprint string, started time.Time) *core.Envelope {
	data, found, err := r.cache.Get(ctx, fingerprint)
	if err != nil {
		r.observer.CacheEvent("error")
		slog.Warn("cache lookup failed, degrading to no-cache",
			"category", r.category, "kind", core.KindCacheUnavailable, "error", err,
			"request_id", core.GetRequestID(ctx))
		return nil
	}
	if !found {
		r.observer.CacheEvent("miss")
		return nil
	}

	r.observer.CacheEvent("hit")
	return &core.Envelope{
		Success:      true,
		ProviderUsed: core.CacheProviderID,
		Data:         data,
		Attempts: []core.Attempt{{
			Provider: core.CacheProviderID,
			Outcome:  core.OutcomeCacheHit,
			Ms:       r.now().Sub(started).Milliseconds(),
		}},
	}
}

// executeChain walks providers in priority order until one succeeds.
// Attempts are strictly sequential so the breaker sees an accurate
// failure sequence and attempts are recorded in order.
func (r *Router) executeChain(ctx context.Context, req core.Request, fingerprint string) *core.Envelope {
	if len(r.entries) == 0 {
		env := failureEnvelope(core.KindNoProviderConfigured, "category "+r.category+" has no providers configured", nil)
		return env
	}

	attempts := make([]core.Attempt, 0, len(r.entries))

	for _, entry := range r.entries {
		desc := entry.Provider.Descriptor()

		if skip := r.skipReason(ctx, entry); skip != "" {
			attempts = append(attempts, core.Attempt{Provider: desc.ID, Outcome: skip})
			r.observer.ProviderAttempt(desc.ID, skip)
			continue
		}

		attemptStart := r.now()
		attemptCtx, cancel := context.WithTimeout(ctx, desc.Timeout)
		data, err := entry.Provider.Invoke(attemptCtx, req.Operation, req.Arguments)
		cancel()
		elapsed := r.now().Sub(attemptStart).Milliseconds()

		if err == nil {
			// The quota slot acquired at the gate is kept: it now counts
			// a successful invocation.
			entry.Breaker.RecordSuccess()
			attempts = append(attempts, core.Attempt{Provider: desc.ID, Outcome: core.OutcomeOK, Ms: elapsed})
			r.observer.ProviderAttempt(desc.ID, core.OutcomeOK)

			if req.Cache != core.CacheBypass {
				r.cacheWrite(ctx, fingerprint, data)
			}

			return &core.Envelope{
				Success:      true,
				ProviderUsed: desc.ID,
				Data:         data,
				Attempts:     attempts,
			}
		}

		// The attempt did not consume quota; return the slot.
		r.quota.Release(ctx, desc.ID)

		kind := core.KindOf(err)
		attempts = append(attempts, core.Attempt{Provider: desc.ID, Outcome: "failed-" + string(kind), Ms: elapsed})
		r.observer.ProviderAttempt(desc.ID, "failed-"+string(kind))

		// Invalid caller arguments are terminal: no other provider in
		// the chain will accept them, and they say nothing about this
		// provider's health, so the breaker is not fed.
		if kind == core.KindBadRequest {
			entry.Breaker.ReleaseProbe()
			env := failureEnvelope(core.KindBadRequest, errorMessage(err), attempts)
			return env
		}

		// A caller deadline that elapsed mid-attempt ends the chain;
		// trying further providers would exceed the caller's budget. The
		// abort is the caller's, not the provider's, so the breaker is
		// not fed a failure.
		if ctx.Err() != nil {
			entry.Breaker.ReleaseProbe()
			return failureEnvelope(core.KindDeadlineExceeded, "caller deadline elapsed during provider attempt", attempts)
		}

		entry.Breaker.RecordFailure()

		slog.Debug("provider attempt failed, falling through",
			"category", r.category, "provider", desc.ID, "kind", kind, "error", err,
			"request_id", core.GetRequestID(ctx))
	}

	env := failureEnvelope(core.KindNoProviderAvailable,
		"all providers for category "+r.category+" were skipped or failed", attempts)
	return env
}

// skipReason gates a provider on credentials, quota, and breaker, in
// that order. Returns "" when the provider may be invoked, in which
// case one quota slot is held and, if the breaker was Half-Open, its
// probe token is held too; the invocation outcome must settle both.
// The breaker gate runs last because Allow has a side effect (it
// consumes the Half-Open probe token), so it must not fire for a
// provider a cheaper gate would skip anyway; a refused quota releases
// nothing, a refused breaker releases the quota slot it was admitted
// under.
func (r *Router) skipReason(ctx context.Context, entry Entry) string {
	desc := entry.Provider.Descriptor()
	if !entry.Provider.Configured() {
		return core.OutcomeSkippedCredentials
	}
	if !r.quota.Acquire(ctx, desc.ID, desc.DailyQuota) {
		return core.OutcomeSkippedQuota
	}
	if !entry.Breaker.Allow() {
		r.quota.Release(ctx, desc.ID)
		return core.OutcomeSkippedBreaker
	}
	return ""
}

func (r *Router) cacheWrite(ctx context.Context, fingerprint string, data []byte) {
	if err := r.cache.Set(ctx, fingerprint, data, r.ttl); err != nil {
		r.observer.CacheEvent("error")
		slog.Warn("cache write failed",
			"category", r.category, "kind", core.KindCacheUnavailable, "error", err,
			"request_id", core.GetRequestID(ctx))
		return
	}
	r.observer.CacheEvent("write")
}

func failureEnvelope(kind core.ErrorKind, message string, attempts []core.Attempt) *core.Envelope {
	if attempts == nil {
		attempts = []core.Attempt{}
	}
	return &core.Envelope{
		Success:  false,
		Error:    &core.EnvelopeError{Kind: kind, Message: message},
		Attempts: attempts,
	}
}

func errorMessage(err error) string {
	var fe *core.FacadeError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}
