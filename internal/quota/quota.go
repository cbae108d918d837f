// Package quota tracks per-provider daily call budgets. Counters are
// keyed by (provider, local calendar day) so rollover at midnight is
// implicit in the key. A provider with limit 0 is unlimited and bypasses
// the counter entirely.
package quota

import (
	"context"
	"time"
)

// Counter is the daily quota interface. Implementations must be safe
// for concurrent use.
//
// Admission is a reservation, not a read: Acquire increments the
// counter and checks the limit in one atomic step, so concurrent
// callers racing at the boundary cannot all slip under it. A caller
// whose attempt does not end in a successful invocation returns its
// slot with Release.
type Counter interface {
	// Acquire reserves one call against today's counter. It returns
	// false, leaving the counter unchanged, when the provider is at its
	// daily limit. limit 0 means unlimited; the call is still counted
	// so Used stays meaningful.
	Acquire(ctx context.Context, providerID string, limit int) bool

	// Release returns a previously acquired slot, for attempts that did
	// not consume quota (failed or aborted invocations).
	Release(ctx context.Context, providerID string)

	// Used returns the number of slots held for today.
	Used(ctx context.Context, providerID string) int

	// Close stops any background work.
	Close() error
}

// dayKey formats the local calendar day component of a counter key.
// Local time, not UTC: the quota contract is "resets at local midnight".
func dayKey(now time.Time) string {
	return now.Local().Format("2006-01-02")
}
