// Package facade is the single entry point callers use: it dispatches
// requests to the per-category routers and answers introspection
// queries about configured categories and provider health.
package facade

import (
	"context"
	"sort"

	"omnihub/internal/core"
	"omnihub/internal/quota"
	"omnihub/internal/router"
)

// ProviderStatus describes one provider's standing within a category.
type ProviderStatus struct {
	ID           string `json:"id"`
	Priority     int    `json:"priority"`
	Configured   bool   `json:"configured"`
	DailyQuota   int    `json:"daily_quota"`
	QuotaUsed    int    `json:"quota_used"`
	BreakerState string `json:"breaker_state"`
}

// CategoryInfo is the introspection view of one category.
type CategoryInfo struct {
	Category   string           `json:"category"`
	TTLSeconds int              `json:"ttl_seconds"`
	Providers  []ProviderStatus `json:"providers"`
}

// Facade dispatches calls to category routers.
type Facade struct {
	routers map[string]*router.Router
	quota   quota.Counter
}

// New creates a facade over the given routers. The quota counter is the
// same one the routers consume, so Describe reports live usage.
func New(routers map[string]*router.Router, counter quota.Counter) *Facade {
	return &Facade{routers: routers, quota: counter}
}

// Call routes a request to its category router. An unknown category is
// a caller error, not a provider outage.
func (f *Facade) Call(ctx context.Context, req core.Request) *core.Envelope {
	r, ok := f.routers[req.Category]
	if !ok {
		return &core.Envelope{
			Success: false,
			Error: &core.EnvelopeError{
				Kind:    core.KindBadRequest,
				Message: "unknown category: " + req.Category,
			},
			Attempts: []core.Attempt{},
		}
	}
	return r.Call(ctx, req)
}

// ListCategories returns the configured category names, sorted.
func (f *Facade) ListCategories() []string {
	names := make([]string, 0, len(f.routers))
	for name := range f.routers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe reports the provider chain of one category with quota usage
// and breaker state. The boolean is false for unknown categories.
func (f *Facade) Describe(ctx context.Context, category string) (CategoryInfo, bool) {
	r, ok := f.routers[category]
	if !ok {
		return CategoryInfo{}, false
	}

	entries := r.Entries()
	providers := make([]ProviderStatus, 0, len(entries))
	for _, entry := range entries {
		desc := entry.Provider.Descriptor()
		providers = append(providers, ProviderStatus{
			ID:           desc.ID,
			Priority:     desc.Priority,
			Configured:   entry.Provider.Configured(),
			DailyQuota:   desc.DailyQuota,
			QuotaUsed:    f.quota.Used(ctx, desc.ID),
			BreakerState: entry.Breaker.Snapshot().State.String(),
		})
	}

	return CategoryInfo{
		Category:   category,
		TTLSeconds: int(r.TTL().Seconds()),
		Providers:  providers,
	}, true
}
