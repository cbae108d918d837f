// Package providers provides a factory for creating provider adapter
// instances from configuration. Adapter packages register themselves
// from init() and are pulled in by blank imports in the main package.
package providers

import (
	"fmt"
	"sort"

	"omnihub/config"
	"omnihub/internal/core"
	"omnihub/internal/httpx"
)

// Deps carries the shared infrastructure handed to every adapter.
type Deps struct {
	// Transport is the process-wide HTTP client.
	Transport *httpx.Client
}

// Builder creates a provider instance from configuration.
type Builder func(cfg config.Provider, category string, deps Deps) (core.Provider, error)

// registry holds all registered provider builders.
var registry = make(map[string]Builder)

// Register allows adapter packages to register themselves.
// This should be called from init() functions in adapter packages.
func Register(providerType string, builder Builder) {
	registry[providerType] = builder
}

// Create instantiates a provider based on configuration.
func Create(cfg config.Provider, category string, deps Deps) (core.Provider, error) {
	builder, ok := registry[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
	return builder(cfg, category, deps)
}

// ListRegistered returns all registered provider types, sorted.
func ListRegistered() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
