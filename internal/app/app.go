// Package app provides the main application struct for centralized
// dependency management and lifecycle control of the façade server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"omnihub/config"
	"omnihub/internal/breaker"
	"omnihub/internal/cache"
	"omnihub/internal/facade"
	"omnihub/internal/httpx"
	"omnihub/internal/observability"
	"omnihub/internal/providers"
	"omnihub/internal/quota"
	"omnihub/internal/router"
	"omnihub/internal/server"
)

// App holds all application components. The caller must call Shutdown
// to release resources.
type App struct {
	config  *config.Config
	store   cache.Store
	counter quota.Counter
	facade  *facade.Facade
	server  *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// New wires the full dependency graph: cache backend, quota counter,
// shared transport, provider adapters, per-category routers, façade,
// and the HTTP server.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &App{config: cfg}

	app.store = cache.Select(ctx, cache.Config{
		RedisURL:         cfg.Cache.RedisURL,
		ConnectTimeout:   cfg.Cache.ConnectTimeout,
		MemoryMaxEntries: cfg.Cache.MemoryMaxEntries,
	})

	// The quota counter shares the cache's Redis connection so both
	// survive restarts together; without Redis both are in-process.
	if redisStore, ok := app.store.(*cache.RedisStore); ok {
		app.counter = quota.NewRedisCounter(redisStore.Client())
	} else {
		app.counter = quota.NewMemoryCounter()
	}

	transport := httpx.New(httpx.Config{
		MaxConcurrency: cfg.Transport.MaxConcurrency,
		DefaultTimeout: cfg.Transport.DefaultTimeout,
		DNSMap:         cfg.Transport.DNSMap,
	})

	var (
		registry *prometheus.Registry
		metrics  *observability.Metrics
		observer router.Observer = router.NopObserver{}
	)
	if cfg.Server.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.New(registry)
		observer = metrics
	}

	routers := make(map[string]*router.Router, len(cfg.Categories))
	deps := providers.Deps{Transport: transport}

	for _, cat := range cfg.Categories {
		entries := make([]router.Entry, 0, len(cat.Providers))
		for _, pcfg := range cat.Providers {
			p, err := providers.Create(pcfg, cat.Name, deps)
			if err != nil {
				closeErr := app.closeResources()
				return nil, errors.Join(
					fmt.Errorf("category %q: provider %q: %w", cat.Name, pcfg.ID, err),
					closeErr,
				)
			}

			b := breaker.New(breakerConfig(cfg.Breaker, pcfg.Breaker))
			if metrics != nil {
				b.SetTransitionHook(metrics.BreakerHook(pcfg.ID))
			}
			entries = append(entries, router.Entry{Provider: p, Breaker: b})
		}

		routers[cat.Name] = router.New(router.Config{
			Category: cat.Name,
			TTL:      cat.TTL,
			Entries:  entries,
			Cache:    app.store,
			Quota:    app.counter,
			Observer: observer,
		})
	}

	app.facade = facade.New(routers, app.counter)

	app.logStartupInfo()

	app.server = server.New(app.facade, &server.Config{
		MasterKey:       cfg.Server.MasterKey(),
		MetricsEnabled:  cfg.Server.MetricsEnabled,
		MetricsEndpoint: cfg.Server.MetricsEndpoint,
		MetricsGatherer: registry,
		BodySizeLimit:   cfg.Server.BodySizeLimit,
	})

	return app, nil
}

// Facade returns the façade for direct use in tests.
func (a *App) Facade() *facade.Facade {
	return a.facade
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully tears down components in dependency order: the
// HTTP server first, then the quota counter, then the cache store.
// Idempotent; repeated calls are no-ops.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}
	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}

func (a *App) closeResources() error {
	var errs []error
	if a.counter != nil {
		if err := a.counter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("quota close: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// breakerConfig merges the global breaker settings with a per-provider
// override.
func breakerConfig(global config.Breaker, override *config.Breaker) breaker.Config {
	cfg := breaker.Config{
		Threshold:       global.Threshold,
		RecoveryTimeout: global.RecoveryTimeout,
	}
	if override != nil {
		if override.Threshold > 0 {
			cfg.Threshold = override.Threshold
		}
		if override.RecoveryTimeout > 0 {
			cfg.RecoveryTimeout = override.RecoveryTimeout
		}
	}
	return cfg
}

// logStartupInfo logs the effective configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	if cfg.Server.MasterKey() == "" {
		slog.Warn("SECURITY WARNING: no master key configured - server accepts unauthenticated requests",
			"recommendation", "set master_key_env in the server config")
	} else {
		slog.Info("authentication enabled", "mode", "master_key")
	}

	if cfg.Server.MetricsEnabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Server.MetricsEndpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}

	slog.Info("categories configured",
		"count", len(cfg.Categories),
		"registered_provider_types", providers.ListRegistered())
}
