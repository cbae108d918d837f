// Package openmeteo adapts the Open-Meteo forecast API for the
// weather.current category. Open-Meteo is keyless.
package openmeteo

import (
	"context"
	"encoding/json"
	"net/url"

	"omnihub/config"
	"omnihub/internal/core"
	"omnihub/internal/providers"
	"omnihub/internal/providers/upstream"
)

func init() {
	providers.Register("openmeteo", New)
}

const defaultBaseURL = "https://api.open-meteo.com"

// Provider implements core.Provider for Open-Meteo.
type Provider struct {
	desc   core.Descriptor
	client *upstream.Client
}

// New creates an Open-Meteo provider from configuration.
func New(cfg config.Provider, category string, deps providers.Deps) (core.Provider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	p := &Provider{
		desc: core.Descriptor{
			ID:         cfg.ID,
			Category:   category,
			DailyQuota: cfg.DailyQuota,
			Priority:   cfg.Priority,
			Timeout:    cfg.Timeout,
		},
	}
	p.client = upstream.New(cfg.ID, baseURL, deps.Transport, nil)
	return p, nil
}

// Descriptor returns the immutable provider description.
func (p *Provider) Descriptor() core.Descriptor { return p.desc }

// Configured always reports true; Open-Meteo needs no credentials.
func (p *Provider) Configured() bool { return true }

// Invoke executes one operation. Supported: "current".
func (p *Provider) Invoke(ctx context.Context, operation string, args map[string]string) (json.RawMessage, error) {
	if operation != "current" {
		return nil, core.NewBadRequestError("unknown operation "+operation+" for provider "+p.desc.ID, nil)
	}

	lat := args["latitude"]
	lon := args["longitude"]
	if lat == "" || lon == "" {
		return nil, core.NewBadRequestError("weather.current requires arguments: latitude, longitude", nil)
	}

	query := url.Values{}
	query.Set("latitude", lat)
	query.Set("longitude", lon)
	query.Set("current_weather", "true")
	if tz := args["timezone"]; tz != "" {
		query.Set("timezone", tz)
	}

	return p.client.Do(ctx, upstream.Request{
		Path:  "/v1/forecast",
		Query: query,
	})
}
