// Package newsapi adapts NewsAPI.org for the news.search category.
package newsapi

import (
	"context"
	"encoding/json"
	"net/url"
	"os"

	"omnihub/config"
	"omnihub/internal/core"
	"omnihub/internal/providers"
	"omnihub/internal/providers/upstream"
)

func init() {
	providers.Register("newsapi", New)
}

const defaultBaseURL = "https://newsapi.org"

// Provider implements core.Provider for NewsAPI.
type Provider struct {
	desc   core.Descriptor
	client *upstream.Client
	apiKey string
}

// New creates a NewsAPI provider from configuration. NewsAPI always
// requires a key; without one the provider reports unconfigured and the
// router skips it.
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
	if cfg.APIKeyEnv != "" {
		p.apiKey = os.Getenv(cfg.APIKeyEnv)
	}
	p.client = upstream.New(cfg.ID, baseURL, deps.Transport, func(headers map[string]string) {
		headers["X-Api-Key"] = p.apiKey
	})
	return p, nil
}

// Descriptor returns the immutable provider description.
func (p *Provider) Descriptor() core.Descriptor { return p.desc }

// Configured reports whether the API key is present.
func (p *Provider) Configured() bool { return p.apiKey != "" }

// Invoke executes one operation. Supported: "search", "headlines".
func (p *Provider) Invoke(ctx context.Context, operation string, args map[string]string) (json.RawMessage, error) {
	switch operation {
	case "search":
		return p.search(ctx, args)
	case "headlines":
		return p.headlines(ctx, args)
	default:
		return nil, core.NewBadRequestError("unknown operation "+operation+" for provider "+p.desc.ID, nil)
	}
}

func (p *Provider) search(ctx context.Context, args map[string]string) (json.RawMessage, error) {
	q := args["query"]
	if q == "" {
		return nil, core.NewBadRequestError("news.search requires argument: query", nil)
	}

	query := url.Values{}
	query.Set("q", q)
	if lang := args["lang"]; lang != "" {
		query.Set("language", lang)
	}
	if size := args["limit"]; size != "" {
		query.Set("pageSize", size)
	}

	return p.client.Do(ctx, upstream.Request{
		Path:  "/v2/everything",
		Query: query,
	})
}

func (p *Provider) headlines(ctx context.Context, args map[string]string) (json.RawMessage, error) {
	query := url.Values{}
	country := args["country"]
	if country == "" {
		country = "us"
	}
	query.Set("country", country)
	if topic := args["topic"]; topic != "" {
		query.Set("category", topic)
	}

	return p.client.Do(ctx, upstream.Request{
		Path:  "/v2/top-headlines",
		Query: query,
	})
}
