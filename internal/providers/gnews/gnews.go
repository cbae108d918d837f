// Package gnews adapts GNews.io, the fallback provider for the
// news.search category.
package gnews

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
	providers.Register("gnews", New)
}

const defaultBaseURL = "https://gnews.io"

// Provider implements core.Provider for GNews.
type Provider struct {
	desc   core.Descriptor
	client *upstream.Client
	apiKey string
}

// New creates a GNews provider from configuration.
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
	p.client = upstream.New(cfg.ID, baseURL, deps.Transport, nil)
	return p, nil
}

// Descriptor returns the immutable provider description.
func (p *Provider) Descriptor() core.Descriptor { return p.desc }

// Configured reports whether the API key is present. GNews passes the
// key as a query parameter rather than a header.
func (p *Provider) Configured() bool { return p.apiKey != "" }

// Invoke executes one operation. Supported: "search", "headlines".
func (p *Provider) Invoke(ctx context.Context, operation string, args map[string]string) (json.RawMessage, error) {
	switch operation {
	case "search":
		q := args["query"]
		if q == "" {
			return nil, core.NewBadRequestError("news.search requires argument: query", nil)
		}
		query := p.baseQuery(args)
		query.Set("q", q)
		return p.client.Do(ctx, upstream.Request{
			Path:  "/api/v4/search",
			Query: query,
		})
	case "headlines":
		query := p.baseQuery(args)
		if topic := args["topic"]; topic != "" {
			query.Set("category", topic)
		}
		return p.client.Do(ctx, upstream.Request{
			Path:  "/api/v4/top-headlines",
			Query: query,
		})
	default:
		return nil, core.NewBadRequestError("unknown operation "+operation+" for provider "+p.desc.ID, nil)
	}
}

func (p *Provider) baseQuery(args map[string]string) url.Values {
	query := url.Values{}
	query.Set("apikey", p.apiKey)
	if lang := args["lang"]; lang != "" {
		query.Set("lang", lang)
	}
	if size := args["limit"]; size != "" {
		query.Set("max", size)
	}
	return query
}
