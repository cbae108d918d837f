// Package mymemory adapts the MyMemory translation API, used as the
// fallback provider for the translate category. MyMemory requires no
// credentials; an optional key raises the anonymous daily word limit.
package mymemory

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
	providers.Register("mymemory", New)
}

const defaultBaseURL = "https://api.mymemory.translated.net"

// Provider implements core.Provider for MyMemory.
type Provider struct {
	desc   core.Descriptor
	client *upstream.Client
	apiKey string
}

// New creates a MyMemory provider from configuration.
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

// Configured always reports true; the key is optional for MyMemory.
func (p *Provider) Configured() bool { return true }

// Invoke executes one operation. Supported: "text".
func (p *Provider) Invoke(ctx context.Context, operation string, args map[string]string) (json.RawMessage, error) {
	if operation != "text" {
		return nil, core.NewBadRequestError("unknown operation "+operation+" for provider "+p.desc.ID, nil)
	}

	text := args["text"]
	target := args["target"]
	if text == "" || target == "" {
		return nil, core.NewBadRequestError("translate.text requires arguments: text, target", nil)
	}
	source := args["source"]
	if source == "" {
		// MyMemory has no auto-detect; assume English source.
		source = "en"
	}

	query := url.Values{}
	query.Set("q", text)
	query.Set("langpair", source+"|"+target)
	if p.apiKey != "" {
		query.Set("key", p.apiKey)
	}

	return p.client.Do(ctx, upstream.Request{
		Path:  "/get",
		Query: query,
	})
}
