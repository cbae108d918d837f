// Package libretranslate adapts the LibreTranslate API for the
// translate category.
package libretranslate

import (
	"context"
	"encoding/json"
	"os"

	"omnihub/config"
	"omnihub/internal/core"
	"omnihub/internal/providers"
	"omnihub/internal/providers/upstream"
)

func init() {
	providers.Register("libretranslate", New)
}

const defaultBaseURL = "https://libretranslate.com"

// Provider implements core.Provider for LibreTranslate.
type Provider struct {
	desc      core.Descriptor
	client    *upstream.Client
	apiKey    string
	keyWanted bool
}

// New creates a LibreTranslate provider from configuration.
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
		keyWanted: cfg.APIKeyEnv != "",
	}
	if cfg.APIKeyEnv != "" {
		p.apiKey = os.Getenv(cfg.APIKeyEnv)
	}
	p.client = upstream.New(cfg.ID, baseURL, deps.Transport, nil)
	return p, nil
}

// Descriptor returns the immutable provider description.
func (p *Provider) Descriptor() core.Descriptor { return p.desc }

// Configured reports whether a required API key is present. Public
// LibreTranslate mirrors need no key, so a provider without APIKeyEnv
// is always configured.
func (p *Provider) Configured() bool {
	return !p.keyWanted || p.apiKey != ""
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

// Invoke executes one operation. Supported: "text".
func (p *Provider) Invoke(ctx context.Context, operation string, args map[string]string) (json.RawMessage, error) {
	switch operation {
	case "text":
		return p.translate(ctx, args)
	default:
		return nil, core.NewBadRequestError("unknown operation "+operation+" for provider "+p.desc.ID, nil)
	}
}

func (p *Provider) translate(ctx context.Context, args map[string]string) (json.RawMessage, error) {
	text := args["text"]
	target := args["target"]
	if text == "" || target == "" {
		return nil, core.NewBadRequestError("translate.text requires arguments: text, target", nil)
	}
	source := args["source"]
	if source == "" {
		source = "auto"
	}

	return p.client.Do(ctx, upstream.Request{
		Method: "POST",
		Path:   "/translate",
		Body: translateRequest{
			Q:      text,
			Source: source,
			Target: target,
			Format: "text",
			APIKey: p.apiKey,
		},
	})
}
