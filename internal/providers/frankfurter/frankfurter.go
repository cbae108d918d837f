// Package frankfurter adapts the Frankfurter exchange-rate API for the
// currency.rates category. Frankfurter is keyless; its reference data
// changes once per business day, so the category suits a long TTL.
package frankfurter

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
	providers.Register("frankfurter", New)
}

const defaultBaseURL = "https://api.frankfurter.app"

// Provider implements core.Provider for Frankfurter.
type Provider struct {
	desc   core.Descriptor
	client *upstream.Client
}

// New creates a Frankfurter provider from configuration.
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

// Configured always reports true; Frankfurter needs no credentials.
func (p *Provider) Configured() bool { return true }

// Invoke executes one operation. Supported: "latest", "convert".
func (p *Provider) Invoke(ctx context.Context, operation string, args map[string]string) (json.RawMessage, error) {
	switch operation {
	case "latest":
		query := url.Values{}
		if base := args["base"]; base != "" {
			query.Set("base", base)
		}
		if symbols := args["symbols"]; symbols != "" {
			query.Set("symbols", symbols)
		}
		return p.client.Do(ctx, upstream.Request{
			Path:  "/latest",
			Query: query,
		})
	case "convert":
		amount := args["amount"]
		from := args["from"]
		to := args["to"]
		if amount == "" || from == "" || to == "" {
			return nil, core.NewBadRequestError("currency.convert requires arguments: amount, from, to", nil)
		}
		query := url.Values{}
		query.Set("amount", amount)
		query.Set("from", from)
		query.Set("to", to)
		return p.client.Do(ctx, upstream.Request{
			Path:  "/latest",
			Query: query,
		})
	default:
		return nil, core.NewBadRequestError("unknown operation "+operation+" for provider "+p.desc.ID, nil)
	}
}
