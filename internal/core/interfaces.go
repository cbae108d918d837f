package core

import (
	"context"
	"encoding/json"
)

// Provider is the interface every upstream adapter implements.
//
// Invoke must build the upstream request, call the shared transport, and
// translate the result: transport errors and 5xx become upstream-failure,
// 400/422 become bad-request, and 2xx returns the raw JSON payload. It
// must not touch the cache, quota, or breaker; the router drives those
// around the call.
type Provider interface {
	// Descriptor returns the immutable provider description.
	Descriptor() Descriptor

	// Configured reports whether the provider has the credentials it
	// needs. Providers without credential requirements always return true.
	Configured() bool

	// Invoke executes one operation against the upstream.
	Invoke(ctx context.Context, operation string, args map[string]string) (json.RawMessage, error)
}
