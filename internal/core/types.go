package core

import (
	"encoding/json"
	"time"
)

// CachePolicy controls whether a call may read from or write to the cache.
type CachePolicy string

const (
	// CacheDefault uses the category's configured TTL.
	CacheDefault CachePolicy = "default"
	// CacheBypass skips both the cache lookup and the cache write.
	CacheBypass CachePolicy = "no-cache"
)

// Request is one normalized call against a category.
// Arguments are flat string key/value pairs; they must canonicalize to a
// stable byte string for fingerprinting.
type Request struct {
	Category  string            `json:"category"`
	Operation string            `json:"operation"`
	Arguments map[string]string `json:"arguments"`
	// Lang is the caller language tag. It participates in the fingerprint
	// because several upstreams localize their payloads.
	Lang  string      `json:"lang,omitempty"`
	Cache CachePolicy `json:"cache,omitempty"`
}

// Attempt records the outcome of one provider in the fallback chain.
type Attempt struct {
	Provider string `json:"provider"`
	Outcome  string `json:"outcome"`
	Ms       int64  `json:"ms"`
}

// Attempt outcomes. Failed attempts carry the error kind as a
// "failed-<kind>" suffix.
const (
	OutcomeOK                 = "ok"
	OutcomeCacheHit           = "cache-hit"
	OutcomeSkippedCredentials = "skipped-credentials"
	OutcomeSkippedBreaker     = "skipped-breaker"
	OutcomeSkippedQuota       = "skipped-quota"
)

// CacheProviderID is the value of Envelope.ProviderUsed for cache hits.
const CacheProviderID = "cache"

// Envelope is the uniform response wrapper returned for every call.
// Invariant: Success == (Data != nil && Error == nil).
type Envelope struct {
	Success      bool            `json:"success"`
	ProviderUsed string          `json:"provider_used,omitempty"`
	Data         json.RawMessage `json:"data"`
	Error        *EnvelopeError  `json:"error"`
	Attempts     []Attempt       `json:"attempts"`
}

// EnvelopeError is the terminal error surfaced on a failed envelope.
type EnvelopeError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Descriptor describes one configured provider. It is created from
// configuration at startup and immutable thereafter.
type Descriptor struct {
	// ID uniquely identifies the provider within the process.
	ID string
	// Category is the logical capability the provider answers.
	Category string
	// DailyQuota is the number of successful calls allowed per local
	// calendar day. Zero means unlimited.
	DailyQuota int
	// Priority orders providers within a category; lower is tried first.
	Priority int
	// Timeout is the per-attempt deadline for this provider.
	Timeout time.Duration
}
