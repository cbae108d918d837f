// Package core defines the shared types and error taxonomy for the API façade.
package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a façade error. The names are part of the wire
// contract: they appear verbatim in envelopes and attempt outcomes.
type ErrorKind string

const (
	// KindBadRequest indicates the caller supplied invalid arguments.
	KindBadRequest ErrorKind = "bad-request"
	// KindNoProviderConfigured indicates the category has zero providers.
	KindNoProviderConfigured ErrorKind = "no-provider-configured"
	// KindNoProviderAvailable indicates every provider was skipped or failed.
	KindNoProviderAvailable ErrorKind = "no-provider-available"
	// KindUpstreamFailure indicates a provider returned 5xx, a transport
	// error, or a non-retriable 4xx. Reported per attempt; terminal only
	// when every provider failed this way.
	KindUpstreamFailure ErrorKind = "upstream-failure"
	// KindDeadlineExceeded indicates the caller deadline elapsed mid-call.
	KindDeadlineExceeded ErrorKind = "deadline-exceeded"
	// KindCacheUnavailable is informational; the façade degrades to no-cache.
	KindCacheUnavailable ErrorKind = "cache-unavailable"
)

// FacadeError is the error type carried through the routing engine.
type FacadeError struct {
	Kind     ErrorKind
	Message  string
	Provider string
	// UpstreamStatus is the HTTP status returned by the upstream, if any.
	UpstreamStatus int
	Err            error
}

func (e *FacadeError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *FacadeError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps terminal error kinds to the status codes the hosting
// server returns for them.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNoProviderConfigured:
		return http.StatusServiceUnavailable
	case KindNoProviderAvailable:
		return http.StatusBadGateway
	case KindDeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus returns the status code for the error's kind.
func (e *FacadeError) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// NewBadRequestError reports invalid caller arguments.
func NewBadRequestError(message string, err error) *FacadeError {
	return &FacadeError{Kind: KindBadRequest, Message: message, Err: err}
}

// NewUpstreamError reports a failed provider call.
func NewUpstreamError(provider string, status int, message string, err error) *FacadeError {
	return &FacadeError{
		Kind:           KindUpstreamFailure,
		Message:        message,
		Provider:       provider,
		UpstreamStatus: status,
		Err:            err,
	}
}

// NewNoProviderAvailableError reports an exhausted fallback chain.
func NewNoProviderAvailableError(category string) *FacadeError {
	return &FacadeError{
		Kind:    KindNoProviderAvailable,
		Message: fmt.Sprintf("all providers for category %q were skipped or failed", category),
	}
}

// NewNoProviderConfiguredError reports a category with an empty chain.
func NewNoProviderConfiguredError(category string) *FacadeError {
	return &FacadeError{
		Kind:    KindNoProviderConfigured,
		Message: fmt.Sprintf("category %q has no providers configured", category),
	}
}

// NewDeadlineExceededError reports an elapsed caller deadline.
func NewDeadlineExceededError(message string, err error) *FacadeError {
	return &FacadeError{Kind: KindDeadlineExceeded, Message: message, Err: err}
}

// KindOf extracts the error kind, defaulting to upstream-failure for
// errors that did not originate in the façade.
func KindOf(err error) ErrorKind {
	var fe *FacadeError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUpstreamFailure
}
