// Package upstream provides the base client shared by provider adapters:
// URL construction, header plumbing, and translation of transport and
// HTTP failures into the façade error taxonomy. It performs no retries
// and never touches cache, quota, or breaker; the router owns those.
package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"omnihub/internal/core"
	"omnihub/internal/httpx"
)

// HeaderFunc sets provider-specific headers (credentials, API versions)
// on every request.
type HeaderFunc func(headers map[string]string)

// Client wraps the shared transport for one upstream API.
type Client struct {
	name      string
	baseURL   string
	transport *httpx.Client
	setHeader HeaderFunc
}

// New creates a client for the named upstream. baseURL must not end
// with a slash. setHeader may be nil.
func New(name, baseURL string, transport *httpx.Client, setHeader HeaderFunc) *Client {
	return &Client{
		name:      name,
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		setHeader: setHeader,
	}
}

// SetBaseURL overrides the upstream base URL (tests, regional mirrors).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// BaseURL returns the current upstream base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Request describes one upstream call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-marshaled when non-nil.
	Body any
}

// Do executes the request and returns the raw JSON payload on 2xx.
// Transport errors and 5xx become upstream-failure; 400 and 422 become
// bad-request; other 4xx are upstream-failure (the upstream rejected a
// request the caller had no hand in shaping).
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	headers := map[string]string{"Accept": "application/json"}
	if c.setHeader != nil {
		c.setHeader(headers)
	}

	var body []byte
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, core.NewBadRequestError("failed to marshal request body", err)
		}
		body = data
		headers["Content-Type"] = "application/json"
	}

	var resp *httpx.Response
	var err error
	switch req.Method {
	case http.MethodGet, "":
		resp, err = c.transport.Get(ctx, u, headers)
	case http.MethodPost:
		resp, err = c.transport.Post(ctx, u, headers, body)
	case http.MethodPut:
		resp, err = c.transport.Put(ctx, u, headers, body)
	case http.MethodDelete:
		resp, err = c.transport.Delete(ctx, u, headers)
	default:
		return nil, core.NewBadRequestError("unsupported method "+req.Method, nil)
	}
	if err != nil {
		return nil, core.NewUpstreamError(c.name, 0, "transport: "+err.Error(), err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// An empty 2xx body (204, or a 200 with no payload) is not
		// valid JSON; normalize it so the envelope stays marshalable.
		if len(resp.Body) == 0 {
			return json.RawMessage("null"), nil
		}
		return json.RawMessage(resp.Body), nil
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, core.NewBadRequestError(errorMessage(resp.Body), nil)
	default:
		return nil, core.NewUpstreamError(c.name, resp.StatusCode, errorMessage(resp.Body), nil)
	}
}

// errorMessage digs a human-readable message out of an opaque upstream
// error payload. Falls back to the raw body, truncated.
func errorMessage(body []byte) string {
	for _, path := range []string{"error.message", "message", "error", "detail"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "upstream returned no error detail"
	}
	return msg
}
