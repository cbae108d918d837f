// Package httpx provides the process-wide HTTP transport used for every
// upstream call: one pooled client with bounded concurrency, a pluggable
// DNS map for hosts the OS cannot resolve, and transparent response
// decompression. The transport performs zero retries; fallback across
// providers is the router's job so failures stay visible to the breaker.
package httpx

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
)

// Config holds transport construction options.
type Config struct {
	// MaxConcurrency bounds the number of in-flight upstream requests
	// across all providers. Default 50.
	MaxConcurrency int

	// DefaultTimeout is the per-request deadline applied when the caller
	// context carries none. Default 30s.
	DefaultTimeout time.Duration

	// DNSMap maps hostnames to addresses ("host" -> "1.2.3.4" or
	// "1.2.3.4:443"). Hosts absent from the map go through the system
	// resolver. Useful where system DNS is blocked, and for tests.
	DNSMap map[string]string

	// MaxIdleConns controls the keep-alive pool across all hosts.
	MaxIdleConns int

	// MaxIdleConnsPerHost controls the keep-alive pool per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection stays pooled.
	IdleConnTimeout time.Duration

	// DialTimeout bounds TCP connection establishment.
	DialTimeout time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake.
	TLSHandshakeTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults for calling many
// small public APIs: a shared pool, short dials, 30s request budget.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency:      50,
		DefaultTimeout:      30 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// Response is the raw result of one upstream request. 4xx and 5xx are
// returned here, not as errors; the provider decides their semantics.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client is the shared transport handle. Safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	defaultTimeout time.Duration
	sem            chan struct{}
}

// New builds a Client from cfg, filling zero fields from DefaultConfig.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = def.MaxConcurrency
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = def.DefaultTimeout
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = def.MaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = def.IdleConnTimeout
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.TLSHandshakeTimeout <= 0 {
		cfg.TLSHandshakeTimeout = def.TLSHandshakeTimeout
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           mapDialContext(dialer, cfg.DNSMap),
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		// We decode gzip and brotli ourselves so Accept-Encoding stays
		// under our control.
		DisableCompression: true,
	}

	return &Client{
		httpClient:     &http.Client{Transport: transport},
		defaultTimeout: cfg.DefaultTimeout,
		sem:            make(chan struct{}, cfg.MaxConcurrency),
	}
}

// mapDialContext wraps a dialer so hosts in the static map bypass DNS.
func mapDialContext(dialer *net.Dialer, dnsMap map[string]string) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if len(dnsMap) == 0 {
		return dialer.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return dialer.DialContext(ctx, network, addr)
		}
		if mapped, ok := dnsMap[host]; ok {
			if _, _, err := net.SplitHostPort(mapped); err == nil {
				addr = mapped
			} else {
				addr = net.JoinHostPort(mapped, port)
			}
		}
		return dialer.DialContext(ctx, network, addr)
	}
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, headers, nil)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	return c.do(ctx, http.MethodPost, url, headers, body)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	return c.do(ctx, http.MethodPut, url, headers, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, url, headers, nil)
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, body []byte) (*Response, error) {
	// Acquire a concurrency slot; a cancelled caller does not wait.
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return nil, &TransportError{Class: ErrTimeout, Op: method + " " + url, Err: ctx.Err()}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.defaultTimeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, &TransportError{Class: ErrProtocol, Op: method + " " + url, Err: err}
	}

	req.Header.Set("Accept-Encoding", "gzip, br")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(method+" "+url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := decodeBody(resp)
	if err != nil {
		return nil, &TransportError{Class: ErrProtocol, Op: method + " " + url, Err: err}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// decodeBody reads the response body, transparently decoding gzip and
// brotli content encodings.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = gz.Close()
		}()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	return io.ReadAll(reader)
}
