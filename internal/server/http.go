package server

import (
	"context"
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"omnihub/internal/facade"
)

// Server wraps the Echo server
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options
type Config struct {
	MasterKey       string              // Optional: master key for authentication
	MetricsEnabled  bool                // Whether to expose Prometheus metrics endpoint
	MetricsEndpoint string              // HTTP path for metrics endpoint (default: /metrics)
	MetricsGatherer prometheus.Gatherer // Registry backing the metrics endpoint
	BodySizeLimit   int64               // Max request body size in bytes
}

// New creates a new HTTP server
func New(f *facade.Facade, cfg *Config) *Server {
	e := echo.New()
	e.HideBanner = true

	handler := NewHandler(f)

	// Build list of paths that skip authentication
	authSkipPaths := []string{"/health"}

	metricsPath := "/metrics"
	if cfg != nil && cfg.MetricsEnabled {
		if cfg.MetricsEndpoint != "" {
			// Normalize path to prevent traversal attacks
			metricsPath = path.Clean(cfg.MetricsEndpoint)
		}
		authSkipPaths = append(authSkipPaths, metricsPath)
	}

	// Global middleware stack (order matters)
	e.Use(RequestIDMiddleware())
	e.Use(middleware.Recover())

	if cfg != nil && cfg.BodySizeLimit > 0 {
		e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.BodySizeLimit, 10)))
	}

	// Authentication (skips public paths)
	if cfg != nil && cfg.MasterKey != "" {
		e.Use(AuthMiddleware(cfg.MasterKey, authSkipPaths))
	}

	// Public routes
	e.GET("/health", handler.Health)
	if cfg != nil && cfg.MetricsEnabled {
		gatherer := cfg.MetricsGatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET(metricsPath, echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API routes
	e.POST("/v1/call/:category/:operation", handler.Call)
	e.GET("/v1/categories", handler.ListCategories)
	e.GET("/v1/categories/:category", handler.DescribeCategory)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
