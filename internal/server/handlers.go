// Package server provides the hosting HTTP surface for the API façade.
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"omnihub/internal/core"
	"omnihub/internal/facade"
)

// Handler holds the HTTP handlers
type Handler struct {
	facade *facade.Facade
}

// NewHandler creates a new handler over the façade
func NewHandler(f *facade.Facade) *Handler {
	return &Handler{facade: f}
}

// callRequest is the body of POST /v1/call/:category/:operation
type callRequest struct {
	Arguments map[string]string `json:"arguments"`
	Cache     string            `json:"cache,omitempty"`
	Lang      string            `json:"lang,omitempty"`
}

// Call handles POST /v1/call/:category/:operation
func (h *Handler) Call(c echo.Context) error {
	var body callRequest
	if err := c.Bind(&body); err != nil {
		return badRequestEnvelope(c, "invalid request body: "+err.Error())
	}

	switch body.Cache {
	case "", string(core.CacheDefault), string(core.CacheBypass):
	default:
		return badRequestEnvelope(c, "invalid cache mode: "+body.Cache)
	}

	req := core.Request{
		Category:  c.Param("category"),
		Operation: c.Param("operation"),
		Arguments: body.Arguments,
		Lang:      body.Lang,
		Cache:     core.CachePolicy(body.Cache),
	}

	ctx := core.WithRequestID(c.Request().Context(), GetRequestID(c))
	env := h.facade.Call(ctx, req)
	return c.JSON(statusFor(env), env)
}

// ListCategories handles GET /v1/categories
func (h *Handler) ListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{
		"categories": h.facade.ListCategories(),
	})
}

// DescribeCategory handles GET /v1/categories/:category
func (h *Handler) DescribeCategory(c echo.Context) error {
	info, ok := h.facade.Describe(c.Request().Context(), c.Param("category"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "unknown category: " + c.Param("category"),
		})
	}
	return c.JSON(http.StatusOK, info)
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps an envelope to its HTTP status code
func statusFor(env *core.Envelope) int {
	if env.Success {
		return http.StatusOK
	}
	return env.Error.Kind.HTTPStatus()
}

// badRequestEnvelope rejects a malformed call with an envelope-shaped body
func badRequestEnvelope(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, &core.Envelope{
		Success:  false,
		Error:    &core.EnvelopeError{Kind: core.KindBadRequest, Message: message},
		Attempts: []core.Attempt{},
	})
}
