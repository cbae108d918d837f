package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddlewareRejectsMissingKey(t *testing.T) {
	srv := newTestServer(t, &Config{MasterKey: "secret"})

	rec := doJSON(t, srv, http.MethodGet, "/v1/categories", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsWrongKey(t *testing.T) {
	srv := newTestServer(t, &Config{MasterKey: "secret"})

	rec := doJSON(t, srv, http.MethodGet, "/v1/categories", "",
		map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	srv := newTestServer(t, &Config{MasterKey: "secret"})

	rec := doJSON(t, srv, http.MethodGet, "/v1/categories", "",
		map[string]string{"Authorization": "secret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareAcceptsValidKey(t *testing.T) {
	srv := newTestServer(t, &Config{MasterKey: "secret"})

	rec := doJSON(t, srv, http.MethodGet, "/v1/categories", "",
		map[string]string{"Authorization": "Bearer secret"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareSkipsHealth(t *testing.T) {
	srv := newTestServer(t, &Config{MasterKey: "secret"})

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
