package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnihub/config"
	"omnihub/internal/core"
	"omnihub/internal/httpx"
	"omnihub/internal/providers"
)

func newProvider(t *testing.T, handler http.HandlerFunc) core.Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := New(config.Provider{
		ID:      "openmeteo",
		Type:    "openmeteo",
		BaseURL: srv.URL,
		Timeout: time.Second,
	}, "weather", providers.Deps{Transport: httpx.New(httpx.Config{})})
	require.NoError(t, err)
	return p
}

func TestCurrentWeather(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "48.85", q.Get("latitude"))
		assert.Equal(t, "2.35", q.Get("longitude"))
		assert.Equal(t, "true", q.Get("current_weather"))
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":21.4}}`))
	})

	data, err := p.Invoke(context.Background(), "current",
		map[string]string{"latitude": "48.85", "longitude": "2.35"})
	require.NoError(t, err)
	assert.Contains(t, string(data), "21.4")
}

func TestCurrentRequiresCoordinates(t *testing.T) {
	p := newProvider(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("must not reach upstream")
	})

	_, err := p.Invoke(context.Background(), "current", map[string]string{"latitude": "48.85"})
	require.Error(t, err)
	assert.Equal(t, core.KindBadRequest, core.KindOf(err))
}

func TestAlwaysConfigured(t *testing.T) {
	p := newProvider(t, func(http.ResponseWriter, *http.Request) {})
	assert.True(t, p.Configured())
}
