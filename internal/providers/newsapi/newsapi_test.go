package newsapi

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
	t.Setenv("NEWSAPI_KEY", "secret")

	p, err := New(config.Provider{
		ID:        "newsapi",
		Type:      "newsapi",
		APIKeyEnv: "NEWSAPI_KEY",
		BaseURL:   srv.URL,
		Timeout:   time.Second,
	}, "news", providers.Deps{Transport: httpx.New(httpx.Config{})})
	require.NoError(t, err)
	return p
}

func TestSearch(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/everything", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		q := r.URL.Query()
		assert.Equal(t, "golang", q.Get("q"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "5", q.Get("pageSize"))
		_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
	})

	data, err := p.Invoke(context.Background(), "search",
		map[string]string{"query": "golang", "lang": "en", "limit": "5"})
	require.NoError(t, err)
	assert.Contains(t, string(data), "articles")
}

func TestSearchRequiresQuery(t *testing.T) {
	p := newProvider(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("must not reach upstream")
	})

	_, err := p.Invoke(context.Background(), "search", nil)
	require.Error(t, err)
	assert.Equal(t, core.KindBadRequest, core.KindOf(err))
}

func TestHeadlinesDefaultsCountry(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/top-headlines", r.URL.Path)
		assert.Equal(t, "us", r.URL.Query().Get("country"))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	_, err := p.Invoke(context.Background(), "headlines", nil)
	require.NoError(t, err)
}

func TestConfiguredRequiresKey(t *testing.T) {
	p := newProvider(t, func(http.ResponseWriter, *http.Request) {})
	assert.True(t, p.Configured())

	t.Setenv("NEWSAPI_KEY", "")
	p2, err := New(config.Provider{ID: "newsapi", Type: "newsapi", APIKeyEnv: "NEWSAPI_KEY"},
		"news", providers.Deps{Transport: httpx.New(httpx.Config{})})
	require.NoError(t, err)
	assert.False(t, p2.Configured())
}
