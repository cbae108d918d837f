package gnews

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
	t.Setenv("GNEWS_KEY", "secret")

	p, err := New(config.Provider{
		ID:        "gnews",
		Type:      "gnews",
		APIKeyEnv: "GNEWS_KEY",
		BaseURL:   srv.URL,
		Timeout:   time.Second,
	}, "news", providers.Deps{Transport: httpx.New(httpx.Config{})})
	require.NoError(t, err)
	return p
}

func TestSearchPassesKeyAsQueryParam(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "secret", q.Get("apikey"))
		assert.Equal(t, "golang", q.Get("q"))
		assert.Equal(t, "10", q.Get("max"))
		_, _ = w.Write([]byte(`{"articles":[]}`))
	})

	_, err := p.Invoke(context.Background(), "search",
		map[string]string{"query": "golang", "limit": "10"})
	require.NoError(t, err)
}

func TestHeadlinesWithTopic(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/top-headlines", r.URL.Path)
		assert.Equal(t, "technology", r.URL.Query().Get("category"))
		_, _ = w.Write([]byte(`{"articles":[]}`))
	})

	_, err := p.Invoke(context.Background(), "headlines", map[string]string{"topic": "technology"})
	require.NoError(t, err)
}

func TestSearchRequiresQuery(t *testing.T) {
	p := newProvider(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("must not reach upstream")
	})

	_, err := p.Invoke(context.Background(), "search", nil)
	require.Error(t, err)
	assert.Equal(t, core.KindBadRequest, core.KindOf(err))
}
