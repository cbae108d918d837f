package providers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnihub/config"
	"omnihub/internal/core"
)

type nullProvider struct{ id string }

func (p *nullProvider) Descriptor() core.Descriptor { return core.Descriptor{ID: p.id} }
func (p *nullProvider) Configured() bool            { return true }

func (p *nullProvider) Invoke(context.Context, string, map[string]string) (json.RawMessage, error) {
	return nil, nil
}

func TestCreateUsesRegisteredBuilder(t *testing.T) {
	Register("null-test", func(cfg config.Provider, _ string, _ Deps) (core.Provider, error) {
		return &nullProvider{id: cfg.ID}, nil
	})

	p, err := Create(config.Provider{ID: "n1", Type: "null-test"}, "test", Deps{})
	require.NoError(t, err)
	assert.Equal(t, "n1", p.Descriptor().ID)
}

func TestCreateUnknownTypeFails(t *testing.T) {
	_, err := Create(config.Provider{ID: "x", Type: "does-not-exist"}, "test", Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider type")
}

func TestListRegisteredSorted(t *testing.T) {
	Register("zz-test", func(config.Provider, string, Deps) (core.Provider, error) { return nil, nil })
	Register("aa-test", func(config.Provider, string, Deps) (core.Provider, error) { return nil, nil })

	types := ListRegistered()
	assert.Contains(t, types, "aa-test")
	assert.Contains(t, types, "zz-test")
	assert.IsIncreasing(t, types)
}
