// Package config loads and validates the façade configuration: one YAML
// document enumerating categories, their provider chains, transport
// limits, cache backends, and breaker defaults. Credentials are never
// embedded; providers reference the environment variable holding their
// key. Configuration is loaded once at startup; reloading requires a
// restart.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBodySizeLimit caps inbound request bodies (1 MB).
const DefaultBodySizeLimit int64 = 1 << 20

// Config is the root configuration document.
type Config struct {
	Server     Server     `yaml:"server"`
	Transport  Transport  `yaml:"transport"`
	Cache      Cache      `yaml:"cache"`
	Breaker    Breaker    `yaml:"breaker"`
	Categories []Category `yaml:"categories"`
}

// Server holds the hosting HTTP server settings.
type Server struct {
	// Port the server listens on. Default "8080".
	Port string `yaml:"port"`

	// MasterKeyEnv names the environment variable holding the master
	// API key. Empty disables authentication.
	MasterKeyEnv string `yaml:"master_key_env"`

	// MetricsEnabled exposes the Prometheus endpoint when true.
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// MetricsEndpoint is the metrics path. Default "/metrics".
	MetricsEndpoint string `yaml:"metrics_endpoint"`

	// BodySizeLimit caps inbound request bodies in bytes.
	BodySizeLimit int64 `yaml:"body_size_limit"`
}

// MasterKey resolves the configured master key from the environment.
func (s Server) MasterKey() string {
	if s.MasterKeyEnv == "" {
		return ""
	}
	return os.Getenv(s.MasterKeyEnv)
}

// Transport holds shared HTTP transport limits.
type Transport struct {
	// MaxConcurrency bounds in-flight upstream requests. Default 50.
	MaxConcurrency int `yaml:"max_concurrency"`

	// DefaultTimeout is the per-request budget. Default 30s.
	DefaultTimeout time.Duration `yaml:"default_timeout"`

	// DNSMap maps hostnames to addresses for environments where system
	// DNS cannot resolve them.
	DNSMap map[string]string `yaml:"dns_map"`
}

// Cache holds cache backend selection settings.
type Cache struct {
	// RedisURL enables the shared backend when non-empty.
	RedisURL string `yaml:"redis_url"`

	// ConnectTimeout bounds the startup reachability probe. Default 2s.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// MemoryMaxEntries bounds the in-process fallback store.
	MemoryMaxEntries int `yaml:"memory_max_entries"`
}

// Breaker holds circuit breaker tuning; zero fields use package defaults
// (threshold 5, recovery 60s). Per-provider overrides take precedence.
type Breaker struct {
	Threshold       int           `yaml:"threshold"`
	RecoveryTimeout time.Duration `yaml:"recovery_timeout"`
}

// Category declares one logical capability and its ordered provider chain.
type Category struct {
	// Name is the category identifier, e.g. "translate" or "news.search".
	Name string `yaml:"name"`

	// TTL is the default cache lifetime for responses in this category.
	TTL time.Duration `yaml:"ttl"`

	// Providers is the fallback chain. Priority orders attempts; among
	// equal priorities, declaration order wins.
	Providers []Provider `yaml:"providers"`
}

// Provider declares one upstream adapter instance.
type Provider struct {
	// ID uniquely identifies the provider across all categories.
	ID string `yaml:"id"`

	// Type selects the registered adapter implementation.
	Type string `yaml:"type"`

	// APIKeyEnv names the environment variable holding the credential.
	// Empty means the upstream requires no key.
	APIKeyEnv string `yaml:"api_key_env"`

	// BaseURL overrides the adapter's default upstream URL.
	BaseURL string `yaml:"base_url"`

	// DailyQuota limits successful calls per local day; 0 = unlimited.
	DailyQuota int `yaml:"daily_quota"`

	// Priority orders the chain; lower is tried first.
	Priority int `yaml:"priority"`

	// Timeout is the per-attempt deadline. Default 10s.
	Timeout time.Duration `yaml:"timeout"`

	// Breaker optionally overrides the global breaker settings.
	Breaker *Breaker `yaml:"breaker"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, defaults, and validates a raw YAML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.MetricsEndpoint == "" {
		c.Server.MetricsEndpoint = "/metrics"
	}
	if c.Server.BodySizeLimit <= 0 {
		c.Server.BodySizeLimit = DefaultBodySizeLimit
	}
	if c.Transport.MaxConcurrency <= 0 {
		c.Transport.MaxConcurrency = 50
	}
	if c.Transport.DefaultTimeout <= 0 {
		c.Transport.DefaultTimeout = 30 * time.Second
	}
	if c.Cache.ConnectTimeout <= 0 {
		c.Cache.ConnectTimeout = 2 * time.Second
	}
	for i := range c.Categories {
		cat := &c.Categories[i]
		if cat.TTL <= 0 {
			cat.TTL = 30 * time.Minute
		}
		for j := range cat.Providers {
			p := &cat.Providers[j]
			if p.Timeout <= 0 {
				p.Timeout = 10 * time.Second
			}
		}
	}
}

func (c *Config) validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("config declares no categories")
	}

	seenCategories := make(map[string]bool)
	seenProviders := make(map[string]bool)

	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if seenCategories[cat.Name] {
			return fmt.Errorf("duplicate category %q", cat.Name)
		}
		seenCategories[cat.Name] = true

		for _, p := range cat.Providers {
			if p.ID == "" {
				return fmt.Errorf("category %q: provider with empty id", cat.Name)
			}
			if seenProviders[p.ID] {
				return fmt.Errorf("duplicate provider id %q", p.ID)
			}
			seenProviders[p.ID] = true
			if p.Type == "" {
				return fmt.Errorf("provider %q: type is required", p.ID)
			}
			if p.DailyQuota < 0 {
				return fmt.Errorf("provider %q: daily_quota must be >= 0", p.ID)
			}
		}
	}
	return nil
}
