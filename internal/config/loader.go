package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "GRIDIRON_"
	envFileVar = "GRIDIRON_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GRIDIRON_CONFIG is set
//  3. env (prefix GRIDIRON_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// GRIDIRON_PROVIDER_API_KEY -> provider_api_key. Underscores are kept to
	// match the flat koanf tags on the struct.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that the service cannot run without.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ProviderBaseURL) == "":
		return fmt.Errorf("%w: provider_base_url must not be empty", ErrInvalidConfig)
	case c.ProviderTimeoutMS < 0:
		return fmt.Errorf("%w: provider_timeout_ms must not be negative", ErrInvalidConfig)
	case c.RankingsFreshnessMS <= 0:
		return fmt.Errorf("%w: rankings_freshness_ms must be positive", ErrInvalidConfig)
	}
	switch c.UnrankedPolicy {
	case UnrankedFault, UnrankedSkip:
	default:
		return fmt.Errorf("%w: unranked_policy must be %q or %q, got %q",
			ErrInvalidConfig, UnrankedFault, UnrankedSkip, c.UnrankedPolicy)
	}
	return nil
}
