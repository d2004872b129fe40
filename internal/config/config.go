// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New builds a Config with defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"time"
)

// Unranked team policies.
const (
	UnrankedFault = "fault"
	UnrankedSkip  = "skip"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// ProviderBaseURL is the data provider root, without a trailing slash.
	ProviderBaseURL string `koanf:"provider_base_url"`

	// ProviderAPIKey is appended to every provider request as api_key.
	ProviderAPIKey string `koanf:"provider_api_key"`

	// ProviderTimeoutMS bounds each provider round trip. Zero disables the timeout.
	ProviderTimeoutMS int `koanf:"provider_timeout_ms"`

	// RankingsFreshnessMS is how long cached rankings are served before a refetch.
	RankingsFreshnessMS int `koanf:"rankings_freshness_ms"`

	// UnrankedPolicy decides what happens to a game whose team has no ranking: fault or skip.
	UnrankedPolicy string `koanf:"unranked_policy"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":8000",
		ProviderBaseURL:     "https://delivery.chalk247.com",
		ProviderTimeoutMS:   30_000,
		RankingsFreshnessMS: 300_000,
		UnrankedPolicy:      UnrankedFault,
	}
}

// ProviderTimeout returns ProviderTimeoutMS as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutMS) * time.Millisecond
}

// RankingsFreshness returns RankingsFreshnessMS as a duration.
func (c *Config) RankingsFreshness() time.Duration {
	return time.Duration(c.RankingsFreshnessMS) * time.Millisecond
}
