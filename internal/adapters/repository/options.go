// Package repository defines the ranking store interface and errors.
package repository

import (
	"time"

	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Defaults for the cache.
const (
	// DefaultFreshness is how long fetched rankings are served before a refetch.
	DefaultFreshness = 5 * time.Minute
	// DefaultRefreshTimeout bounds a shared refresh when no timeout is set.
	DefaultRefreshTimeout = 30 * time.Second
)

// Option applies a configuration option to the RankingsCache.
type Option func(*RankingsCache)

// WithFreshness sets the freshness window.
func WithFreshness(d time.Duration) Option {
	return func(c *RankingsCache) {
		if d > 0 {
			c.freshness = d
		}
	}
}

// WithRefreshTimeout bounds each shared refresh. Non-positive values keep
// DefaultRefreshTimeout.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *RankingsCache) {
		if d > 0 {
			c.refreshTimeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *RankingsCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *RankingsCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records cache activity on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(c *RankingsCache) {
		if m != nil {
			c.metrics = m
		}
	}
}
