// Package provider is the HTTP client for the third-party scoreboard and
// rankings feed.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Endpoint names used in logs, errors and metrics.
const (
	EndpointScoreboard   = "scoreboard"
	EndpointTeamRankings = "team_rankings"
)

const defaultContentType = "application/json"

// Client fetches scoreboards and rankings from the provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	logger     logger.Logger
	metrics    *metrics.Manager
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records upstream calls on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient creates a provider client rooted at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
		logger:     logger.Discard(),
		metrics:    metrics.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// FetchScoreboard returns the games for league between start and end inclusive.
// A non-2xx response is returned as *StatusError with the body untouched.
func (c *Client) FetchScoreboard(ctx context.Context, league types.League, start, end types.Date) (*Scoreboard, error) {
	path := fmt.Sprintf("/scoreboard/%s/%s/%s.json",
		url.PathEscape(league.String()), start.String(), end.String())
	body, err := c.get(ctx, EndpointScoreboard, path)
	if err != nil {
		return nil, err
	}
	return decodeScoreboard(body)
}

// FetchRankings returns the provider's current team rankings for league.
func (c *Client) FetchRankings(ctx context.Context, league types.League) ([]types.RankingRecord, error) {
	path := fmt.Sprintf("/team_rankings/%s.json", url.PathEscape(league.String()))
	body, err := c.get(ctx, EndpointTeamRankings, path)
	if err != nil {
		return nil, err
	}
	return decodeRankings(body)
}

func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	target := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRequest, endpoint, err)
	}
	req.Header.Set("Accept", defaultContentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamRequest(endpoint, "error", msSince(start))
		c.logger.Error(ctx, "provider request failed",
			logger.String("endpoint", endpoint),
			logger.String("path", path),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %w", ErrRequest, endpoint, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn(ctx, "close provider response body", logger.Error(cerr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	c.metrics.RecordUpstreamRequest(endpoint, strconv.Itoa(resp.StatusCode), msSince(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrRequest, endpoint, err)
	}

	c.logger.Debug(ctx, "provider response",
		logger.String("endpoint", endpoint),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Int("bytes", len(body)),
		logger.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ct := resp.Header.Get("Content-Type")
		if ct == "" {
			ct = defaultContentType
		}
		return nil, &StatusError{
			Endpoint:    endpoint,
			StatusCode:  resp.StatusCode,
			ContentType: ct,
			Body:        body,
		}
	}
	return body, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
