package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// entry is one league's rankings as of fetchedAt. Entries are immutable once
// published; a refresh swaps in a new one.
type entry struct {
	records   []types.RankingRecord
	byTeam    map[int]int // team id -> index of its first record
	fetchedAt time.Time
}

func newEntry(records []types.RankingRecord, at time.Time) *entry {
	e := &entry{
		records:   records,
		byTeam:    make(map[int]int, len(records)),
		fetchedAt: at,
	}
	for i, r := range records {
		if _, dup := e.byTeam[r.TeamID]; !dup {
			e.byTeam[r.TeamID] = i
		}
	}
	return e
}

// RankingsCache is an in-memory Store holding one entry per league.
// Concurrent reads that find a league stale share a single refresh.
type RankingsCache struct {
	mu      sync.RWMutex
	entries map[types.League]*entry
	flights singleflight.Group

	fetcher        Fetcher
	freshness      time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
	logger         logger.Logger
	metrics        *metrics.Manager
}

var _ Store = (*RankingsCache)(nil)

// NewRankingsCache creates a cache backed by fetcher.
func NewRankingsCache(fetcher Fetcher, opts ...Option) *RankingsCache {
	c := &RankingsCache{
		entries:        make(map[types.League]*entry),
		fetcher:        fetcher,
		freshness:      DefaultFreshness,
		refreshTimeout: DefaultRefreshTimeout,
		now:            time.Now,
		logger:         logger.Discard(),
		metrics:        metrics.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Freshness returns the configured freshness window.
func (c *RankingsCache) Freshness() time.Duration { return c.freshness }

// Get returns the first ranking whose team id equals teamID.
func (c *RankingsCache) Get(ctx context.Context, league types.League, teamID int) (types.RankingRecord, error) {
	e, err := c.load(ctx, league)
	if err != nil {
		return types.RankingRecord{}, err
	}
	i, ok := e.byTeam[teamID]
	if !ok {
		return types.RankingRecord{}, fmt.Errorf("%w: league %s team %d", ErrTeamNotFound, league, teamID)
	}
	return e.records[i], nil
}

// Rankings returns a copy of league's rankings list.
func (c *RankingsCache) Rankings(ctx context.Context, league types.League) ([]types.RankingRecord, error) {
	e, err := c.load(ctx, league)
	if err != nil {
		return nil, err
	}
	out := make([]types.RankingRecord, len(e.records))
	copy(out, e.records)
	return out, nil
}

// Invalidate drops league's entry.
func (c *RankingsCache) Invalidate(_ context.Context, league types.League) {
	c.mu.Lock()
	delete(c.entries, league)
	n := len(c.entries)
	c.mu.Unlock()
	c.metrics.UpdateCacheLeagues(n)
}

// Count returns the number of cached leagues.
func (c *RankingsCache) Count(_ context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// FetchedAt reports when league was last fetched.
func (c *RankingsCache) FetchedAt(_ context.Context, league types.League) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[league]
	if !ok {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

func (c *RankingsCache) fresh(league types.League) *entry {
	c.mu.RLock()
	e := c.entries[league]
	c.mu.RUnlock()
	if e == nil || c.now().After(e.fetchedAt.Add(c.freshness)) {
		return nil
	}
	return e
}

func (c *RankingsCache) load(ctx context.Context, league types.League) (*entry, error) {
	if e := c.fresh(league); e != nil {
		c.metrics.RecordCacheHit(league.String())
		return e, nil
	}
	c.metrics.RecordCacheMiss(league.String())

	// The refresh is shared by every caller waiting on this league, so it must
	// not be cancelled by whichever caller happened to start it. It is bounded
	// by refreshTimeout instead.
	v, err, _ := c.flights.Do(league.String(), func() (any, error) {
		if e := c.fresh(league); e != nil {
			return e, nil
		}
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()
		return c.refresh(shared, league)
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry), nil
}

func (c *RankingsCache) refresh(ctx context.Context, league types.League) (*entry, error) {
	records, err := c.fetcher.FetchRankings(ctx, league)
	c.metrics.RecordCacheRefresh(league.String(), err)
	if err != nil {
		c.logger.Error(ctx, "rankings refresh failed",
			logger.String("league", league.String()),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: league %s: %w", ErrRefresh, league, err)
	}

	e := newEntry(records, c.now())
	c.mu.Lock()
	c.entries[league] = e
	n := len(c.entries)
	c.mu.Unlock()
	c.metrics.UpdateCacheLeagues(n)

	c.logger.Info(ctx, "rankings refreshed",
		logger.String("league", league.String()),
		logger.Int("teams", len(records)),
	)
	return e, nil
}
