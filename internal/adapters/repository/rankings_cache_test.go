package repository_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

const leagueCFL types.League = "CFL"

type fakeFetcher struct {
	mu      sync.Mutex
	calls   map[types.League]int
	data    map[types.League][]types.RankingRecord
	err     error
	gate    chan struct{}
	started atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls: make(map[types.League]int),
		data: map[types.League][]types.RankingRecord{
			types.LeagueNFL: {
				{TeamID: 59, Team: "Baltimore", Rank: 1, AdjustedPoints: 33.416},
				{TeamID: 65, Team: "Kansas City", Rank: 2, AdjustedPoints: 15.28},
				{TeamID: 59, Team: "Baltimore (dup)", Rank: 30},
			},
			leagueCFL: {
				{TeamID: 7, Team: "Calgary", Rank: 1},
			},
		},
	}
}

func (f *fakeFetcher) FetchRankings(_ context.Context, league types.League) ([]types.RankingRecord, error) {
	f.started.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[league]++
	if f.err != nil {
		return nil, f.err
	}
	return f.data[league], nil
}

func (f *fakeFetcher) count(league types.League) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[league]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newCache(f repository.Fetcher, clock *fakeClock) *repository.RankingsCache {
	return repository.NewRankingsCache(f,
		repository.WithClock(clock.Now),
		repository.WithMetrics(metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))),
	)
}

func TestRankingsCacheFreshness(t *testing.T) {
	Convey("Given an empty rankings cache with a 5 minute window", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher()
		clock := &fakeClock{now: time.Date(2020, 1, 12, 12, 0, 0, 0, time.UTC)}
		cache := newCache(fetcher, clock)

		So(cache.Freshness(), ShouldEqual, 5*time.Minute)
		So(cache.Count(ctx), ShouldEqual, 0)

		Convey("When a team is looked up for the first time", func() {
			rec, err := cache.Get(ctx, types.LeagueNFL, 65)

			Convey("Then rankings should be fetched once and the team returned", func() {
				So(err, ShouldBeNil)
				So(rec.Team, ShouldEqual, "Kansas City")
				So(fetcher.count(types.LeagueNFL), ShouldEqual, 1)
				at, ok := cache.FetchedAt(ctx, types.LeagueNFL)
				So(ok, ShouldBeTrue)
				So(at, ShouldEqual, clock.Now())
			})

			Convey("And a lookup four minutes later should reuse the cached data", func() {
				clock.Advance(4 * time.Minute)
				_, err := cache.Get(ctx, types.LeagueNFL, 59)
				So(err, ShouldBeNil)
				So(fetcher.count(types.LeagueNFL), ShouldEqual, 1)
			})

			Convey("And a lookup six minutes later should refresh exactly once", func() {
				clock.Advance(6 * time.Minute)
				_, err := cache.Get(ctx, types.LeagueNFL, 59)
				So(err, ShouldBeNil)
				_, err = cache.Get(ctx, types.LeagueNFL, 65)
				So(err, ShouldBeNil)
				So(fetcher.count(types.LeagueNFL), ShouldEqual, 2)
			})

			Convey("And a lookup exactly at the window edge should still be fresh", func() {
				clock.Advance(5 * time.Minute)
				_, _ = cache.Get(ctx, types.LeagueNFL, 59)
				So(fetcher.count(types.LeagueNFL), ShouldEqual, 1)
			})

			Convey("And invalidating should force the next read to refetch", func() {
				cache.Invalidate(ctx, types.LeagueNFL)
				So(cache.Count(ctx), ShouldEqual, 0)
				_, _ = cache.Rankings(ctx, types.LeagueNFL)
				So(fetcher.count(types.LeagueNFL), ShouldEqual, 2)
			})
		})
	})
}

func TestRankingsCacheLookup(t *testing.T) {
	Convey("Given a cache over rankings that list a team twice", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher()
		cache := newCache(fetcher, &fakeClock{now: time.Now()})

		Convey("When looking up the duplicated team", func() {
			rec, err := cache.Get(ctx, types.LeagueNFL, 59)

			Convey("Then the first listed record should win", func() {
				So(err, ShouldBeNil)
				So(rec.Rank, ShouldEqual, 1)
			})
		})

		Convey("When looking up a team that is not ranked", func() {
			_, err := cache.Get(ctx, types.LeagueNFL, 999)

			Convey("Then ErrTeamNotFound should be returned, not a refresh error", func() {
				So(errors.Is(err, repository.ErrTeamNotFound), ShouldBeTrue)
				So(errors.Is(err, repository.ErrRefresh), ShouldBeFalse)
			})
		})

		Convey("When reading the full list and mutating it", func() {
			list, err := cache.Rankings(ctx, types.LeagueNFL)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 3)
			list[0].Team = "changed"

			Convey("Then the cached list should be unaffected", func() {
				again, _ := cache.Rankings(ctx, types.LeagueNFL)
				So(again[0].Team, ShouldEqual, "Baltimore")
				So(fetcher.count(types.LeagueNFL), ShouldEqual, 1)
			})
		})
	})
}

func TestRankingsCachePerLeague(t *testing.T) {
	Convey("Given a cache warmed for one league", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher()
		cache := newCache(fetcher, &fakeClock{now: time.Now()})
		_, err := cache.Get(ctx, types.LeagueNFL, 65)
		So(err, ShouldBeNil)

		Convey("When a second league is looked up", func() {
			rec, err := cache.Get(ctx, leagueCFL, 7)

			Convey("Then it should be fetched on its own", func() {
				So(err, ShouldBeNil)
				So(rec.Team, ShouldEqual, "Calgary")
				So(fetcher.count(leagueCFL), ShouldEqual, 1)
				So(cache.Count(ctx), ShouldEqual, 2)
			})

			Convey("And alternating back should not refetch the first league", func() {
				_, _ = cache.Get(ctx, types.LeagueNFL, 59)
				_, _ = cache.Get(ctx, leagueCFL, 7)
				So(fetcher.count(types.LeagueNFL), ShouldEqual, 1)
				So(fetcher.count(leagueCFL), ShouldEqual, 1)
			})
		})
	})
}

func TestRankingsCacheFailures(t *testing.T) {
	Convey("Given a fetcher that fails", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher()
		fetcher.err = errors.New("provider down")
		cache := newCache(fetcher, &fakeClock{now: time.Now()})

		Convey("When a team is looked up", func() {
			_, err := cache.Get(ctx, types.LeagueNFL, 65)

			Convey("Then the refresh error should propagate and nothing be cached", func() {
				So(errors.Is(err, repository.ErrRefresh), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "provider down")
				So(cache.Count(ctx), ShouldEqual, 0)
			})

			Convey("And the next lookup should retry", func() {
				fetcher.err = nil
				_, err := cache.Get(ctx, types.LeagueNFL, 65)
				So(err, ShouldBeNil)
				So(fetcher.count(types.LeagueNFL), ShouldEqual, 2)
			})
		})
	})
}

func TestRankingsCacheSingleFlight(t *testing.T) {
	Convey("Given many concurrent lookups against a cold cache", t, func() {
		ctx := context.Background()
		fetcher := newFakeFetcher()
		fetcher.gate = make(chan struct{})
		cache := newCache(fetcher, &fakeClock{now: time.Now()})

		const callers = 16
		var wg sync.WaitGroup
		errs := make(chan error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := cache.Get(ctx, types.LeagueNFL, 65)
				errs <- err
			}()
		}

		// Let every caller queue behind the first refresh before releasing it.
		for fetcher.started.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		time.Sleep(20 * time.Millisecond)
		close(fetcher.gate)
		wg.Wait()
		close(errs)

		Convey("Then only one upstream refresh should happen", func() {
			for err := range errs {
				So(err, ShouldBeNil)
			}
			So(fetcher.count(types.LeagueNFL), ShouldEqual, 1)
		})
	})
}

// hangingFetcher never answers until its context ends.
type hangingFetcher struct{}

func (hangingFetcher) FetchRankings(ctx context.Context, _ types.League) ([]types.RankingRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRankingsCacheRefreshTimeout(t *testing.T) {
	Convey("Given a cache over a provider that never answers", t, func() {
		m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
		cache := repository.NewRankingsCache(hangingFetcher{},
			repository.WithMetrics(m),
			repository.WithRefreshTimeout(20*time.Millisecond),
		)

		Convey("When a caller without a deadline reads rankings", func() {
			done := make(chan error, 1)
			go func() {
				_, err := cache.Rankings(context.Background(), types.LeagueNFL)
				done <- err
			}()

			Convey("Then the shared refresh should give up at the refresh timeout", func() {
				var err error
				select {
				case err = <-done:
				case <-time.After(2 * time.Second):
				}
				So(errors.Is(err, repository.ErrRefresh), ShouldBeTrue)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				So(cache.Count(context.Background()), ShouldEqual, 0)
			})
		})
	})
}
