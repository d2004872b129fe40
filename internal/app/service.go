// Package service assembles scoreboard records from the provider feed and the
// rankings store, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/gridiron/internal/adapters/provider"
	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/config"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// ScoreboardFetcher loads the raw scoreboard for a league and date range.
type ScoreboardFetcher interface {
	FetchScoreboard(ctx context.Context, league types.League, start, end types.Date) (*provider.Scoreboard, error)
}

// ScoreboardResult is either assembled records or an upstream failure to relay
// as-is. Exactly one of the fields is set.
type ScoreboardResult struct {
	Records  []types.ScoreboardRecord
	Upstream *provider.StatusError
}

// Passthrough reports whether the result is an upstream failure.
func (r ScoreboardResult) Passthrough() bool { return r.Upstream != nil }

// Service implements the API dependencies for the scoreboard façade.
type Service struct {
	mu sync.RWMutex

	scoreboards ScoreboardFetcher
	rankings    repository.Store

	unrankedPolicy string

	// Counters for /stats
	scoreboardsServed int
	gamesAssembled    int
	gamesSkipped      int

	logger  logger.Logger
	metrics *metrics.Manager
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithUnrankedPolicy sets what happens to games with an unranked team:
// config.UnrankedFault fails the request, config.UnrankedSkip drops the game.
func WithUnrankedPolicy(policy string) Option {
	return func(s *Service) {
		switch policy {
		case config.UnrankedFault, config.UnrankedSkip:
			s.unrankedPolicy = policy
		}
	}
}

// WithMetrics records on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a Service.
func New(scoreboards ScoreboardFetcher, rankings repository.Store, opts ...Option) *Service {
	s := &Service{
		scoreboards:    scoreboards,
		rankings:       rankings,
		unrankedPolicy: config.UnrankedFault,
		logger:         logger.Discard(),
		metrics:        metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scoreboard assembles every game for league between start and end inclusive,
// ordered by event time then event id. A non-2xx scoreboard response is
// returned in ScoreboardResult.Upstream rather than as an error.
func (s *Service) Scoreboard(ctx context.Context, league types.League, start, end types.Date) (ScoreboardResult, error) {
	sb, err := s.scoreboards.FetchScoreboard(ctx, league, start, end)
	if err != nil {
		var se *provider.StatusError
		if errors.As(err, &se) {
			s.logger.Warn(ctx, "relaying provider scoreboard failure",
				logger.String("league", league.String()),
				logger.Int("status", se.StatusCode),
			)
			return ScoreboardResult{Upstream: se}, nil
		}
		s.logger.Error(ctx, "scoreboard fetch failed", logger.String("league", league.String()), logger.Error(err))
		return ScoreboardResult{}, err
	}

	records := make([]types.ScoreboardRecord, 0, sb.GameCount())
	skipped := 0
	for _, day := range sb.Dates {
		for _, g := range day.Games {
			rec, ok, err := s.assemble(ctx, league, g)
			if err != nil {
				s.logger.Error(ctx, "scoreboard assembly failed",
					logger.String("league", league.String()),
					logger.String("date", day.Date),
					logger.String("game", g.Key),
					logger.Error(err),
				)
				return ScoreboardResult{}, err
			}
			if !ok {
				skipped++
				continue
			}
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.EventTime.Equal(b.EventTime.Time) {
			return a.EventTime.Before(b.EventTime.Time)
		}
		return a.EventID < b.EventID
	})

	s.mu.Lock()
	s.scoreboardsServed++
	s.gamesAssembled += len(records)
	s.gamesSkipped += skipped
	s.mu.Unlock()
	s.metrics.RecordGamesAssembled(len(records))

	s.logger.Debug(ctx, "scoreboard assembled",
		logger.String("league", league.String()),
		logger.Int("games", len(records)),
		logger.Int("skipped", skipped),
	)
	return ScoreboardResult{Records: records}, nil
}

// TeamRankings returns league's rankings through the shared rankings store.
func (s *Service) TeamRankings(ctx context.Context, league types.League) ([]types.RankingRecord, error) {
	recs, err := s.rankings.Rankings(ctx, league)
	if err != nil {
		s.logger.Error(ctx, "team rankings failed", logger.String("league", league.String()), logger.Error(err))
		return nil, err
	}
	return recs, nil
}

// assemble builds one record. ok is false when the game was skipped under the
// skip policy.
func (s *Service) assemble(ctx context.Context, league types.League, g provider.Game) (types.ScoreboardRecord, bool, error) {
	if err := validateGame(g); err != nil {
		return types.ScoreboardRecord{}, false, err
	}
	eventID := int(*g.EventID)

	home, err := s.rankings.Get(ctx, league, int(*g.HomeTeamID))
	if err != nil {
		return s.unranked(ctx, league, eventID, err)
	}
	away, err := s.rankings.Get(ctx, league, int(*g.AwayTeamID))
	if err != nil {
		return s.unranked(ctx, league, eventID, err)
	}
	return buildRecord(g, home, away)
}

// unranked applies the unranked policy to a failed rank lookup. Errors other
// than a missing team are returned unchanged.
func (s *Service) unranked(ctx context.Context, league types.League, eventID int, err error) (types.ScoreboardRecord, bool, error) {
	if !errors.Is(err, repository.ErrTeamNotFound) {
		return types.ScoreboardRecord{}, false, err
	}
	if s.unrankedPolicy == config.UnrankedSkip {
		s.metrics.RecordUnrankedTeam(league.String(), config.UnrankedSkip)
		s.logger.Warn(ctx, "skipping game with unranked team",
			logger.Int("event_id", eventID),
			logger.Error(err),
		)
		return types.ScoreboardRecord{}, false, nil
	}
	s.metrics.RecordUnrankedTeam(league.String(), config.UnrankedFault)
	return types.ScoreboardRecord{}, false, fmt.Errorf("%w: event %d: %w", ErrUnrankedTeam, eventID, err)
}

func buildRecord(g provider.Game, home, away types.RankingRecord) (types.ScoreboardRecord, bool, error) {
	at, err := time.Parse(types.EventTimeLayout, *g.EventDate)
	if err != nil {
		return types.ScoreboardRecord{}, false, fmt.Errorf("%w: event %d: %w", ErrEventTime, int(*g.EventID), err)
	}
	return types.ScoreboardRecord{
		EventID:        int(*g.EventID),
		EventDate:      types.NewDate(at),
		EventTime:      types.Clock{Time: at},
		AwayTeamID:     int(*g.AwayTeamID),
		AwayNickName:   *g.AwayNickName,
		AwayCity:       *g.AwayCity,
		AwayRank:       away.Rank,
		AwayRankPoints: types.RoundPoints(away.AdjustedPoints),
		HomeTeamID:     int(*g.HomeTeamID),
		HomeNickName:   *g.HomeNickName,
		HomeCity:       *g.HomeCity,
		HomeRank:       home.Rank,
		HomeRankPoints: types.RoundPoints(home.AdjustedPoints),
	}, true, nil
}

// validateGame checks that every field a record needs was sent.
func validateGame(g provider.Game) error {
	missing := func(field string) error {
		return fmt.Errorf("%w: game %s: missing %s", ErrInvalidRecord, g.Key, field)
	}
	switch {
	case g.EventID == nil:
		return missing("event_id")
	case g.EventDate == nil:
		return missing("event_date")
	case g.AwayTeamID == nil:
		return missing("away_team_id")
	case g.AwayNickName == nil:
		return missing("away_nick_name")
	case g.AwayCity == nil:
		return missing("away_city")
	case g.HomeTeamID == nil:
		return missing("home_team_id")
	case g.HomeNickName == nil:
		return missing("home_nick_name")
	case g.HomeCity == nil:
		return missing("home_city")
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"unrankedPolicy":    s.unrankedPolicy,
		"scoreboardsServed": s.scoreboardsServed,
		"gamesAssembled":    s.gamesAssembled,
		"gamesSkipped":      s.gamesSkipped,
		"cachedLeagues":     s.rankings.Count(ctx),
	}
	if f, ok := s.rankings.(interface{ Freshness() time.Duration }); ok {
		stats["rankingsFreshnessMs"] = f.Freshness().Milliseconds()
	}

	fetched := make(map[string]string)
	for _, l := range types.Leagues() {
		if at, ok := s.rankings.FetchedAt(ctx, l); ok {
			fetched[l.String()] = at.UTC().Format(time.RFC3339)
		}
	}
	stats["rankingsFetchedAt"] = fetched
	return stats
}
