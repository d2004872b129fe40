// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/gridiron/internal/adapters/provider"
	"github.com/okian/gridiron/internal/adapters/repository"
	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
)

// Error codes written in error bodies.
const (
	codeValidation = "validation_error"
	codeUpstream   = "upstream_error"
	codeInternal   = "internal_error"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Scoreboard assembles the games for league between start and end inclusive.
	Scoreboard(ctx context.Context, league types.League, start, end types.Date) (service.ScoreboardResult, error)

	// TeamRankings returns the league's current rankings.
	TeamRankings(ctx context.Context, league types.League) ([]types.RankingRecord, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	scoreboardHandler *ScoreboardHandler
	rankingsHandler   *RankingsHandler
	logger            logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger handlers report failures to.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.scoreboardHandler = NewScoreboardHandler(deps, s.logger)
	s.rankingsHandler = NewRankingsHandler(deps, s.logger)
	return s
}

// NewRouter returns a chi router carrying the middleware every route shares.
func NewRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/scoreboard/{league}/{start_date}/{end_date}", MetricsMiddleware(s.scoreboardHandler.HandleGetScoreboard, "scoreboard"))
	r.Get("/team_rankings/{league}", MetricsMiddleware(s.rankingsHandler.HandleGetTeamRankings, "team_rankings"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a dependency error to 502 when the provider could not be
// used and to 500 otherwise.
func writeFailure(w http.ResponseWriter, err error) {
	if isUpstream(err) {
		writeError(w, http.StatusBadGateway, codeUpstream, fmt.Errorf("%w: %w", ErrUpstream, err))
		return
	}
	writeError(w, http.StatusInternalServerError, codeInternal, err)
}

func isUpstream(err error) bool {
	var se *provider.StatusError
	return errors.As(err, &se) ||
		errors.Is(err, repository.ErrRefresh) ||
		errors.Is(err, provider.ErrRequest) ||
		errors.Is(err, provider.ErrDecode)
}

// parseLeague reads and validates the {league} path parameter.
func parseLeague(r *http.Request) (types.League, error) {
	league, err := types.ParseLeague(chi.URLParam(r, "league"))
	if err != nil {
		return "", fmt.Errorf("%w: league: %w", ErrValidation, err)
	}
	return league, nil
}

// parseDateParam reads and validates a YYYY-MM-DD path parameter.
func parseDateParam(r *http.Request, name string) (types.Date, error) {
	raw := chi.URLParam(r, name)
	d, err := types.ParseDate(raw)
	if err != nil {
		return types.Date{}, fmt.Errorf("%w: %s %q must be YYYY-MM-DD", ErrValidation, name, raw)
	}
	return d, nil
}
