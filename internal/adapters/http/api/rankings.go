package api

import (
	"context"
	"net/http"

	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
)

// RankingsDependencies defines the interface for rankings operations.
type RankingsDependencies interface {
	TeamRankings(ctx context.Context, league types.League) ([]types.RankingRecord, error)
}

// RankingsHandler handles team rankings requests.
type RankingsHandler struct {
	deps   RankingsDependencies
	logger logger.Logger
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies, l logger.Logger) *RankingsHandler {
	return &RankingsHandler{deps: deps, logger: l}
}

// HandleGetTeamRankings handles GET /team_rankings/{league}.
func (h *RankingsHandler) HandleGetTeamRankings(w http.ResponseWriter, r *http.Request) {
	league, err := parseLeague(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err)
		return
	}

	recs, err := h.deps.TeamRankings(r.Context(), league)
	if err != nil {
		h.logger.Error(r.Context(), "team rankings request failed",
			logger.String("league", league.String()),
			logger.Error(err),
		)
		writeFailure(w, err)
		return
	}
	if recs == nil {
		recs = []types.RankingRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
