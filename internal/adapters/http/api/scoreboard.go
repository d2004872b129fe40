package api

import (
	"context"
	"net/http"

	service "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
)

// ScoreboardDependencies defines the interface for scoreboard operations.
type ScoreboardDependencies interface {
	Scoreboard(ctx context.Context, league types.League, start, end types.Date) (service.ScoreboardResult, error)
}

// ScoreboardHandler handles scoreboard requests.
type ScoreboardHandler struct {
	deps   ScoreboardDependencies
	logger logger.Logger
}

// NewScoreboardHandler creates a new scoreboard handler.
func NewScoreboardHandler(deps ScoreboardDependencies, l logger.Logger) *ScoreboardHandler {
	return &ScoreboardHandler{deps: deps, logger: l}
}

// HandleGetScoreboard handles GET /scoreboard/{league}/{start_date}/{end_date}.
// A provider error response is relayed with its status, content type and body.
func (h *ScoreboardHandler) HandleGetScoreboard(w http.ResponseWriter, r *http.Request) {
	league, err := parseLeague(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err)
		return
	}
	start, err := parseDateParam(r, "start_date")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err)
		return
	}
	end, err := parseDateParam(r, "end_date")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err)
		return
	}

	res, err := h.deps.Scoreboard(r.Context(), league, start, end)
	if err != nil {
		h.logger.Error(r.Context(), "scoreboard request failed",
			logger.String("league", league.String()),
			logger.String("start_date", start.String()),
			logger.String("end_date", end.String()),
			logger.Error(err),
		)
		writeFailure(w, err)
		return
	}
	if res.Passthrough() {
		up := res.Upstream
		w.Header().Set("Content-Type", up.ContentType)
		w.WriteHeader(up.StatusCode)
		_, _ = w.Write(up.Body)
		return
	}

	records := res.Records
	if records == nil {
		records = []types.ScoreboardRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
