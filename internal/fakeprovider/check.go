package fakeprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/gridiron/internal/domain/types"
	"github.com/okian/gridiron/pkg/logger"
)

// ErrCheck is returned when the façade cannot be queried.
var ErrCheck = errors.New("gridiron check failed")

// Report summarizes a check run.
type Report struct {
	Rankings   int
	Records    int
	Expected   int
	Mismatches []string
	Duration   time.Duration
}

// OK reports whether the façade's answers matched the fixtures.
func (r *Report) OK() bool { return len(r.Mismatches) == 0 }

// scoreboardRow mirrors the façade's scoreboard record on the wire.
type scoreboardRow struct {
	EventID        int     `json:"event_id"`
	EventDate      string  `json:"event_date"`
	EventTime      string  `json:"event_time"`
	AwayTeamID     int     `json:"away_team_id"`
	AwayNickName   string  `json:"away_nick_name"`
	AwayCity       string  `json:"away_city"`
	AwayRank       int     `json:"away_rank"`
	AwayRankPoints float64 `json:"away_rank_points"`
	HomeTeamID     int     `json:"home_team_id"`
	HomeNickName   string  `json:"home_nick_name"`
	HomeCity       string  `json:"home_city"`
	HomeRank       int     `json:"home_rank"`
	HomeRankPoints float64 `json:"home_rank_points"`
}

func rowOf(rec types.ScoreboardRecord) scoreboardRow {
	return scoreboardRow{
		EventID:        rec.EventID,
		EventDate:      rec.EventDate.String(),
		EventTime:      rec.EventTime.String(),
		AwayTeamID:     rec.AwayTeamID,
		AwayNickName:   rec.AwayNickName,
		AwayCity:       rec.AwayCity,
		AwayRank:       rec.AwayRank,
		AwayRankPoints: rec.AwayRankPoints,
		HomeTeamID:     rec.HomeTeamID,
		HomeNickName:   rec.HomeNickName,
		HomeCity:       rec.HomeCity,
		HomeRank:       rec.HomeRank,
		HomeRankPoints: rec.HomeRankPoints,
	}
}

// Check queries a gridiron instance at baseURL, which must be configured
// against a provider serving fx with the skip policy for unranked teams, and
// compares its answers with the fixtures.
func Check(ctx context.Context, client *http.Client, baseURL string, fx *Fixtures) (*Report, error) {
	started := time.Now()
	baseURL = strings.TrimRight(baseURL, "/")
	report := &Report{}

	var rankings []types.RankingRecord
	if err := getJSON(ctx, client, baseURL+"/team_rankings/"+fx.League.String(), &rankings); err != nil {
		return nil, err
	}
	report.Rankings = len(rankings)
	verifyRankings(report, fx.Rankings, rankings)

	first, last := fx.FirstDay(), fx.LastDay()
	var rows []scoreboardRow
	path := fmt.Sprintf("%s/scoreboard/%s/%s/%s", baseURL, fx.League, first, last)
	if err := getJSON(ctx, client, path, &rows); err != nil {
		return nil, err
	}
	report.Records = len(rows)

	var expected []scoreboardRow
	for _, g := range fx.Between(first, last) {
		if rec, ok := fx.Record(g); ok {
			expected = append(expected, rowOf(rec))
		}
	}
	report.Expected = len(expected)
	verifyScoreboard(report, expected, rows)

	report.Duration = time.Since(started)
	logger.Get().Info(ctx, "gridiron check finished",
		logger.Int("rankings", report.Rankings),
		logger.Int("records", report.Records),
		logger.Int("expected", report.Expected),
		logger.Int("mismatches", len(report.Mismatches)),
		logger.Duration("duration", report.Duration),
	)
	return report, nil
}

func verifyRankings(report *Report, want, got []types.RankingRecord) {
	if len(want) != len(got) {
		report.Mismatches = append(report.Mismatches,
			fmt.Sprintf("rankings: got %d entries, want %d", len(got), len(want)))
		return
	}
	for i := range want {
		if want[i] != got[i] {
			report.Mismatches = append(report.Mismatches,
				fmt.Sprintf("rankings[%d]: got %+v, want %+v", i, got[i], want[i]))
		}
	}
}

func verifyScoreboard(report *Report, want, got []scoreboardRow) {
	if len(want) != len(got) {
		report.Mismatches = append(report.Mismatches,
			fmt.Sprintf("scoreboard: got %d records, want %d", len(got), len(want)))
		return
	}
	for i := range want {
		if want[i] != got[i] {
			report.Mismatches = append(report.Mismatches,
				fmt.Sprintf("scoreboard[%d]: got event %d, want event %d", i, got[i].EventID, want[i].EventID))
		}
	}
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheck, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheck, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrCheck, url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d: %s", ErrCheck, url, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrCheck, url, err)
	}
	return nil
}
