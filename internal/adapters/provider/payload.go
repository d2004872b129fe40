package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/okian/gridiron/internal/domain/types"
)

// Game is one scoreboard entry as sent by the provider. Pointer fields are nil
// when the provider omitted them or sent null.
type Game struct {
	// Key is the provider's opaque id for the game inside its date container.
	Key string `json:"-"`

	EventID      *FlexInt `json:"event_id"`
	EventDate    *string  `json:"event_date"`
	AwayTeamID   *FlexInt `json:"away_team_id"`
	AwayNickName *string  `json:"away_nick_name"`
	AwayCity     *string  `json:"away_city"`
	HomeTeamID   *FlexInt `json:"home_team_id"`
	HomeNickName *string  `json:"home_nick_name"`
	HomeCity     *string  `json:"home_city"`
}

// ScoreboardDate groups the games listed under one date key.
type ScoreboardDate struct {
	Date  string
	Games []Game
}

// Scoreboard is the decoded results envelope of the scoreboard endpoint.
// Dates and games are ordered by key; empty containers are dropped.
type Scoreboard struct {
	Dates []ScoreboardDate
}

// GameCount returns the number of games across all dates.
func (s *Scoreboard) GameCount() int {
	n := 0
	for _, d := range s.Dates {
		n += len(d.Games)
	}
	return n
}

type envelope struct {
	Results json.RawMessage `json:"results"`
}

func decodeScoreboard(body []byte) (*Scoreboard, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: scoreboard envelope: %w", ErrDecode, err)
	}
	sb := &Scoreboard{}
	if isEmptyContainer(env.Results) {
		return sb, nil
	}

	var byDate map[string]json.RawMessage
	if err := json.Unmarshal(env.Results, &byDate); err != nil {
		return nil, fmt.Errorf("%w: scoreboard results: %w", ErrDecode, err)
	}

	for date, raw := range byDate {
		if isEmptyContainer(raw) {
			continue
		}
		var container struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &container); err != nil {
			return nil, fmt.Errorf("%w: scoreboard date %s: %w", ErrDecode, date, err)
		}
		if isEmptyContainer(container.Data) {
			continue
		}
		var games map[string]Game
		if err := json.Unmarshal(container.Data, &games); err != nil {
			return nil, fmt.Errorf("%w: scoreboard date %s games: %w", ErrDecode, date, err)
		}
		day := ScoreboardDate{Date: date, Games: make([]Game, 0, len(games))}
		for key, g := range games {
			g.Key = key
			day.Games = append(day.Games, g)
		}
		sort.Slice(day.Games, func(i, j int) bool { return day.Games[i].Key < day.Games[j].Key })
		sb.Dates = append(sb.Dates, day)
	}
	sort.Slice(sb.Dates, func(i, j int) bool { return sb.Dates[i].Date < sb.Dates[j].Date })
	return sb, nil
}

// rawRanking is one rankings entry as sent by the provider. Pointer fields are
// nil when the provider omitted them or sent null.
type rawRanking struct {
	TeamID         *FlexInt   `json:"team_id"`
	Team           *string    `json:"team"`
	Rank           *FlexInt   `json:"rank"`
	LastWeek       *FlexInt   `json:"last_week"`
	Points         *FlexFloat `json:"points"`
	Modifier       *FlexFloat `json:"modifier"`
	AdjustedPoints *FlexFloat `json:"adjusted_points"`
}

// missing returns the name of the first absent field, or "".
func (r rawRanking) missing() string {
	switch {
	case r.TeamID == nil:
		return "team_id"
	case r.Team == nil:
		return "team"
	case r.Rank == nil:
		return "rank"
	case r.LastWeek == nil:
		return "last_week"
	case r.Points == nil:
		return "points"
	case r.Modifier == nil:
		return "modifier"
	case r.AdjustedPoints == nil:
		return "adjusted_points"
	}
	return ""
}

func decodeRankings(body []byte) ([]types.RankingRecord, error) {
	var env struct {
		Results struct {
			Data []json.RawMessage `json:"data"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: rankings envelope: %w", ErrDecode, err)
	}
	out := make([]types.RankingRecord, 0, len(env.Results.Data))
	for i, raw := range env.Results.Data {
		// Only objects are rankings; anything else in the list is ignored.
		if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '{' {
			continue
		}
		var r rawRanking
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("%w: rankings[%d]: %w", ErrDecode, i, err)
		}
		if field := r.missing(); field != "" {
			return nil, fmt.Errorf("%w: rankings[%d]: missing %s", ErrDecode, i, field)
		}
		out = append(out, types.RankingRecord{
			TeamID:         int(*r.TeamID),
			Team:           *r.Team,
			Rank:           int(*r.Rank),
			LastWeek:       int(*r.LastWeek),
			Points:         float64(*r.Points),
			Modifier:       float64(*r.Modifier),
			AdjustedPoints: float64(*r.AdjustedPoints),
		})
	}
	return out, nil
}
