// Package types contains common types used across the application
package types

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Layouts for the calendar and clock values exchanged with clients and the provider.
const (
	DateLayout      = "2006-01-02"
	ClockLayout     = "15:04:05"
	EventTimeLayout = "2006-01-02 15:04"
)

// ErrUnknownLeague is returned for league codes outside the supported set.
var ErrUnknownLeague = errors.New("unknown league")

// League is a supported provider league code.
type League string

// Supported leagues.
const (
	LeagueNFL League = "NFL"
)

var leagues = []League{LeagueNFL}

// Leagues returns the supported leagues in declaration order.
func Leagues() []League {
	out := make([]League, len(leagues))
	copy(out, leagues)
	return out
}

// ParseLeague validates s against the supported leagues. Matching is case-sensitive.
func ParseLeague(s string) (League, error) {
	for _, l := range leagues {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLeague, s)
}

func (l League) String() string { return string(l) }

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct{ time.Time }

// NewDate truncates t to its calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(DateLayout) }

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// Clock is a time of day serialized as HH:MM:SS.
type Clock struct{ time.Time }

func (c Clock) String() string { return c.Format(ClockLayout) }

// MarshalJSON implements json.Marshaler.
func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// ScoreboardRecord is one game with both teams' current standing.
type ScoreboardRecord struct {
	EventID        int     `json:"event_id"`
	EventDate      Date    `json:"event_date"`
	EventTime      Clock   `json:"event_time"`
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

// RankingRecord is one team's standing as published by the provider.
type RankingRecord struct {
	TeamID         int     `json:"team_id"`
	Team           string  `json:"team"`
	Rank           int     `json:"rank"`
	LastWeek       int     `json:"last_week"`
	Points         float64 `json:"points"`
	Modifier       float64 `json:"modifier"`
	AdjustedPoints float64 `json:"adjusted_points"`
}

// RoundPoints rounds v to two decimal places, half away from zero.
func RoundPoints(v float64) float64 {
	return math.Round(v*100) / 100
}
