// Package fakeprovider is a deterministic stand-in for the scoreboard and
// team rankings provider. It serves the provider's URL shapes from generated
// fixtures and can check a running gridiron instance against them.
package fakeprovider

import (
	"time"

	"github.com/okian/gridiron/internal/domain/types"
)

// Default generation parameters.
const (
	DefaultSeed         = 2020
	DefaultWeeks        = 4
	DefaultGamesPerWeek = 8
	DefaultAPIKey       = "local-key"
)

// DefaultSeasonStart is the first game day of generated fixtures.
var DefaultSeasonStart = types.NewDate(time.Date(2020, time.January, 12, 0, 0, 0, 0, time.UTC))

// Config holds the fixture generation parameters.
type Config struct {
	League       types.League // League code the fixtures are served under
	Seed         uint64       // Seed for the fixture generator
	SeasonStart  types.Date   // First game day; later game days follow weekly
	Weeks        int          // Number of game days
	GamesPerWeek int          // Games per game day, capped at half the team count
	Unranked     int          // Teams left out of the published rankings
}

// DefaultConfig returns the fixture parameters used by cmd/fakeprovider.
func DefaultConfig() Config {
	return Config{
		League:       types.LeagueNFL,
		Seed:         DefaultSeed,
		SeasonStart:  DefaultSeasonStart,
		Weeks:        DefaultWeeks,
		GamesPerWeek: DefaultGamesPerWeek,
	}
}

func (c Config) withDefaults() Config {
	if c.League == "" {
		c.League = types.LeagueNFL
	}
	if c.SeasonStart.IsZero() {
		c.SeasonStart = DefaultSeasonStart
	}
	if c.Weeks <= 0 {
		c.Weeks = DefaultWeeks
	}
	if c.GamesPerWeek <= 0 {
		c.GamesPerWeek = DefaultGamesPerWeek
	}
	if c.GamesPerWeek > len(teams)/2 {
		c.GamesPerWeek = len(teams) / 2
	}
	if c.Unranked < 0 {
		c.Unranked = 0
	}
	if c.Unranked > len(teams) {
		c.Unranked = len(teams)
	}
	return c
}
