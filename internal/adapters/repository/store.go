// Package repository defines the ranking store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/gridiron/internal/domain/types"
)

// Fetcher loads the full rankings list for a league from the source of truth.
type Fetcher interface {
	FetchRankings(ctx context.Context, league types.League) ([]types.RankingRecord, error)
}

// Store provides read access to league rankings, refreshing them as they age.
type Store interface {
	// Get returns the ranking for teamID in league.
	// Returns ErrTeamNotFound if the league's rankings do not list the team.
	Get(ctx context.Context, league types.League, teamID int) (types.RankingRecord, error)

	// Rankings returns the full rankings list for league in provider order.
	Rankings(ctx context.Context, league types.League) ([]types.RankingRecord, error)

	// Invalidate drops the cached rankings for league so the next read refetches.
	Invalidate(ctx context.Context, league types.League)

	// Count returns the number of leagues currently cached.
	Count(ctx context.Context) int

	// FetchedAt reports when league was last fetched.
	FetchedAt(ctx context.Context, league types.League) (time.Time, bool)
}
