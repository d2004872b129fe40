package repository

import "errors"

// Sentinel kinds for rankings store errors.
var (
	ErrTeamNotFound = errors.New("team not found in rankings")
	ErrRefresh      = errors.New("rankings refresh failed")
)
