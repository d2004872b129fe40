package service

import "errors"

// Sentinel kinds for scoreboard assembly errors.
var (
	ErrUnrankedTeam  = errors.New("team has no ranking")
	ErrInvalidRecord = errors.New("scoreboard record invalid")
	ErrEventTime     = errors.New("event time malformed")
)
