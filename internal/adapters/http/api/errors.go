package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrValidation = errors.New("validation failed")
	ErrUpstream   = errors.New("provider unavailable")
)
