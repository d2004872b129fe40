package provider

import (
	"errors"
	"fmt"
)

// Sentinel kinds for provider errors.
var (
	ErrRequest = errors.New("provider request failed")
	ErrDecode  = errors.New("provider payload malformed")
)

// StatusError is a non-2xx provider response. Body is kept verbatim so the
// caller can relay it unchanged.
type StatusError struct {
	Endpoint    string
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider %s: status %d", e.Endpoint, e.StatusCode)
}
