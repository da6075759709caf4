package coach

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks client input errors. No model call is made.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUpstreamUnavailable marks model failures after retries, or a model
	// that is not configured.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError names the request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}
