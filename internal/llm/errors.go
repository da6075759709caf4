package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned when the selected provider has no
// credential.
var ErrNotConfigured = errors.New("llm: provider not configured")

// ErrEmptyResponse is returned when the model produced no usable text,
// including replies withheld by the provider's safety filters.
var ErrEmptyResponse = errors.New("llm: empty response")

// RetryError is returned when every attempt failed. It unwraps to the
// error of each attempt, in order.
type RetryError struct {
	Attempts []error
}

func (e *RetryError) Error() string {
	msgs := make([]string, len(e.Attempts))
	for i, err := range e.Attempts {
		msgs[i] = fmt.Sprintf("attempt %d: %v", i+1, err)
	}
	return fmt.Sprintf("llm: all %d attempts failed: %s", len(e.Attempts), strings.Join(msgs, "; "))
}

func (e *RetryError) Unwrap() []error { return e.Attempts }

// Last returns the error of the final attempt.
func (e *RetryError) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}
