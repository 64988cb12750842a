// Package llm holds the provider-neutral pieces of report generation: the
// prompt, the upstream error model and the retry and throttle wrappers.
package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// UpstreamError is a failed call to a model provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s http %d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Transient reports whether the call may succeed if repeated: rate limiting
// or a server-side failure.
func (e *UpstreamError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// IsTransient reports whether err carries a transient UpstreamError.
func IsTransient(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Transient()
	}
	return false
}
