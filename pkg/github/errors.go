package github

import (
	"fmt"
	"time"
)

// UnavailableError indicates the GitHub API could not be reached or returned
// an unusable response. It wraps the underlying cause so callers can unwrap
// transport details when they need them.
type UnavailableError struct {
	Err   error
	Stage string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("github %s unavailable: %v", e.Stage, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// AuthError indicates GitHub rejected the provided credentials (401) or
// refused access to the resource (403 without rate-limit exhaustion).
type AuthError struct {
	Stage      string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("github %s auth rejected with status %d", e.Stage, e.StatusCode)
}

// RateLimitError indicates the request was throttled. RetryAfter carries the
// server's hint when one was present, zero otherwise. The client never retries
// these internally.
type RateLimitError struct {
	Stage      string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("github %s rate limited, retry after %s", e.Stage, e.RetryAfter)
	}
	return fmt.Sprintf("github %s rate limited", e.Stage)
}
