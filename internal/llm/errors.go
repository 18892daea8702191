package llm

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RateLimitError reports a 429 from a model provider. The import pipeline
// treats it as a scheduling signal rather than a failure: the job is parked
// in the queue and picked up again once RetryAfter has elapsed.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

const defaultRetryAfterSecs = 60

// NewRateLimitError wraps a provider 429. A missing or unusable retry hint
// falls back to defaultRetryAfterSecs so the queue never spins on the job.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = defaultRetryAfterSecs
	}
	return &RateLimitError{
		Provider:   provider,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Err:        err,
	}
}

// ParseRetryAfterHeader reads a Retry-After value in either form the header
// allows, delta-seconds or an HTTP-date, and returns whole seconds from now.
// Empty, malformed, or already-elapsed values return 0, which callers treat
// as "use the default backoff".
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0
		}
		return secs
	}
	if at, err := http.ParseTime(val); err == nil {
		secs := int(time.Until(at).Seconds())
		if secs < 0 {
			return 0
		}
		return secs
	}
	return 0
}
