// Package llm holds helpers shared by the LLM provider adapters.
package llm

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

// Rate limit headers.
const (
	HeaderRetryAfter   = "Retry-After"
	HeaderRetryAfterMS = "Retry-After-Ms"
)

// RetryAfter extracts the server's backoff hint from a rate-limited response.
// Retry-After-Ms is preferred, then Retry-After as seconds or an HTTP date.
// The second result is false when the response carries no usable hint.
func RetryAfter(header http.Header, now time.Time) (time.Duration, bool) {
	if ms := strings.TrimSpace(header.Get(HeaderRetryAfterMS)); ms != "" {
		if v, err := strconv.ParseFloat(ms, 64); err == nil && v >= 0 {
			return time.Duration(v * float64(time.Millisecond)), true
		}
	}

	value := strings.TrimSpace(header.Get(HeaderRetryAfter))
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds * float64(time.Second)), true
	}
	if at, err := http.ParseTime(value); err == nil {
		return max(at.Sub(now), 0), true
	}
	return 0, false
}

// IsRateLimited reports whether a status code is a rate-limit signal.
func IsRateLimited(status int) bool {
	return status == http.StatusTooManyRequests
}

// NewRateLimitError builds the error for a 429 response.
func NewRateLimitError(provider string, resp *http.Response, message string) *domain.RateLimitError {
	wait, ok := RetryAfter(resp.Header, time.Now())
	if message == "" {
		message = provider + " rate limit exceeded"
	} else {
		message = provider + ": " + message
	}
	return &domain.RateLimitError{
		RetryAfter: wait,
		HasHint:    ok,
		Message:    message,
	}
}
