package llm

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

func TestRetryAfter(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		headers  map[string]string
		expected time.Duration
		ok       bool
	}{
		{"none", nil, 0, false},
		{"seconds", map[string]string{"Retry-After": "30"}, 30 * time.Second, true},
		{"fractional", map[string]string{"Retry-After": "1.5"}, 1500 * time.Millisecond, true},
		{"zero", map[string]string{"Retry-After": "0"}, 0, true},
		{"milliseconds win", map[string]string{"Retry-After": "30", "Retry-After-Ms": "250"}, 250 * time.Millisecond, true},
		{"http date", map[string]string{"Retry-After": now.Add(90 * time.Second).Format(http.TimeFormat)}, 90 * time.Second, true},
		{"past date", map[string]string{"Retry-After": now.Add(-time.Minute).Format(http.TimeFormat)}, 0, true},
		{"negative", map[string]string{"Retry-After": "-5"}, 0, false},
		{"garbage", map[string]string{"Retry-After": "soon"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			for k, v := range tt.headers {
				header.Set(k, v)
			}
			wait, ok := RetryAfter(header, now)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, wait)
		})
	}
}

func TestNewRateLimitError(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	resp.Header.Set("Retry-After", "12")

	err := NewRateLimitError("openai", resp, "Rate limit reached for requests")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.True(t, err.HasHint)
	assert.Equal(t, 12*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "openai: Rate limit reached")

	bare := NewRateLimitError("ollama", &http.Response{Header: http.Header{}}, "")
	assert.False(t, bare.HasHint)
	assert.Contains(t, bare.Error(), "ollama rate limit exceeded")
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(http.StatusTooManyRequests))
	assert.False(t, IsRateLimited(http.StatusServiceUnavailable))
	assert.False(t, IsRateLimited(http.StatusOK))
}
