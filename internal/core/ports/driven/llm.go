package driven

import (
	"context"

	"github.com/custodia-labs/studyhall/internal/core/domain"
)

// LLMService is the hosted generation service.
//
// Complete sends the ordered messages and returns the completion object.
// Implementations must signal rate limiting by returning an error that
// wraps *domain.RateLimitError so callers can read the retry-after hint;
// every other error is treated as fatal by the caller.
//
// Implementations include:
//   - OpenAI (and compatible endpoints)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Complete runs one generation call. It never retries.
	Complete(ctx context.Context, req domain.GenerationRequest) (*domain.Completion, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
