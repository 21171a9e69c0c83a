package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no text extractor handles a MIME type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Every generation feature is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Missing-material errors. These are expected, user-recoverable states.

	// ErrNoMaterial is the parent of every missing-material error.
	ErrNoMaterial = errors.New("no study material available")

	// ErrNoNotes indicates the subject has no notes at all.
	ErrNoNotes = fmt.Errorf("%w: no notes uploaded for this subject", ErrNoMaterial)

	// ErrNoExtractedText indicates notes exist but none has usable extracted text yet.
	ErrNoExtractedText = fmt.Errorf("%w: notes are still being processed", ErrNoMaterial)

	// Upstream errors.

	// ErrRateLimited indicates the generation service asked the caller to back off.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstreamFatal indicates a non-retryable generation service failure.
	ErrUpstreamFatal = errors.New("generation service failed")

	// ErrMaxRetriesExceeded indicates rate limiting persisted past the retry budget.
	ErrMaxRetriesExceeded = fmt.Errorf("%w: max retries exceeded", ErrUpstreamFatal)

	// ErrMalformedOutput indicates the service answered but the content broke the contract.
	ErrMalformedOutput = errors.New("malformed generation output")
)

// RateLimitError is returned by LLM adapters when the service responds with
// a rate-limit signal. RetryAfter is only meaningful when HasHint is true.
type RateLimitError struct {
	RetryAfter time.Duration
	HasHint    bool
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.HasHint {
		return fmt.Sprintf("rate limited, retry after %s: %s", e.RetryAfter, e.Message)
	}
	return "rate limited: " + e.Message
}

// Is reports whether target is ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// Extraction stages reported by ExtractionError.
const (
	StageLocate   = "locate"
	StageParse    = "parse"
	StageEmpty    = "empty"
	StageValidate = "validate"
)

// ExtractionError describes which validation step rejected a structured response.
type ExtractionError struct {
	Stage  string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrMalformedOutput, e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedOutput, e.Stage, e.Reason)
}

// Is reports whether target is ErrMalformedOutput.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrMalformedOutput
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
