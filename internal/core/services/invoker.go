package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
	"github.com/custodia-labs/studyhall/internal/logger"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ResilientInvoker calls the generation service and retries rate-limited
// calls with bounded backoff. Every other failure is returned immediately.
//
// It is the only retry loop in the core; every feature goes through it.
type ResilientInvoker struct {
	llm      driven.LLMService
	settings domain.GenerationSettings
	limiter  *rate.Limiter
	sleep    SleepFunc
}

// InvokerOption customises a ResilientInvoker.
type InvokerOption func(*ResilientInvoker)

// WithSleeper replaces the backoff sleep. Tests use it to avoid real waits.
func WithSleeper(fn SleepFunc) InvokerOption {
	return func(r *ResilientInvoker) {
		r.sleep = fn
	}
}

// NewResilientInvoker creates an invoker around llm.
// A positive RequestsPerMinute paces calls with a token bucket.
func NewResilientInvoker(llm driven.LLMService, settings domain.GenerationSettings, opts ...InvokerOption) *ResilientInvoker {
	defaults := domain.DefaultGenerationSettings()
	if settings.MaxRetries <= 0 {
		settings.MaxRetries = defaults.MaxRetries
	}
	if settings.FallbackWaitSeconds <= 0 {
		settings.FallbackWaitSeconds = defaults.FallbackWaitSeconds
	}
	if settings.MaxWaitSeconds <= 0 {
		settings.MaxWaitSeconds = defaults.MaxWaitSeconds
	}

	r := &ResilientInvoker{
		llm:      llm,
		settings: settings,
		sleep:    sleepContext,
	}
	if settings.RequestsPerMinute > 0 {
		r.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(settings.RequestsPerMinute)), 1)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invoke runs the request until it succeeds, fails fatally, or exhausts the
// retry budget. After MaxRetries rate-limited calls it returns an error
// wrapping domain.ErrMaxRetriesExceeded.
func (r *ResilientInvoker) Invoke(ctx context.Context, req domain.GenerationRequest) (*domain.Completion, error) {
	if r.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = r.settings.MaxResponseTokens
	}

	for attempt := 1; ; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("waiting for request slot: %w", err)
			}
		}

		completion, err := r.llm.Complete(ctx, req)
		outcome := ClassifyOutcome(completion, err)

		switch outcome.Kind {
		case domain.OutcomeSuccess:
			if attempt > 1 {
				logger.Info("generation succeeded on attempt %d", attempt)
			}
			return outcome.Completion, nil

		case domain.OutcomeRateLimited:
			if attempt >= r.settings.MaxRetries {
				return nil, fmt.Errorf("%w after %d attempts: %w", domain.ErrMaxRetriesExceeded, attempt, err)
			}
			wait := r.backoff(outcome)
			logger.Warn("rate limited by %s (attempt %d/%d), retrying in %s",
				r.llm.ModelName(), attempt, r.settings.MaxRetries, wait)
			if err := r.sleep(ctx, wait); err != nil {
				return nil, fmt.Errorf("waiting to retry: %w", err)
			}

		default:
			if outcome.Err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamFatal, outcome.Err)
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrUpstreamFatal, outcome.Reason)
		}
	}
}

// backoff returns min(hint or fallback, cap).
func (r *ResilientInvoker) backoff(outcome domain.GenerationOutcome) time.Duration {
	wait := r.settings.FallbackWait()
	if outcome.HasHint && outcome.RetryAfterSeconds >= 0 {
		wait = time.Duration(outcome.RetryAfterSeconds * float64(time.Second))
	}
	return min(wait, r.settings.MaxWait())
}

// ClassifyOutcome maps one service call onto the tagged outcome.
// Only an error wrapping domain.RateLimitError is retryable.
func ClassifyOutcome(completion *domain.Completion, err error) domain.GenerationOutcome {
	if err == nil {
		if completion == nil {
			return domain.GenerationOutcome{Kind: domain.OutcomeFatal, Reason: "empty completion"}
		}
		return domain.GenerationOutcome{Kind: domain.OutcomeSuccess, Completion: completion}
	}

	var rl *domain.RateLimitError
	if errors.As(err, &rl) {
		return domain.GenerationOutcome{
			Kind:              domain.OutcomeRateLimited,
			RetryAfterSeconds: rl.RetryAfter.Seconds(),
			HasHint:           rl.HasHint,
			Err:               err,
		}
	}

	return domain.GenerationOutcome{Kind: domain.OutcomeFatal, Reason: err.Error(), Err: err}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
