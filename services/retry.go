package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// BackoffFunc returns the wait before retry number attempt (0-based).
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff doubles base on every attempt: base, 2*base, 4*base...
func ExponentialBackoff(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return base << attempt
	}
}

// RetryPolicy bounds how generation calls are retried.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     BackoffFunc
}

// DefaultRetryPolicy is one call plus two retries, waiting 1s then 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: ExponentialBackoff(time.Second)}
}

// WithRetry runs op until it succeeds or the policy is exhausted. The final
// failure is always a *GenerationError. Context cancellation stops the waits.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, log *zap.Logger, op func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Warn("generation attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("maxAttempts", attempts),
			zap.Error(err))

		if attempt == attempts-1 {
			break
		}
		var wait time.Duration
		if policy.Backoff != nil {
			wait = policy.Backoff(attempt)
		}
		if wait <= 0 {
			if ctx.Err() != nil {
				return zero, &GenerationError{Attempts: attempt + 1, Err: ctx.Err()}
			}
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, &GenerationError{Attempts: attempt + 1, Err: ctx.Err()}
		case <-timer.C:
		}
	}
	return zero, &GenerationError{Attempts: attempts, Err: lastErr}
}

// generate wraps a Generator call in the retry policy.
func generate(ctx context.Context, gen Generator, policy RetryPolicy, log *zap.Logger, prompt string) (string, error) {
	if gen == nil {
		return "", &GenerationError{Attempts: 0, Err: errNoGenerator}
	}
	return WithRetry(ctx, policy, log, func(ctx context.Context) (string, error) {
		text, err := gen.Generate(ctx, prompt)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", errEmptyGeneration
		}
		return text, nil
	})
}
