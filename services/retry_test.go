package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := ExponentialBackoff(time.Second)
	assert.Equal(t, time.Second, backoff(0))
	assert.Equal(t, 2*time.Second, backoff(1))
	assert.Equal(t, 4*time.Second, backoff(2))
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	policy := RetryPolicy{MaxAttempts: 3, Backoff: func(int) time.Duration { return time.Millisecond }}

	got, err := WithRetry(context.Background(), policy, nil, func(context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("unavailable")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryExhausted(t *testing.T) {
	cause := errors.New("quota exceeded")
	attempts := 0

	_, err := WithRetry(context.Background(), RetryPolicy{MaxAttempts: 3}, nil, func(context.Context) (int, error) {
		attempts++
		return 0, cause
	})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 3, genErr.Attempts)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), RetryPolicy{}, nil, func(context.Context) (int, error) {
		attempts++
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	policy := RetryPolicy{MaxAttempts: 5, Backoff: func(int) time.Duration { return time.Hour }}

	_, err := WithRetry(ctx, policy, nil, func(context.Context) (int, error) {
		attempts++
		cancel()
		return 0, errors.New("boom")
	})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestGenerateWithoutGenerator(t *testing.T) {
	_, err := generate(context.Background(), nil, noRetry(), nil, "prompt")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, errNoGenerator)
}

func TestGenerateTreatsBlankOutputAsFailure(t *testing.T) {
	gen := &fakeGenerator{respond: func(context.Context, string) (string, error) {
		return "   \n", nil
	}}

	_, err := generate(context.Background(), gen, RetryPolicy{MaxAttempts: 2}, nil, "prompt")

	assert.ErrorIs(t, err, errEmptyGeneration)
	assert.Equal(t, 2, gen.calls())
}
