package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:      3,
		BaseDelay:        time.Millisecond,
		MaxDelay:         5 * time.Millisecond,
		RateLimitedFloor: time.Millisecond,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesNetworkErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &NetworkError{Op: "fetch", Err: errors.New("reset")}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return &NetworkError{Op: "fetch", Err: errors.New("reset")}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

// Absence is an outcome, not a failure: no second attempt.
func TestDoNotFoundReturnsImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return ErrNotFound
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestDoNonRetryableReturnsImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	vErr := &ValidationError{Field: "latitude", Reason: "out of range"}
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return vErr
	})
	assert.Equal(t, vErr, err)
	assert.Equal(t, 1, calls)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := fastPolicy().Do(ctx, func() error {
		calls++
		cancel()
		return &NetworkError{Op: "fetch", Err: errors.New("reset")}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffHonorsRateLimitedFloor(t *testing.T) {
	t.Parallel()

	p := &RetryPolicy{
		MaxAttempts:      2,
		BaseDelay:        time.Millisecond,
		MaxDelay:         2 * time.Millisecond,
		RateLimitedFloor: 50 * time.Millisecond,
	}
	wait := p.backoff(1, &RateLimitedError{Service: "geocoding"})
	assert.GreaterOrEqual(t, wait, 50*time.Millisecond)

	// An explicit Retry-After above the floor wins.
	wait = p.backoff(1, &RateLimitedError{Service: "geocoding", RetryAfter: 80 * time.Millisecond})
	assert.GreaterOrEqual(t, wait, 80*time.Millisecond)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRetryable(&NetworkError{Op: "x", Err: errors.New("y")}))
	assert.True(t, IsRetryable(&RateLimitedError{Service: "s"}))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(&ValidationError{Field: "f", Reason: "r"}))
	assert.False(t, IsRetryable(&FatalSourceError{URL: "u", Err: errors.New("e")}))
}
