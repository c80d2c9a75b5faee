package research

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"time"
)

// RetryPolicy retries transient failures with jittered exponential
// backoff. One policy instance is shared by every external-call wrapper
// so backoff discipline is uniform across stages.
type RetryPolicy struct {
	MaxAttempts      int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	RateLimitedFloor time.Duration
}

// NewRetryPolicy builds a policy with sane defaults.
func NewRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:      3,
		BaseDelay:        250 * time.Millisecond,
		MaxDelay:         5 * time.Second,
		RateLimitedFloor: 2 * time.Second,
	}
}

// Do runs fn until it succeeds, exhausts the attempt budget, returns a
// non-retryable error, or the context finishes. ErrNotFound is returned
// immediately: absence is an outcome, not a failure.
func (p *RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.backoff(attempt, err)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if !IsRetryable(err) {
			return err
		}
	}
	return err
}

func (p *RetryPolicy) backoff(attempt int, lastErr error) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	wait := time.Duration(delay/2) + randomJitter(time.Duration(delay)/2)

	// Throttling signals get a longer floor than plain network errors.
	var rl *RateLimitedError
	if errors.As(lastErr, &rl) {
		floor := p.RateLimitedFloor
		if rl.RetryAfter > floor {
			floor = rl.RetryAfter
		}
		if wait < floor {
			wait = floor
		}
	}
	return wait
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
