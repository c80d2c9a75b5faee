// Package research defines the error taxonomy and the shared retry
// policy every external-call wrapper in the pipeline uses.
package research

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound reports that a source legitimately lacks a matching record.
// It is an expected stage outcome, never logged as an error.
var ErrNotFound = errors.New("no matching record")

// NetworkError wraps a transient transport failure. Retryable.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RateLimitedError reports provider throttling. Retryable after a longer
// backoff than a plain network failure.
type RateLimitedError struct {
	Service    string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited by %s", e.Service)
}

// ValidationError reports a malformed or out-of-range field. The field is
// dropped and the stage continues.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FatalSourceError means the primary source stayed unreachable after
// retries. The site is skipped; the run continues.
type FatalSourceError struct {
	URL string
	Err error
}

func (e *FatalSourceError) Error() string {
	return fmt.Sprintf("primary source unreachable: %s: %v", e.URL, e.Err)
}

func (e *FatalSourceError) Unwrap() error { return e.Err }

// IsRetryable reports whether an error is worth another attempt.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	var rlErr *RateLimitedError
	return errors.As(err, &netErr) || errors.As(err, &rlErr)
}
