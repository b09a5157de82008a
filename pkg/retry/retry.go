// Package retry runs an operation under a bounded exponential backoff policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Policy bounds how often and how long an operation is retried. MaxRetries
// counts retries after the first attempt, so an operation runs at most
// MaxRetries+1 times.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Jitter in [0, 1] shortens each delay by up to that fraction.
	Jitter float64

	// Sleep waits between attempts. Nil uses a timer bound to ctx.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Op is one attempt. attempt starts at 1.
type Op func(ctx context.Context, attempt int) error

// Classifier reports whether err is worth another attempt.
type Classifier func(err error) bool

// ExhaustedError is returned when every permitted attempt failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Backoff returns the delay before retry n (0-based): min(base*2^n, max),
// reduced by jitter. A MaxDelay <= 0 leaves the growth uncapped.
func (p Policy) Backoff(n int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < n && (p.MaxDelay <= 0 || d < p.MaxDelay); i++ {
		if d > math.MaxInt64/2 {
			break
		}
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter > 0 && d > 0 {
		d -= time.Duration(rand.Float64() * p.Jitter * float64(d))
	}
	return d
}

// Do runs op until it succeeds, returns an error retryable rejects, the
// attempts run out, or ctx is done. A nil retryable retries every error.
func (p Policy) Do(ctx context.Context, op Op, retryable Classifier) error {
	attempts := p.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", err, lastErr)
			}
			return err
		}

		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		delay := p.Backoff(attempt - 1)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
		if err := p.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%w (last error: %v)", err, lastErr)
		}
	}

	return &ExhaustedError{Attempts: attempts, Err: lastErr}
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsExhausted reports whether err came from running out of attempts.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}
