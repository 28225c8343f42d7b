package retry

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy handles retry logic with exponential backoff
type RetryPolicy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewRetryPolicy creates a new retry policy
func NewRetryPolicy(maxAttempts int, initialDelay time.Duration) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryPolicy{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     5 * time.Second,
	}
}

// Execute runs fn until it succeeds, attempts run out, or ctx is done
func (r *RetryPolicy) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := r.initialDelay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == r.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up after %d attempts: %w", attempt, lastErr)
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * 1.5)
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
	}

	if r.maxAttempts == 1 {
		return lastErr
	}
	return fmt.Errorf("failed after %d attempts: %w", r.maxAttempts, lastErr)
}
