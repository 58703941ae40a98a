package domain

import (
	"context"
	"time"
)

// RetryPolicy is the explicit retry contract handed to each stage worker:
// how many attempts, how long between them, and how the delay grows.
// Which errors are retryable is decided by Retryable, not by the caller.
type RetryPolicy struct {
	MaxAttempts   int
	Delay         time.Duration
	BackoffFactor float64
}

// Do runs op until it succeeds, returns a non-retryable error, exhausts
// MaxAttempts, or the context is cancelled. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.Delay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil || !Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		if p.BackoffFactor > 1 {
			delay = time.Duration(float64(delay) * p.BackoffFactor)
		}
	}
	return err
}
