package internal

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy controls how a client boundary retries failed calls: a fixed
// delay between attempts and a predicate deciding which errors are worth
// retrying.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool

	// sleep is replaceable in tests.
	sleep func(context.Context, time.Duration) error
}

// DefaultShopifyRetry is the policy applied at the Shopify client boundary:
// throttling errors are retried a few times with a fixed pause.
func DefaultShopifyRetry() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
		Retryable: func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.Throttled()
		},
	}
}

// Do runs fn until it succeeds, the error is not retryable, or attempts run
// out. The last error is returned unwrapped so callers can inspect it.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts || p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}
		if err := p.wait(ctx); err != nil {
			return err
		}
	}
	return lastErr
}

func (p RetryPolicy) wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	if p.sleep != nil {
		return p.sleep(ctx, p.Delay)
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
