package client

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dotcommander/faultline/internal/apperr"
)

// RetryWithBackoff re-invokes op with exponential backoff while failures are
// retryable (network failures, timeouts, rate limiting, 5xx). Validation and
// other client errors stop immediately. This is strictly a caller-side
// helper; Call.Do itself never retries.
func RetryWithBackoff(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	b.RandomizationFactor = 0.1

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if apperr.IsRetryable(err) {
			return err // will be retried
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(b, ctx))
}

// RetryCall runs call.Do under RetryWithBackoff and returns the last result.
func RetryCall[T any](ctx context.Context, call Call[T]) (T, error) {
	var out T
	err := RetryWithBackoff(ctx, func() error {
		v, err := call.Do(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
