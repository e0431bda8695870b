package classifier

import (
	"context"
	"time"
)

// DefaultBaseDelay is the first retry delay; subsequent delays double.
const DefaultBaseDelay = time.Second

// Retry runs fn up to maxRetries+1 times with exponential backoff between
// attempts (baseDelay * 2^attempt). The delay blocks only the caller, and the
// last error is returned verbatim once attempts are exhausted. It is generic
// over the remote call's result so the classification and trend-analysis
// calls share one policy.
func Retry[T any](ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == maxRetries {
			break
		}

		delay := baseDelay << attempt
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, lastErr
		}
	}

	return zero, lastErr
}
