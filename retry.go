package prospect

import (
	"context"
	"time"
)

// RetryLogFunc is called before each retry with the attempt about to run.
type RetryLogFunc func(attempt int, err error)

// Retryable reports whether an operation that failed with err may succeed
// if attempted again. Invalid input and rejected credentials never do.
func Retryable(err error) bool {
	switch ErrorCode(err) {
	case "", EINVALID, EAUTH, ENOTFOUND:
		return false
	}
	return true
}

// Retry runs fn until it succeeds, fails with a non-retryable error, or
// the delays are exhausted. len(delays)+1 attempts are made at most.
func Retry(ctx context.Context, delays []time.Duration, logf RetryLogFunc, fn func(ctx context.Context) error) error {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !Retryable(err) || attempt >= maxAttempts-1 {
			break
		}

		if logf != nil {
			logf(attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return lastErr
}
