package sift

import (
	"context"
	"time"
)

// ShouldRetry reports whether a failed attempt (zero-based) may be followed by
// another one. The delay before a retry is always Config.RetryDelay.
func ShouldRetry(attempt, maxRetries int) bool {
	return attempt < maxRetries
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
