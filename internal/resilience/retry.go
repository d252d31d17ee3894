package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryConfig bounds a [Retry] call.
type RetryConfig struct {
	// Attempts is the total number of tries, including the first.
	// Default: 2 (one retry).
	Attempts int

	// Timeout bounds each individual attempt. Zero means no per-attempt
	// deadline beyond the caller's context.
	Timeout time.Duration

	// Backoff is the pause between attempts. Default: 500ms.
	Backoff time.Duration
}

// Retry runs fn up to cfg.Attempts times, each attempt under its own
// deadline. Context cancellation stops retrying immediately; the last
// attempt's error is returned when all fail.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 2
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			slog.Debug("retrying call", "attempt", i+1, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if cfg.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		}
		lastErr = fn(attemptCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry aborted: %w", lastErr)
		}
	}
	return lastErr
}
