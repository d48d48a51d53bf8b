package util

import (
	"context"
	"fmt"
	"time"
)

// Backoff doubles a delay from Base on every step, holding at Max when Max is
// positive.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the wait after the given 1-based failed attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// Retry calls fn up to maxAttempts times, waiting Backoff{baseDelay, maxDelay}
// between failures. fn gets the 1-based attempt number. The last error is
// returned wrapped with the attempt count; ctx.Err() is returned as is if the
// context ends while waiting.
func Retry(ctx context.Context, maxAttempts int, baseDelay, maxDelay time.Duration, fn func(attempt int) error) error {
	b := Backoff{Base: baseDelay, Max: maxDelay}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(b.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	if err == nil {
		return nil
	}
	return fmt.Errorf("giving up after %d attempts: %w", maxAttempts, err)
}
