// Package poll provides bounded condition polling for tests that observe
// asynchronous effects. A timeout is the normal negative result, not a
// panic or a hang; the calling test decides whether it is a failure.
package poll

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("condition not met within timeout")

const (
	DefaultTimeout  = 5 * time.Second
	DefaultInterval = 50 * time.Millisecond
)

// Condition reports whether the awaited state has been reached. Returning
// a non-nil error aborts polling immediately; errors are for broken
// observations, not for "not yet".
type Condition func() (bool, error)

// WaitFor polls cond every interval until it returns true, it returns an
// error, or the timeout lapses. Zero values fall back to the defaults.
func WaitFor(timeout, interval time.Duration, cond Condition) error {
	ctx, cancel := context.WithTimeout(context.Background(), normalizeTimeout(timeout))
	defer cancel()
	return WaitForContext(ctx, interval, cond)
}

// WaitForContext is WaitFor with caller-controlled cancellation. The
// condition runs once immediately, so an already-true condition never
// waits out an interval.
func WaitForContext(ctx context.Context, interval time.Duration, cond Condition) error {
	if cond == nil {
		return errors.New("nil condition")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			// One last look: the condition may have flipped while we slept.
			if ok, err := cond(); err == nil && ok {
				return nil
			}
			return ErrTimeout
		case <-ticker.C:
		}
	}
}

func normalizeTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
