package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy retries an operation with capped exponential backoff
type Policy struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewPolicy creates a retry policy. The delay doubles after each failed attempt up to maxDelay.
func NewPolicy(maxAttempts int, initialDelay, maxDelay time.Duration) *Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Policy{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		sleep:        sleep,
	}
}

// Default is the policy used for subscriber cleanup: 5 attempts, 100ms doubling to 2s
func Default() *Policy {
	return NewPolicy(5, 100*time.Millisecond, 2*time.Second)
}

// WithSleep replaces the wait between attempts. Used by tests.
func (p *Policy) WithSleep(fn func(ctx context.Context, d time.Duration) error) *Policy {
	cp := *p
	cp.sleep = fn
	return &cp
}

// Delay is the wait after the given failed attempt (1-based)
func (p *Policy) Delay(attempt int) time.Duration {
	d := p.initialDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.maxDelay {
			return p.maxDelay
		}
	}
	if d > p.maxDelay {
		return p.maxDelay
	}
	return d
}

// Execute runs fn until it succeeds, the attempts run out or ctx ends
func (p *Policy) Execute(ctx context.Context, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		// Don't sleep after last attempt
		if attempt < p.maxAttempts {
			if err := p.sleep(ctx, p.Delay(attempt)); err != nil {
				return fmt.Errorf("interrupted after %d attempts: %w", attempt, lastErr)
			}
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", p.maxAttempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
