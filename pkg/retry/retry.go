package retry

import (
	"context"
	"time"
)

// Policy controls how a rate-limited request is retried. The original
// behavior is an unbounded cooldown-and-retry loop; MaxAttempts puts an
// optional ceiling on it.
type Policy struct {
	// MaxAttempts is the maximum number of attempts (0 means unlimited).
	MaxAttempts int
	// Cooldown is the wait between attempts after a rate-limit response.
	Cooldown time.Duration
}

// DefaultPolicy retries forever with a two-minute cooldown, matching the
// origin's observed recovery window.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 0,
		Cooldown:    2 * time.Minute,
	}
}

// Exhausted reports whether the policy allows no further attempts after the
// given number of completed attempts.
func (p Policy) Exhausted(attempts int) bool {
	return p.MaxAttempts > 0 && attempts >= p.MaxAttempts
}

// Wait sleeps for the specified duration or until the context is cancelled.
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
