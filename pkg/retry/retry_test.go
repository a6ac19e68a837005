package retry

import (
	"context"
	"testing"
	"time"
)

func TestPolicyExhausted(t *testing.T) {
	unlimited := Policy{MaxAttempts: 0}
	if unlimited.Exhausted(1000) {
		t.Error("unlimited policy should never be exhausted")
	}

	bounded := Policy{MaxAttempts: 3}
	if bounded.Exhausted(2) {
		t.Error("expected attempts below the ceiling to be allowed")
	}
	if !bounded.Exhausted(3) {
		t.Error("expected policy to be exhausted at the ceiling")
	}
}

func TestWait(t *testing.T) {
	t.Run("ZeroDelay", func(t *testing.T) {
		if err := Wait(context.Background(), 0); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := Wait(ctx, time.Minute); err == nil {
			t.Error("expected cancellation error")
		}
	})

	t.Run("Elapses", func(t *testing.T) {
		start := time.Now()
		if err := Wait(context.Background(), 10*time.Millisecond); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if time.Since(start) < 10*time.Millisecond {
			t.Error("wait returned early")
		}
	})
}
