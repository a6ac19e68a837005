package ratelimit

import (
	"context"
	"math/rand"
	"time"

	"grscraper/pkg/retry"
)

// Pacer spaces requests out with blocking waits. The crawl is intentionally
// single-threaded and self-throttling: pages and cover fetches are paced
// rather than parallelized so the origin never sees bursty load.
type Pacer struct {
	base   time.Duration
	jitter time.Duration
}

// NewFixed returns a pacer that always waits exactly base.
func NewFixed(base time.Duration) *Pacer {
	return &Pacer{base: base}
}

// NewJittered returns a pacer that waits base plus a random duration in
// [0, jitter).
func NewJittered(base, jitter time.Duration) *Pacer {
	return &Pacer{base: base, jitter: jitter}
}

// Delay returns the next wait duration.
func (p *Pacer) Delay() time.Duration {
	d := p.base
	if p.jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.jitter)))
	}
	return d
}

// Wait blocks for the next delay or until the context is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	return retry.Wait(ctx, p.Delay())
}
