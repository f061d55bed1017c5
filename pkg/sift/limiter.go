package sift

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// gate is the admission control shared by all tasks of one batch. Only the
// fetch call itself holds a slot; retry delays and extraction do not.
type gate struct {
	slots *semaphore.Weighted
	pace  *rate.Limiter // nil when pacing is disabled
}

func newGate(cfg Config) *gate {
	g := &gate{slots: semaphore.NewWeighted(int64(cfg.ConcurrencyLimit))}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		g.pace = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return g
}

// acquire waits for a pacing token (without holding a slot), then for a slot.
// On error no slot is held.
func (g *gate) acquire(ctx context.Context) error {
	if g.pace != nil {
		if err := g.pace.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// The limiter refuses waits that would outlive the deadline.
			return context.DeadlineExceeded
		}
	}
	return g.slots.Acquire(ctx, 1)
}

func (g *gate) release() {
	g.slots.Release(1)
}
