package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/prospect"
)

var _ prospect.Limiter = (*Limiter)(nil)

// Limiter pauses for a fixed delay on every Wait, no matter how long ago
// the previous request finished.
type Limiter struct {
	delay time.Duration
}

// NewLimiter creates a Limiter that waits delay before each request.
// A zero delay never blocks.
func NewLimiter(delay time.Duration) *Limiter {
	return &Limiter{delay: max(delay, 0)}
}

// Wait blocks for the configured delay. Returns the context error if ctx
// is done first.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.delay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(l.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
