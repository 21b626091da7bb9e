// Package throttle paces calls to a cloud API.
package throttle

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps a token bucket. A nil *Limiter never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// New returns a limiter allowing perSecond calls with a burst of one.
// Zero or negative rates disable throttling and return nil.
func New(perSecond float64) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Wait blocks until a call is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}
