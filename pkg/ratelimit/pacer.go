// Package ratelimit spaces out upstream calls so that a single lookup run never
// issues requests faster than a configured minimum interval.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

// Default intervals between upstream calls.
const (
	// DefaultDeviceInterval separates consecutive device batch queries.
	DefaultDeviceInterval = 500 * time.Millisecond

	// DefaultPageInterval separates consecutive subscription page queries for one key.
	DefaultPageInterval = 50 * time.Millisecond
)

var pacerWaitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "glp_pacer_wait_seconds",
	Help:    "Time spent waiting for the minimum inter-call interval by pacer",
	Buckets: []float64{0, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
}, []string{"pacer"})

// Pacer enforces a minimum interval between calls. The first call passes
// immediately, so no delay is ever added after the final call of a run.
// A Pacer is safe for concurrent use.
type Pacer struct {
	name    string
	limiter *rate.Limiter
}

// NewPacer creates a pacer. A non-positive interval disables pacing.
func NewPacer(name string, interval time.Duration) *Pacer {
	p := &Pacer{name: name}
	if interval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return p
}

// Wait blocks until the next call is allowed or ctx is done. It only fails
// with ctx's error, even when ctx's deadline is known to expire first.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pacer %s: %w", p.name, err)
	}

	r := p.limiter.Reserve()
	delay := r.Delay()
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			r.Cancel()
			return fmt.Errorf("pacer %s: %w", p.name, ctx.Err())
		}
	}
	pacerWaitSeconds.WithLabelValues(p.name).Observe(delay.Seconds())
	return nil
}

// Interval returns the configured minimum interval, zero when disabled.
func (p *Pacer) Interval() time.Duration {
	if p == nil || p.limiter == nil {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(p.limiter.Limit()))
}
