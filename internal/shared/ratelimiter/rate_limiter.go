// Package ratelimiter paces calls to the remote quote source.
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter blocks until the next call is allowed.
type Limiter interface {
	Wait(ctx context.Context) error
	// WaitN blocks until a request costing n calls is allowed.
	WaitN(ctx context.Context, n int) error
}

// RateLimiter allows at most limit calls per interval, counting calls in
// fixed windows that start at the first call after a reset.
type RateLimiter struct {
	limit    int
	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	count     int
	lastReset time.Time
}

// NewRateLimiter returns a limiter for limit calls per interval.
// A limit <= 0 disables limiting.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		now:       time.Now,
		sleep:     sleepContext,
		lastReset: time.Now(),
	}
}

// Wait counts a call and, once the window's limit is exhausted, sleeps until
// the window ends. It returns early with ctx.Err() if ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.WaitN(ctx, 1)
}

// WaitN counts n calls at once. A request larger than the limit is let
// through at the start of a window and uses up the following window too.
func (rl *RateLimiter) WaitN(ctx context.Context, n int) error {
	if rl.limit <= 0 || n <= 0 {
		return ctx.Err()
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	if rl.count == 0 || rl.count+n <= rl.limit {
		rl.count += n
		return nil
	}

	if d := rl.interval - now.Sub(rl.lastReset); d > 0 {
		slog.Info("rate limit reached, waiting", "limit", rl.limit, "requested", n, "wait", d)
		if err := rl.sleep(ctx, d); err != nil {
			return err
		}
	}
	rl.count = n
	rl.lastReset = rl.now()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
