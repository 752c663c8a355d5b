package tools

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum spacing between consecutive calls. One
// instance is shared by every caller of a service, so spacing is global.
type RateLimiter struct {
	MinInterval time.Duration

	mu   sync.Mutex
	last time.Time
}

func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	return &RateLimiter{MinInterval: minInterval}
}

// Wait blocks until MinInterval has passed since the previous call and then
// records the current call. The lock is held while sleeping so that waiting
// callers are released one at a time.
func (l *RateLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if wait := l.MinInterval - time.Since(l.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}
	l.last = time.Now()
	return nil
}
