// Package ratelimit enforces a minimum spacing between outbound
// requests to a single source, honoring cooperative cancellation.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between successive grants.
// Safe for concurrent callers on the same source.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// New returns a Limiter enforcing at least interval between grants.
func New(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Wait blocks the caller until the interval has elapsed since the last
// grant, then records the current time as the new anchor. It returns
// ctx.Err() if ctx is canceled before a grant is possible; the poll
// granularity is well under the 50ms ceiling blocking waits must honor.
func (l *Limiter) Wait(ctx context.Context) error {
	const pollInterval = 20 * time.Millisecond

	for {
		l.mu.Lock()
		now := time.Now()
		if now.Before(l.next) {
			wait := l.next.Sub(now)
			l.mu.Unlock()
			if wait > pollInterval {
				wait = pollInterval
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}
		l.next = now.Add(l.interval)
		l.mu.Unlock()
		return nil
	}
}
