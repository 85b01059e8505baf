package stop

import (
	"context"
	"sync"
	"time"
)

// rateLimiter caps issued calls to limit per rolling window. Excess callers
// wait; nothing is dropped.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{limit: limit, window: window, now: time.Now}
}

// Wait blocks until issuing one more call keeps the rolling window under the
// limit, then reserves a slot. Returns the context error on cancellation.
func (l *rateLimiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		cutoff := now.Add(-l.window)
		i := 0
		for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
			i++
		}
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
		if len(l.stamps) < l.limit {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.stamps[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
