package genai

import (
	"context"
	"sync"
	"time"
)

// IntervalLimiter enforces a minimum interval between dispatches. It bounds
// call frequency only, not burst size. The check-and-update of the last
// dispatch time is serialized under a mutex; the wait itself holds no lock.
type IntervalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewIntervalLimiter builds a limiter with the given minimum interval.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Wait blocks until this caller's dispatch slot arrives. Concurrent callers
// each reserve a distinct slot, so two callers can never both observe a
// stale last-call time and proceed immediately.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := l.now()
	target := l.last.Add(l.interval)
	if target.Before(now) || l.last.IsZero() {
		target = now
	}
	l.last = target
	l.mu.Unlock()

	if d := target.Sub(now); d > 0 {
		return l.sleep(ctx, d)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
