// Package ratelimit provides sliding-window admission control for outbound
// embedding provider calls.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is the trailing interval requests are counted over.
const DefaultWindow = 60 * time.Second

// DefaultMaxPerWindow is the default request quota per window.
const DefaultMaxPerWindow = 500

// Limiter admits at most maxPerWindow requests per trailing window.
// Safe for concurrent use; the lock is released while a caller waits.
type Limiter struct {
	mu           sync.Mutex
	stamps       []time.Time
	maxPerWindow int
	window       time.Duration
}

// New creates a limiter. Non-positive arguments fall back to the defaults.
func New(maxPerWindow int, window time.Duration) *Limiter {
	if maxPerWindow <= 0 {
		maxPerWindow = DefaultMaxPerWindow
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{maxPerWindow: maxPerWindow, window: window}
}

// Admit blocks until one more request fits inside the trailing window, then
// records it and returns. Returns the context error if the caller gives up
// while waiting.
func (l *Limiter) Admit(ctx context.Context) error {
	for {
		wait, ok := l.tryAdmit()
		if ok {
			return nil
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

// tryAdmit prunes stale timestamps and either records the request or reports
// how long until the oldest remaining entry leaves the window.
func (l *Limiter) tryAdmit() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.prune(now)

	if len(l.stamps) < l.maxPerWindow {
		l.stamps = append(l.stamps, now)
		return 0, true
	}

	wait := l.window - now.Sub(l.stamps[0])
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait, false
}

// prune drops entries older than the window. Stamps are append-ordered, so
// the first surviving entry marks the cut.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.stamps) && l.stamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}

// Len reports the number of requests currently inside the window.
// Operational visibility only.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(time.Now())
	return len(l.stamps)
}
