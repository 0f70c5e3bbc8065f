// Package ratelimit counts attempts per key inside a trailing time window.
package ratelimit

import (
	"sync"
	"time"
)

// sweepEvery is how many checks pass between full sweeps of idle keys.
const sweepEvery = 1024

// Limiter allows at most max attempts per key within window.
// Rejected attempts are not counted.
type Limiter struct {
	mu       sync.Mutex
	window   time.Duration
	max      int
	attempts map[string][]time.Time
	checks   int
	now      func() time.Time
}

func New(window time.Duration, max int) *Limiter {
	return &Limiter{
		window:   window,
		max:      max,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow records an attempt for key when under the limit. When over it,
// retryAfter is the time until the earliest counted attempt leaves the window.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.checks++
	if l.checks%sweepEvery == 0 {
		l.sweep(now)
	}

	hits := prune(l.attempts[key], now.Add(-l.window))
	if len(hits) >= l.max {
		l.attempts[key] = hits
		return false, hits[0].Add(l.window).Sub(now)
	}
	l.attempts[key] = append(hits, now)
	return true, 0
}

func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.window)
	for key, hits := range l.attempts {
		if hits = prune(hits, cutoff); len(hits) == 0 {
			delete(l.attempts, key)
		} else {
			l.attempts[key] = hits
		}
	}
}

// prune drops attempts at or before cutoff. hits is sorted ascending.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
