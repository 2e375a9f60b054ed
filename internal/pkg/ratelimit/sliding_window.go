package ratelimit

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Limiter is a per-key sliding window limiter. Attempt timestamps are
// kept in an expiring cache so idle keys are evicted instead of
// accumulating.
type Limiter struct {
	mu      sync.Mutex
	entries *cache.Cache
}

func NewLimiter(window time.Duration) *Limiter {
	return &Limiter{
		entries: cache.New(2*window, 4*window),
	}
}

// Allow records an attempt for key unless the window already holds max
// attempts. When denied, it returns how long until the oldest attempt
// leaves the window.
func (l *Limiter) Allow(key string, max int, window time.Duration) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	var timestamps []time.Time
	if v, found := l.entries.Get(key); found {
		for _, ts := range v.([]time.Time) {
			if ts.After(cutoff) {
				timestamps = append(timestamps, ts)
			}
		}
	}

	if len(timestamps) >= max {
		retryAfter := timestamps[0].Add(window).Sub(now)
		l.entries.Set(key, timestamps, cache.DefaultExpiration)
		return false, retryAfter
	}

	timestamps = append(timestamps, now)
	l.entries.Set(key, timestamps, cache.DefaultExpiration)
	return true, 0
}
