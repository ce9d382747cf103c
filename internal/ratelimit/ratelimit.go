// Package ratelimit throttles credential-guessing attempts against the
// login endpoints with a fixed-window in-memory counter.
package ratelimit

import (
	"sync"
	"time"
)

// Result reports the outcome of a limiter check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

type memoryEntry struct {
	window int64
	count  int
}

// MemoryLimiter implements a fixed-window in-memory rate limiter. State is
// process-local; limits reset on restart.
type MemoryLimiter struct {
	window time.Duration
	limit  int

	mu       sync.Mutex
	counters map[string]*memoryEntry
}

// NewMemoryLimiter constructs a limiter allowing limit hits per window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		window:   window,
		limit:    limit,
		counters: make(map[string]*memoryEntry),
	}
}

// Allow checks whether the keyed request fits in the current window.
func (l *MemoryLimiter) Allow(key string, now time.Time) Result {
	if l.limit <= 0 || key == "" {
		return Result{Allowed: true}
	}
	windowIndex := now.UnixNano() / int64(l.window)
	reset := time.Unix(0, (windowIndex+1)*int64(l.window)).UTC()

	l.mu.Lock()
	defer l.mu.Unlock()
	// Entries from finished windows carry no state worth keeping; drop
	// them so the map does not grow with every distinct key ever seen.
	for k, e := range l.counters {
		if e.window < windowIndex {
			delete(l.counters, k)
		}
	}
	entry := l.counters[key]
	if entry == nil {
		entry = &memoryEntry{window: windowIndex}
		l.counters[key] = entry
	}
	if entry.window != windowIndex {
		entry.window = windowIndex
		entry.count = 0
	}
	if entry.count >= l.limit {
		return Result{Allowed: false, Remaining: 0, Reset: reset}
	}
	entry.count++
	return Result{Allowed: true, Remaining: l.limit - entry.count, Reset: reset}
}
