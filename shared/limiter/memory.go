package limiter

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count    int64
	expireAt time.Time
}

// MemoryLimiter keeps counters in process. It is meant for tests and single instance setups.
type MemoryLimiter struct {
	mu        sync.Mutex
	now       func() time.Time
	limit     int
	window    time.Duration
	windows   map[string]*window
	nextSweep time.Time
}

func NewMemoryLimiter(limit int, win time.Duration, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}

	return &MemoryLimiter{
		now:     now,
		limit:   limit,
		window:  win,
		windows: make(map[string]*window),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || !now.Before(w.expireAt) {
		w = &window{expireAt: now.Add(l.window)}
		l.windows[key] = w
	}

	w.count++

	return newResult(w.count, l.limit, l.window), nil
}

// sweep drops expired windows, at most once per window length.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}

	for key, w := range l.windows {
		if !now.Before(w.expireAt) {
			delete(l.windows, key)
		}
	}

	l.nextSweep = now.Add(l.window)
}

// Len is the number of tracked windows, expired ones included until the next sweep.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.windows)
}

// Reset drops every counter.
func (l *MemoryLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.windows = make(map[string]*window)
}
