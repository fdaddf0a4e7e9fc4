package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryLimiter is a fixed-window limiter held in process memory.
// A limit of zero or less admits everything.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*window
}

func NewMemoryLimiter(limit int, windowSize time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  windowSize,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// WithClock swaps the time source. Tests use it to step past a window.
func (m *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	if m.limit <= 0 {
		return Decision{Allowed: true}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(m.window)}
		m.windows[key] = w
	}

	if w.count >= int64(m.limit) {
		return Decision{Allowed: false, Limit: m.limit, ResetIn: w.resetAt.Sub(now)}, nil
	}

	w.count++
	return Decision{
		Allowed:   true,
		Limit:     m.limit,
		Remaining: remaining(m.limit, w.count),
		ResetIn:   w.resetAt.Sub(now),
	}, nil
}

// Prune drops expired windows and returns how many were removed.
func (m *MemoryLimiter) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
