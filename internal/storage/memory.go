package storage

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleLimiterTTL = 10 * time.Minute

var _ RateLimiter = (*MemoryLimiter)(nil)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-key token bucket held in process memory.
type MemoryLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	rateLimit rate.Limit
	rateBurst int
	now       func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryLimiter(ratePerSec float64, burst int) *MemoryLimiter {
	m := &MemoryLimiter{
		limiters:  make(map[string]*limiterEntry),
		rateLimit: rate.Limit(ratePerSec),
		rateBurst: burst,
		now:       time.Now,
		done:      make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (RateLimitResult, error) {
	now := m.now()

	m.mu.Lock()
	entry, ok := m.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(m.rateLimit, m.rateBurst)}
		m.limiters[key] = entry
	}
	entry.lastSeen = now
	m.mu.Unlock()

	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return RateLimitResult{Allowed: false}, nil
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return RateLimitResult{Allowed: false, RetryAfter: delay}, nil
	}
	return RateLimitResult{Allowed: true}, nil
}

func (m *MemoryLimiter) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}

// Len returns the number of tracked keys.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}

func (m *MemoryLimiter) evictIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, entry := range m.limiters {
		if now.Sub(entry.lastSeen) > idleLimiterTTL {
			delete(m.limiters, key)
		}
	}
}

func (m *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle(m.now())
		case <-m.done:
			return
		}
	}
}
