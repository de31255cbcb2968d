package ratelimit

import (
	"math"
	"sync"
	"time"

	"grocerynana/internal/models"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one golang.org/x/time/rate bucket per key in process
// memory. Buckets idle for two cleanup intervals are evicted.
type MemoryLimiter struct {
	perSecond       rate.Limit
	burst           int
	perMinute       int
	cleanupInterval time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	done    chan struct{}
	closed  bool
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter starts the eviction goroutine; call Close to stop it.
func NewMemoryLimiter(cfg models.RateLimitConfig) *MemoryLimiter {
	m := &MemoryLimiter{
		perSecond:       rate.Limit(float64(cfg.RequestsPerMinute) / 60),
		burst:           cfg.Burst,
		perMinute:       cfg.RequestsPerMinute,
		cleanupInterval: cfg.CleanupInterval,
		buckets:         make(map[string]*bucket),
		done:            make(chan struct{}),
	}
	go m.evictLoop()
	return m
}

func (m *MemoryLimiter) Allow(key string) (bool, Info) {
	now := time.Now()

	m.mu.Lock()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(m.perSecond, m.burst)}
		m.buckets[key] = b
	}
	b.lastSeen = now
	m.mu.Unlock()

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	info := Info{
		Limit:     m.perMinute,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		ResetAt:   now,
	}
	if missing := float64(m.burst) - tokens; missing > 0 {
		info.ResetAt = now.Add(time.Duration(missing / float64(m.perSecond) * float64(time.Second)))
	}

	if !allowed {
		// Time until one whole token is back in the bucket.
		info.RetryAfter = time.Duration((1 - tokens) / float64(m.perSecond) * float64(time.Second))
	}

	return allowed, info
}

// Size returns the number of tracked keys.
func (m *MemoryLimiter) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

// Close stops the eviction goroutine. It is safe to call more than once.
func (m *MemoryLimiter) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
}

func (m *MemoryLimiter) evictLoop() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.evictIdle(now)
		}
	}
}

func (m *MemoryLimiter) evictIdle(now time.Time) {
	cutoff := now.Add(-2 * m.cleanupInterval)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, b := range m.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}
