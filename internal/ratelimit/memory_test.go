package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"grocerynana/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, perMinute, burst int, cleanup time.Duration) *MemoryLimiter {
	t.Helper()
	l := NewMemoryLimiter(models.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: perMinute,
		Burst:             burst,
		CleanupInterval:   cleanup,
	})
	t.Cleanup(l.Close)
	return l
}

func TestMemoryLimiter_AllowUnderLimit(t *testing.T) {
	limiter := newTestLimiter(t, 60, 10, 5*time.Minute)

	allowed, info := limiter.Allow("10.0.0.1")
	assert.True(t, allowed)
	assert.Equal(t, 60, info.Limit)
	assert.Equal(t, 9, info.Remaining)
	assert.True(t, info.ResetAt.After(time.Now().Add(-time.Second)))
	assert.Zero(t, info.RetryAfter)
}

func TestMemoryLimiter_DeniesAfterBurst(t *testing.T) {
	limiter := newTestLimiter(t, 60, 3, 5*time.Minute)

	for i := range 3 {
		allowed, _ := limiter.Allow("10.0.0.1")
		require.True(t, allowed, "request %d", i+1)
	}

	allowed, info := limiter.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, info.RetryAfter, time.Second)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := newTestLimiter(t, 60, 1, 5*time.Minute)

	allowed, _ := limiter.Allow("10.0.0.1")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("10.0.0.1")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow("10.0.0.2")
	assert.True(t, allowed)
	assert.Equal(t, 2, limiter.Size())
}

func TestMemoryLimiter_ConcurrentAccess(t *testing.T) {
	limiter := newTestLimiter(t, 6000, 100, 5*time.Minute)

	var wg sync.WaitGroup
	for i := range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("client-%d", i%4)
			for range 25 {
				limiter.Allow(key)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, limiter.Size())
}

func TestMemoryLimiter_CloseTwice(t *testing.T) {
	limiter := NewMemoryLimiter(models.RateLimitConfig{RequestsPerMinute: 60, Burst: 1, CleanupInterval: time.Minute})
	limiter.Close()
	assert.NotPanics(t, limiter.Close)
}

func TestMemoryLimiter_EvictsIdleKeys(t *testing.T) {
	limiter := newTestLimiter(t, 60, 10, time.Minute)

	limiter.Allow("stale")
	limiter.Allow("fresh")

	limiter.mu.Lock()
	limiter.buckets["stale"].lastSeen = time.Now().Add(-3 * time.Minute)
	limiter.mu.Unlock()

	limiter.evictIdle(time.Now())

	limiter.mu.Lock()
	_, staleKept := limiter.buckets["stale"]
	_, freshKept := limiter.buckets["fresh"]
	limiter.mu.Unlock()

	assert.False(t, staleKept)
	assert.True(t, freshKept)
}

func TestMemoryLimiter_BackgroundEviction(t *testing.T) {
	limiter := newTestLimiter(t, 60, 10, 20*time.Millisecond)

	limiter.Allow("ephemeral")
	require.Equal(t, 1, limiter.Size())

	assert.Eventually(t, func() bool { return limiter.Size() == 0 },
		2*time.Second, 10*time.Millisecond)
}
