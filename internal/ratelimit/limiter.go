// Package ratelimit throttles HTTP clients with a token bucket per client
// address and reports the bucket state in X-RateLimit-* response headers.
package ratelimit

import "time"

// Limiter decides whether a keyed request may proceed. Implementations must be
// safe for concurrent use.
type Limiter interface {
	// Allow consumes one token for key when available.
	Allow(key string) (allowed bool, info Info)

	// Close stops background goroutines and releases resources.
	Close()
}

// Info is the bucket state after an Allow call.
type Info struct {
	Limit      int           // requests per minute
	Remaining  int           // whole tokens left
	ResetAt    time.Time     // when the bucket is full again
	RetryAfter time.Duration // only set when denied
}
