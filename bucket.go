// File: lixenwraith/reload/bucket.go
package reload

import (
	"sync"
	"time"
)

// TokenBucket is a single-key rate-limiter primitive: fixed capacity,
// continuous refill, lazily updated on each acquisition attempt.
type TokenBucket struct {
	mu           sync.Mutex
	capacity     float64
	tokens       float64
	refillPerSec float64
	lastCheck    time.Time
}

// NewTokenBucket creates a full bucket with the given burst capacity and
// refill rate. Fractional refill rates are supported.
func NewTokenBucket(capacity int, refillPerSec float64) *TokenBucket {
	return &TokenBucket{
		capacity:     float64(capacity),
		tokens:       float64(capacity),
		refillPerSec: refillPerSec,
		lastCheck:    time.Now(),
	}
}

// TryAcquire answers whether one unit of work is allowed right now. The refill
// computation and the decrement form a single critical section, so two
// concurrent callers cannot both spend the same token. Denial has no side
// effect beyond the refill bookkeeping.
func (b *TokenBucket) TryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastCheck).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.tokens+elapsed*b.refillPerSec, b.capacity)
		b.lastCheck = now
	}

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

// lastTouched reports when the bucket last saw an acquisition attempt.
// Used by the idle sweep.
func (b *TokenBucket) lastTouched() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastCheck
}
