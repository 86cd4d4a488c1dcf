// File: lixenwraith/reload/limiter.go
package reload

import (
	"sync"
	"time"
)

// Limiter dispatches rate-limit decisions per logical key (client address or
// authenticated subject), lazily materializing one TokenBucket per key. It is
// itself one of the hot-swappable components: the reload loop rebuilds it from
// the rate-limit section on every applied configuration change, which
// intentionally restarts every key's quota at full capacity.
type Limiter struct {
	Enabled    bool
	PerIP      bool
	PerUser    bool
	RatePerSec float64
	Burst      int

	exempt  map[string]struct{}
	buckets sync.Map // key string -> *TokenBucket
	metrics *Metrics
}

// NewLimiter builds a limiter from the rate-limit section with an empty bucket
// map. metrics may be nil.
func NewLimiter(cfg RateLimitConfig, metrics *Metrics) *Limiter {
	exempt := make(map[string]struct{}, len(cfg.ExemptPaths))
	for _, p := range cfg.ExemptPaths {
		exempt[p] = struct{}{}
	}
	return &Limiter{
		Enabled:    cfg.Enabled,
		PerIP:      cfg.PerIP,
		PerUser:    cfg.PerUser,
		RatePerSec: cfg.RatePerSec,
		Burst:      cfg.Burst,
		exempt:     exempt,
		metrics:    metrics,
	}
}

// IsExempt reports whether a request path is excluded from rate-limit
// accounting. Exact string match. Callers must check this before Allow so
// exempt traffic never consumes capacity or allocates a bucket.
func (l *Limiter) IsExempt(path string) bool {
	_, ok := l.exempt[path]
	return ok
}

// Key derives the bucket key for a request from the most specific available
// identity: authenticated subject first when per_user is enabled, falling back
// to the client address when per_ip is enabled. Returns ok=false when neither
// dimension applies; callers should skip Allow entirely in that case. The
// limiter itself is agnostic to the key string it is handed.
func (l *Limiter) Key(clientAddr, subject string) (string, bool) {
	if l.PerUser && subject != "" {
		return "user:" + subject, true
	}
	if l.PerIP && clientAddr != "" {
		return "ip:" + clientAddr, true
	}
	return "", false
}

// Allow acquires one token for the given key. A disabled limiter always allows
// without creating a bucket or touching any state. Bucket creation races
// resolve first-one-wins: the loser uses the winner's bucket.
func (l *Limiter) Allow(key string) bool {
	if !l.Enabled {
		return true
	}

	bucket, loaded := l.buckets.Load(key)
	if !loaded {
		bucket, _ = l.buckets.LoadOrStore(key, NewTokenBucket(l.Burst, l.RatePerSec))
	}

	allowed := bucket.(*TokenBucket).TryAcquire()
	if l.metrics != nil {
		l.metrics.observeDecision(allowed)
	}
	return allowed
}

// Sweep removes buckets that saw no acquisition attempt within maxIdle and
// returns how many were evicted. A request racing the eviction of its key
// simply re-creates a full bucket, which at worst grants one extra burst.
func (l *Limiter) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	evicted := 0
	l.buckets.Range(func(key, value any) bool {
		if value.(*TokenBucket).lastTouched().Before(cutoff) {
			l.buckets.Delete(key)
			evicted++
		}
		return true
	})
	return evicted
}

// BucketCount reports the number of live per-key buckets.
func (l *Limiter) BucketCount() int {
	n := 0
	l.buckets.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// sweepInterval derives how often the background sweeper should run for this
// limiter's refill rate: often enough that eviction lag stays bounded, never
// more often than once a second.
func (l *Limiter) sweepInterval() time.Duration {
	window := l.refillWindow()
	interval := window * sweepIdleMultiplier / sweepIntervalDivisor
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// maxIdle is the eviction threshold: several full refill windows, so an
// evicted bucket would have refilled to capacity anyway.
func (l *Limiter) maxIdle() time.Duration {
	return l.refillWindow() * sweepIdleMultiplier
}

// refillWindow is the time a fully drained bucket needs to refill completely.
func (l *Limiter) refillWindow() time.Duration {
	if l.RatePerSec <= 0 || l.Burst <= 0 {
		return time.Minute
	}
	return time.Duration(float64(l.Burst) / l.RatePerSec * float64(time.Second))
}
