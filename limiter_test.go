// FILE: lixenwraith/reload/limiter_test.go
package reload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterBurstThenDrain(t *testing.T) {
	l := NewLimiter(RateLimitConfig{
		Enabled:    true,
		RatePerSec: 10.0,
		Burst:      2,
	}, nil)

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	// One token's worth of refill at 10/s, plus slack.
	time.Sleep(120 * time.Millisecond)
	assert.True(t, l.Allow("k"))
}

func TestLimiterPerKeyIsolation(t *testing.T) {
	l := NewLimiter(RateLimitConfig{
		Enabled:    true,
		PerIP:      true,
		PerUser:    true,
		RatePerSec: 10.0,
		Burst:      1,
	}, nil)

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	// Key "b" has its own bucket, unaffected by "a"'s exhaustion.
	assert.True(t, l.Allow("b"))
}

func TestLimiterDisabledAllowsWithoutState(t *testing.T) {
	l := NewLimiter(RateLimitConfig{Enabled: false, RatePerSec: 1.0, Burst: 1}, nil)

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("k"))
	}
	assert.Zero(t, l.BucketCount(), "disabled limiter must not materialize buckets")
}

func TestLimiterExemptPaths(t *testing.T) {
	l := NewLimiter(RateLimitConfig{
		Enabled:     true,
		RatePerSec:  1.0,
		Burst:       1,
		ExemptPaths: []string{"/health", "/metrics"},
	}, nil)

	assert.True(t, l.IsExempt("/health"))
	assert.True(t, l.IsExempt("/metrics"))
	assert.False(t, l.IsExempt("/api/things"))
	// Exact match only, no prefix semantics.
	assert.False(t, l.IsExempt("/health/live"))

	// Callers check IsExempt before Allow, so exemption never touches buckets.
	assert.Zero(t, l.BucketCount())
}

func TestLimiterKeyDerivation(t *testing.T) {
	t.Run("PreferSubjectOverAddress", func(t *testing.T) {
		l := NewLimiter(RateLimitConfig{Enabled: true, PerIP: true, PerUser: true, RatePerSec: 1, Burst: 1}, nil)

		key, ok := l.Key("203.0.113.7", "alice")
		require.True(t, ok)
		assert.Equal(t, "user:alice", key)

		key, ok = l.Key("203.0.113.7", "")
		require.True(t, ok)
		assert.Equal(t, "ip:203.0.113.7", key)
	})

	t.Run("NoDimensionApplies", func(t *testing.T) {
		l := NewLimiter(RateLimitConfig{Enabled: true, RatePerSec: 1, Burst: 1}, nil)

		_, ok := l.Key("203.0.113.7", "alice")
		assert.False(t, ok)
	})
}

func TestLimiterRebuildResetsQuotas(t *testing.T) {
	cfg := RateLimitConfig{Enabled: true, PerIP: true, RatePerSec: 0.1, Burst: 1}

	l := NewLimiter(cfg, nil)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	// Reconfiguration starts every key over at full capacity.
	rebuilt := NewLimiter(cfg, nil)
	assert.True(t, rebuilt.Allow("k"))
}

func TestLimiterSweepEvictsIdleBuckets(t *testing.T) {
	l := NewLimiter(RateLimitConfig{Enabled: true, RatePerSec: 100.0, Burst: 1}, nil)

	l.Allow("idle")
	time.Sleep(50 * time.Millisecond)
	l.Allow("active")

	evicted := l.Sweep(25 * time.Millisecond)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, l.BucketCount())

	// The evicted key simply gets a fresh, full bucket on next use.
	assert.True(t, l.Allow("idle"))
}

func TestLimiterConcurrentSameKey(t *testing.T) {
	l := NewLimiter(RateLimitConfig{Enabled: true, RatePerSec: 0.001, Burst: 50}, nil)

	results := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		go func() { results <- l.Allow("shared") }()
	}

	allowed := 0
	for i := 0; i < 100; i++ {
		if <-results {
			allowed++
		}
	}
	// Exactly the burst is admitted; the check-and-decrement critical section
	// prevents two callers spending the same token.
	assert.Equal(t, 50, allowed)
	assert.Equal(t, 1, l.BucketCount())
}
