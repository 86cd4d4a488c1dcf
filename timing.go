// FILE: lixenwraith/reload/timing.go
package reload

import "time"

// Core timing constants for production use.
// These define the fundamental timing behavior of the reload layer.
const (
	// Reload loop intervals (ordered by frequency)
	MinReloadInterval     = time.Second     // Hard floor for config re-check frequency
	DefaultReloadInterval = time.Hour       // Standard config re-check frequency
	DefaultEnqueueTimeout = 5 * time.Second // Maximum wait for the change notification enqueue
)

// Derived timing relationships for internal use.
// These maintain consistent ratios between related timers.
const (
	// sweepIdleMultiplier sets how many full refill windows a bucket may sit
	// untouched before the sweeper may evict it.
	sweepIdleMultiplier = 3

	// sweepIntervalDivisor runs the sweeper more often than buckets expire so
	// eviction lag stays bounded.
	sweepIntervalDivisor = 2
)
