// File: lixenwraith/reload/loop.go
package reload

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LogLevelHook applies a new log verbosity at runtime. It is invoked only when
// the logging level actually changed; its failure is logged and does not
// affect any other section's reload.
type LogLevelHook func(level string) error

// Reloader is the background reload loop: on a fixed interval it loads a
// candidate configuration, validates it, diffs it field-by-field against the
// last-applied snapshot, and for every changed section invokes exactly that
// section's targeted reload. It is the sole writer of the hot-swap cells; the
// request path only ever reads them.
type Reloader struct {
	interval time.Duration
	load     LoaderFunc
	validate ValidatorFunc
	state    *State
	limiter  *Cell[*Limiter]
	logLevel LogLevelHook
	logger   *slog.Logger
	metrics  *Metrics

	mu      sync.RWMutex
	current Config // last-applied snapshot
}

// Current returns the last-applied configuration snapshot.
func (r *Reloader) Current() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Limiter returns the currently installed rate limiter.
func (r *Reloader) Limiter() *Limiter {
	return r.limiter.Load()
}

// Run executes reload cycles until ctx is cancelled. It also runs the
// idle-bucket sweeper for the installed limiter. Run blocks; start it on its
// own goroutine.
func (r *Reloader) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	sweep := time.NewTicker(r.limiter.Load().sweepInterval())
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.ReloadNow(ctx)
		case <-sweep.C:
			l := r.limiter.Load()
			if evicted := l.Sweep(l.maxIdle()); evicted > 0 {
				r.logger.Debug("swept idle rate-limit buckets", "evicted", evicted)
			}
			sweep.Reset(l.sweepInterval())
		}
	}
}

// ReloadNow performs one reload cycle immediately: load, validate, diff,
// targeted per-section reloads, notify. Safe to call from an admin endpoint
// between ticks. Errors never propagate to callers; the old configuration and
// all installed components stay in effect on any failure.
func (r *Reloader) ReloadNow(ctx context.Context) {
	next, err := r.load()
	if err != nil {
		r.logger.Error("failed to reload config", "error", err)
		r.metrics.observeCycle(outcomeLoadError)
		return
	}

	if err := r.validate(next); err != nil {
		r.logger.Error("loaded config failed validation, ignoring", "error", err)
		r.metrics.observeCycle(outcomeValidateError)
		return
	}

	r.mu.Lock()
	old := r.current
	if next.Equal(old) {
		r.mu.Unlock()
		r.metrics.observeCycle(outcomeUnchanged)
		return
	}
	// Publish before notifying so every handler below that asks for the
	// current snapshot already observes the new one.
	r.current = next
	r.mu.Unlock()

	r.logger.Info("configuration changed, applying targeted reloads")

	// Sections that did not change are left untouched. One section's failure
	// never blocks another's.
	r.reloadLogLevel(old, next)
	r.reloadAuditSink(old, next)
	r.reloadVerifier(old, next)

	// The limiter is cheap to rebuild and holds no cache worth preserving, so
	// it is always refreshed when anything changed. Quotas restart at full
	// capacity; that is the documented behavior of a reload.
	r.limiter.Swap(NewLimiter(next.RateLimit, r.metrics))
	r.metrics.observeSection("rate_limiter", nil)
	r.logger.Info("rate limiter configuration reloaded")

	r.notify(ctx, old, next)
	r.metrics.observeCycle(outcomeApplied)
}

// reloadLogLevel applies the new verbosity through the injected hook.
func (r *Reloader) reloadLogLevel(old, next Config) {
	if old.Logging.Level == next.Logging.Level || r.logLevel == nil {
		return
	}

	if err := r.logLevel(next.Logging.Level); err != nil {
		r.logger.Error("failed to reload log level", "error", err)
		r.metrics.observeSection("log_level", err)
		return
	}
	r.metrics.observeSection("log_level", nil)
	r.logger.Info("log level updated at runtime", "new_level", next.Logging.Level)
}

// reloadAuditSink swaps the sink only when the destination changed. The old
// sink is left open: in-flight writers that captured it finish on the old
// handle, and the file is released when the last reference is collected.
func (r *Reloader) reloadAuditSink(old, next Config) {
	if old.Logging.Dir == next.Logging.Dir {
		return
	}

	sink, err := NewAuditSink(next.Logging.Dir)
	if err != nil {
		r.logger.Error("new audit sink failed to open; leaving existing sink in place", "error", err)
		r.metrics.observeSection("audit_sink", err)
		return
	}
	r.state.SwapAuditSink(sink)
	r.metrics.observeSection("audit_sink", nil)
	r.logger.Info("swapped audit sink at runtime", "dir", next.Logging.Dir)
}

// reloadVerifier rebuilds the verifier only when the key material changed.
// A rebuild failure keeps the previous verifier installed; the swap is skipped
// entirely for this section. Needless swaps are avoided because replacing the
// verifier invalidates downstream bearer-identity caches.
func (r *Reloader) reloadVerifier(old, next Config) {
	if old.Auth == next.Auth {
		return
	}

	verifier, info, err := ResolveKeyMaterial(next.Auth)
	if err != nil {
		r.logger.Error("new verifier failed to build; leaving existing verifier in place", "error", err)
		r.metrics.observeSection("verifier", err)
		return
	}
	r.state.SwapVerifier(verifier)
	r.metrics.observeSection("verifier", nil)
	r.logger.Info("swapped verifier at runtime",
		"mode", info.Mode,
		"fingerprint", info.Fingerprint,
		"key_type", info.KeyType,
		"bits", info.Bits,
	)
}

// notify emits the generic change notification: one job to the external queue
// and one event to in-process subscribers. Best-effort on both counts; a
// failed enqueue does not roll back the applied sections.
func (r *Reloader) notify(ctx context.Context, old, next Config) {
	if r.state.Updates != nil {
		r.state.Updates.publish(Event{Old: old, New: next})
	}

	if r.state.Jobs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultEnqueueTimeout)
	defer cancel()
	if err := r.state.Jobs.Enqueue(ctx, JobConfigReload, ReloadPayload{Old: old, New: next}); err != nil {
		r.logger.Warn("failed to enqueue config change notification", "error", err)
	}
}
