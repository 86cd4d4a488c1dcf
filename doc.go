// File: lixenwraith/reload/doc.go

// Package reload is the runtime configuration and live-reconfiguration layer of
// a multi-tenant API server. It lets a small set of security and traffic-shaping
// components (token verifier, audit sink, rate limiter, log verbosity) be
// replaced while the server keeps serving requests: readers are never locked
// out, a writer replacing a component never races readers using the old one,
// and the server is never left with a partially-applied configuration.
//
// Features:
//   - Typed configuration snapshot loaded from TOML, JSON or YAML files with
//     environment-variable overrides
//   - Generic hot-swap Cell holding an immutable component instance behind a
//     read-write lock; readers copy the reference and release immediately
//   - Per-key token-bucket rate limiter with exempt paths and idle-bucket sweep
//   - Key-material resolution (inline PEM, PEM file, or shared secret) into a
//     JWT verifier plus auditable key metadata
//   - Background reload loop: load, validate, diff field-by-field, invoke only
//     the targeted per-section reloads, then notify the job queue
//
// Quick Start:
//
//	cfg, err := reload.Load("config.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	verifier, info, err := reload.ResolveKeyMaterial(cfg.Auth)
//	if err != nil {
//	    log.Fatal(err) // fatal at startup, non-fatal during a later reload
//	}
//	slog.Info("verifier ready", "mode", info.Mode, "fingerprint", info.Fingerprint)
//
//	state := reload.NewState(verifier, sink, queue, reload.NewUpdates())
//	r, err := reload.NewBuilder().
//	    WithFile("config.toml").
//	    WithInterval(time.Hour).
//	    WithInitial(cfg).
//	    WithState(state).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go r.Run(ctx)
//
// Thread Safety:
// All exported types are safe for concurrent use. Component swaps hold a write
// lock only for the instant of pointer replacement; request-path reads never
// block on a reload cycle in progress.
package reload
