// File: lixenwraith/reload/example/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/reload"
	"github.com/nats-io/nats.go"
)

// Demonstrates wiring the reload layer into a server process: initial load,
// key resolution, runtime state, and the background loop with graceful
// shutdown. Run with a config.toml in the working directory, for example:
//
//	[auth]
//	jwt_secret = "dev-secret-change-me"
//
//	[rate_limit]
//	enabled = true
//	rate_per_sec = 10.0
//	burst = 20
//	exempt_paths = ["/health"]
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := reload.Load("config.toml")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// A server must not start without a usable verifier.
	verifier, info, err := reload.ResolveKeyMaterial(cfg.Auth)
	if err != nil {
		logger.Error("failed to resolve key material", "error", err)
		os.Exit(1)
	}
	logger.Info("verifier ready",
		"mode", info.Mode,
		"fingerprint", info.Fingerprint,
		"key_type", info.KeyType,
		"bits", info.Bits,
	)

	sink, err := reload.NewAuditSink(cfg.Logging.Dir)
	if err != nil {
		logger.Error("failed to open audit sink", "error", err)
		os.Exit(1)
	}

	// Job queue is optional; fall back to in-memory when NATS is absent.
	var queue reload.JobQueue = reload.NewMemoryQueue()
	if url := os.Getenv("NATS_URL"); url != "" {
		nc, err := nats.Connect(url)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		queue = reload.NewNATSQueue(nc, "jobs")
	}

	state := reload.NewState(verifier, sink, queue, reload.NewUpdates())

	r, err := reload.NewBuilder().
		WithFile("config.toml").
		WithInterval(time.Minute).
		WithInitial(cfg).
		WithState(state).
		WithLogger(logger).
		WithLogLevelHook(func(level string) error {
			logger.Info("log level change requested", "level", level)
			return nil
		}).
		Build()
	if err != nil {
		logger.Error("failed to build reloader", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go r.Run(ctx)

	// Request path sketch: check exemption, derive key, acquire.
	limiter := r.Limiter()
	if !limiter.IsExempt("/api/things") {
		if key, ok := limiter.Key("203.0.113.7", "user-42"); ok && !limiter.Allow(key) {
			logger.Warn("request would be rejected with 429")
		}
	}
	state.Audit("GET", "/api/things", nil, nil, nil)

	<-ctx.Done()
	logger.Info("shutting down")
}
