// File: lixenwraith/reload/builder.go
package reload

import (
	"log/slog"
	"time"
)

// Builder provides a fluent interface for assembling a Reloader.
type Builder struct {
	interval   time.Duration
	load       LoaderFunc
	validators []ValidatorFunc
	state      *State
	logLevel   LogLevelHook
	logger     *slog.Logger
	metrics    *Metrics
	initial    Config
	hasInitial bool
}

// NewBuilder creates a new reloader builder.
func NewBuilder() *Builder {
	return &Builder{
		validators: make([]ValidatorFunc, 0),
	}
}

// WithInterval sets how often the loop re-checks the configuration source.
// Values below MinReloadInterval are raised to it.
func (b *Builder) WithInterval(d time.Duration) *Builder {
	b.interval = d
	return b
}

// WithFile binds the loop to a configuration file path.
func (b *Builder) WithFile(path string) *Builder {
	b.load = FileLoader(path)
	return b
}

// WithLoader sets a custom configuration source.
func (b *Builder) WithLoader(load LoaderFunc) *Builder {
	b.load = load
	return b
}

// WithValidator appends a semantic check run against every candidate snapshot.
// Config.Validate always runs first.
func (b *Builder) WithValidator(v ValidatorFunc) *Builder {
	if v != nil {
		b.validators = append(b.validators, v)
	}
	return b
}

// WithState sets the shared runtime state whose cells the loop swaps.
func (b *Builder) WithState(s *State) *Builder {
	b.state = s
	return b
}

// WithInitial sets the startup snapshot the first cycle diffs against.
func (b *Builder) WithInitial(cfg Config) *Builder {
	b.initial = cfg
	b.hasInitial = true
	return b
}

// WithLogLevelHook sets the function that applies a changed log verbosity.
func (b *Builder) WithLogLevelHook(h LogLevelHook) *Builder {
	b.logLevel = h
	return b
}

// WithLogger sets the structured logger used by the loop.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetrics attaches operational counters to the loop and the limiters it
// builds.
func (b *Builder) WithMetrics(m *Metrics) *Builder {
	b.metrics = m
	return b
}

// Build assembles the Reloader, filling unset options with defaults. The
// initial rate limiter is built from the initial snapshot so traffic shaping
// is live before the first tick.
func (b *Builder) Build() (*Reloader, error) {
	if b.load == nil {
		return nil, ErrMissingLoader
	}
	if b.state == nil {
		return nil, ErrMissingState
	}

	interval := b.interval
	if interval == 0 {
		interval = DefaultReloadInterval
	}
	if interval < MinReloadInterval {
		interval = MinReloadInterval
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	initial := b.initial
	if !b.hasInitial {
		initial = Default()
	}

	validators := b.validators
	validate := func(cfg Config) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		for _, v := range validators {
			if err := v(cfg); err != nil {
				return err
			}
		}
		return nil
	}

	return &Reloader{
		interval: interval,
		load:     b.load,
		validate: validate,
		state:    b.state,
		limiter:  NewCell(NewLimiter(initial.RateLimit, b.metrics)),
		logLevel: b.logLevel,
		logger:   logger,
		metrics:  b.metrics,
		current:  initial,
	}, nil
}
