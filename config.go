// File: lixenwraith/reload/config.go
package reload

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// AuthConfig holds the token key-material settings. The three fields are
// mutually exclusive in effect: resolution tries jwt_pem, then jwt_pem_path,
// then jwt_secret, and the first populated one wins. The order is load-bearing;
// reordering it would silently change which credential takes effect in a
// misconfigured deployment.
type AuthConfig struct {
	JWTPEM     string `toml:"jwt_pem"`
	JWTPEMPath string `toml:"jwt_pem_path"`
	JWTSecret  string `toml:"jwt_secret"`
}

// LoggingConfig holds log verbosity and the audit log destination.
type LoggingConfig struct {
	Level string `toml:"level"`
	Dir   string `toml:"dir"`
}

// RateLimitConfig holds the traffic-shaping settings consumed by the limiter.
type RateLimitConfig struct {
	Enabled     bool     `toml:"enabled"`
	PerIP       bool     `toml:"per_ip"`
	PerUser     bool     `toml:"per_user"`
	RatePerSec  float64  `toml:"rate_per_sec"`
	Burst       int      `toml:"burst"`
	ExemptPaths []string `toml:"exempt_paths"`
}

// Equal reports whether two rate-limit sections carry the same values.
// Needed because ExemptPaths makes the struct non-comparable with ==.
func (r RateLimitConfig) Equal(o RateLimitConfig) bool {
	return r.Enabled == o.Enabled &&
		r.PerIP == o.PerIP &&
		r.PerUser == o.PerUser &&
		r.RatePerSec == o.RatePerSec &&
		r.Burst == o.Burst &&
		slices.Equal(r.ExemptPaths, o.ExemptPaths)
}

// Config is an immutable snapshot of all runtime tunables. It is produced by
// Load, validated before use, held by the reload loop as the last-applied
// value, and replaced wholesale on each successful reload cycle. Equality
// comparison drives change detection.
type Config struct {
	Auth      AuthConfig      `toml:"auth"`
	Logging   LoggingConfig   `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// Equal reports whether two snapshots carry the same values in every section.
func (c Config) Equal(o Config) bool {
	return c.Auth == o.Auth &&
		c.Logging == o.Logging &&
		c.RateLimit.Equal(o.RateLimit)
}

// Default returns the snapshot used when a setting is absent from every source.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			Enabled:    false,
			PerIP:      true,
			RatePerSec: 5.0,
			Burst:      10,
		},
	}
}

// validLogLevels are the verbosity names accepted by the logging section.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate performs semantic checks on a loaded snapshot. A validation failure
// during a reload cycle discards the candidate and keeps the previously-applied
// configuration authoritative.
func (c Config) Validate() error {
	var errs []error

	if c.Logging.Level != "" && !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RatePerSec <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.rate_per_sec must be positive, got %v", c.RateLimit.RatePerSec))
		}
		if c.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1, got %d", c.RateLimit.Burst))
		}
	}
	for _, p := range c.RateLimit.ExemptPaths {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("rate_limit.exempt_paths entry %q must start with '/'", p))
		}
	}

	return errors.Join(errs...)
}
