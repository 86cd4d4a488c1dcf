// File: lixenwraith/reload/metrics.go
package reload

import "github.com/prometheus/client_golang/prometheus"

// Reload cycle outcomes recorded on the ReloadCycles counter.
const (
	outcomeLoadError     = "load_error"
	outcomeValidateError = "validate_error"
	outcomeUnchanged     = "unchanged"
	outcomeApplied       = "applied"
)

// Metrics contains the operational counters of the reload layer.
type Metrics struct {
	// ReloadCycles counts ticks of the reload loop by outcome
	ReloadCycles *prometheus.CounterVec

	// SectionReloads counts targeted per-section reloads by result
	SectionReloads *prometheus.CounterVec

	// RateLimitDecisions counts limiter verdicts
	RateLimitDecisions *prometheus.CounterVec
}

// NewMetrics creates the metric set and registers it with reg.
// A nil reg uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ReloadCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reload",
				Subsystem: "loop",
				Name:      "cycles_total",
				Help:      "Reload loop ticks by outcome (load_error, validate_error, unchanged, applied)",
			},
			[]string{"outcome"},
		),
		SectionReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reload",
				Subsystem: "loop",
				Name:      "section_reloads_total",
				Help:      "Targeted per-section reloads by result",
			},
			[]string{"section", "result"},
		),
		RateLimitDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reload",
				Subsystem: "ratelimit",
				Name:      "decisions_total",
				Help:      "Rate limiter verdicts",
			},
			[]string{"decision"},
		),
	}

	reg.MustRegister(m.ReloadCycles, m.SectionReloads, m.RateLimitDecisions)
	return m
}

func (m *Metrics) observeCycle(outcome string) {
	if m == nil {
		return
	}
	m.ReloadCycles.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeSection(section string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SectionReloads.WithLabelValues(section, result).Inc()
}

func (m *Metrics) observeDecision(allowed bool) {
	if m == nil {
		return
	}
	if allowed {
		m.RateLimitDecisions.WithLabelValues("allowed").Inc()
	} else {
		m.RateLimitDecisions.WithLabelValues("denied").Inc()
	}
}
