// Package metrics exposes Prometheus counters for refinement sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/refine"
)

// Collector records loop rounds, sub-loop outcomes and session durations.
// It implements refine.Observer.
type Collector struct {
	registry *prometheus.Registry

	rounds   *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	sessions *prometheus.HistogramVec
}

// New creates a Collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rounds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsmgen_refine_rounds_total",
				Help: "Checks performed by the refinement loop",
			},
			[]string{"phase", "resolved"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsmgen_refine_outcomes_total",
				Help: "Sub-loop outcomes (accepted or exhausted)",
			},
			[]string{"loop", "outcome"},
		),
		sessions: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsmgen_session_duration_seconds",
				Help:    "Duration of refinement sessions",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"status"},
		),
	}
	c.registry.MustRegister(c.rounds, c.outcomes, c.sessions)
	return c
}

var _ refine.Observer = (*Collector)(nil)

func (c *Collector) Round(phase refine.Phase, resolved bool) {
	r := "false"
	if resolved {
		r = "true"
	}
	c.rounds.WithLabelValues(string(phase), r).Inc()
}

func (c *Collector) Finished(loop refine.Phase, outcome domain.Outcome) {
	c.outcomes.WithLabelValues(string(loop), string(outcome)).Inc()
}

// ObserveSession records how long a session took; failed tells whether it ended in error.
func (c *Collector) ObserveSession(d time.Duration, failed bool) {
	status := "ok"
	if failed {
		status = "error"
	}
	c.sessions.WithLabelValues(status).Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
