// Package metrics defines the Prometheus collectors exported on the control port.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "mdlauncher"

var (
	// ProbeDuration observes liveness probe latency by result.
	ProbeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "probe_duration_seconds",
		Help:      "Duration of backend liveness probes.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2},
	}, []string{"result"})

	// BackendOnline is 1 when the last observation saw the backend accepting connections.
	BackendOnline = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backend_online",
		Help:      "Whether the backend port accepted the last probe.",
	})

	// BackendLaunches counts launch attempts by outcome code ("ok" or an error code).
	BackendLaunches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_launches_total",
		Help:      "Backend launch attempts by outcome.",
	}, []string{"outcome"})

	// BackendTerminations counts termination requests by outcome.
	BackendTerminations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_terminations_total",
		Help:      "Backend termination requests by outcome.",
	}, []string{"outcome"})

	// RestartAttempts mirrors the supervisor's consecutive restart counter.
	RestartAttempts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "restart_attempts",
		Help:      "Consecutive crash restarts since the backend was last desired or seen live.",
	})

	// GaveUpTotal counts how often the restart budget was exhausted.
	GaveUpTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "restart_budget_exhausted_total",
		Help:      "Times the supervisor gave up after reaching the restart cap.",
	})

	// Commands counts control commands by name and result.
	Commands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Control commands handled by name and result.",
	}, []string{"command", "result"})
)

// Registry holds every launcher collector plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ProbeDuration,
		BackendOnline,
		BackendLaunches,
		BackendTerminations,
		RestartAttempts,
		GaveUpTotal,
		Commands,
	)
}

// BoolGauge converts a boolean to a gauge value.
func BoolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
