// Package metrics provides Prometheus metrics collection for the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the API.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Auth metrics
	AuthFailures *prometheus.CounterVec

	// Path duplication metrics
	ModulesCloned prometheus.Counter
	CloneMisses   prometheus.Counter
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learnpath",
				Name:      "requests_total",
				Help:      "Total number of requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "learnpath",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "learnpath",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learnpath",
				Name:      "auth_failures_total",
				Help:      "Total number of rejected requests at the auth gate",
			},
			[]string{"reason"},
		),
		ModulesCloned: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "learnpath",
				Name:      "modules_cloned_total",
				Help:      "Modules copied while creating paths",
			},
		),
		CloneMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "learnpath",
				Name:      "clone_misses_total",
				Help:      "Embedded modules whose source could not be found",
			},
		),
	}
}
