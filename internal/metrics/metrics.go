// Package metrics holds the Prometheus collectors for backend calls, autosuggest
// lookups and the HTTP gateway.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dirsearch"

// Backend and autosuggest metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Total number of requests to the directory backend",
		},
		[]string{"endpoint", "status"}, // status: success / error
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Directory backend request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	SuggestRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggest_requests_total",
			Help:      "Autosuggest lookups by outcome",
		},
		[]string{"outcome"}, // dispatched / applied / stale / failed / skipped
	)

	SearchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_failures_total",
			Help:      "Searches that resolved to the empty result because of a failure",
		},
	)
)

// Collectors returns every collector this package defines.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		BackendRequestsTotal,
		BackendRequestDuration,
		SuggestRequestsTotal,
		SearchFailuresTotal,
		httpRequestDuration,
		httpRequestsTotal,
	}
}

// Register registers all collectors on reg, or the default registerer when reg is nil.
// Collectors already present on reg are skipped, so repeated calls are safe.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return fmt.Errorf("register collector: %w", err)
		}
	}
	return nil
}
