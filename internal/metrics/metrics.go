package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordMutation records an applied graph mutation and the resulting graph size
func (r *Registry) RecordMutation(operation string, nodes, edges int) {
	r.GraphMutationsTotal.WithLabelValues(operation).Inc()
	r.GraphNodesTotal.Set(float64(nodes))
	r.GraphEdgesTotal.Set(float64(edges))
}

// RecordRejection records a graph mutation that failed validation
func (r *Registry) RecordRejection(operation, reason string) {
	r.GraphRejectionsTotal.WithLabelValues(operation, reason).Inc()
}

// RecordSimulation records the terminal outcome of a simulation request
func (r *Registry) RecordSimulation(result string, duration time.Duration) {
	r.SimulationsTotal.WithLabelValues(result).Inc()
	r.SimulationDuration.Observe(duration.Seconds())
}

// SetSolverConnected sets the solver connection gauge
func (r *Registry) SetSolverConnected(connected bool) {
	if connected {
		r.SolverConnected.Set(1)
	} else {
		r.SolverConnected.Set(0)
	}
}

// Handler returns an HTTP handler exposing the registry
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
