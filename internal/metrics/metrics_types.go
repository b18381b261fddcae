package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Graph Metrics
	GraphNodesTotal      prometheus.Gauge
	GraphEdgesTotal      prometheus.Gauge
	GraphMutationsTotal  *prometheus.CounterVec
	GraphRejectionsTotal *prometheus.CounterVec
	TelemetryMergesTotal prometheus.Counter

	// Solver Sync Metrics
	SolverConnected        prometheus.Gauge
	SolverConnectsTotal    *prometheus.CounterVec
	GraphPushesTotal       prometheus.Counter
	ValveCommandsTotal     prometheus.Counter
	SimulationsTotal       *prometheus.CounterVec
	SimulationDuration     prometheus.Histogram
	ProtocolErrorsTotal    prometheus.Counter
	SolverMessagesTotal    *prometheus.CounterVec
	SolverFlowRateM3s      prometheus.Gauge
	DebounceCoalescedTotal prometheus.Counter

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	EventStreamClients  prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initGraphMetrics()
	r.initSolverMetrics()
	r.initHTTPMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
