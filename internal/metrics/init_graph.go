package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "walflow_graph_nodes_total",
			Help: "Number of equipment nodes in the graph",
		},
	)

	r.GraphEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "walflow_graph_edges_total",
			Help: "Number of pipe segments in the graph",
		},
	)

	r.GraphMutationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "walflow_graph_mutations_total",
			Help: "Total number of applied graph mutations",
		},
		[]string{"operation"},
	)

	r.GraphRejectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "walflow_graph_rejections_total",
			Help: "Total number of rejected graph mutations",
		},
		[]string{"operation", "reason"},
	)

	r.TelemetryMergesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "walflow_telemetry_merges_total",
			Help: "Total number of solver telemetry results merged into the graph",
		},
	)
}
