package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSolverMetrics() {
	r.SolverConnected = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "walflow_solver_connected",
			Help: "Whether the solver connection is open (1) or not (0)",
		},
	)

	r.SolverConnectsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "walflow_solver_connects_total",
			Help: "Total number of solver connection attempts",
		},
		[]string{"result"},
	)

	r.GraphPushesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "walflow_solver_graph_pushes_total",
			Help: "Total number of update_graph messages sent",
		},
	)

	r.ValveCommandsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "walflow_solver_valve_commands_total",
			Help: "Total number of update_valve messages sent",
		},
	)

	r.SimulationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "walflow_solver_simulations_total",
			Help: "Total number of simulations by outcome",
		},
		[]string{"result"},
	)

	r.SimulationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "walflow_solver_simulation_duration_seconds",
			Help:    "Time from run_simulation to a terminal solver response",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	r.ProtocolErrorsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "walflow_solver_protocol_errors_total",
			Help: "Total number of malformed solver messages dropped",
		},
	)

	r.SolverMessagesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "walflow_solver_messages_total",
			Help: "Total number of solver messages received by status",
		},
		[]string{"status"},
	)

	r.SolverFlowRateM3s = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "walflow_solver_flow_rate_m3s",
			Help: "Last system flow rate reported by the solver",
		},
	)

	r.DebounceCoalescedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "walflow_solver_debounce_coalesced_total",
			Help: "Total number of mutations folded into a later graph push",
		},
	)
}
