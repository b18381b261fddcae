package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var metric dto.Metric
	if err := m.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	switch {
	case metric.Counter != nil:
		return metric.Counter.GetValue()
	case metric.Gauge != nil:
		return metric.Gauge.GetValue()
	}
	t.Fatal("metric is neither a counter nor a gauge")
	return 0
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.GraphNodesTotal == nil {
		t.Error("GraphNodesTotal not initialized")
	}
	if r.GraphPushesTotal == nil {
		t.Error("GraphPushesTotal not initialized")
	}
	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordMutation(t *testing.T) {
	r := NewRegistry()

	r.RecordMutation("add_node", 1, 0)
	r.RecordMutation("add_node", 2, 0)
	r.RecordMutation("add_edge", 2, 1)

	if got := value(t, r.GraphMutationsTotal.WithLabelValues("add_node")); got != 2 {
		t.Errorf("expected 2 add_node mutations, got %v", got)
	}
	if got := value(t, r.GraphNodesTotal); got != 2 {
		t.Errorf("expected 2 nodes, got %v", got)
	}
	if got := value(t, r.GraphEdgesTotal); got != 1 {
		t.Errorf("expected 1 edge, got %v", got)
	}
}

func TestRecordSimulation(t *testing.T) {
	r := NewRegistry()

	r.RecordSimulation("success", 120*time.Millisecond)
	r.RecordSimulation("error", 10*time.Millisecond)
	r.RecordSimulation("success", 80*time.Millisecond)

	if got := value(t, r.SimulationsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("expected 2 successful simulations, got %v", got)
	}
}

func TestSetSolverConnected(t *testing.T) {
	r := NewRegistry()

	r.SetSolverConnected(true)
	if got := value(t, r.SolverConnected); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
	r.SetSolverConnected(false)
	if got := value(t, r.SolverConnected); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.GraphPushesTotal.Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "walflow_solver_graph_pushes_total 1") {
		t.Errorf("expected push counter in output, got:\n%s", body)
	}
}
