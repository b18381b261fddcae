package syncclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walflow/internal/domain"
	"walflow/internal/metrics"
	"walflow/internal/protocol"
	"walflow/internal/service"
)

const waitFor = 2 * time.Second

// fakeSolver accepts WebSocket connections and records every message the
// client sends.
type fakeSolver struct {
	server   *httptest.Server
	received chan map[string]any
	conns    chan *websocket.Conn
}

func newFakeSolver(t *testing.T) *fakeSolver {
	t.Helper()
	fs := &fakeSolver{
		received: make(chan map[string]any, 64),
		conns:    make(chan *websocket.Conn, 4),
	}
	upgrader := websocket.Upgrader{}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fs.conns <- conn
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg map[string]any
			if json.Unmarshal(data, &msg) == nil {
				fs.received <- msg
			}
		}
	}))
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *fakeSolver) url() string {
	return "ws" + strings.TrimPrefix(fs.server.URL, "http")
}

func (fs *fakeSolver) conn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-fs.conns:
		return c
	case <-time.After(waitFor):
		t.Fatal("solver never received a connection")
		return nil
	}
}

func (fs *fakeSolver) next(t *testing.T) map[string]any {
	t.Helper()
	select {
	case msg := <-fs.received:
		return msg
	case <-time.After(waitFor):
		t.Fatal("solver never received a message")
		return nil
	}
}

func (fs *fakeSolver) quiet(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case msg := <-fs.received:
		t.Fatalf("unexpected message: %v", msg)
	case <-time.After(d):
	}
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

type harness struct {
	graph  *service.GraphService
	bus    *service.EventBus
	client *Client
	solver *fakeSolver
	runErr chan error
	cancel context.CancelFunc
}

func start(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	reg := metrics.NewRegistry()
	bus := service.NewEventBus()
	graph := service.NewGraphService(bus, service.WithMetrics(reg))
	solver := newFakeSolver(t)

	cfg := Config{URL: solver.url(), Debounce: 50 * time.Millisecond}
	if mutate != nil {
		mutate(&cfg)
	}
	client := New(cfg, graph, bus, WithMetrics(reg))

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{graph: graph, bus: bus, client: client, solver: solver, runErr: make(chan error, 1), cancel: cancel}
	go func() { h.runErr <- client.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-client.Done()
	})
	return h
}

// open waits for the handshake push and returns the server side connection.
func (h *harness) open(t *testing.T) (*websocket.Conn, map[string]any) {
	t.Helper()
	conn := h.solver.conn(t)
	msg := h.solver.next(t)
	require.Eventually(t, func() bool { return h.client.Status().State == StateOpen }, waitFor, 5*time.Millisecond)
	return conn, msg
}

func graphOf(t *testing.T, msg map[string]any) map[string]any {
	t.Helper()
	require.Equal(t, protocol.ActionUpdateGraph, msg["action"])
	g, ok := msg["graph"].(map[string]any)
	require.True(t, ok)
	return g
}

func TestHandshakePushesSnapshot(t *testing.T) {
	reg := metrics.NewRegistry()
	bus := service.NewEventBus()
	graph := service.NewGraphService(bus, service.WithMetrics(reg))
	_, err := graph.AddNode(domain.KindTank, domain.Position{}, nil)
	require.NoError(t, err)

	solver := newFakeSolver(t)
	client := New(Config{URL: solver.url()}, graph, bus, WithMetrics(reg))
	assert.Equal(t, StateDisconnected, client.Status().State)
	assert.NotEmpty(t, client.Status().SessionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)

	solver.conn(t)
	g := graphOf(t, solver.next(t))
	nodes := g["nodes"].([]any)
	require.Len(t, nodes, 1)
	assert.Equal(t, "node_0", nodes[0].(map[string]any)["id"])
	assert.Contains(t, g, "global_settings")
	assert.Eventually(t, func() bool { return client.Status().Pushes == 1 }, waitFor, 5*time.Millisecond)

	client.Close()
	select {
	case <-client.Done():
	case <-time.After(waitFor):
		t.Fatal("Run did not return after Close")
	}
	assert.Equal(t, StateClosed, client.Status().State)
}

func TestDebounceCoalescesEdits(t *testing.T) {
	h := start(t, nil)
	h.open(t)

	id, err := h.graph.AddNode(domain.KindValve, domain.Position{}, nil)
	require.NoError(t, err)
	for i := 1; i <= 10; i++ {
		require.NoError(t, h.graph.UpdateNodeParameters(id, map[string]any{domain.ParamOpening: float64(i * 10)}))
	}

	g := graphOf(t, h.solver.next(t))
	nodes := g["nodes"].([]any)
	require.Len(t, nodes, 1)
	data := nodes[0].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, 100.0, data[domain.ParamOpening])

	h.solver.quiet(t, 150*time.Millisecond)
}

func TestSettingsEditSchedulesPush(t *testing.T) {
	h := start(t, nil)
	h.open(t)

	settings := h.graph.Settings()
	settings.GlobalRoughness *= 2
	require.NoError(t, h.graph.UpdateSettings(settings))

	g := graphOf(t, h.solver.next(t))
	gs := g["global_settings"].(map[string]any)
	assert.InDelta(t, settings.GlobalRoughness, gs["global_roughness"], 1e-12)
}

func TestUpdateValve(t *testing.T) {
	h := start(t, func(c *Config) { c.Debounce = time.Hour })
	h.open(t)

	valve, err := h.graph.AddNode(domain.KindValve, domain.Position{}, nil)
	require.NoError(t, err)
	tank, err := h.graph.AddNode(domain.KindTank, domain.Position{}, nil)
	require.NoError(t, err)

	t.Run("sent immediately", func(t *testing.T) {
		require.NoError(t, h.client.UpdateValve(context.Background(), valve, 30))
		msg := h.solver.next(t)
		assert.Equal(t, protocol.ActionUpdateValve, msg["action"])
		assert.Equal(t, valve, msg["node_id"])
		assert.Equal(t, 30.0, msg["value"])

		n, _ := h.graph.GetNode(valve)
		assert.Equal(t, 30.0, n.Parameters[domain.ParamOpening])
	})

	t.Run("rejects non-valves", func(t *testing.T) {
		err := h.client.UpdateValve(context.Background(), tank, 30)
		assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	})

	t.Run("rejects out of range opening", func(t *testing.T) {
		err := h.client.UpdateValve(context.Background(), valve, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidParameter)
		n, _ := h.graph.GetNode(valve)
		assert.Equal(t, 30.0, n.Parameters[domain.ParamOpening])
	})

	t.Run("unknown node", func(t *testing.T) {
		err := h.client.UpdateValve(context.Background(), "node_99", 30)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	h.solver.quiet(t, 50*time.Millisecond)
}

func TestRunSimulation(t *testing.T) {
	h := start(t, func(c *Config) { c.Debounce = 300 * time.Millisecond })
	conn, _ := h.open(t)

	tank, err := h.graph.AddNode(domain.KindTank, domain.Position{}, nil)
	require.NoError(t, err)
	pump, err := h.graph.AddNode(domain.KindPump, domain.Position{}, nil)
	require.NoError(t, err)
	pipe, err := h.graph.AddEdge(tank, "", pump, "", nil)
	require.NoError(t, err)
	before, _ := h.graph.GetNode(pump)

	ctx := context.Background()
	require.NoError(t, h.client.RunSimulation(ctx))

	// Pending edits are flushed ahead of the request.
	g := graphOf(t, h.solver.next(t))
	assert.Len(t, g["edges"].([]any), 1)
	assert.Equal(t, protocol.ActionRunSimulation, h.solver.next(t)["action"])
	assert.True(t, h.client.Status().Simulating)

	t.Run("duplicate request is rejected locally", func(t *testing.T) {
		assert.ErrorIs(t, h.client.RunSimulation(ctx), ErrSimulationInProgress)
		h.solver.quiet(t, 100*time.Millisecond)
	})

	t.Run("waiting keeps the flag", func(t *testing.T) {
		send(t, conn, map[string]any{"status": "waiting", "message": "no graph"})
		require.Eventually(t, func() bool { return h.client.Status().LastStatus == "waiting" }, waitFor, 5*time.Millisecond)
		assert.True(t, h.client.Status().Simulating)
	})

	t.Run("success merges telemetry", func(t *testing.T) {
		send(t, conn, map[string]any{
			"status": "success",
			"telemetry": map[string]any{
				"nodes": map[string]any{
					pump: map[string]any{
						"inlets":  []any{map[string]any{"pressure": 101325.0, "flow_rate": 0.01, "temperature": 313.15}},
						"outlets": []any{map[string]any{"pressure": 300000.0, "flow_rate": 0.01, "temperature": 313.15}},
					},
					"node_gone": map[string]any{},
				},
				"edges": map[string]any{
					pipe: map[string]any{"inlets": []any{}, "outlets": []any{map[string]any{"pressure": 101000.0}}},
				},
			},
			"flow_rate_m3s": 0.01,
		})
		require.Eventually(t, func() bool { return !h.client.Status().Simulating }, waitFor, 5*time.Millisecond)

		n, _ := h.graph.GetNode(pump)
		require.NotNil(t, n.Telemetry)
		assert.Equal(t, 300000.0, n.Telemetry.Outlets[0].Pressure)
		assert.Equal(t, before.Parameters, n.Parameters)

		e, _ := h.graph.GetEdge(pipe)
		require.NotNil(t, e.Telemetry)
		assert.Equal(t, 101000.0, e.Telemetry.Outlets[0].Pressure)

		st := h.client.Status()
		require.NotNil(t, st.FlowRateM3s)
		assert.Equal(t, 0.01, *st.FlowRateM3s)
		assert.Equal(t, "success", st.LastStatus)
	})

	t.Run("merge does not trigger a push", func(t *testing.T) {
		h.solver.quiet(t, 450*time.Millisecond)
	})

	t.Run("error is surfaced and clears the flag", func(t *testing.T) {
		require.NoError(t, h.client.RunSimulation(ctx))
		assert.Equal(t, protocol.ActionRunSimulation, h.solver.next(t)["action"])

		send(t, conn, map[string]any{"status": "error", "message": "Solver did not converge"})
		require.Eventually(t, func() bool { return !h.client.Status().Simulating }, waitFor, 5*time.Millisecond)
		st := h.client.Status()
		assert.Equal(t, "error", st.LastStatus)
		assert.Equal(t, "Solver did not converge", st.LastMessage)
	})
}

func TestMalformedFramesAreDropped(t *testing.T) {
	h := start(t, nil)
	conn, _ := h.open(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("WalFlow Server received: hi")))
	send(t, conn, map[string]any{"status": "exploded"})
	send(t, conn, map[string]any{"status": "waiting", "message": "still here"})

	require.Eventually(t, func() bool { return h.client.Status().LastMessage == "still here" }, waitFor, 5*time.Millisecond)
	assert.Equal(t, StateOpen, h.client.Status().State)
}

func TestSolverStatusEvents(t *testing.T) {
	h := start(t, nil)
	events := make(chan service.Event, 64)
	h.bus.Subscribe(events)
	defer h.bus.Unsubscribe(events)

	conn, _ := h.open(t)
	send(t, conn, map[string]any{"status": "error", "message": "bad"})

	deadline := time.After(waitFor)
	for {
		select {
		case e := <-events:
			if e.Type != service.EventSolverStatus {
				continue
			}
			ev, ok := e.Payload.(SolverEvent)
			require.True(t, ok)
			assert.Equal(t, protocol.StatusError, ev.Status)
			assert.Equal(t, "bad", ev.Message)
			return
		case <-deadline:
			t.Fatal("no solver status event")
		}
	}
}

func TestNotConnected(t *testing.T) {
	bus := service.NewEventBus()
	graph := service.NewGraphService(bus, service.WithMetrics(metrics.NewRegistry()))
	valve, err := graph.AddNode(domain.KindValve, domain.Position{}, nil)
	require.NoError(t, err)

	client := New(Config{URL: "ws://127.0.0.1:1/ws/simulate"}, graph, bus, WithMetrics(metrics.NewRegistry()))

	assert.ErrorIs(t, client.RunSimulation(context.Background()), ErrNotConnected)
	assert.ErrorIs(t, client.UpdateValve(context.Background(), valve, 20), ErrNotConnected)

	n, _ := graph.GetNode(valve)
	assert.Equal(t, 20.0, n.Parameters[domain.ParamOpening], "local edit is kept")
}

func TestDialFailureClosesClient(t *testing.T) {
	bus := service.NewEventBus()
	graph := service.NewGraphService(bus, service.WithMetrics(metrics.NewRegistry()))
	client := New(Config{URL: "ws://127.0.0.1:1/ws/simulate", HandshakeTimeout: time.Second}, graph, bus, WithMetrics(metrics.NewRegistry()))

	err := client.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateClosed, client.Status().State)
	assert.ErrorIs(t, client.RunSimulation(context.Background()), ErrClosed)
}

func TestServerDropWithoutReconnect(t *testing.T) {
	h := start(t, nil)
	conn, _ := h.open(t)

	require.NoError(t, h.client.RunSimulation(context.Background()))
	h.solver.next(t)
	conn.Close()

	select {
	case err := <-h.runErr:
		assert.Error(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return after the connection dropped")
	}
	st := h.client.Status()
	assert.Equal(t, StateClosed, st.State)
	assert.False(t, st.Simulating)
	assert.ErrorIs(t, h.client.RunSimulation(context.Background()), ErrClosed)
}

func TestReconnectPushesAgain(t *testing.T) {
	h := start(t, func(c *Config) {
		c.Reconnect = ReconnectPolicy{Enabled: true, Delay: 20 * time.Millisecond}
	})
	conn, first := h.open(t)
	graphOf(t, first)

	conn.Close()
	_, err := h.graph.AddNode(domain.KindFilter, domain.Position{}, nil)
	require.NoError(t, err)

	h.solver.conn(t)
	for found := false; !found; {
		g, _ := h.solver.next(t)["graph"].(map[string]any)
		nodes, _ := g["nodes"].([]any)
		found = len(nodes) == 1
	}
	require.Eventually(t, func() bool { return h.client.Status().State == StateOpen }, waitFor, 5*time.Millisecond)
}

func TestReconnectGivesUp(t *testing.T) {
	bus := service.NewEventBus()
	graph := service.NewGraphService(bus, service.WithMetrics(metrics.NewRegistry()))
	client := New(Config{
		URL:              "ws://127.0.0.1:1/ws/simulate",
		HandshakeTimeout: time.Second,
		Reconnect:        ReconnectPolicy{Enabled: true, Delay: time.Millisecond, MaxAttempts: 3},
	}, graph, bus, WithMetrics(metrics.NewRegistry()))

	err := client.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
}

func TestSimulationTimeout(t *testing.T) {
	h := start(t, func(c *Config) { c.SimulationTimeout = 50 * time.Millisecond })
	h.open(t)

	require.NoError(t, h.client.RunSimulation(context.Background()))
	assert.Equal(t, protocol.ActionRunSimulation, h.solver.next(t)["action"])

	require.Eventually(t, func() bool { return !h.client.Status().Simulating }, waitFor, 5*time.Millisecond)
	st := h.client.Status()
	assert.Equal(t, "error", st.LastStatus)
	assert.Equal(t, "simulation timed out", st.LastMessage)

	require.NoError(t, h.client.RunSimulation(context.Background()))
}

func TestCancelStopsRun(t *testing.T) {
	h := start(t, nil)
	h.open(t)

	h.cancel()
	select {
	case err := <-h.runErr:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, StateClosed, h.client.Status().State)
}

func TestStateText(t *testing.T) {
	b, err := json.Marshal(map[string]State{"s": StateOpen})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"open"}`, string(b))
	assert.Equal(t, "unknown", State(42).String())
}
