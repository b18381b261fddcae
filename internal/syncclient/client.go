// Package syncclient keeps the graph synchronized with the hydraulic solver
// over a WebSocket connection.
//
// A single goroutine started by Run owns the connection, the debounce timer
// and the simulating flag. Public methods submit requests to that goroutine
// and wait for its reply, so graph pushes, solver responses and user commands
// never interleave.
package syncclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"walflow/internal/domain"
	"walflow/internal/metrics"
	"walflow/internal/protocol"
	"walflow/internal/service"
)

// Graph is the part of the graph service the client depends on.
type Graph interface {
	Snapshot() domain.Snapshot
	MergeTelemetry(t domain.Telemetry) service.MergeResult
	UpdateNodeParameters(id string, partial map[string]any) error
	GetNode(id string) (domain.Node, error)
}

// SolverEvent is the payload published with service.EventSolverStatus.
type SolverEvent struct {
	Status      protocol.Status `json:"status"`
	Message     string          `json:"message,omitempty"`
	FlowRateM3s *float64        `json:"flow_rate_m3s,omitempty"`
}

// ConnectionEvent is the payload published with service.EventConnection.
type ConnectionEvent struct {
	SessionID string `json:"session_id"`
	State     State  `json:"state"`
	Error     string `json:"error,omitempty"`
}

type requestKind int

const (
	requestValve requestKind = iota
	requestSimulate
)

type request struct {
	kind   requestKind
	nodeID string
	value  float64
	reply  chan error
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics sets the metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDialer replaces the default WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// Client synchronizes one editing session with the solver.
type Client struct {
	cfg     Config
	graph   Graph
	bus     *service.EventBus
	metrics *metrics.Registry
	logger  *slog.Logger
	dialer  *websocket.Dialer

	requests  chan request
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	runOnce   sync.Once

	mu     sync.RWMutex
	status Status
}

// New creates a client. Nothing is dialed until Run is called.
func New(cfg Config, graph Graph, bus *service.EventBus, opts ...Option) *Client {
	cfg.applyDefaults()
	c := &Client{
		cfg:      cfg,
		graph:    graph,
		bus:      bus,
		requests: make(chan request),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.DefaultRegistry()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.dialer == nil {
		c.dialer = &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	}
	c.status = Status{
		SessionID: uuid.New().String(),
		URL:       cfg.URL,
		State:     StateDisconnected,
	}
	c.logger = c.logger.With("component", "syncclient", "session_id", c.status.SessionID)
	return c
}

// Status returns a copy of the client's current status.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.status
	if s.FlowRateM3s != nil {
		q := *s.FlowRateM3s
		s.FlowRateM3s = &q
	}
	return s
}

// Done is closed when Run has returned.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close tears the session down. Run returns nil once the connection is
// released.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.closing) })
}

// UpdateValve sets a valve's opening on the local graph and sends it to the
// solver as a live command. The local edit is kept even when the solver is
// unreachable, in which case ErrNotConnected is returned.
func (c *Client) UpdateValve(ctx context.Context, nodeID string, opening float64) error {
	node, err := c.graph.GetNode(nodeID)
	if err != nil {
		return err
	}
	if node.Kind != domain.KindValve {
		return &domain.ValidationError{Field: "node_id", Value: nodeID, Reason: fmt.Sprintf("%s is not a valve", node.Kind)}
	}
	if err := c.graph.UpdateNodeParameters(nodeID, map[string]any{domain.ParamOpening: opening}); err != nil {
		return err
	}
	return c.submit(ctx, request{kind: requestValve, nodeID: nodeID, value: opening})
}

// RunSimulation flushes any pending debounced edits, then asks the solver to
// solve the graph. It returns once the request is sent; the outcome arrives
// as a solver status event.
func (c *Client) RunSimulation(ctx context.Context) error {
	if c.Status().Simulating {
		return ErrSimulationInProgress
	}
	return c.submit(ctx, request{kind: requestSimulate})
}

func (c *Client) submit(ctx context.Context, req request) error {
	switch c.Status().State {
	case StateOpen:
	case StateClosed:
		select {
		case <-c.done:
			return ErrClosed
		default:
			return ErrNotConnected
		}
	default:
		return ErrNotConnected
	}

	req.reply = make(chan error, 1)
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

// Run connects to the solver and serves the session until ctx is cancelled,
// Close is called, or the connection is lost with reconnect disabled.
func (c *Client) Run(ctx context.Context) error {
	started := false
	c.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("sync client already running")
	}
	defer close(c.done)

	events := make(chan service.Event, eventBuffer)
	c.bus.Subscribe(events)
	defer c.bus.Unsubscribe(events)

	attempts := 0
	for {
		err := c.session(ctx, events)
		if ctx.Err() != nil || c.isClosing() {
			return nil
		}

		c.logger.Warn("solver session ended", "error", err)
		if !c.cfg.Reconnect.Enabled {
			return err
		}
		attempts++
		if limit := c.cfg.Reconnect.MaxAttempts; limit > 0 && attempts >= limit {
			return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
		}
		if !c.wait(ctx, events, c.cfg.Reconnect.Delay) {
			return nil
		}
	}
}

func (c *Client) isClosing() bool {
	select {
	case <-c.closing:
		return true
	default:
		return false
	}
}

// wait idles between sessions. Requests are refused and model events are
// dropped; the next handshake pushes the full graph anyway.
func (c *Client) wait(ctx context.Context, events <-chan service.Event, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-c.closing:
			return false
		case <-timer.C:
			return true
		case <-events:
		case req := <-c.requests:
			req.reply <- ErrNotConnected
		}
	}
}

type frame struct {
	data []byte
	err  error
}

func (c *Client) session(ctx context.Context, events <-chan service.Event) error {
	c.setState(StateConnecting, nil)

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
	conn, _, err := c.dialer.DialContext(dialCtx, c.cfg.URL, nil)
	cancel()
	if err != nil {
		c.metrics.SolverConnectsTotal.WithLabelValues("failure").Inc()
		err = fmt.Errorf("dial %s: %w", c.cfg.URL, err)
		c.setState(StateClosed, err)
		return err
	}
	c.metrics.SolverConnectsTotal.WithLabelValues("success").Inc()

	s := &session{Client: c, conn: conn, events: events, done: make(chan struct{})}
	err = s.serve(ctx)

	close(s.done)
	conn.Close()
	s.stopTimers()
	c.mu.Lock()
	c.status.Simulating = false
	c.mu.Unlock()
	c.setState(StateClosed, err)
	return err
}

func (c *Client) setState(state State, err error) {
	c.mu.Lock()
	prev := c.status.State
	c.status.State = state
	if state == StateOpen {
		now := time.Now()
		c.status.ConnectedAt = &now
	}
	c.mu.Unlock()

	c.metrics.SetSolverConnected(state == StateOpen)
	if prev == state {
		return
	}
	ev := ConnectionEvent{SessionID: c.status.SessionID, State: state}
	if err != nil {
		ev.Error = err.Error()
	}
	c.logger.Info("solver connection state", "from", prev, "to", state)
	c.bus.Publish(service.Event{Type: service.EventConnection, Payload: ev})
}

// session is the state of one connection.
type session struct {
	*Client
	conn   *websocket.Conn
	events <-chan service.Event
	done   chan struct{}

	debounce  *time.Timer
	debounceC <-chan time.Time
	pending   int

	simTimer  *time.Timer
	simTimerC <-chan time.Time
	simStart  time.Time
}

func (s *session) serve(ctx context.Context) error {
	frames := make(chan frame)
	go s.read(frames)

	s.setState(StateOpen, nil)
	s.logger.Info("connected to solver", "url", s.cfg.URL)

	// Edits made before the handshake are covered by the baseline push.
	for drained := false; !drained; {
		select {
		case <-s.events:
		default:
			drained = true
		}
	}
	if err := s.push(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			s.closeFrame()
			return ctx.Err()

		case <-s.closing:
			s.closeFrame()
			return nil

		case ev := <-s.events:
			s.observe(ev)

		case <-s.debounceC:
			s.debounceC = nil
			if s.pending > 1 {
				s.metrics.DebounceCoalescedTotal.Add(float64(s.pending - 1))
			}
			s.pending = 0
			if err := s.push(); err != nil {
				return err
			}

		case f := <-frames:
			if f.err != nil {
				return fmt.Errorf("read: %w", f.err)
			}
			s.handle(f.data)

		case req := <-s.requests:
			err := s.serveRequest(req)
			req.reply <- err
			if err != nil && !errors.Is(err, ErrSimulationInProgress) {
				return err
			}

		case <-s.simTimerC:
			s.simTimerC = nil
			s.finishSimulation("timeout")
			msg := "simulation timed out"
			s.logger.Warn(msg, "timeout", s.cfg.SimulationTimeout)
			s.recordSolver(protocol.StatusError, msg)
			s.bus.Publish(service.Event{Type: service.EventSolverStatus, Payload: SolverEvent{Status: protocol.StatusError, Message: msg}})
		}
	}
}

// read forwards frames to the loop until the connection fails or the
// session ends.
func (s *session) read(out chan<- frame) {
	for {
		_, data, err := s.conn.ReadMessage()
		select {
		case out <- frame{data: data, err: err}:
		case <-s.done:
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *session) write(v any) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := s.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (s *session) closeFrame() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

func (s *session) observe(ev service.Event) {
	if ev.Type.Mutation() {
		s.schedulePush()
	}
}

// catchUp applies model events already queued, so a request issued right
// after an edit sees that edit as pending.
func (s *session) catchUp() {
	for {
		select {
		case ev := <-s.events:
			s.observe(ev)
		default:
			return
		}
	}
}

func (s *session) schedulePush() {
	if s.debounce == nil {
		s.debounce = time.NewTimer(s.cfg.Debounce)
	} else {
		s.debounce.Stop()
		s.debounce.Reset(s.cfg.Debounce)
	}
	s.debounceC = s.debounce.C
	s.pending++
}

func (s *session) push() error {
	snap := s.graph.Snapshot()
	if err := s.write(protocol.NewUpdateGraph(snap)); err != nil {
		return err
	}
	s.metrics.GraphPushesTotal.Inc()
	s.mu.Lock()
	s.status.Pushes++
	s.mu.Unlock()
	s.logger.Debug("graph pushed", "nodes", len(snap.Nodes), "edges", len(snap.Edges))
	return nil
}

// flush sends a pending debounced push right away.
func (s *session) flush() error {
	if s.debounceC == nil {
		return nil
	}
	s.debounce.Stop()
	s.debounceC = nil
	s.pending = 0
	return s.push()
}

func (s *session) serveRequest(req request) error {
	switch req.kind {
	case requestValve:
		if err := s.write(protocol.NewUpdateValve(req.nodeID, req.value)); err != nil {
			return err
		}
		s.metrics.ValveCommandsTotal.Inc()
		s.logger.Debug("valve command sent", "node_id", req.nodeID, "opening", req.value)
		return nil

	case requestSimulate:
		s.mu.RLock()
		simulating := s.status.Simulating
		s.mu.RUnlock()
		if simulating {
			return ErrSimulationInProgress
		}
		// The solver works on the last pushed graph, so pending edits go first.
		s.catchUp()
		if err := s.flush(); err != nil {
			return err
		}
		if err := s.write(protocol.NewRunSimulation()); err != nil {
			return err
		}
		s.mu.Lock()
		s.status.Simulating = true
		s.mu.Unlock()
		s.simStart = time.Now()
		if t := s.cfg.SimulationTimeout; t > 0 {
			s.simTimer = time.NewTimer(t)
			s.simTimerC = s.simTimer.C
		}
		s.logger.Info("simulation requested")
		return nil
	}
	return fmt.Errorf("unknown request kind %d", req.kind)
}

func (s *session) handle(data []byte) {
	resp, err := protocol.Decode(data)
	if err != nil {
		s.metrics.ProtocolErrorsTotal.Inc()
		s.logger.Warn("dropping solver message", "error", err, "bytes", len(data))
		return
	}
	s.metrics.SolverMessagesTotal.WithLabelValues(string(resp.Status)).Inc()

	switch resp.Status {
	case protocol.StatusSuccess:
		if resp.Telemetry != nil {
			res := s.graph.MergeTelemetry(*resp.Telemetry)
			s.logger.Debug("telemetry applied", "nodes", res.Nodes, "edges", res.Edges, "ignored", res.Ignored)
		}
		if resp.FlowRate != nil {
			q := *resp.FlowRate
			s.mu.Lock()
			s.status.FlowRateM3s = &q
			s.mu.Unlock()
			s.metrics.SolverFlowRateM3s.Set(q)
		}
		s.finishSimulation("success")
	case protocol.StatusError:
		s.logger.Warn("solver reported error", "message", resp.Message)
		s.finishSimulation("error")
	case protocol.StatusWaiting:
		s.logger.Info("solver waiting", "message", resp.Message)
	}

	s.recordSolver(resp.Status, resp.Message)
	s.bus.Publish(service.Event{Type: service.EventSolverStatus, Payload: SolverEvent{
		Status:      resp.Status,
		Message:     resp.Message,
		FlowRateM3s: resp.FlowRate,
	}})
}

func (s *session) recordSolver(status protocol.Status, message string) {
	s.mu.Lock()
	s.status.LastStatus = string(status)
	s.status.LastMessage = message
	s.mu.Unlock()
}

// finishSimulation clears the simulating flag if a simulation is outstanding.
func (s *session) finishSimulation(result string) {
	s.mu.Lock()
	simulating := s.status.Simulating
	s.status.Simulating = false
	s.mu.Unlock()
	if !simulating {
		return
	}
	if s.simTimer != nil {
		s.simTimer.Stop()
		s.simTimerC = nil
	}
	s.metrics.RecordSimulation(result, time.Since(s.simStart))
}

func (s *session) stopTimers() {
	if s.debounce != nil {
		s.debounce.Stop()
	}
	if s.simTimer != nil {
		s.simTimer.Stop()
	}
	s.debounceC = nil
	s.simTimerC = nil
	if s.status.Simulating {
		s.metrics.RecordSimulation("aborted", time.Since(s.simStart))
	}
}
