package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"walflow/internal/domain"
	"walflow/internal/metrics"
	"walflow/internal/standards"
)

// GraphService is the sole owner of the canonical nodes, edges and global
// settings. Every read hands out a copy; every write is validated before it
// is applied and announced on the event bus.
type GraphService struct {
	mu       sync.RWMutex
	nodes    []*domain.Node
	edges    []*domain.Edge
	settings domain.GlobalSettings
	ids      *domain.IDAllocator

	resolver *standards.Resolver
	eventBus *EventBus
	metrics  *metrics.Registry
	logger   *slog.Logger
}

// Option configures a GraphService.
type Option func(*GraphService)

// WithResolver sets the pipe catalog resolver used for DN and schedule edits.
func WithResolver(r *standards.Resolver) Option {
	return func(s *GraphService) { s.resolver = r }
}

// WithIDAllocator injects the id allocator.
func WithIDAllocator(a *domain.IDAllocator) Option {
	return func(s *GraphService) { s.ids = a }
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *GraphService) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *GraphService) { s.logger = l }
}

// NewGraphService creates an empty graph with default settings
func NewGraphService(eventBus *EventBus, opts ...Option) *GraphService {
	s := &GraphService{
		settings: domain.DefaultGlobalSettings(),
		eventBus: eventBus,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = domain.NewIDAllocator()
	}
	if s.resolver == nil {
		s.resolver = standards.Default()
	}
	if s.metrics == nil {
		s.metrics = metrics.DefaultRegistry()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "graph")
	if s.eventBus == nil {
		s.eventBus = NewEventBus()
	}
	return s
}

// EventBus returns the bus the service publishes on.
func (s *GraphService) EventBus() *EventBus {
	return s.eventBus
}

// Resolver returns the pipe catalog resolver.
func (s *GraphService) Resolver() *standards.Resolver {
	return s.resolver
}

// AddNode inserts a node of the given kind with kind-default parameters
// overlaid by initial, and returns its fresh id.
func (s *GraphService) AddNode(kind domain.NodeKind, pos domain.Position, initial map[string]any) (string, error) {
	if !kind.Valid() {
		s.reject("add_node", domain.ErrUnknownKind)
		return "", fmt.Errorf("add node: %w: %q", domain.ErrUnknownKind, kind)
	}

	s.mu.Lock()
	id, seq := s.ids.NextNodeID()
	for s.findNode(id) >= 0 {
		id, seq = s.ids.NextNodeID()
	}
	node := domain.NewNode(id, kind, pos, fmt.Sprintf("%s %d", kind.DisplayName(), seq))
	node.Parameters = domain.MergeParameters(node.Parameters, initial)
	if err := domain.ValidateNodeParameters(kind, node.Parameters); err != nil {
		s.mu.Unlock()
		s.reject("add_node", err)
		return "", fmt.Errorf("add node: %w", err)
	}
	s.nodes = append(s.nodes, node)
	nodes, edges := len(s.nodes), len(s.edges)
	s.mu.Unlock()

	s.metrics.RecordMutation("add_node", nodes, edges)
	s.logger.Debug("node added", "node_id", id, "kind", kind)
	s.eventBus.Publish(Event{
		Type:    EventNodeAdded,
		Payload: map[string]string{"node_id": id, "kind": string(kind)},
	})
	return id, nil
}

// AddEdge connects an outlet of source to an inlet of target and returns the
// new pipe id.
func (s *GraphService) AddEdge(source, sourceHandle, target, targetHandle string, initial map[string]any) (string, error) {
	s.mu.Lock()
	src, dst, err := domain.CheckEndpoints(s.kindIndex(), source, sourceHandle, target, targetHandle)
	if err == nil {
		err = s.portFree(source, src, target, dst)
	}
	if err != nil {
		s.mu.Unlock()
		s.reject("add_edge", err)
		return "", fmt.Errorf("add edge: %w", err)
	}

	params := domain.MergeParameters(domain.DefaultEdgeParameters(), initial)
	if err := domain.ValidateEdgeParameters(params); err != nil {
		s.mu.Unlock()
		s.reject("add_edge", err)
		return "", fmt.Errorf("add edge: %w", err)
	}

	id := s.ids.NextEdgeID()
	for s.findEdge(id) >= 0 || s.findNode(id) >= 0 {
		id = s.ids.NextEdgeID()
	}
	edge := domain.NewEdge(id, source, src, target, dst)
	edge.Parameters = params
	s.edges = append(s.edges, edge)
	nodes, edges := len(s.nodes), len(s.edges)
	s.mu.Unlock()

	s.metrics.RecordMutation("add_edge", nodes, edges)
	s.logger.Debug("edge added", "edge_id", id, "source", source, "target", target)
	s.eventBus.Publish(Event{
		Type:    EventEdgeAdded,
		Payload: map[string]string{"edge_id": id, "source": source, "target": target},
	})
	return id, nil
}

// UpdateNodeParameters shallow-merges partial into the node's parameters.
func (s *GraphService) UpdateNodeParameters(id string, partial map[string]any) error {
	s.mu.Lock()
	i := s.findNode(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	node := s.nodes[i]
	merged := domain.MergeParameters(node.Parameters, partial)
	if err := domain.ValidateNodeParameters(node.Kind, merged); err != nil {
		s.mu.Unlock()
		s.reject("update_node", err)
		return fmt.Errorf("node %s: %w", id, err)
	}
	node.Parameters = merged
	nodes, edges := len(s.nodes), len(s.edges)
	s.mu.Unlock()

	s.metrics.RecordMutation("update_node", nodes, edges)
	s.eventBus.Publish(Event{
		Type:    EventNodeUpdated,
		Payload: map[string]any{"node_id": id, "fields": keys(partial)},
	})
	return nil
}

// UpdateNodePosition moves a node on the canvas.
func (s *GraphService) UpdateNodePosition(id string, pos domain.Position) error {
	s.mu.Lock()
	i := s.findNode(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	s.nodes[i].Position = pos
	nodes, edges := len(s.nodes), len(s.edges)
	s.mu.Unlock()

	s.metrics.RecordMutation("move_node", nodes, edges)
	s.eventBus.Publish(Event{
		Type:    EventNodeMoved,
		Payload: map[string]any{"node_id": id, "x": pos.X, "y": pos.Y},
	})
	return nil
}

// UpdateEdgeParameters shallow-merges partial into the pipe's parameters.
func (s *GraphService) UpdateEdgeParameters(id string, partial map[string]any) error {
	s.mu.Lock()
	i := s.findEdge(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("edge %s: %w", id, domain.ErrNotFound)
	}
	edge := s.edges[i]
	merged := domain.MergeParameters(edge.Parameters, partial)
	if err := domain.ValidateEdgeParameters(merged); err != nil {
		s.mu.Unlock()
		s.reject("update_edge", err)
		return fmt.Errorf("edge %s: %w", id, err)
	}
	edge.Parameters = merged
	nodes, edges := len(s.nodes), len(s.edges)
	s.mu.Unlock()

	s.metrics.RecordMutation("update_edge", nodes, edges)
	s.eventBus.Publish(Event{
		Type:    EventEdgeUpdated,
		Payload: map[string]any{"edge_id": id, "fields": keys(partial)},
	})
	return nil
}

// DeleteNode removes a node and every pipe touching it.
func (s *GraphService) DeleteNode(id string) error {
	s.mu.Lock()
	i := s.findNode(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)

	var removed []string
	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.Source == id || e.Target == id {
			removed = append(removed, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	for j := len(kept); j < len(s.edges); j++ {
		s.edges[j] = nil
	}
	s.edges = kept
	nodes, edges := len(s.nodes), len(s.edges)
	s.mu.Unlock()

	s.metrics.RecordMutation("delete_node", nodes, edges)
	s.logger.Debug("node deleted", "node_id", id, "cascaded_edges", len(removed))
	s.eventBus.Publish(Event{
		Type:    EventNodeDeleted,
		Payload: map[string]any{"node_id": id, "edge_ids": removed},
	})
	return nil
}

// DeleteEdge removes a single pipe.
func (s *GraphService) DeleteEdge(id string) error {
	s.mu.Lock()
	i := s.findEdge(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("edge %s: %w", id, domain.ErrNotFound)
	}
	s.edges = append(s.edges[:i], s.edges[i+1:]...)
	nodes, edges := len(s.nodes), len(s.edges)
	s.mu.Unlock()

	s.metrics.RecordMutation("delete_edge", nodes, edges)
	s.eventBus.Publish(Event{
		Type:    EventEdgeDeleted,
		Payload: map[string]string{"edge_id": id},
	})
	return nil
}

// Settings returns the current global settings.
func (s *GraphService) Settings() domain.GlobalSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings replaces the global settings after validation.
func (s *GraphService) UpdateSettings(settings domain.GlobalSettings) error {
	if err := settings.Validate(); err != nil {
		s.reject("update_settings", err)
		return fmt.Errorf("update settings: %w", err)
	}

	s.mu.Lock()
	s.settings = settings
	nodes, edges := len(s.nodes), len(s.edges)
	s.mu.Unlock()

	s.metrics.RecordMutation("update_settings", nodes, edges)
	s.eventBus.Publish(Event{Type: EventSettingsUpdated, Payload: settings})
	return nil
}

// ReplaceAll atomically swaps in a new graph. On validation failure the
// current graph is left untouched and the error wraps ErrInvalidGraph.
func (s *GraphService) ReplaceAll(nodes []domain.Node, edges []domain.Edge, settings domain.GlobalSettings) error {
	in := domain.Snapshot{Nodes: nodes, Edges: edges, Settings: settings}.Clone()
	if err := domain.ValidateGraph(in.Nodes, in.Edges, in.Settings); err != nil {
		s.reject("replace_all", err)
		return err
	}

	newNodes := make([]*domain.Node, len(in.Nodes))
	for i := range in.Nodes {
		newNodes[i] = &in.Nodes[i]
	}
	newEdges := make([]*domain.Edge, len(in.Edges))
	for i := range in.Edges {
		newEdges[i] = &in.Edges[i]
	}

	s.mu.Lock()
	s.nodes, s.edges, s.settings = newNodes, newEdges, in.Settings
	for _, n := range newNodes {
		s.ids.ObserveNode(n.ID)
	}
	for _, e := range newEdges {
		s.ids.ObserveEdge(e.ID)
	}
	s.mu.Unlock()

	s.metrics.RecordMutation("replace_all", len(newNodes), len(newEdges))
	s.logger.Info("graph replaced", "nodes", len(newNodes), "edges", len(newEdges))
	s.eventBus.Publish(Event{
		Type:    EventGraphReplaced,
		Payload: map[string]int{"nodes": len(newNodes), "edges": len(newEdges)},
	})
	return nil
}

// LoadPlan replaces the graph with a saved document. A document without a
// node or edge list is ignored and reported as not loaded. A document without
// settings keeps the current ones.
func (s *GraphService) LoadPlan(p *domain.Plan) (bool, error) {
	if !p.Complete() {
		s.logger.Warn("ignoring plan without nodes or edges")
		return false, nil
	}
	settings := s.Settings()
	if p.GlobalSettings != nil {
		settings = *p.GlobalSettings
	}
	if err := s.ReplaceAll(p.Nodes, p.Edges, settings); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes every node and edge, keeping the settings.
func (s *GraphService) Clear() {
	s.mu.Lock()
	s.nodes, s.edges = nil, nil
	s.mu.Unlock()

	s.metrics.RecordMutation("clear", 0, 0)
	s.eventBus.Publish(Event{
		Type:    EventGraphReplaced,
		Payload: map[string]int{"nodes": 0, "edges": 0},
	})
}

// Snapshot returns a detached copy of the whole graph.
func (s *GraphService) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.Snapshot{
		Nodes:    make([]domain.Node, len(s.nodes)),
		Edges:    make([]domain.Edge, len(s.edges)),
		Settings: s.settings,
	}
	for i, n := range s.nodes {
		snap.Nodes[i] = n.Clone()
	}
	for i, e := range s.edges {
		snap.Edges[i] = e.Clone()
	}
	return snap
}

// Plan returns the graph as a persistable document.
func (s *GraphService) Plan() *domain.Plan {
	return domain.NewPlan(s.Snapshot())
}

// GetNode returns a copy of a single node.
func (s *GraphService) GetNode(id string) (domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.findNode(id)
	if i < 0 {
		return domain.Node{}, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return s.nodes[i].Clone(), nil
}

// GetEdge returns a copy of a single pipe.
func (s *GraphService) GetEdge(id string) (domain.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.findEdge(id)
	if i < 0 {
		return domain.Edge{}, fmt.Errorf("edge %s: %w", id, domain.ErrNotFound)
	}
	return s.edges[i].Clone(), nil
}

// Counts returns the number of nodes and edges.
func (s *GraphService) Counts() (nodes, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), len(s.edges)
}

func (s *GraphService) findNode(id string) int {
	for i, n := range s.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *GraphService) findEdge(id string) int {
	for i, e := range s.edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *GraphService) kindIndex() map[string]domain.NodeKind {
	kinds := make(map[string]domain.NodeKind, len(s.nodes))
	for _, n := range s.nodes {
		kinds[n.ID] = n.Kind
	}
	return kinds
}

// portFree checks that neither canonical handle is already attached to a pipe.
func (s *GraphService) portFree(source, sourceHandle, target, targetHandle string) error {
	for _, e := range s.edges {
		if e.Source == source && e.SourceHandle == sourceHandle {
			return &domain.EndpointError{NodeID: source, Handle: sourceHandle, Reason: "port already connected to " + e.ID}
		}
		if e.Target == target && e.TargetHandle == targetHandle {
			return &domain.EndpointError{NodeID: target, Handle: targetHandle, Reason: "port already connected to " + e.ID}
		}
	}
	return nil
}

func (s *GraphService) reject(operation string, err error) {
	reason := "other"
	switch {
	case errors.Is(err, domain.ErrInvalidGraph):
		reason = "invalid_graph"
	case errors.Is(err, domain.ErrInvalidEndpoint):
		reason = "invalid_endpoint"
	case errors.Is(err, domain.ErrInvalidParameter):
		reason = "invalid_parameter"
	case errors.Is(err, domain.ErrUnknownKind):
		reason = "unknown_kind"
	case errors.Is(err, standards.ErrUnknownSchedule), errors.Is(err, standards.ErrUnknownDN):
		reason = "unknown_catalog_entry"
	}
	s.metrics.RecordRejection(operation, reason)
	s.logger.Debug("mutation rejected", "operation", operation, "error", err)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
