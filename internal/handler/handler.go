package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"walflow/internal/domain"
	"walflow/internal/service"
)

// GraphHandler handles graph API requests
type GraphHandler struct {
	svc    *service.GraphService
	logger *slog.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(svc *service.GraphService, logger *slog.Logger) *GraphHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphHandler{svc: svc, logger: logger}
}

// GetGraph returns the complete graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Snapshot(), http.StatusOK)
}

// ReplaceGraph swaps the whole graph for the plan in the request body.
func (h *GraphHandler) ReplaceGraph(w http.ResponseWriter, r *http.Request) {
	var plan domain.Plan
	if !decode(w, r, &plan) {
		return
	}
	if !plan.Complete() {
		writeError(w, "Invalid graph", "nodes and edges are required", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.LoadPlan(&plan); err != nil {
		writeFailure(w, h.logger, "Failed to replace graph", err)
		return
	}
	writeJSON(w, h.svc.Snapshot(), http.StatusOK)
}

// ClearGraph removes every node and pipe
func (h *GraphHandler) ClearGraph(w http.ResponseWriter, r *http.Request) {
	h.svc.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// ListNodes returns all nodes, optionally filtered by type
func (h *GraphHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	kind := domain.NodeKind(r.URL.Query().Get("type"))

	nodes := make([]domain.Node, 0)
	for _, n := range h.svc.Snapshot().Nodes {
		if kind == "" || n.Kind == kind {
			nodes = append(nodes, n)
		}
	}
	writeJSON(w, nodes, http.StatusOK)
}

// GetNode returns a single node
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, h.logger, "Failed to get node", err)
		return
	}
	writeJSON(w, node, http.StatusOK)
}

// CreateNodeRequest is the body of POST /api/nodes.
type CreateNodeRequest struct {
	Type     domain.NodeKind `json:"type"`
	Position domain.Position `json:"position"`
	Data     map[string]any  `json:"data,omitempty"`
}

// CreateNode creates a new node
func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.svc.AddNode(req.Type, req.Position, req.Data)
	if err != nil {
		writeFailure(w, h.logger, "Failed to create node", err)
		return
	}

	node, err := h.svc.GetNode(id)
	if err != nil {
		writeFailure(w, h.logger, "Failed to fetch created node", err)
		return
	}
	writeJSON(w, node, http.StatusCreated)
}

// UpdateNode merges the body into the node's parameters
func (h *GraphHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var updates map[string]any
	if !decode(w, r, &updates) {
		return
	}

	if err := h.svc.UpdateNodeParameters(id, updates); err != nil {
		writeFailure(w, h.logger, "Failed to update node", err)
		return
	}
	h.GetNode(w, r)
}

// UpdatePosition moves a node on the canvas
func (h *GraphHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var pos domain.Position
	if !decode(w, r, &pos) {
		return
	}

	if err := h.svc.UpdateNodePosition(id, pos); err != nil {
		writeFailure(w, h.logger, "Failed to update position", err)
		return
	}
	writeJSON(w, pos, http.StatusOK)
}

// DeleteNode deletes a node and its pipes
func (h *GraphHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNode(chi.URLParam(r, "id")); err != nil {
		writeFailure(w, h.logger, "Failed to delete node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEdges returns all pipes, optionally filtered by endpoint
func (h *GraphHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	target := r.URL.Query().Get("target")

	edges := make([]domain.Edge, 0)
	for _, e := range h.svc.Snapshot().Edges {
		if source != "" && e.Source != source {
			continue
		}
		if target != "" && e.Target != target {
			continue
		}
		edges = append(edges, e)
	}
	writeJSON(w, edges, http.StatusOK)
}

// GetEdge returns a single pipe
func (h *GraphHandler) GetEdge(w http.ResponseWriter, r *http.Request) {
	edge, err := h.svc.GetEdge(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, h.logger, "Failed to get edge", err)
		return
	}
	writeJSON(w, edge, http.StatusOK)
}

// CreateEdgeRequest is the body of POST /api/edges.
type CreateEdgeRequest struct {
	Source       string         `json:"source"`
	SourceHandle string         `json:"sourceHandle"`
	Target       string         `json:"target"`
	TargetHandle string         `json:"targetHandle"`
	Data         map[string]any `json:"data,omitempty"`
}

// CreateEdge connects two nodes with a pipe
func (h *GraphHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.svc.AddEdge(req.Source, req.SourceHandle, req.Target, req.TargetHandle, req.Data)
	if err != nil {
		writeFailure(w, h.logger, "Failed to create edge", err)
		return
	}

	edge, err := h.svc.GetEdge(id)
	if err != nil {
		writeFailure(w, h.logger, "Failed to fetch created edge", err)
		return
	}
	writeJSON(w, edge, http.StatusCreated)
}

// UpdateEdge merges the body into the pipe's parameters
func (h *GraphHandler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var updates map[string]any
	if !decode(w, r, &updates) {
		return
	}

	if err := h.svc.UpdateEdgeParameters(id, updates); err != nil {
		writeFailure(w, h.logger, "Failed to update edge", err)
		return
	}
	h.GetEdge(w, r)
}

// DeleteEdge deletes a pipe
func (h *GraphHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEdge(chi.URLParam(r, "id")); err != nil {
		writeFailure(w, h.logger, "Failed to delete edge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEdgeCatalog returns the catalog size and schedule matching a pipe
func (h *GraphHandler) GetEdgeCatalog(w http.ResponseWriter, r *http.Request) {
	sel, err := h.svc.EdgeCatalogSelection(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, h.logger, "Failed to resolve catalog size", err)
		return
	}
	writeJSON(w, sel, http.StatusOK)
}

// CatalogRequest selects a new nominal size or schedule for a pipe. Exactly
// one field is expected.
type CatalogRequest struct {
	DN       *int    `json:"dn,omitempty"`
	Schedule *string `json:"schedule,omitempty"`
}

// SetEdgeCatalog changes a pipe's diameter through the catalog
func (h *GraphHandler) SetEdgeCatalog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CatalogRequest
	if !decode(w, r, &req) {
		return
	}

	var (
		sel service.CatalogSelection
		err error
	)
	switch {
	case req.DN != nil && req.Schedule == nil:
		sel, err = h.svc.SetEdgeDN(id, *req.DN)
	case req.Schedule != nil && req.DN == nil:
		sel, err = h.svc.SetEdgeSchedule(id, *req.Schedule)
	default:
		writeError(w, "Invalid request body", "provide either dn or schedule", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeFailure(w, h.logger, "Failed to change pipe size", err)
		return
	}
	writeJSON(w, sel, http.StatusOK)
}

// GetCatalog returns the pipe size catalog
func (h *GraphHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Resolver().Catalog(), http.StatusOK)
}

// GetSettings returns the global solver settings
func (h *GraphHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Settings(), http.StatusOK)
}

// UpdateSettings replaces the global solver settings
func (h *GraphHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	settings := h.svc.Settings()
	if !decode(w, r, &settings) {
		return
	}

	if err := h.svc.UpdateSettings(settings); err != nil {
		writeFailure(w, h.logger, "Failed to update settings", err)
		return
	}
	writeJSON(w, h.svc.Settings(), http.StatusOK)
}
