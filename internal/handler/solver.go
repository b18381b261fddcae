package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"walflow/internal/syncclient"
)

// Solver is the part of the sync client the API drives.
type Solver interface {
	Status() syncclient.Status
	UpdateValve(ctx context.Context, nodeID string, opening float64) error
	RunSimulation(ctx context.Context) error
}

// SolverHandler exposes simulation control and connection status.
type SolverHandler struct {
	solver Solver
	logger *slog.Logger
}

// NewSolverHandler creates a solver handler. solver may be nil when no solver
// is configured.
func NewSolverHandler(solver Solver, logger *slog.Logger) *SolverHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SolverHandler{solver: solver, logger: logger}
}

func (h *SolverHandler) available(w http.ResponseWriter) bool {
	if h.solver == nil {
		writeError(w, "Solver not configured", "no solver connection is set up", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// GetStatus reports the solver connection state
func (h *SolverHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	writeJSON(w, h.solver.Status(), http.StatusOK)
}

// RunSimulation asks the solver for a simulation of the current graph. The
// result arrives asynchronously as telemetry.
func (h *SolverHandler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	if err := h.solver.RunSimulation(r.Context()); err != nil {
		writeFailure(w, h.logger, "Failed to start simulation", err)
		return
	}
	writeJSON(w, h.solver.Status(), http.StatusAccepted)
}

// ValveRequest is the body of PUT /api/nodes/{id}/valve.
type ValveRequest struct {
	Opening float64 `json:"opening"`
}

// UpdateValve sets a valve opening and sends it to the solver immediately
func (h *SolverHandler) UpdateValve(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}

	var req ValveRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.solver.UpdateValve(r.Context(), chi.URLParam(r, "id"), req.Opening); err != nil {
		writeFailure(w, h.logger, "Failed to update valve", err)
		return
	}
	writeJSON(w, req, http.StatusOK)
}
