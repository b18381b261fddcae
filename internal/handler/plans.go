package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"walflow/internal/service"
)

// PlanHandler serves the plan library and plan file import/export.
type PlanHandler struct {
	svc    *service.PlanService
	logger *slog.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(svc *service.PlanService, logger *slog.Logger) *PlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanHandler{svc: svc, logger: logger}
}

// ListPlans returns the stored plans, most recently updated first
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.svc.List(r.Context())
	if err != nil {
		writeFailure(w, h.logger, "Failed to list plans", err)
		return
	}
	writeJSON(w, plans, http.StatusOK)
}

// SavePlanRequest is the body of POST /api/plans.
type SavePlanRequest struct {
	Name string `json:"name"`
}

// SavePlan stores the current graph under a name
func (h *PlanHandler) SavePlan(w http.ResponseWriter, r *http.Request) {
	var req SavePlanRequest
	if !decode(w, r, &req) {
		return
	}

	info, err := h.svc.Save(r.Context(), req.Name)
	if err != nil {
		writeFailure(w, h.logger, "Failed to save plan", err)
		return
	}
	writeJSON(w, info, http.StatusCreated)
}

// LoadPlan replaces the graph with a stored plan
func (h *PlanHandler) LoadPlan(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, h.logger, "Failed to load plan", err)
		return
	}
	writeJSON(w, info, http.StatusOK)
}

// DeletePlan removes a stored plan
func (h *PlanHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, h.logger, "Failed to delete plan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportPlan loads a plan document from the request body. A document without
// nodes or edges is reported as not loaded.
func (h *PlanHandler) ImportPlan(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	loaded, err := h.svc.Import(r.Body, format)
	if err != nil {
		writeFailure(w, h.logger, "Failed to import plan", err)
		return
	}
	writeJSON(w, map[string]bool{"loaded": loaded}, http.StatusOK)
}

var contentTypes = map[string]string{
	"json": "application/json",
	"yaml": "application/x-yaml",
	"yml":  "application/x-yaml",
}

// ExportPlan writes the current graph as a plan document
func (h *PlanHandler) ExportPlan(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	contentType, ok := contentTypes[format]
	if !ok {
		writeError(w, "Unknown format", fmt.Sprintf("format %q is not supported", format), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=plan."+format)
	if err := h.svc.Export(w, format); err != nil {
		// Headers are already written
		h.logger.Error("failed to export plan", "format", format, "error", err)
	}
}
