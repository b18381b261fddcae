package handler

import (
	"log/slog"
	"net/http"

	"walflow/internal/report"
	"walflow/internal/service"
)

// ReportHandler serves the ordered tabular view of the graph.
type ReportHandler struct {
	svc     *service.GraphService
	orderer *report.Orderer
	logger  *slog.Logger
}

// NewReportHandler creates a report handler with its own display order.
func NewReportHandler(svc *service.GraphService, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{svc: svc, orderer: report.NewOrderer(), logger: logger}
}

// GetReport returns report rows. The filter query parameter is "all" or
// "pipes" (the default).
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	filter, err := report.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, "Invalid filter", err.Error(), http.StatusBadRequest)
		return
	}

	snap := h.svc.Snapshot()
	order, _ := h.orderer.Refresh(snap)
	writeJSON(w, report.BuildRows(snap, order, filter, h.svc.Resolver()), http.StatusOK)
}

// GetOrder returns the display ordering
func (h *ReportHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, _ := h.orderer.Refresh(h.svc.Snapshot())
	writeJSON(w, order, http.StatusOK)
}

// MoveRequest is the body of POST /api/report/order/move.
type MoveRequest struct {
	Index     int `json:"index"`
	Direction int `json:"direction"`
}

// MoveItem shifts one entry of the display ordering up or down
func (h *ReportHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decode(w, r, &req) {
		return
	}

	h.orderer.Refresh(h.svc.Snapshot())
	if h.orderer.MoveItem(req.Index, req.Direction) {
		order := h.orderer.Order()
		h.svc.EventBus().Publish(service.Event{Type: service.EventOrderChanged, Payload: order})
		writeJSON(w, order, http.StatusOK)
		return
	}
	writeJSON(w, h.orderer.Order(), http.StatusOK)
}
