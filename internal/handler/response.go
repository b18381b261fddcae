package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"walflow/internal/codec"
	"walflow/internal/domain"
	"walflow/internal/service"
	"walflow/internal/standards"
	"walflow/internal/syncclient"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, msg, details string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: msg, Details: details}, statusCode)
}

// writeFailure maps err onto a status code and writes it. Unmapped errors are
// logged as server faults.
func writeFailure(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, "error", err)
	}
	writeError(w, msg, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	// A rejected bulk graph also wraps the endpoint and parameter errors it found.
	case errors.Is(err, domain.ErrInvalidGraph):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidEndpoint),
		errors.Is(err, domain.ErrInvalidParameter),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, standards.ErrUnknownSchedule),
		errors.Is(err, standards.ErrUnknownDN),
		errors.Is(err, codec.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, syncclient.ErrSimulationInProgress):
		return http.StatusConflict
	case errors.Is(err, syncclient.ErrNotConnected),
		errors.Is(err, syncclient.ErrClosed),
		errors.Is(err, service.ErrNoPlanLibrary):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
