// Package protocol defines the JSON messages exchanged with the hydraulic
// solver over its WebSocket endpoint.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"walflow/internal/domain"
)

// ErrProtocol is returned for inbound messages that cannot be understood.
var ErrProtocol = errors.New("protocol error")

// Actions sent to the solver.
const (
	ActionUpdateGraph   = "update_graph"
	ActionUpdateValve   = "update_valve"
	ActionRunSimulation = "run_simulation"
)

// Status is the outcome reported by the solver.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusWaiting Status = "waiting"
)

// Terminal reports whether the status ends an outstanding simulation.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// UpdateGraph pushes a full graph snapshot.
type UpdateGraph struct {
	Action string          `json:"action"`
	Graph  domain.Snapshot `json:"graph"`
}

// NewUpdateGraph wraps a snapshot for sending.
func NewUpdateGraph(s domain.Snapshot) UpdateGraph {
	return UpdateGraph{Action: ActionUpdateGraph, Graph: s}
}

// UpdateValve is a live actuator command for one valve.
type UpdateValve struct {
	Action string  `json:"action"`
	Value  float64 `json:"value"`
	NodeID string  `json:"node_id"`
}

// NewUpdateValve builds a valve command.
func NewUpdateValve(nodeID string, opening float64) UpdateValve {
	return UpdateValve{Action: ActionUpdateValve, Value: opening, NodeID: nodeID}
}

// RunSimulation asks the solver to solve the last pushed graph.
type RunSimulation struct {
	Action string `json:"action"`
}

// NewRunSimulation builds a simulation request.
func NewRunSimulation() RunSimulation {
	return RunSimulation{Action: ActionRunSimulation}
}

// Response is any message received from the solver.
type Response struct {
	Status    Status            `json:"status" validate:"required,oneof=success error waiting"`
	Message   string            `json:"message,omitempty"`
	Telemetry *domain.Telemetry `json:"telemetry,omitempty"`
	FlowRate  *float64          `json:"flow_rate_m3s,omitempty"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func responseValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Decode parses and validates one inbound frame. Every failure wraps
// ErrProtocol.
func Decode(data []byte) (Response, error) {
	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if err := responseValidator().Struct(r); err != nil {
		return Response{}, fmt.Errorf("%w: status %q: %v", ErrProtocol, r.Status, err)
	}
	if r.Status == StatusError && r.Message == "" {
		r.Message = "solver reported an error"
	}
	return r, nil
}
