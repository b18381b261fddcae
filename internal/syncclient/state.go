package syncclient

import (
	"errors"
	"time"
)

var (
	// ErrNotConnected is returned when a command needs an open connection.
	ErrNotConnected = errors.New("solver not connected")
	// ErrSimulationInProgress is returned when a simulation is already outstanding.
	ErrSimulationInProgress = errors.New("simulation already in progress")
	// ErrClosed is returned once the client has shut down.
	ErrClosed = errors.New("sync client closed")
)

// State is the connection state of a Client.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a point-in-time view of the client.
type Status struct {
	SessionID   string     `json:"session_id"`
	URL         string     `json:"url"`
	State       State      `json:"state"`
	Simulating  bool       `json:"simulating"`
	LastStatus  string     `json:"last_status,omitempty"`
	LastMessage string     `json:"last_message,omitempty"`
	FlowRateM3s *float64   `json:"flow_rate_m3s,omitempty"`
	Pushes      int        `json:"pushes"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}
