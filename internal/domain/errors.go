package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEndpoint is returned when an edge references a missing node or port.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrNotFound is returned when an update or delete targets an unknown id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidGraph is returned when a bulk replacement fails validation.
	ErrInvalidGraph = errors.New("invalid graph")
	// ErrInvalidParameter is returned when a parameter value is out of range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnknownKind is returned for node kinds outside the equipment set.
	ErrUnknownKind = errors.New("unknown node kind")
)

// EndpointError describes why an edge endpoint was rejected.
type EndpointError struct {
	NodeID string
	Handle string
	Reason string
}

func (e *EndpointError) Error() string {
	if e.Handle == "" {
		return fmt.Sprintf("invalid endpoint %s: %s", e.NodeID, e.Reason)
	}
	return fmt.Sprintf("invalid endpoint %s/%s: %s", e.NodeID, e.Handle, e.Reason)
}

// Is reports whether target is ErrInvalidEndpoint.
func (e *EndpointError) Is(target error) bool {
	return target == ErrInvalidEndpoint
}

// ValidationError describes a parameter that failed validation.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidParameter.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidParameter
}
