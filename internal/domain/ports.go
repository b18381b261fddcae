package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PortDirection says whether a port receives or emits flow.
type PortDirection string

const (
	PortInlet  PortDirection = "inlet"
	PortOutlet PortDirection = "outlet"
)

// Handle returns the canonical handle for a port, e.g. "outlet-1".
func Handle(dir PortDirection, index int) string {
	return fmt.Sprintf("%s-%d", dir, index)
}

// ParseHandle splits a handle into direction and index. The legacy forms
// "inlet" and "outlet" address port 0.
func ParseHandle(handle string) (PortDirection, int, error) {
	switch handle {
	case string(PortInlet):
		return PortInlet, 0, nil
	case string(PortOutlet):
		return PortOutlet, 0, nil
	}

	dir, idx, ok := strings.Cut(handle, "-")
	if !ok {
		return "", 0, fmt.Errorf("malformed handle %q", handle)
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("malformed handle %q", handle)
	}
	switch PortDirection(dir) {
	case PortInlet, PortOutlet:
		return PortDirection(dir), n, nil
	}
	return "", 0, fmt.Errorf("malformed handle %q", handle)
}

// ResolveHandle validates a handle against a node kind and returns its
// canonical form. An empty handle means port 0 in the wanted direction.
func ResolveHandle(nodeID string, kind NodeKind, handle string, want PortDirection) (string, error) {
	if handle == "" {
		handle = Handle(want, 0)
	}

	dir, idx, err := ParseHandle(handle)
	if err != nil {
		return "", &EndpointError{NodeID: nodeID, Handle: handle, Reason: err.Error()}
	}
	if dir != want {
		return "", &EndpointError{NodeID: nodeID, Handle: handle, Reason: fmt.Sprintf("expected an %s port", want)}
	}

	inlets, outlets := kind.Ports()
	limit := inlets
	if dir == PortOutlet {
		limit = outlets
	}
	if idx >= limit {
		return "", &EndpointError{
			NodeID: nodeID,
			Handle: handle,
			Reason: fmt.Sprintf("%s has %d %s port(s)", kind, limit, dir),
		}
	}
	return Handle(dir, idx), nil
}
