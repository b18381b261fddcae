package domain

import (
	"errors"
	"fmt"
)

// Snapshot is a detached copy of a graph. Mutating it never affects the graph
// it was taken from.
type Snapshot struct {
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Settings GlobalSettings `json:"global_settings"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Nodes:    make([]Node, len(s.Nodes)),
		Edges:    make([]Edge, len(s.Edges)),
		Settings: s.Settings,
	}
	for i, n := range s.Nodes {
		out.Nodes[i] = n.Clone()
	}
	for i, e := range s.Edges {
		out.Edges[i] = e.Clone()
	}
	return out
}

// Node returns the node with the given id.
func (s Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given id.
func (s Snapshot) Edge(id string) (Edge, bool) {
	for _, e := range s.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// ValidateGraph checks id uniqueness, endpoint existence, port capacity and
// parameter ranges for a full graph. Edge handles are rewritten to their
// canonical form in place. Every problem found is joined into one error
// wrapping ErrInvalidGraph.
func ValidateGraph(nodes []Node, edges []Edge, settings GlobalSettings) error {
	var problems []error

	kinds := make(map[string]NodeKind, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			problems = append(problems, errors.New("node with empty id"))
			continue
		}
		if _, dup := kinds[n.ID]; dup {
			problems = append(problems, fmt.Errorf("duplicate node id %q", n.ID))
			continue
		}
		if !n.Kind.Valid() {
			problems = append(problems, fmt.Errorf("node %q: %w: %q", n.ID, ErrUnknownKind, n.Kind))
			continue
		}
		if err := ValidateNodeParameters(n.Kind, n.Parameters); err != nil {
			problems = append(problems, fmt.Errorf("node %q: %w", n.ID, err))
		}
		kinds[n.ID] = n.Kind
	}

	edgeIDs := make(map[string]bool, len(edges))
	used := make(map[string]string)
	for i := range edges {
		e := &edges[i]
		if e.ID == "" {
			problems = append(problems, errors.New("edge with empty id"))
			continue
		}
		if edgeIDs[e.ID] {
			problems = append(problems, fmt.Errorf("duplicate edge id %q", e.ID))
			continue
		}
		edgeIDs[e.ID] = true
		if _, clash := kinds[e.ID]; clash {
			problems = append(problems, fmt.Errorf("edge id %q is also a node id", e.ID))
		}

		src, dst, err := CheckEndpoints(kinds, e.Source, e.SourceHandle, e.Target, e.TargetHandle)
		if err != nil {
			problems = append(problems, fmt.Errorf("edge %q: %w", e.ID, err))
			continue
		}
		for _, key := range []string{e.Source + "/" + src, e.Target + "/" + dst} {
			if owner, taken := used[key]; taken {
				problems = append(problems, fmt.Errorf("edge %q: port %s already used by %q", e.ID, key, owner))
			}
			used[key] = e.ID
		}
		e.SourceHandle, e.TargetHandle = src, dst

		if err := ValidateEdgeParameters(e.Parameters); err != nil {
			problems = append(problems, fmt.Errorf("edge %q: %w", e.ID, err))
		}
	}

	if err := settings.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("global settings: %w", err))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidGraph, errors.Join(problems...))
}

// CheckEndpoints validates both ends of a pipe against the node kinds and
// returns the canonical handles.
func CheckEndpoints(kinds map[string]NodeKind, source, sourceHandle, target, targetHandle string) (string, string, error) {
	srcKind, ok := kinds[source]
	if !ok {
		return "", "", &EndpointError{NodeID: source, Reason: "source node does not exist"}
	}
	dstKind, ok := kinds[target]
	if !ok {
		return "", "", &EndpointError{NodeID: target, Reason: "target node does not exist"}
	}
	if source == target {
		return "", "", &EndpointError{NodeID: source, Reason: "a pipe cannot connect a node to itself"}
	}
	src, err := ResolveHandle(source, srcKind, sourceHandle, PortOutlet)
	if err != nil {
		return "", "", err
	}
	dst, err := ResolveHandle(target, dstKind, targetHandle, PortInlet)
	if err != nil {
		return "", "", err
	}
	return src, dst, nil
}
