package domain

// Node is a piece of process equipment on the canvas.
type Node struct {
	ID         string         `json:"id"`
	Kind       NodeKind       `json:"type"`
	Position   Position       `json:"position"`
	Parameters map[string]any `json:"data"`
	Telemetry  *PortReadings  `json:"telemetry,omitempty"`
}

// NewNode creates a node with the kind's default parameters and the given label.
func NewNode(id string, kind NodeKind, pos Position, label string) *Node {
	params := DefaultParameters(kind)
	params[ParamLabel] = label
	return &Node{
		ID:         id,
		Kind:       kind,
		Position:   pos,
		Parameters: params,
	}
}

// SetParameter sets a parameter value
func (n *Node) SetParameter(key string, value any) {
	if n.Parameters == nil {
		n.Parameters = make(map[string]any)
	}
	n.Parameters[key] = value
}

// GetParameter gets a parameter value
func (n *Node) GetParameter(key string) (any, bool) {
	if n.Parameters == nil {
		return nil, false
	}
	val, ok := n.Parameters[key]
	return val, ok
}

// Float returns a numeric parameter.
func (n *Node) Float(key string) (float64, bool) {
	v, ok := n.GetParameter(key)
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// Label returns the display label, falling back to the id.
func (n *Node) Label() string {
	if v, ok := n.GetParameter(ParamLabel); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return n.ID
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Parameters = cloneMap(n.Parameters)
	n.Telemetry = n.Telemetry.Clone()
	return n
}
