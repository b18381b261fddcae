package domain

// Edge is a pipe segment from an outlet port of Source to an inlet port of
// Target.
type Edge struct {
	ID           string         `json:"id"`
	Source       string         `json:"source"`
	SourceHandle string         `json:"sourceHandle"`
	Target       string         `json:"target"`
	TargetHandle string         `json:"targetHandle"`
	Parameters   map[string]any `json:"data"`
	Telemetry    *PortReadings  `json:"telemetry,omitempty"`
}

// NewEdge creates a pipe with the default length and diameter.
func NewEdge(id, source, sourceHandle, target, targetHandle string) *Edge {
	return &Edge{
		ID:           id,
		Source:       source,
		SourceHandle: sourceHandle,
		Target:       target,
		TargetHandle: targetHandle,
		Parameters:   DefaultEdgeParameters(),
	}
}

// SetParameter sets a parameter value
func (e *Edge) SetParameter(key string, value any) {
	if e.Parameters == nil {
		e.Parameters = make(map[string]any)
	}
	e.Parameters[key] = value
}

// GetParameter gets a parameter value
func (e *Edge) GetParameter(key string) (any, bool) {
	if e.Parameters == nil {
		return nil, false
	}
	val, ok := e.Parameters[key]
	return val, ok
}

// Float returns a numeric parameter.
func (e *Edge) Float(key string) (float64, bool) {
	v, ok := e.GetParameter(key)
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// Diameter returns the internal diameter in metres.
func (e *Edge) Diameter() float64 {
	d, _ := e.Float(ParamDiameter)
	return d
}

// Length returns the pipe length in metres.
func (e *Edge) Length() float64 {
	l, _ := e.Float(ParamLength)
	return l
}

// Clone returns a deep copy of the edge.
func (e Edge) Clone() Edge {
	e.Parameters = cloneMap(e.Parameters)
	e.Telemetry = e.Telemetry.Clone()
	return e
}
