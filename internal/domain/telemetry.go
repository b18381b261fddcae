package domain

// PortReading is the solver's state at one port.
type PortReading struct {
	Pressure    float64 `json:"pressure"`
	FlowRate    float64 `json:"flow_rate"`
	Temperature float64 `json:"temperature"`
}

// PortReadings holds per-port readings for a node or pipe. Pipes use index 0
// for the start and end of the segment.
type PortReadings struct {
	Inlets  []PortReading `json:"inlets"`
	Outlets []PortReading `json:"outlets"`
}

// Clone returns a deep copy, or nil for a nil receiver.
func (p *PortReadings) Clone() *PortReadings {
	if p == nil {
		return nil
	}
	out := &PortReadings{}
	if p.Inlets != nil {
		out.Inlets = append([]PortReading(nil), p.Inlets...)
	}
	if p.Outlets != nil {
		out.Outlets = append([]PortReading(nil), p.Outlets...)
	}
	return out
}

// Inlet returns the reading at inlet i.
func (p *PortReadings) Inlet(i int) (PortReading, bool) {
	if p == nil || i < 0 || i >= len(p.Inlets) {
		return PortReading{}, false
	}
	return p.Inlets[i], true
}

// Outlet returns the reading at outlet i.
func (p *PortReadings) Outlet(i int) (PortReading, bool) {
	if p == nil || i < 0 || i >= len(p.Outlets) {
		return PortReading{}, false
	}
	return p.Outlets[i], true
}

// Telemetry is a full solver result keyed by node and edge id.
type Telemetry struct {
	Nodes map[string]PortReadings `json:"nodes"`
	Edges map[string]PortReadings `json:"edges"`
}
