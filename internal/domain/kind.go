package domain

import "strings"

// NodeKind is the equipment type of a node.
type NodeKind string

const (
	KindTank          NodeKind = "tank"
	KindPump          NodeKind = "pump"
	KindValve         NodeKind = "valve"
	KindOrifice       NodeKind = "orifice"
	KindFilter        NodeKind = "filter"
	KindHeatExchanger NodeKind = "heat_exchanger"
	KindSplitter      NodeKind = "splitter"
	KindMixer         NodeKind = "mixer"
)

// Kinds lists every supported equipment kind.
var Kinds = []NodeKind{
	KindTank,
	KindPump,
	KindValve,
	KindOrifice,
	KindFilter,
	KindHeatExchanger,
	KindSplitter,
	KindMixer,
}

// Valid reports whether k is a known kind.
func (k NodeKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Ports returns the number of inlet and outlet ports of the kind.
func (k NodeKind) Ports() (inlets, outlets int) {
	switch k {
	case KindSplitter:
		return 1, 2
	case KindMixer:
		return 2, 1
	default:
		return 1, 1
	}
}

// DisplayName returns the label prefix for the kind, e.g. "HEAT_EXCHANGER".
func (k NodeKind) DisplayName() string {
	return strings.ToUpper(string(k))
}

// Parameter keys shared with the solver wire format.
const (
	ParamLabel           = "label"
	ParamLevel           = "level"
	ParamElevation       = "elevation"
	ParamTemperature     = "temperature"
	ParamFluidType       = "fluid_type"
	ParamPumpA           = "A"
	ParamPumpB           = "B"
	ParamPumpC           = "C"
	ParamMaxCv           = "max_cv"
	ParamOpening         = "opening"
	ParamPipeDiameter    = "pipe_diameter"
	ParamOrificeDiameter = "orifice_diameter"
	ParamResistance      = "resistance"
	ParamHeatDuty        = "heat_duty_kw"
	ParamFlowRate        = "flow_rate"
	ParamLength          = "length"
	ParamDiameter        = "diameter"
)

// DefaultParameters returns a fresh parameter record for a kind. The label is
// not included; callers derive it from the node's id.
func DefaultParameters(k NodeKind) map[string]any {
	switch k {
	case KindTank:
		return map[string]any{
			ParamLevel:       2.0,
			ParamElevation:   0.0,
			ParamTemperature: 313.15,
			ParamFluidType:   "iso_vg_46",
		}
	case KindPump:
		return map[string]any{ParamPumpA: 80.0, ParamPumpB: 0.0, ParamPumpC: -2000.0}
	case KindValve:
		return map[string]any{ParamMaxCv: 0.05, ParamOpening: 50.0}
	case KindOrifice:
		return map[string]any{ParamPipeDiameter: 0.1, ParamOrificeDiameter: 0.07}
	case KindFilter:
		return map[string]any{ParamResistance: 1000.0}
	case KindHeatExchanger:
		return map[string]any{ParamHeatDuty: -10.0}
	default:
		return map[string]any{}
	}
}

// DefaultEdgeParameters returns a fresh pipe parameter record.
func DefaultEdgeParameters() map[string]any {
	return map[string]any{ParamLength: 25.0, ParamDiameter: 0.1}
}
