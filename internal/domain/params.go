package domain

import (
	"encoding/json"
	"math"
)

// ToFloat coerces a numeric parameter value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

type rule struct {
	field string
	check func(float64) bool
	msg   string
}

func positive(v float64) bool    { return v > 0 }
func nonNegative(v float64) bool { return v >= 0 }
func finite(v float64) bool      { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func percentOpen(v float64) bool { return v > 0 && v <= 100 }

var nodeRules = map[NodeKind][]rule{
	KindTank: {
		{ParamLevel, nonNegative, "must be >= 0"},
		{ParamElevation, finite, "must be a number"},
		{ParamTemperature, positive, "must be > 0 K"},
	},
	KindPump: {
		{ParamPumpA, finite, "must be a number"},
		{ParamPumpB, finite, "must be a number"},
		{ParamPumpC, finite, "must be a number"},
	},
	KindValve: {
		{ParamMaxCv, positive, "must be > 0"},
		{ParamOpening, percentOpen, "must be in (0, 100]"},
	},
	KindOrifice: {
		{ParamPipeDiameter, positive, "must be > 0"},
		{ParamOrificeDiameter, positive, "must be > 0"},
	},
	KindFilter: {
		{ParamResistance, nonNegative, "must be >= 0"},
	},
	KindHeatExchanger: {
		{ParamHeatDuty, finite, "must be a number"},
	},
}

var edgeRules = []rule{
	{ParamLength, positive, "must be > 0"},
	{ParamDiameter, positive, "must be > 0"},
}

func applyRules(params map[string]any, rules []rule) error {
	for _, r := range rules {
		v, ok := params[r.field]
		if !ok {
			continue
		}
		f, ok := ToFloat(v)
		if !ok {
			return &ValidationError{Field: r.field, Value: v, Reason: "must be numeric"}
		}
		if !finite(f) || !r.check(f) {
			return &ValidationError{Field: r.field, Value: v, Reason: r.msg}
		}
	}
	return nil
}

// ValidateNodeParameters checks the known fields of a node parameter record.
// Unknown fields are left alone.
func ValidateNodeParameters(kind NodeKind, params map[string]any) error {
	if err := applyRules(params, nodeRules[kind]); err != nil {
		return err
	}
	if v, ok := params[ParamLabel]; ok {
		if _, isStr := v.(string); !isStr {
			return &ValidationError{Field: ParamLabel, Value: v, Reason: "must be a string"}
		}
	}
	if kind == KindTank {
		if v, ok := params[ParamFluidType]; ok {
			if _, isStr := v.(string); !isStr {
				return &ValidationError{Field: ParamFluidType, Value: v, Reason: "must be a string"}
			}
		}
	}
	if kind == KindOrifice {
		pipe, okPipe := ToFloat(params[ParamPipeDiameter])
		orifice, okOrifice := ToFloat(params[ParamOrificeDiameter])
		if okPipe && okOrifice && orifice > pipe {
			return &ValidationError{
				Field:  ParamOrificeDiameter,
				Value:  params[ParamOrificeDiameter],
				Reason: "must not exceed pipe_diameter",
			}
		}
	}
	return nil
}

// ValidateEdgeParameters checks the known fields of a pipe parameter record.
func ValidateEdgeParameters(params map[string]any) error {
	return applyRules(params, edgeRules)
}

// MergeParameters returns a copy of base with every key of partial applied.
func MergeParameters(base, partial map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(partial))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}
