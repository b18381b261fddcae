package codec

import (
	"fmt"
	"io"

	"walflow/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles a hand-editable YAML rendition of a plan
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlPlan represents the YAML structure for a plan
type yamlPlan struct {
	Settings *domain.GlobalSettings `yaml:"global_settings,omitempty"`
	Nodes    []yamlNode             `yaml:"nodes"`
	Edges    []yamlEdge             `yaml:"edges"`
}

type yamlNode struct {
	ID       string         `yaml:"id"`
	Type     string         `yaml:"type"`
	Position yamlPosition   `yaml:"position"`
	Data     map[string]any `yaml:"data,omitempty"`
}

type yamlPosition struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type yamlEdge struct {
	ID           string         `yaml:"id"`
	Source       string         `yaml:"source"`
	SourceHandle string         `yaml:"source_handle,omitempty"`
	Target       string         `yaml:"target"`
	TargetHandle string         `yaml:"target_handle,omitempty"`
	Data         map[string]any `yaml:"data,omitempty"`
}

// Parse reads a plan from YAML. Telemetry is never part of the YAML form.
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Plan, error) {
	var yp yamlPlan
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yp); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	plan := &domain.Plan{GlobalSettings: yp.Settings}

	// Convert nodes
	if yp.Nodes != nil {
		plan.Nodes = make([]domain.Node, 0, len(yp.Nodes))
	}
	for _, yn := range yp.Nodes {
		plan.Nodes = append(plan.Nodes, domain.Node{
			ID:         yn.ID,
			Kind:       domain.NodeKind(yn.Type),
			Position:   domain.Position{X: yn.Position.X, Y: yn.Position.Y},
			Parameters: numericParams(yn.Data),
		})
	}

	// Convert edges
	if yp.Edges != nil {
		plan.Edges = make([]domain.Edge, 0, len(yp.Edges))
	}
	for _, ye := range yp.Edges {
		plan.Edges = append(plan.Edges, domain.Edge{
			ID:           ye.ID,
			Source:       ye.Source,
			SourceHandle: ye.SourceHandle,
			Target:       ye.Target,
			TargetHandle: ye.TargetHandle,
			Parameters:   numericParams(ye.Data),
		})
	}

	return plan, nil
}

// Export writes a plan as YAML
func (c *YAMLCodec) Export(plan *domain.Plan, w io.Writer) error {
	yp := yamlPlan{
		Settings: plan.GlobalSettings,
		Nodes:    make([]yamlNode, 0, len(plan.Nodes)),
		Edges:    make([]yamlEdge, 0, len(plan.Edges)),
	}

	for _, node := range plan.Nodes {
		yp.Nodes = append(yp.Nodes, yamlNode{
			ID:       node.ID,
			Type:     string(node.Kind),
			Position: yamlPosition{X: node.Position.X, Y: node.Position.Y},
			Data:     node.Parameters,
		})
	}

	for _, edge := range plan.Edges {
		yp.Edges = append(yp.Edges, yamlEdge{
			ID:           edge.ID,
			Source:       edge.Source,
			SourceHandle: edge.SourceHandle,
			Target:       edge.Target,
			TargetHandle: edge.TargetHandle,
			Data:         edge.Parameters,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yp); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// numericParams widens YAML integers to float64, the type JSON decoding
// produces, so both formats load to the same parameters.
func numericParams(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	for k, v := range m {
		switch n := v.(type) {
		case int:
			m[k] = float64(n)
		case int64:
			m[k] = float64(n)
		case uint64:
			m[k] = float64(n)
		}
	}
	return m
}
