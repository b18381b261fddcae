package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"walflow/internal/domain"
)

// JSONCodec handles the JSON plan file written by the editor:
// {nodes, edges, globalSettings}.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse reads a plan from JSON. Missing nodes or edges are not an error
// here; callers check Plan.Complete.
func (c *JSONCodec) Parse(r io.Reader) (*domain.Plan, error) {
	var plan domain.Plan
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &plan, nil
}

// Export writes a plan as indented JSON
func (c *JSONCodec) Export(plan *domain.Plan, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(plan); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
