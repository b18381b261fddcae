package domain

import "time"

// Plan is the persisted document for a saved network. GlobalSettings is
// optional so older files without it load with the current settings.
type Plan struct {
	Nodes          []Node          `json:"nodes"`
	Edges          []Edge          `json:"edges"`
	GlobalSettings *GlobalSettings `json:"globalSettings,omitempty"`
}

// NewPlan builds a plan document from a snapshot.
func NewPlan(s Snapshot) *Plan {
	s = s.Clone()
	settings := s.Settings
	return &Plan{
		Nodes:          s.Nodes,
		Edges:          s.Edges,
		GlobalSettings: &settings,
	}
}

// Complete reports whether the plan carries both node and edge lists. An
// incomplete document is loaded as a no-op.
func (p *Plan) Complete() bool {
	return p != nil && p.Nodes != nil && p.Edges != nil
}

// PlanInfo describes a plan stored in the library.
type PlanInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
