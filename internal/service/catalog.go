package service

import (
	"fmt"

	"walflow/internal/domain"
	"walflow/internal/standards"
)

// Pipes whose diameter is not in the catalog are edited as if they were
// DN50 schedule 40.
var fallbackMatch = standards.Match{DN: 50, Schedule: "40"}

// CatalogSelection is the catalog view of a pipe diameter.
type CatalogSelection struct {
	Diameter float64         `json:"diameter"`
	Match    standards.Match `json:"match"`
	Custom   bool            `json:"custom"`
}

// EdgeCatalogSelection returns the catalog entry matching a pipe's diameter.
func (s *GraphService) EdgeCatalogSelection(id string) (CatalogSelection, error) {
	edge, err := s.GetEdge(id)
	if err != nil {
		return CatalogSelection{}, err
	}
	return s.selection(edge.Diameter()), nil
}

// SetEdgeDN changes a pipe's nominal size, keeping its schedule when the new
// size offers it, and writes the resulting internal diameter.
func (s *GraphService) SetEdgeDN(id string, dn int) (CatalogSelection, error) {
	current, err := s.EdgeCatalogSelection(id)
	if err != nil {
		return CatalogSelection{}, err
	}
	d, sch, err := s.resolver.ResolveDNChange(dn, current.Match.Schedule)
	if err != nil {
		s.reject("set_dn", err)
		return CatalogSelection{}, fmt.Errorf("edge %s: %w", id, err)
	}
	if err := s.UpdateEdgeParameters(id, map[string]any{domain.ParamDiameter: d}); err != nil {
		return CatalogSelection{}, err
	}
	return CatalogSelection{Diameter: d, Match: standards.Match{DN: dn, Schedule: sch}}, nil
}

// SetEdgeSchedule changes a pipe's schedule at its current nominal size. An
// unknown schedule leaves the diameter unchanged.
func (s *GraphService) SetEdgeSchedule(id string, schedule string) (CatalogSelection, error) {
	current, err := s.EdgeCatalogSelection(id)
	if err != nil {
		return CatalogSelection{}, err
	}
	d, err := s.resolver.ResolveScheduleChange(current.Match.DN, schedule)
	if err != nil {
		s.reject("set_schedule", err)
		return CatalogSelection{}, fmt.Errorf("edge %s: %w", id, err)
	}
	if err := s.UpdateEdgeParameters(id, map[string]any{domain.ParamDiameter: d}); err != nil {
		return CatalogSelection{}, err
	}
	return CatalogSelection{Diameter: d, Match: standards.Match{DN: current.Match.DN, Schedule: schedule}}, nil
}

func (s *GraphService) selection(d float64) CatalogSelection {
	if m, ok := s.resolver.FindClosestMatch(d); ok {
		return CatalogSelection{Diameter: d, Match: m}
	}
	return CatalogSelection{Diameter: d, Match: fallbackMatch, Custom: true}
}
