package service

import "walflow/internal/domain"

// MergeResult counts the entities whose telemetry was replaced.
type MergeResult struct {
	Nodes   int `json:"nodes"`
	Edges   int `json:"edges"`
	Ignored int `json:"ignored"`
}

// MergeTelemetry replaces the telemetry of every node and edge named in t.
// Entities not named keep their previous readings, and ids no longer in the
// graph are skipped. Parameters are never touched, so edits made after the
// push that produced t survive the merge.
func (s *GraphService) MergeTelemetry(t domain.Telemetry) MergeResult {
	var res MergeResult

	s.mu.Lock()
	for id, readings := range t.Nodes {
		i := s.findNode(id)
		if i < 0 {
			res.Ignored++
			continue
		}
		s.nodes[i].Telemetry = readings.Clone()
		res.Nodes++
	}
	for id, readings := range t.Edges {
		i := s.findEdge(id)
		if i < 0 {
			res.Ignored++
			continue
		}
		s.edges[i].Telemetry = readings.Clone()
		res.Edges++
	}
	s.mu.Unlock()

	s.metrics.TelemetryMergesTotal.Inc()
	s.logger.Debug("telemetry merged", "nodes", res.Nodes, "edges", res.Edges, "ignored", res.Ignored)
	s.eventBus.Publish(Event{Type: EventTelemetryMerged, Payload: res})
	return res
}
