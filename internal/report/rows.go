package report

import (
	"fmt"

	"walflow/internal/domain"
	"walflow/internal/standards"
	"walflow/internal/units"
)

// Filter selects which entries appear in a report.
type Filter string

const (
	FilterAll   Filter = "all"
	FilterPipes Filter = "pipes"
)

// ParseFilter converts a user string to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case FilterAll, FilterPipes:
		return Filter(s), nil
	case "":
		return FilterPipes, nil
	}
	return "", fmt.Errorf("unknown report filter %q (want all or pipes)", s)
}

const defaultTemperatureK = 293.15

// Row is one formatted line of the report. Index is the entry's position in
// the full ordering, which is what MoveItem takes.
type Row struct {
	Index       int    `json:"index"`
	Type        string `json:"type"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	FlowLmin    string `json:"flow_lmin"`
	Velocity    string `json:"velocity_ms,omitempty"`
	PStartBar   string `json:"p_start_bar"`
	PEndBar     string `json:"p_end_bar"`
	Temperature string `json:"temperature_c"`
	NPS         string `json:"nps,omitempty"`
	Schedule    string `json:"schedule,omitempty"`
}

// BuildRows resolves order against the snapshot. Ids no longer in the graph
// are skipped.
func BuildRows(s domain.Snapshot, order []Item, filter Filter, r *standards.Resolver) []Row {
	nodes := make(map[string]domain.Node, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes[n.ID] = n
	}
	edges := make(map[string]domain.Edge, len(s.Edges))
	for _, e := range s.Edges {
		edges[e.ID] = e
	}

	rows := make([]Row, 0, len(order))
	for i, it := range order {
		switch it.Type {
		case ItemNode:
			if filter == FilterPipes {
				continue
			}
			n, ok := nodes[it.ID]
			if !ok {
				continue
			}
			row := nodeRow(n)
			row.Index = i
			rows = append(rows, row)
		case ItemEdge:
			e, ok := edges[it.ID]
			if !ok {
				continue
			}
			row := edgeRow(e, filter, r)
			row.Index = i
			rows = append(rows, row)
		}
	}
	return rows
}

func readings(t *domain.PortReadings) (pStart, pEnd, flow, temp float64) {
	in, _ := t.Inlet(0)
	out, _ := t.Outlet(0)
	temp = out.Temperature
	if temp == 0 {
		temp = in.Temperature
	}
	if temp == 0 {
		temp = defaultTemperatureK
	}
	return in.Pressure, out.Pressure, out.FlowRate, temp
}

func nodeRow(n domain.Node) Row {
	pStart, pEnd, flow, temp := readings(n.Telemetry)
	return Row{
		Type:        n.Kind.DisplayName(),
		ID:          n.ID,
		Name:        n.Label(),
		FlowLmin:    units.FormatLmin(flow),
		PStartBar:   units.FormatBar(pStart),
		PEndBar:     units.FormatBar(pEnd),
		Temperature: units.FormatCelsius(temp),
	}
}

func edgeRow(e domain.Edge, filter Filter, r *standards.Resolver) Row {
	pStart, pEnd, flow, temp := readings(e.Telemetry)
	name := e.ID
	if v, ok := e.GetParameter(domain.ParamLabel); ok {
		if s, ok := v.(string); ok && s != "" {
			name = s
		}
	}
	row := Row{
		Type:        "PIPE",
		ID:          e.ID,
		Name:        name,
		FlowLmin:    units.FormatLmin(flow),
		PStartBar:   units.FormatBar(pStart),
		PEndBar:     units.FormatBar(pEnd),
		Temperature: units.FormatCelsius(temp),
	}
	if filter != FilterPipes {
		return row
	}

	d, ok := e.Float(domain.ParamDiameter)
	if !ok {
		d = 0.1
	}
	row.Velocity = fmt.Sprintf("%.2f", units.Velocity(flow, d))
	row.NPS, row.Schedule = "-", "-"
	if m, ok := r.FindClosestMatch(d); ok {
		row.NPS = fmt.Sprintf("%dmm", m.DN)
		if entry, found := r.Catalog().Lookup(m.DN); found {
			row.NPS = entry.NPS + `"`
		}
		row.Schedule = m.Schedule
	} else if d > 0 {
		row.NPS = fmt.Sprintf("Custom (%smm)", units.FormatMm(d))
	}
	return row
}
