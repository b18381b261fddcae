package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Format is an output encoding for Render.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat converts a user string to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "table":
		return FormatTable, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Render writes rows to w. Pipe-only reports carry velocity, NPS and schedule
// columns.
func Render(w io.Writer, rows []Row, filter Filter, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	pipes := filter == FilterPipes

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"#", "Type", "Name", "Flow (L/min)"}
	if pipes {
		header = append(header, "Velocity (m/s)")
	}
	header = append(header, "P Start (bar)", "P End (bar)", "Temp (°C)")
	if pipes {
		header = append(header, "NPS (inch)", "Sch")
	}
	t.AppendHeader(header)

	for _, r := range rows {
		row := table.Row{r.Index, r.Type, r.Name, r.FlowLmin}
		if pipes {
			row = append(row, r.Velocity)
		}
		row = append(row, r.PStartBar, r.PEndBar, r.Temperature)
		if pipes {
			row = append(row, r.NPS, r.Schedule)
		}
		t.AppendRow(row)
	}

	switch format {
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatCSV:
		t.RenderCSV()
	default:
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	}
	return nil
}
