package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"walflow/internal/standards"
)

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand() *cobra.Command {
	var dn int

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List nominal pipe sizes and schedules",
		Long: `List the built-in ASME B36.10M / B36.19M catalog. With --dn, list every
schedule of one size with its wall thickness and internal diameter.`,
		Example: `  walflow catalog
  walflow catalog --dn 80`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := standards.Default().Catalog()
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)

			if dn == 0 {
				t.AppendHeader(table.Row{"DN", "NPS (inch)", "OD (mm)", "Schedules"})
				for _, e := range c {
					t.AppendRow(table.Row{e.DN, e.NPS, e.OuterDiameterMm, strings.Join(e.ScheduleNames(), " ")})
				}
				t.Render()
				return nil
			}

			e, ok := c.Lookup(dn)
			if !ok {
				return fmt.Errorf("DN%d: %w", dn, standards.ErrUnknownDN)
			}
			t.SetTitle("DN%d (NPS %s), OD %.1f mm", e.DN, e.NPS, e.OuterDiameterMm)
			t.AppendHeader(table.Row{"Sch", "Wall (mm)", "ID (mm)"})
			for _, s := range e.Schedules {
				id := standards.InternalDiameter(e.OuterDiameterMm, s.WallThicknessMm) * 1000
				t.AppendRow(table.Row{s.Name, s.WallThicknessMm, fmt.Sprintf("%.2f", id)})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&dn, "dn", 0, "Show the schedules of one nominal size")

	return cmd
}
