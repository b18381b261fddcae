package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"walflow/internal/logging"
	"walflow/internal/metrics"
	"walflow/internal/report"
	"walflow/internal/service"
)

// ReportOptions holds options for the report command.
type ReportOptions struct {
	Filter string
	Format string
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report <plan-file>",
		Short: "Print the tabular view of a saved plan",
		Long: `Print every node and pipe of a plan file in flow order with its latest
telemetry: flow in L/min, pressures in bar and temperature in °C. The pipes
view adds velocity and the matching catalog size.`,
		Example: `  # Pipes only, as a table
  walflow report plans/loop.json

  # Every entry as markdown
  walflow report plans/loop.yaml --filter all --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", string(report.FilterPipes), "Entries to include (all|pipes)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", string(report.FormatTable), "Output format (table|markdown|csv|json)")

	return cmd
}

func runReport(cmd *cobra.Command, path string, opts *ReportOptions) error {
	filter, err := report.ParseFilter(opts.Filter)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	logger := logging.FromContext(cmd.Context())
	graph := service.NewGraphService(service.NewEventBus(),
		service.WithMetrics(metrics.NewRegistry()),
		service.WithLogger(logger),
	)
	loaded, err := service.NewPlanService(nil, graph, logger).ImportFile(path)
	if err != nil {
		return err
	}
	if !loaded {
		return fmt.Errorf("%s has no nodes or edges", path)
	}

	snap := graph.Snapshot()
	rows := report.BuildRows(snap, report.ComputeOrder(snap), filter, graph.Resolver())
	return report.Render(cmd.OutOrStdout(), rows, filter, format)
}
