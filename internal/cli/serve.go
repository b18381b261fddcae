package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"walflow/internal/config"
	"walflow/internal/handler"
	"walflow/internal/hub"
	"walflow/internal/logging"
	"walflow/internal/metrics"
	"walflow/internal/repository"
	"walflow/internal/repository/sqlite"
	"walflow/internal/service"
	"walflow/internal/syncclient"
	"walflow/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor API and keep the solver in sync",
		Long: `Start the HTTP API and event stream for the browser editor, and hold a
WebSocket connection to the hydraulic solver. Every edit is pushed to the
solver after a short debounce; simulation results are merged back into the
model as telemetry.`,
		Example: `  # Serve on the default address against a local solver
  walflow serve

  # Load a plan at startup and reload it when the file changes
  walflow serve --plan plans/loop.json --watch

  # Point at a remote solver and reconnect when it drops
  walflow serve --solver-url ws://solver:8000/ws/simulate --reconnect`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "HTTP listen address (default: "+config.DefaultAddr+")")
	cmd.Flags().String("db", "", "Plan library database path")
	cmd.Flags().String("solver-url", "", "Solver WebSocket URL")
	cmd.Flags().Duration("debounce", 0, "Quiet period before an edit is pushed to the solver")
	cmd.Flags().Duration("simulation-timeout", 0, "Give up on a simulation after this long (0 waits forever)")
	cmd.Flags().Bool("reconnect", false, "Reconnect when the solver connection drops")
	cmd.Flags().String("plan", "", "Plan file to load at startup")
	cmd.Flags().Bool("watch", false, "Reload the plan file when it changes")

	return cmd
}

func solverConfig(c config.SolverConfig) syncclient.Config {
	return syncclient.Config{
		URL:               c.URL,
		Debounce:          c.Debounce.Duration(),
		HandshakeTimeout:  c.HandshakeTimeout.Duration(),
		SimulationTimeout: c.SimulationTimeout.Duration(),
		Reconnect: syncclient.ReconnectPolicy{
			Enabled:     c.Reconnect.Enabled,
			Delay:       c.Reconnect.Delay.Duration(),
			MaxAttempts: c.Reconnect.MaxAttempts,
		},
	}
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := getConfig(ctx)
	logger := logging.FromContext(ctx)
	reg := metrics.DefaultRegistry()

	bus := service.NewEventBus()
	graph := service.NewGraphService(bus, service.WithMetrics(reg), service.WithLogger(logger))

	var repo repository.PlanRepository
	if cfg.Database.Path != "" {
		db, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open plan library: %w", err)
		}
		defer db.Close()
		repo = db
		logger.Info("plan library opened", "path", cfg.Database.Path)
	}
	plans := service.NewPlanService(repo, graph, logger)

	if cfg.Plan.Path != "" {
		loaded, err := plans.ImportFile(cfg.Plan.Path)
		if err != nil {
			return fmt.Errorf("load plan %s: %w", cfg.Plan.Path, err)
		}
		if !loaded {
			logger.Warn("plan file has no nodes or edges, starting empty", "path", cfg.Plan.Path)
		}
	}

	client := syncclient.New(solverConfig(cfg.Solver), graph, bus,
		syncclient.WithMetrics(reg),
		syncclient.WithLogger(logger),
	)
	events := hub.New(bus, hub.WithMetrics(reg), hub.WithLogger(logger))

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: handler.NewRouter(handler.RouterConfig{
			Graph:   graph,
			Plans:   plans,
			Solver:  client,
			Events:  events,
			Metrics: reg,
			Logger:  logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egctx := errgroup.WithContext(ctx)
	srv.BaseContext = func(net.Listener) context.Context { return egctx }

	eg.Go(func() error {
		return events.Run(egctx)
	})

	// Losing the solver leaves the editor usable, so it does not stop the server.
	eg.Go(func() error {
		if err := client.Run(egctx); err != nil {
			logger.Error("solver connection stopped", "url", cfg.Solver.URL, "error", err)
		}
		return nil
	})

	if cfg.Plan.Watch {
		w := watcher.New(cfg.Plan.Path, func(path string) {
			if _, err := plans.ImportFile(path); err != nil {
				logger.Error("failed to reload plan", "path", path, "error", err)
			}
		}).WithLogger(logger)
		eg.Go(func() error {
			return w.Watch(egctx)
		})
	}

	eg.Go(func() error {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		client.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
