package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"walflow/internal/metrics"
	"walflow/internal/service"
)

// RouterConfig collects what the API serves. Solver and Events may be nil.
type RouterConfig struct {
	Graph   *service.GraphService
	Plans   *service.PlanService
	Solver  Solver
	Events  http.Handler
	Metrics *metrics.Registry
	Logger  *slog.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")
	m := cfg.Metrics
	if m == nil {
		m = metrics.DefaultRegistry()
	}

	graph := NewGraphHandler(cfg.Graph, logger)
	plans := NewPlanHandler(cfg.Plans, logger)
	solver := NewSolverHandler(cfg.Solver, logger)
	reports := NewReportHandler(cfg.Graph, logger)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		CORS,
		Logger(logger),
		Metrics(m),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", graph.GetGraph)
		r.Put("/graph", graph.ReplaceGraph)
		r.Delete("/graph", graph.ClearGraph)

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", graph.ListNodes)
			r.Post("/", graph.CreateNode)
			r.Get("/{id}", graph.GetNode)
			r.Patch("/{id}", graph.UpdateNode)
			r.Delete("/{id}", graph.DeleteNode)
			r.Put("/{id}/position", graph.UpdatePosition)
			r.Put("/{id}/valve", solver.UpdateValve)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Get("/", graph.ListEdges)
			r.Post("/", graph.CreateEdge)
			r.Get("/{id}", graph.GetEdge)
			r.Patch("/{id}", graph.UpdateEdge)
			r.Delete("/{id}", graph.DeleteEdge)
			r.Get("/{id}/catalog", graph.GetEdgeCatalog)
			r.Put("/{id}/catalog", graph.SetEdgeCatalog)
		})

		r.Get("/settings", graph.GetSettings)
		r.Put("/settings", graph.UpdateSettings)
		r.Get("/catalog", graph.GetCatalog)

		r.Get("/report", reports.GetReport)
		r.Get("/report/order", reports.GetOrder)
		r.Post("/report/order/move", reports.MoveItem)

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", plans.ListPlans)
			r.Post("/", plans.SavePlan)
			r.Post("/{id}/load", plans.LoadPlan)
			r.Delete("/{id}", plans.DeletePlan)
		})
		r.Post("/import/{format}", plans.ImportPlan)
		r.Get("/export/{format}", plans.ExportPlan)

		r.Get("/status", solver.GetStatus)
		r.Post("/simulate", solver.RunSimulation)
	})

	if cfg.Events != nil {
		r.Method(http.MethodGet, "/events", cfg.Events)
	}
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r
}
