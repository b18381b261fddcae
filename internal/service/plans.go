package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"walflow/internal/codec"
	"walflow/internal/domain"
	"walflow/internal/repository"
)

// ErrNoPlanLibrary is returned by library operations when no repository is
// configured.
var ErrNoPlanLibrary = errors.New("plan library is not configured")

// PlanService saves and loads the graph as plan documents, either in the
// plan library or as files.
type PlanService struct {
	repo   repository.PlanRepository
	graph  *GraphService
	logger *slog.Logger
}

// NewPlanService creates a plan service. repo may be nil when only file
// import and export are needed.
func NewPlanService(repo repository.PlanRepository, graph *GraphService, logger *slog.Logger) *PlanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanService{
		repo:   repo,
		graph:  graph,
		logger: logger.With("component", "plans"),
	}
}

func (s *PlanService) library() (repository.PlanRepository, error) {
	if s.repo == nil {
		return nil, ErrNoPlanLibrary
	}
	return s.repo, nil
}

// Save stores the current graph under name.
func (s *PlanService) Save(ctx context.Context, name string) (domain.PlanInfo, error) {
	repo, err := s.library()
	if err != nil {
		return domain.PlanInfo{}, err
	}
	info, err := repo.SavePlan(ctx, name, s.graph.Plan())
	if err != nil {
		return domain.PlanInfo{}, err
	}
	s.logger.Info("plan saved", "id", info.ID, "name", info.Name, "nodes", info.NodeCount, "edges", info.EdgeCount)
	return info, nil
}

// Load replaces the graph with a stored plan.
func (s *PlanService) Load(ctx context.Context, id string) (domain.PlanInfo, error) {
	repo, err := s.library()
	if err != nil {
		return domain.PlanInfo{}, err
	}
	plan, info, err := repo.GetPlan(ctx, id)
	if err != nil {
		return domain.PlanInfo{}, err
	}
	if _, err := s.graph.LoadPlan(plan); err != nil {
		return domain.PlanInfo{}, fmt.Errorf("load plan %q: %w", info.Name, err)
	}
	s.logger.Info("plan loaded", "id", info.ID, "name", info.Name)
	return info, nil
}

// List returns the stored plans.
func (s *PlanService) List(ctx context.Context) ([]domain.PlanInfo, error) {
	repo, err := s.library()
	if err != nil {
		return nil, err
	}
	return repo.ListPlans(ctx)
}

// Delete removes a stored plan. The current graph is not affected.
func (s *PlanService) Delete(ctx context.Context, id string) error {
	repo, err := s.library()
	if err != nil {
		return err
	}
	return repo.DeletePlan(ctx, id)
}

// Import reads a plan document and loads it into the graph. It reports false
// when the document lacks nodes or edges, in which case the graph is left
// as it was.
func (s *PlanService) Import(r io.Reader, format string) (bool, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return false, err
	}
	return s.importWith(c, r)
}

// Export writes the current graph as a plan document.
func (s *PlanService) Export(w io.Writer, format string) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	return c.Export(s.graph.Plan(), w)
}

// ImportFile loads a plan file, choosing the format from its extension.
func (s *PlanService) ImportFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open plan: %w", err)
	}
	defer f.Close()
	return s.importWith(codec.ForPath(path), f)
}

// ExportFile writes the current graph to path, choosing the format from its
// extension.
func (s *PlanService) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	if err := codec.ForPath(path).Export(s.graph.Plan(), f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *PlanService) importWith(c codec.Importer, r io.Reader) (bool, error) {
	plan, err := c.Parse(r)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrInvalidGraph, err)
	}
	loaded, err := s.graph.LoadPlan(plan)
	if err != nil {
		return false, err
	}
	if loaded {
		s.logger.Info("plan imported", "format", c.Format(), "nodes", len(plan.Nodes), "edges", len(plan.Edges))
	}
	return loaded, nil
}
