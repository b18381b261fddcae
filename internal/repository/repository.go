package repository

import (
	"context"

	"walflow/internal/domain"
)

// PlanRepository defines the interface for plan library access. Lookups of
// unknown plans return an error wrapping domain.ErrNotFound.
type PlanRepository interface {
	// Read operations
	GetPlan(ctx context.Context, id string) (*domain.Plan, domain.PlanInfo, error)
	GetPlanByName(ctx context.Context, name string) (*domain.Plan, domain.PlanInfo, error)
	ListPlans(ctx context.Context) ([]domain.PlanInfo, error)

	// Write operations
	SavePlan(ctx context.Context, name string, plan *domain.Plan) (domain.PlanInfo, error)
	DeletePlan(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
