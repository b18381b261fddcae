package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"walflow/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.PlanRepository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		document JSON NOT NULL,
		node_count INTEGER NOT NULL DEFAULT 0,
		edge_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plans_updated ON plans(updated_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SavePlan stores a plan under name. An existing plan with the same name is
// replaced and keeps its id and creation time.
func (r *Repository) SavePlan(ctx context.Context, name string, plan *domain.Plan) (domain.PlanInfo, error) {
	if name == "" {
		return domain.PlanInfo{}, &domain.ValidationError{Field: "name", Value: name, Reason: "must not be empty"}
	}
	if !plan.Complete() {
		return domain.PlanInfo{}, &domain.ValidationError{Field: "plan", Reason: "nodes and edges are required"}
	}
	doc, err := marshalPlan(plan)
	if err != nil {
		return domain.PlanInfo{}, err
	}
	now := toMillis(r.now())

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO plans (id, name, document, node_count, edge_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			document = excluded.document,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			updated_at = excluded.updated_at
	`, uuid.New().String(), name, doc, len(plan.Nodes), len(plan.Edges), now, now)
	if err != nil {
		return domain.PlanInfo{}, fmt.Errorf("failed to save plan %q: %w", name, err)
	}

	_, info, err := r.GetPlanByName(ctx, name)
	return info, err
}

// GetPlan loads a plan by id
func (r *Repository) GetPlan(ctx context.Context, id string) (*domain.Plan, domain.PlanInfo, error) {
	return r.getPlan(ctx, "id", id)
}

// GetPlanByName loads a plan by its unique name
func (r *Repository) GetPlanByName(ctx context.Context, name string) (*domain.Plan, domain.PlanInfo, error) {
	return r.getPlan(ctx, "name", name)
}

func (r *Repository) getPlan(ctx context.Context, column, value string) (*domain.Plan, domain.PlanInfo, error) {
	var (
		row planRow
		doc sql.NullString
	)
	args := append(row.scanArgs(), &doc)
	err := r.db.QueryRowContext(ctx,
		`SELECT `+planColumns+`, document FROM plans WHERE `+column+` = ?`, value,
	).Scan(args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.PlanInfo{}, fmt.Errorf("plan %s: %w", value, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.PlanInfo{}, fmt.Errorf("failed to query plan: %w", err)
	}

	plan, err := unmarshalPlan(doc)
	if err != nil {
		return nil, domain.PlanInfo{}, err
	}
	return plan, row.toDomain(), nil
}

// ListPlans returns every stored plan, most recently updated first
func (r *Repository) ListPlans(ctx context.Context) ([]domain.PlanInfo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+planColumns+` FROM plans ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	plans := make([]domain.PlanInfo, 0)
	for rows.Next() {
		var row planRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}
	return plans, nil
}

// DeletePlan removes a plan by id
func (r *Repository) DeletePlan(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
