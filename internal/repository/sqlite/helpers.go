package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"walflow/internal/domain"
)

// ============================================================================
// Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// toMillis stores times as integer milliseconds so every driver round-trips
// them the same way.
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ============================================================================
// Plan Row Scanner
// ============================================================================
//
// CRITICAL: Column order must match between:
// - planColumns constant
// - scanArgs() return slice
// - All SELECT queries using planColumns

const planColumns = `id, name, node_count, edge_count, created_at, updated_at`

// planRow holds the summary columns of a plan query
type planRow struct {
	ID        string
	Name      string
	NodeCount int
	EdgeCount int
	CreatedAt int64
	UpdatedAt int64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match planColumns order exactly.
func (r *planRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,        // 1
		&r.Name,      // 2
		&r.NodeCount, // 3
		&r.EdgeCount, // 4
		&r.CreatedAt, // 5
		&r.UpdatedAt, // 6
	}
}

func (r *planRow) toDomain() domain.PlanInfo {
	return domain.PlanInfo{
		ID:        r.ID,
		Name:      r.Name,
		NodeCount: r.NodeCount,
		EdgeCount: r.EdgeCount,
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// marshalPlan encodes a plan document for the document column
func marshalPlan(plan *domain.Plan) (string, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}
	return string(data), nil
}

// unmarshalPlan decodes the document column
func unmarshalPlan(ns sql.NullString) (*domain.Plan, error) {
	doc := nullToString(ns)
	if doc == "" {
		return nil, fmt.Errorf("plan document is empty")
	}
	var plan domain.Plan
	if err := json.Unmarshal([]byte(doc), &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}
