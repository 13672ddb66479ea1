package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type ProgressRepository struct {
	DB *sql.DB
}

func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) ListCompletedDrills(ctx context.Context, email string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT drill_id FROM drill_completions WHERE member_email = lower($1)`, email)
	if err != nil {
		return nil, fmt.Errorf("error querying drill completions: %w", err)
	}
	defer rows.Close()

	var drills []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning drill completion: %w", err)
		}
		drills = append(drills, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drill completions: %w", err)
	}
	return drills, nil
}

// MarkDrillCompleted is idempotent.
func (r *ProgressRepository) MarkDrillCompleted(ctx context.Context, email, drillID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO drill_completions (member_email, drill_id) VALUES (lower($1), $2)
		ON CONFLICT DO NOTHING`, email, drillID)
	if err != nil {
		return fmt.Errorf("error saving drill completion: %w", err)
	}
	return nil
}
