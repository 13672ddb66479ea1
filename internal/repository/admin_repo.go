package repository

import (
	"context"
	"database/sql"
	"fmt"

	"coachhub/internal/db"
	apperrors "coachhub/internal/errors"

	"github.com/google/uuid"
)

type AdminRepository struct {
	DB *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{DB: db}
}

func (r *AdminRepository) CreateAvailabilityWindow(ctx context.Context, w *db.RecurringAvailability) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO recurring_availability (id, coach_id, day_of_week, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		w.ID, w.CoachID, w.DayOfWeek, w.StartTime, w.EndTime,
	).Scan(&w.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting availability window: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListAvailabilityWindows(ctx context.Context, coachID uuid.UUID) ([]db.RecurringAvailability, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, coach_id, day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM recurring_availability
		WHERE coach_id = $1
		ORDER BY day_of_week, start_time`, coachID)
	if err != nil {
		return nil, fmt.Errorf("error querying availability windows: %w", err)
	}
	defer rows.Close()

	var windows []db.RecurringAvailability
	for rows.Next() {
		var w db.RecurringAvailability
		if err := rows.Scan(&w.ID, &w.CoachID, &w.DayOfWeek, &w.StartTime, &w.EndTime); err != nil {
			return nil, fmt.Errorf("error scanning availability window: %w", err)
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability windows: %w", err)
	}
	return windows, nil
}

func (r *AdminRepository) DeleteAvailabilityWindow(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "recurring_availability", id)
}

func (r *AdminRepository) CreateBlockedRange(ctx context.Context, b *db.BlockedRange) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO blocked_ranges (id, coach_id, start_datetime, end_datetime, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		b.ID, b.CoachID, b.StartDatetime, b.EndDatetime, b.Reason,
	).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting blocked range: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListBlockedRanges(ctx context.Context, coachID uuid.UUID) ([]db.BlockedRange, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, coach_id, start_datetime, end_datetime, reason
		FROM blocked_ranges
		WHERE coach_id = $1 AND end_datetime > NOW()
		ORDER BY start_datetime`, coachID)
	if err != nil {
		return nil, fmt.Errorf("error querying blocked ranges: %w", err)
	}
	defer rows.Close()

	var blocks []db.BlockedRange
	for rows.Next() {
		var b db.BlockedRange
		if err := rows.Scan(&b.ID, &b.CoachID, &b.StartDatetime, &b.EndDatetime, &b.Reason); err != nil {
			return nil, fmt.Errorf("error scanning blocked range: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocked ranges: %w", err)
	}
	return blocks, nil
}

func (r *AdminRepository) DeleteBlockedRange(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "blocked_ranges", id)
}

func (r *AdminRepository) UpdateServiceDuration(ctx context.Context, id uuid.UUID, minutes int) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE service_types SET duration_minutes = $2 WHERE id = $1`, id, minutes)
	if err != nil {
		return fmt.Errorf("error updating service type: %w", err)
	}
	return requireAffected(res, "service type", id)
}

// table is always one of the constants above, never user input.
func (r *AdminRepository) deleteByID(ctx context.Context, table string, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting from %s: %w", table, err)
	}
	return requireAffected(res, table, id)
}

func requireAffected(res sql.Result, what string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, apperrors.ErrNotFound)
	}
	return nil
}
