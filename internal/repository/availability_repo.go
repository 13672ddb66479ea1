package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coachhub/internal/db"
	apperrors "coachhub/internal/errors"

	"github.com/google/uuid"
)

type AvailabilityRepository struct {
	DB *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) *AvailabilityRepository {
	return &AvailabilityRepository{DB: db}
}

// GetRecurringAvailability returns the weekly windows for dayOfWeek. A null
// coachID means every coach.
func (r *AvailabilityRepository) GetRecurringAvailability(ctx context.Context, dayOfWeek int, coachID uuid.NullUUID) ([]db.RecurringAvailability, error) {
	query := `
		SELECT id, coach_id, day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM recurring_availability
		WHERE day_of_week = $1 AND ($2::uuid IS NULL OR coach_id = $2)
		ORDER BY start_time, coach_id`

	rows, err := r.DB.QueryContext(ctx, query, dayOfWeek, coachID)
	if err != nil {
		return nil, fmt.Errorf("error querying recurring availability: %w", err)
	}
	defer rows.Close()

	var windows []db.RecurringAvailability
	for rows.Next() {
		var w db.RecurringAvailability
		if err := rows.Scan(&w.ID, &w.CoachID, &w.DayOfWeek, &w.StartTime, &w.EndTime); err != nil {
			return nil, fmt.Errorf("error scanning recurring availability: %w", err)
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring availability: %w", err)
	}
	return windows, nil
}

// GetBlockedRanges returns blocks intersecting [from, to).
func (r *AvailabilityRepository) GetBlockedRanges(ctx context.Context, from, to time.Time, coachID uuid.NullUUID) ([]db.BlockedRange, error) {
	query := `
		SELECT id, coach_id, start_datetime, end_datetime, reason
		FROM blocked_ranges
		WHERE start_datetime < $2 AND end_datetime > $1 AND ($3::uuid IS NULL OR coach_id = $3)
		ORDER BY start_datetime`

	rows, err := r.DB.QueryContext(ctx, query, from, to, coachID)
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

// GetNonCancelledBookings returns every live booking intersecting [from, to),
// including ones that started the previous evening.
func (r *AvailabilityRepository) GetNonCancelledBookings(ctx context.Context, from, to time.Time, coachID uuid.NullUUID) ([]db.Booking, error) {
	query := `
		SELECT id, coach_id, start_time, end_time, status
		FROM bookings
		WHERE status <> 'cancelled' AND start_time < $2 AND end_time > $1 AND ($3::uuid IS NULL OR coach_id = $3)
		ORDER BY start_time`

	rows, err := r.DB.QueryContext(ctx, query, from, to, coachID)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(&b.ID, &b.CoachID, &b.StartTime, &b.EndTime, &b.Status); err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

// GetServiceDuration returns the duration in minutes of a service type, or
// ErrNotFound when the id is unknown.
func (r *AvailabilityRepository) GetServiceDuration(ctx context.Context, serviceTypeID uuid.UUID) (int, error) {
	var minutes int
	err := r.DB.QueryRowContext(ctx, `SELECT duration_minutes FROM service_types WHERE id = $1`, serviceTypeID).Scan(&minutes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("service type %s: %w", serviceTypeID, apperrors.ErrNotFound)
		}
		return 0, fmt.Errorf("error querying service type: %w", err)
	}
	return minutes, nil
}

func (r *AvailabilityRepository) ListServiceTypes(ctx context.Context) ([]db.ServiceType, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, duration_minutes FROM service_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying service types: %w", err)
	}
	defer rows.Close()

	var types []db.ServiceType
	for rows.Next() {
		var st db.ServiceType
		if err := rows.Scan(&st.ID, &st.Name, &st.DurationMinutes); err != nil {
			return nil, fmt.Errorf("error scanning service type: %w", err)
		}
		types = append(types, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating service types: %w", err)
	}
	return types, nil
}
