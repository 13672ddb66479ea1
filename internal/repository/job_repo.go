package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coachhub/internal/db"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// GetConfirmedBookingIDsPastEndTime returns confirmed bookings that ended before now.
func (r *JobRepository) GetConfirmedBookingIDsPastEndTime(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM bookings WHERE status = 'confirmed' AND end_time < $1`, now)
	if err != nil {
		return nil, fmt.Errorf("error querying confirmed bookings past end time: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

func (r *JobRepository) UpdateBookingStatuses(ctx context.Context, ids []string, newStatus string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.DB.ExecContext(ctx, `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = ANY($2::uuid[])`, newStatus, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("error updating booking statuses: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading affected rows: %w", err)
	}
	return n, nil
}

// CancelStalePendingBookings releases unpaid bookings created before cutoff so
// their slots become available again.
func (r *JobRepository) CancelStalePendingBookings(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE bookings SET status = 'cancelled', updated_at = NOW()
		WHERE status = 'pending' AND payment_status = 'pending' AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error cancelling stale pending bookings: %w", err)
	}
	return result.RowsAffected()
}

func (r *JobRepository) GetConfirmedBookingsStartingBetween(ctx context.Context, from, to time.Time) ([]db.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE status = 'confirmed' AND start_time >= $1 AND start_time < $2 ORDER BY start_time`, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying upcoming bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return bookings, nil
}
