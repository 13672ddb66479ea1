package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"coachhub/internal/db"
	"coachhub/internal/entities"
	apperrors "coachhub/internal/errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// exclusion_violation, raised by the bookings_no_overlap constraint.
const pqExclusionViolation = "23P01"

const bookingColumns = `id, code, coach_id, service_type_id, start_time, end_time, status,
	member_name, member_email, member_phone, language, amount_cents, payment_status,
	stripe_session_id, stripe_payment_intent_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID, &b.Code, &b.CoachID, &b.ServiceTypeID, &b.StartTime, &b.EndTime, &b.Status,
		&b.MemberName, &b.MemberEmail, &b.MemberPhone, &b.Language, &b.AmountCents, &b.PaymentStatus,
		&b.StripeSessionID, &b.StripePaymentIntentID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

// CreateBooking inserts b after re-checking, under a per-coach transaction
// lock, that no live booking or block overlaps it. Two callers racing for the
// same slot serialise on the lock; the loser gets ErrSlotTaken.
func (r *BookingRepository) CreateBooking(ctx context.Context, b *db.Booking) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting booking transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, b.CoachID.String()); err != nil {
		return fmt.Errorf("error locking coach schedule: %w", err)
	}

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE coach_id = $1 AND status <> 'cancelled' AND start_time < $3 AND end_time > $2
		) OR EXISTS (
			SELECT 1 FROM blocked_ranges
			WHERE coach_id = $1 AND start_datetime < $3 AND end_datetime > $2
		)`, b.CoachID, b.StartTime, b.EndTime).Scan(&taken)
	if err != nil {
		return fmt.Errorf("error checking booking overlap: %w", err)
	}
	if taken {
		return apperrors.ErrSlotTaken
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO bookings
		(id, code, coach_id, service_type_id, start_time, end_time, status, member_name, member_email,
		 member_phone, language, amount_cents, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		RETURNING created_at, updated_at`,
		b.ID, b.Code, b.CoachID, b.ServiceTypeID, b.StartTime, b.EndTime, b.Status, b.MemberName, b.MemberEmail,
		b.MemberPhone, b.Language, b.AmountCents, b.PaymentStatus, b.CreatedAt,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation {
			return apperrors.ErrSlotTaken
		}
		return fmt.Errorf("error inserting booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetBookingByCode(ctx context.Context, code string) (*db.Booking, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE code = $1`, code)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking with code '%s': %w", code, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("error querying booking: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) GetBookingBySessionID(ctx context.Context, sessionID string) (*db.Booking, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE stripe_session_id = $1`, sessionID)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking for session '%s': %w", sessionID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("error querying booking: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		// Reviving a cancelled booking can collide with one made since.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation {
			return apperrors.ErrSlotTaken
		}
		return fmt.Errorf("error updating booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("booking %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *BookingRepository) ListBookings(ctx context.Context, filter entities.BookingFilter, loc *time.Location) ([]db.Booking, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	idx := 1

	if filter.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", filter.Date, loc)
		if err != nil {
			return nil, 0, apperrors.NewValidationError("date", "must be YYYY-MM-DD")
		}
		where += " AND start_time >= $" + strconv.Itoa(idx) + " AND start_time < $" + strconv.Itoa(idx+1)
		args = append(args, day, day.AddDate(0, 0, 1))
		idx += 2
	}
	if filter.CoachID != "" {
		where += " AND coach_id = $" + strconv.Itoa(idx)
		args = append(args, filter.CoachID)
		idx++
	}
	if filter.Status != "" {
		where += " AND status = $" + strconv.Itoa(idx)
		args = append(args, filter.Status)
		idx++
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %w", err)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings` + where +
		" ORDER BY start_time DESC LIMIT $" + strconv.Itoa(idx) + " OFFSET $" + strconv.Itoa(idx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, total, nil
}
