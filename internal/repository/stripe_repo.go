package repository

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "coachhub/internal/errors"

	"github.com/google/uuid"
)

type StripeRepository struct {
	DB *sql.DB
}

func NewStripeRepository(db *sql.DB) *StripeRepository {
	return &StripeRepository{DB: db}
}

func (r *StripeRepository) AttachCheckoutSession(ctx context.Context, bookingID uuid.UUID, sessionID string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE bookings
		SET stripe_session_id = $2, updated_at = NOW()
		WHERE id = $1`, bookingID, sessionID)
	if err != nil {
		return fmt.Errorf("error attaching checkout session to booking %s: %w", bookingID, err)
	}
	return nil
}

// UpdatePaymentBySessionID moves the booking paid through sessionID to the
// given booking and payment states. An empty paymentIntentID keeps the stored one.
func (r *StripeRepository) UpdatePaymentBySessionID(ctx context.Context, sessionID, status, paymentStatus, paymentIntentID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2,
			payment_status = $3,
			stripe_payment_intent_id = COALESCE(NULLIF($4, ''), stripe_payment_intent_id),
			updated_at = NOW()
		WHERE stripe_session_id = $1`, sessionID, status, paymentStatus, paymentIntentID)
	if err != nil {
		return fmt.Errorf("error updating payment for session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("booking for session '%s': %w", sessionID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *StripeRepository) GetSessionIDByPaymentIntentID(ctx context.Context, paymentIntentID string) (string, error) {
	var sessionID string
	err := r.DB.QueryRowContext(ctx, `SELECT stripe_session_id FROM bookings WHERE stripe_payment_intent_id = $1`, paymentIntentID).Scan(&sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("booking for payment intent '%s': %w", paymentIntentID, apperrors.ErrNotFound)
		}
		return "", fmt.Errorf("error querying booking by payment intent: %w", err)
	}
	return sessionID, nil
}
