package repository_test

import (
	"regexp"
	"testing"
	"time"

	"coachhub/internal/db"
	"coachhub/internal/entities"
	apperrors "coachhub/internal/errors"
	"coachhub/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingRowColumns = []string{
	"id", "code", "coach_id", "service_type_id", "start_time", "end_time", "status",
	"member_name", "member_email", "member_phone", "language", "amount_cents", "payment_status",
	"stripe_session_id", "stripe_payment_intent_id", "created_at", "updated_at",
}

func newBooking() *db.Booking {
	start := time.Date(2030, 6, 3, 14, 0, 0, 0, time.UTC)
	return &db.Booking{
		ID:            uuid.New(),
		Code:          "AB12CD34",
		CoachID:       uuid.New(),
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		Status:        db.StatusPending,
		MemberName:    "Ana",
		MemberEmail:   "ana@example.com",
		Language:      "es",
		AmountCents:   7000,
		PaymentStatus: db.PaymentPending,
		CreatedAt:     start.Add(-48 * time.Hour),
	}
}

func TestBookingRepositoryCreate(t *testing.T) {
	lockQuery := regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)
	overlapQuery := regexp.QuoteMeta(`SELECT EXISTS (`)
	insertQuery := regexp.QuoteMeta(`INSERT INTO bookings`)

	t.Run("inserts when the slot is free", func(t *testing.T) {
		conn, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		repo := repository.NewBookingRepository(conn)
		b := newBooking()

		dbMock.ExpectBegin()
		dbMock.ExpectExec(lockQuery).WithArgs(b.CoachID.String()).WillReturnResult(sqlmock.NewResult(0, 0))
		dbMock.ExpectQuery(overlapQuery).
			WithArgs(b.CoachID, b.StartTime, b.EndTime).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		dbMock.ExpectQuery(insertQuery).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(b.CreatedAt, b.CreatedAt))
		dbMock.ExpectCommit()

		require.NoError(t, repo.CreateBooking(t.Context(), b))
		assert.Equal(t, b.CreatedAt, b.UpdatedAt)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("overlap is reported as slot taken", func(t *testing.T) {
		conn, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		repo := repository.NewBookingRepository(conn)
		b := newBooking()

		dbMock.ExpectBegin()
		dbMock.ExpectExec(lockQuery).WithArgs(b.CoachID.String()).WillReturnResult(sqlmock.NewResult(0, 0))
		dbMock.ExpectQuery(overlapQuery).
			WithArgs(b.CoachID, b.StartTime, b.EndTime).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		dbMock.ExpectRollback()

		err = repo.CreateBooking(t.Context(), b)
		assert.ErrorIs(t, err, apperrors.ErrSlotTaken)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("exclusion constraint is reported as slot taken", func(t *testing.T) {
		conn, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		repo := repository.NewBookingRepository(conn)
		b := newBooking()

		dbMock.ExpectBegin()
		dbMock.ExpectExec(lockQuery).WithArgs(b.CoachID.String()).WillReturnResult(sqlmock.NewResult(0, 0))
		dbMock.ExpectQuery(overlapQuery).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		dbMock.ExpectQuery(insertQuery).
			WillReturnError(&pq.Error{Code: "23P01", Message: "conflicting key value violates exclusion constraint"})
		dbMock.ExpectRollback()

		err = repo.CreateBooking(t.Context(), b)
		assert.ErrorIs(t, err, apperrors.ErrSlotTaken)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestBookingRepositoryReads(t *testing.T) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	repo := repository.NewBookingRepository(conn)
	b := newBooking()

	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(bookingRowColumns).AddRow(
			b.ID.String(), b.Code, b.CoachID.String(), nil, b.StartTime, b.EndTime, db.StatusConfirmed,
			b.MemberName, b.MemberEmail, "", b.Language, b.AmountCents, db.PaymentSucceeded,
			"cs_test_1", "pi_1", b.CreatedAt, b.CreatedAt,
		)
	}

	t.Run("by code", func(t *testing.T) {
		dbMock.ExpectQuery(regexp.QuoteMeta(`FROM bookings WHERE code = $1`)).
			WithArgs(b.Code).
			WillReturnRows(row())

		got, err := repo.GetBookingByCode(t.Context(), b.Code)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
		assert.False(t, got.ServiceTypeID.Valid)
		assert.Equal(t, "cs_test_1", got.StripeSessionID)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown code", func(t *testing.T) {
		dbMock.ExpectQuery(regexp.QuoteMeta(`FROM bookings WHERE code = $1`)).
			WithArgs("NOPE").
			WillReturnRows(sqlmock.NewRows(bookingRowColumns))

		_, err := repo.GetBookingByCode(t.Context(), "NOPE")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("status update on missing booking", func(t *testing.T) {
		dbMock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = $2`)).
			WithArgs(b.ID, db.StatusCancelled).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateBookingStatus(t.Context(), b.ID, db.StatusCancelled)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("reviving into a taken slot", func(t *testing.T) {
		dbMock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = $2`)).
			WithArgs(b.ID, db.StatusConfirmed).
			WillReturnError(&pq.Error{Code: "23P01", Message: "conflicting key value violates exclusion constraint"})

		err := repo.UpdateBookingStatus(t.Context(), b.ID, db.StatusConfirmed)
		assert.ErrorIs(t, err, apperrors.ErrSlotTaken)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("list with filters", func(t *testing.T) {
		day := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)
		filter := entities.BookingFilter{Date: "2030-06-03", Status: db.StatusConfirmed, Limit: 10, Offset: 0}

		dbMock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE 1=1 AND start_time >= $1 AND start_time < $2 AND status = $3`)).
			WithArgs(day, day.AddDate(0, 0, 1), db.StatusConfirmed).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		dbMock.ExpectQuery(regexp.QuoteMeta(`ORDER BY start_time DESC LIMIT $4 OFFSET $5`)).
			WithArgs(day, day.AddDate(0, 0, 1), db.StatusConfirmed, 10, 0).
			WillReturnRows(row())

		bookings, total, err := repo.ListBookings(t.Context(), filter, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, bookings, 1)
		assert.Equal(t, b.Code, bookings[0].Code)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestJobRepository(t *testing.T) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	repo := repository.NewJobRepository(conn)
	now := time.Date(2030, 6, 3, 12, 0, 0, 0, time.UTC)

	t.Run("status batch update", func(t *testing.T) {
		ids := []string{uuid.NewString(), uuid.NewString()}
		dbMock.ExpectExec(regexp.QuoteMeta(`WHERE id = ANY($2::uuid[])`)).
			WithArgs(db.StatusCompleted, pq.Array(ids)).
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := repo.UpdateBookingStatuses(t.Context(), ids, db.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("empty batch skips the database", func(t *testing.T) {
		n, err := repo.UpdateBookingStatuses(t.Context(), nil, db.StatusCompleted)
		require.NoError(t, err)
		assert.Zero(t, n)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("stale pending bookings", func(t *testing.T) {
		cutoff := now.Add(-30 * time.Minute)
		dbMock.ExpectExec(regexp.QuoteMeta(`WHERE status = 'pending' AND payment_status = 'pending' AND created_at < $1`)).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.CancelStalePendingBookings(t.Context(), cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestStripeRepository(t *testing.T) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	repo := repository.NewStripeRepository(conn)

	t.Run("payment update", func(t *testing.T) {
		dbMock.ExpectExec(regexp.QuoteMeta(`WHERE stripe_session_id = $1`)).
			WithArgs("cs_1", db.StatusConfirmed, db.PaymentSucceeded, "pi_1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdatePaymentBySessionID(t.Context(), "cs_1", db.StatusConfirmed, db.PaymentSucceeded, "pi_1"))
		require.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown session", func(t *testing.T) {
		dbMock.ExpectExec(regexp.QuoteMeta(`WHERE stripe_session_id = $1`)).
			WithArgs("cs_missing", db.StatusConfirmed, db.PaymentSucceeded, "").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePaymentBySessionID(t.Context(), "cs_missing", db.StatusConfirmed, db.PaymentSucceeded, "")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		require.NoError(t, dbMock.ExpectationsWereMet())
	})
}
