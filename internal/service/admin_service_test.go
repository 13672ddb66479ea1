package service_test

import (
	"context"
	"testing"
	"time"

	"coachhub/internal/db"
	"coachhub/internal/entities"
	apperrors "coachhub/internal/errors"
	"coachhub/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAdminStore struct {
	testifymock.Mock
}

func (m *MockAdminStore) CreateAvailabilityWindow(ctx context.Context, w *db.RecurringAvailability) error {
	return m.Called(ctx, w).Error(0)
}

func (m *MockAdminStore) ListAvailabilityWindows(ctx context.Context, coachID uuid.UUID) ([]db.RecurringAvailability, error) {
	args := m.Called(ctx, coachID)
	w, _ := args.Get(0).([]db.RecurringAvailability)
	return w, args.Error(1)
}

func (m *MockAdminStore) DeleteAvailabilityWindow(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminStore) CreateBlockedRange(ctx context.Context, b *db.BlockedRange) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockAdminStore) ListBlockedRanges(ctx context.Context, coachID uuid.UUID) ([]db.BlockedRange, error) {
	args := m.Called(ctx, coachID)
	b, _ := args.Get(0).([]db.BlockedRange)
	return b, args.Error(1)
}

func (m *MockAdminStore) DeleteBlockedRange(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminStore) UpdateServiceDuration(ctx context.Context, id uuid.UUID, minutes int) error {
	return m.Called(ctx, id, minutes).Error(0)
}

type MockBookingLister struct {
	testifymock.Mock
}

func (m *MockBookingLister) ListBookings(ctx context.Context, filter entities.BookingFilter, loc *time.Location) ([]db.Booking, int64, error) {
	args := m.Called(ctx, filter, loc)
	b, _ := args.Get(0).([]db.Booking)
	return b, args.Get(1).(int64), args.Error(2)
}

type invalidations struct {
	ids []uuid.UUID
}

func (i *invalidations) Invalidate(id uuid.UUID) {
	i.ids = append(i.ids, id)
}

type adminFixture struct {
	store    *MockAdminStore
	bookings *MockBookingStore
	lister   *MockBookingLister
	cache    *invalidations
	notifier *recordingNotifier
	svc      *service.AdminService
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		store:    new(MockAdminStore),
		bookings: new(MockBookingStore),
		lister:   new(MockBookingLister),
		cache:    &invalidations{},
		notifier: &recordingNotifier{},
	}
	f.svc = service.NewAdminService(f.store, f.bookings, f.lister, f.cache, f.notifier, time.UTC, zap.NewNop())
	return f
}

func TestCreateAvailabilityWindow(t *testing.T) {
	coachID := uuid.New()

	t.Run("normalises the clock times", func(t *testing.T) {
		f := newAdminFixture()
		f.store.On("CreateAvailabilityWindow", testifymock.Anything, testifymock.MatchedBy(func(w *db.RecurringAvailability) bool {
			return w.CoachID == coachID && w.StartTime == "09:00" && w.EndTime == "12:30"
		})).Return(nil)

		resp, err := f.svc.CreateAvailabilityWindow(t.Context(), entities.AvailabilityWindowRequest{
			CoachID: coachID.String(), DayOfWeek: 1, StartTime: "9:00", EndTime: "12:30",
		})
		require.NoError(t, err)
		assert.Equal(t, "09:00", resp.StartTime)
		assert.Equal(t, 1, resp.DayOfWeek)
		f.store.AssertExpectations(t)
	})

	cases := map[string]struct {
		req   entities.AvailabilityWindowRequest
		field string
	}{
		"missing coach": {entities.AvailabilityWindowRequest{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"}, "coachId"},
		"bad day":       {entities.AvailabilityWindowRequest{CoachID: coachID.String(), DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}, "dayOfWeek"},
		"bad start":     {entities.AvailabilityWindowRequest{CoachID: coachID.String(), DayOfWeek: 1, StartTime: "nine", EndTime: "10:00"}, "startTime"},
		"inverted":      {entities.AvailabilityWindowRequest{CoachID: coachID.String(), DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00"}, "endTime"},
		"empty":         {entities.AvailabilityWindowRequest{CoachID: coachID.String(), DayOfWeek: 1, StartTime: "10:00", EndTime: "10:00"}, "endTime"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newAdminFixture()
			_, err := f.svc.CreateAvailabilityWindow(t.Context(), tc.req)
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
			f.store.AssertNotCalled(t, "CreateAvailabilityWindow", testifymock.Anything, testifymock.Anything)
		})
	}
}

func TestCreateBlockedRange(t *testing.T) {
	f := newAdminFixture()
	start := time.Date(2030, 6, 3, 10, 0, 0, 0, time.UTC)

	_, err := f.svc.CreateBlockedRange(t.Context(), entities.BlockedRangeRequest{
		CoachID: uuid.NewString(), StartDatetime: start, EndDatetime: start,
	})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)

	f.store.On("CreateBlockedRange", testifymock.Anything, testifymock.Anything).Return(nil)
	resp, err := f.svc.CreateBlockedRange(t.Context(), entities.BlockedRangeRequest{
		CoachID: uuid.NewString(), StartDatetime: start, EndDatetime: start.Add(2 * time.Hour), Reason: " clinic ",
	})
	require.NoError(t, err)
	assert.Equal(t, "clinic", resp.Reason)
}

func TestListBookingsPaging(t *testing.T) {
	f := newAdminFixture()
	f.lister.On("ListBookings", testifymock.Anything, entities.BookingFilter{Limit: 200}, time.UTC).
		Return([]db.Booking{{Code: "A"}}, int64(1), nil)

	list, err := f.svc.ListBookings(t.Context(), entities.BookingFilter{Limit: 5000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 200, list.Limit)
	assert.Equal(t, 0, list.Offset)
	require.Len(t, list.Bookings, 1)

	_, err = f.svc.ListBookings(t.Context(), entities.BookingFilter{Status: "lost"})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestAdminUpdateBookingStatus(t *testing.T) {
	t.Run("no-show is recorded quietly", func(t *testing.T) {
		f := newAdminFixture()
		b := &db.Booking{ID: uuid.New(), Code: "AB12CD34", Status: db.StatusConfirmed}
		f.bookings.On("GetBookingByCode", testifymock.Anything, "AB12CD34").Return(b, nil)
		f.bookings.On("UpdateBookingStatus", testifymock.Anything, b.ID, db.StatusNoShow).Return(nil)

		require.NoError(t, f.svc.UpdateBookingStatus(t.Context(), "AB12CD34", "NO_SHOW"))
		f.bookings.AssertExpectations(t)
		assert.Empty(t, f.notifier.all())
	})

	t.Run("cancellation notifies the member", func(t *testing.T) {
		f := newAdminFixture()
		b := &db.Booking{ID: uuid.New(), Code: "AB12CD34", Status: db.StatusConfirmed}
		f.bookings.On("GetBookingByCode", testifymock.Anything, "AB12CD34").Return(b, nil)
		f.bookings.On("UpdateBookingStatus", testifymock.Anything, b.ID, db.StatusCancelled).Return(nil)

		require.NoError(t, f.svc.UpdateBookingStatus(t.Context(), "AB12CD34", db.StatusCancelled))
		assert.Equal(t, []notification{{code: "AB12CD34", status: db.StatusCancelled}}, f.notifier.all())
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newAdminFixture()
		var vErr *apperrors.ValidationError
		require.ErrorAs(t, f.svc.UpdateBookingStatus(t.Context(), "AB12CD34", "lost"), &vErr)
	})
}

func TestUpdateServiceDuration(t *testing.T) {
	f := newAdminFixture()
	id := uuid.New()
	f.store.On("UpdateServiceDuration", testifymock.Anything, id, 45).Return(nil)

	require.NoError(t, f.svc.UpdateServiceDuration(t.Context(), id.String(), 45))
	assert.Equal(t, []uuid.UUID{id}, f.cache.ids)

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, f.svc.UpdateServiceDuration(t.Context(), id.String(), 0), &vErr)
	require.ErrorAs(t, f.svc.UpdateServiceDuration(t.Context(), id.String(), 1441), &vErr)
	assert.Len(t, f.cache.ids, 1)
}
