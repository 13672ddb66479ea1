package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"coachhub/internal/db"
	"coachhub/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeJobStore struct {
	pastEnd    []string
	updated    []string
	newStatus  string
	cutoff     time.Time
	from, to   time.Time
	tomorrow   []db.Booking
	loadErr    error
	updateRows int64
}

func (f *fakeJobStore) GetConfirmedBookingIDsPastEndTime(context.Context, time.Time) ([]string, error) {
	return f.pastEnd, f.loadErr
}

func (f *fakeJobStore) UpdateBookingStatuses(_ context.Context, ids []string, newStatus string) (int64, error) {
	f.updated, f.newStatus = ids, newStatus
	return f.updateRows, nil
}

func (f *fakeJobStore) CancelStalePendingBookings(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 0, nil
}

func (f *fakeJobStore) GetConfirmedBookingsStartingBetween(_ context.Context, from, to time.Time) ([]db.Booking, error) {
	f.from, f.to = from, to
	return f.tomorrow, f.loadErr
}

type fakeReminders struct {
	sent []string
	fail map[string]error
}

func (f *fakeReminders) SendReminderSMS(b db.Booking) error {
	if err := f.fail[b.Code]; err != nil {
		return err
	}
	f.sent = append(f.sent, b.Code)
	return nil
}

var jobNow = time.Date(2030, 6, 3, 17, 0, 0, 0, time.UTC)

func TestCompleteFinishedBookings(t *testing.T) {
	store := &fakeJobStore{pastEnd: []string{"id-1", "id-2"}, updateRows: 2}
	jobs := service.NewJobService(store, &fakeReminders{}, time.Hour, time.UTC, frozen(jobNow), zap.NewNop())

	require.NoError(t, jobs.CompleteFinishedBookings(t.Context()))
	assert.Equal(t, []string{"id-1", "id-2"}, store.updated)
	assert.Equal(t, db.StatusCompleted, store.newStatus)

	store = &fakeJobStore{}
	jobs = service.NewJobService(store, &fakeReminders{}, time.Hour, time.UTC, frozen(jobNow), zap.NewNop())
	require.NoError(t, jobs.CompleteFinishedBookings(t.Context()))
	assert.Nil(t, store.updated)
}

func TestReleaseStalePendingBookings(t *testing.T) {
	store := &fakeJobStore{}
	jobs := service.NewJobService(store, &fakeReminders{}, 0, nil, frozen(jobNow), zap.NewNop())

	require.NoError(t, jobs.ReleaseStalePendingBookings(t.Context()))
	assert.Equal(t, jobNow.Add(-30*time.Minute), store.cutoff)
}

func TestSendTomorrowReminders(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	t.Run("covers tomorrow in the service timezone", func(t *testing.T) {
		store := &fakeJobStore{tomorrow: []db.Booking{{Code: "A"}, {Code: "B"}}}
		reminders := &fakeReminders{}
		// 23:30 UTC is already the 4th in Madrid.
		now := time.Date(2030, 6, 3, 23, 30, 0, 0, time.UTC)
		jobs := service.NewJobService(store, reminders, time.Hour, madrid, frozen(now), zap.NewNop())

		require.NoError(t, jobs.SendTomorrowReminders(t.Context()))
		assert.Equal(t, time.Date(2030, 6, 5, 0, 0, 0, 0, madrid), store.from)
		assert.Equal(t, time.Date(2030, 6, 6, 0, 0, 0, 0, madrid), store.to)
		assert.Equal(t, []string{"A", "B"}, reminders.sent)
	})

	t.Run("one failure does not stop the rest", func(t *testing.T) {
		store := &fakeJobStore{tomorrow: []db.Booking{{Code: "A"}, {Code: "B"}}}
		reminders := &fakeReminders{fail: map[string]error{"A": errors.New("invalid number")}}
		jobs := service.NewJobService(store, reminders, time.Hour, time.UTC, frozen(jobNow), zap.NewNop())

		err := jobs.SendTomorrowReminders(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "booking A")
		assert.Equal(t, []string{"B"}, reminders.sent)
	})

	t.Run("sms not configured", func(t *testing.T) {
		store := &fakeJobStore{tomorrow: []db.Booking{{Code: "A"}}}
		reminders := &fakeReminders{fail: map[string]error{"A": service.ErrNotConfigured}}
		jobs := service.NewJobService(store, reminders, time.Hour, time.UTC, frozen(jobNow), zap.NewNop())

		assert.NoError(t, jobs.SendTomorrowReminders(t.Context()))
	})
}

func TestSchedule(t *testing.T) {
	jobs := service.NewJobService(&fakeJobStore{}, &fakeReminders{}, time.Hour, time.UTC, frozen(jobNow), zap.NewNop())
	c, err := jobs.Schedule()
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 3)
}
