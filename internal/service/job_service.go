package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coachhub/internal/db"
	"coachhub/internal/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	completeSchedule  = "@every 10m"
	releaseSchedule   = "@every 5m"
	reminderSchedule  = "0 18 * * *"
	jobTimeout        = time.Minute
	defaultPendingTTL = 30 * time.Minute
)

type JobStore interface {
	GetConfirmedBookingIDsPastEndTime(ctx context.Context, now time.Time) ([]string, error)
	UpdateBookingStatuses(ctx context.Context, ids []string, newStatus string) (int64, error)
	CancelStalePendingBookings(ctx context.Context, cutoff time.Time) (int64, error)
	GetConfirmedBookingsStartingBetween(ctx context.Context, from, to time.Time) ([]db.Booking, error)
}

type ReminderSender interface {
	SendReminderSMS(b db.Booking) error
}

type JobService struct {
	store      JobStore
	reminders  ReminderSender
	pendingTTL time.Duration
	loc        *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

func NewJobService(store JobStore, reminders ReminderSender, pendingTTL time.Duration, loc *time.Location, now func() time.Time, logger *zap.Logger) *JobService {
	if pendingTTL <= 0 {
		pendingTTL = defaultPendingTTL
	}
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &JobService{
		store:      store,
		reminders:  reminders,
		pendingTTL: pendingTTL,
		loc:        loc,
		now:        now,
		logger:     logger.Named("jobs"),
	}
}

// Schedule registers every job on a cron runner in the service timezone. The
// caller starts and stops the returned runner.
func (s *JobService) Schedule() (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(s.loc))
	jobs := []struct {
		spec string
		name string
		run  func(context.Context) error
	}{
		{completeSchedule, "complete_finished", s.CompleteFinishedBookings},
		{releaseSchedule, "release_pending", s.ReleaseStalePendingBookings},
		{reminderSchedule, "send_reminders", s.SendTomorrowReminders},
	}
	for _, j := range jobs {
		if _, err := c.AddFunc(j.spec, func() { s.run(j.name, j.run) }); err != nil {
			return nil, fmt.Errorf("error scheduling %s: %w", j.name, err)
		}
	}
	return c, nil
}

func (s *JobService) run(name string, job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := job(ctx); err != nil {
		s.logger.Error("cron job failed", zap.String("job", name), zap.Error(err))
	}
}

// CompleteFinishedBookings marks confirmed bookings whose lesson has ended as completed.
func (s *JobService) CompleteFinishedBookings(ctx context.Context) error {
	ids, err := s.store.GetConfirmedBookingIDsPastEndTime(ctx, s.now())
	if err != nil {
		return fmt.Errorf("cron job: failed to get confirmed bookings past end time: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	n, err := s.store.UpdateBookingStatuses(ctx, ids, db.StatusCompleted)
	if err != nil {
		return fmt.Errorf("cron job: failed to update booking statuses: %w", err)
	}
	s.logger.Info("bookings completed", zap.Int64("count", n))
	return nil
}

// ReleaseStalePendingBookings cancels checkouts abandoned for longer than the
// pending TTL so their slots show as available again.
func (s *JobService) ReleaseStalePendingBookings(ctx context.Context) error {
	n, err := s.store.CancelStalePendingBookings(ctx, s.now().Add(-s.pendingTTL))
	if err != nil {
		return fmt.Errorf("cron job: failed to release pending bookings: %w", err)
	}
	if n > 0 {
		s.logger.Info("stale pending bookings released", zap.Int64("count", n))
	}
	return nil
}

// SendTomorrowReminders texts every member with a confirmed lesson tomorrow.
// A failed SMS does not stop the rest.
func (s *JobService) SendTomorrowReminders(ctx context.Context) error {
	today := s.now().In(s.loc)
	tomorrow := time.Date(today.Year(), today.Month(), today.Day()+1, 0, 0, 0, 0, s.loc)
	from, to := utils.DayBounds(tomorrow)

	bookings, err := s.store.GetConfirmedBookingsStartingBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("cron job: failed to load tomorrow's bookings: %w", err)
	}

	var errs []error
	for _, b := range bookings {
		if err := s.reminders.SendReminderSMS(b); err != nil {
			if errors.Is(err, ErrNotConfigured) {
				return nil
			}
			errs = append(errs, fmt.Errorf("booking %s: %w", b.Code, err))
		}
	}
	s.logger.Info("reminders processed", zap.Int("bookings", len(bookings)), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}
