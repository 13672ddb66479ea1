package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"coachhub/internal/db"
	"coachhub/internal/entities"
	apperrors "coachhub/internal/errors"
	"coachhub/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSlotMinutes = 60
	slotStepMinutes    = 30
)

// AvailabilityStore is the read side the engine depends on. A null coachID
// means "all coaches".
type AvailabilityStore interface {
	GetRecurringAvailability(ctx context.Context, dayOfWeek int, coachID uuid.NullUUID) ([]db.RecurringAvailability, error)
	GetBlockedRanges(ctx context.Context, from, to time.Time, coachID uuid.NullUUID) ([]db.BlockedRange, error)
	GetNonCancelledBookings(ctx context.Context, from, to time.Time, coachID uuid.NullUUID) ([]db.Booking, error)
}

type ServiceDurations interface {
	GetServiceDuration(ctx context.Context, serviceTypeID uuid.UUID) (int, error)
}

type AvailabilityService struct {
	store     AvailabilityStore
	durations ServiceDurations
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewAvailabilityService wires the engine. now defaults to time.Now.
func NewAvailabilityService(store AvailabilityStore, durations ServiceDurations, loc *time.Location, now func() time.Time, logger *zap.Logger) *AvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		store:     store,
		durations: durations,
		loc:       loc,
		now:       now,
		logger:    logger.Named("availability"),
	}
}

// GetAvailability computes the bookable slots for one day. Any failed read
// fails the whole request; nothing partial is returned.
func (s *AvailabilityService) GetAvailability(ctx context.Context, req entities.AvailabilityRequest) (*entities.AvailabilityResponse, error) {
	if req.Date == "" {
		return nil, apperrors.NewValidationError("date", "is required")
	}
	date, err := utils.ParseDate(req.Date, s.loc)
	if err != nil {
		return nil, apperrors.NewValidationError("date", "must be YYYY-MM-DD")
	}
	coachID, err := parseOptionalUUID("coachId", req.CoachID)
	if err != nil {
		return nil, err
	}
	serviceTypeID, err := parseOptionalUUID("serviceTypeId", req.ServiceTypeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dayStart, dayEnd := utils.DayBounds(date)

	var (
		windows  []db.RecurringAvailability
		blocks   []db.BlockedRange
		bookings []db.Booking
		duration = DefaultSlotMinutes
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		windows, err = s.store.GetRecurringAvailability(gctx, int(date.Weekday()), coachID)
		if err != nil {
			return apperrors.NewDataAccessError("load availability windows", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		blocks, err = s.store.GetBlockedRanges(gctx, dayStart, dayEnd, coachID)
		if err != nil {
			return apperrors.NewDataAccessError("load blocked ranges", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bookings, err = s.store.GetNonCancelledBookings(gctx, dayStart, dayEnd, coachID)
		if err != nil {
			return apperrors.NewDataAccessError("load bookings", err)
		}
		return nil
	})
	if serviceTypeID.Valid {
		g.Go(func() error {
			minutes, err := s.resolveDuration(gctx, serviceTypeID.UUID)
			if err != nil {
				return err
			}
			duration = minutes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("availability lookup failed",
			zap.String("date", req.Date),
			zap.String("coach_id", req.CoachID),
			zap.Error(err))
		return nil, err
	}

	slots, err := GenerateSlots(date, duration, windows, blocks, bookings, now)
	if err != nil {
		return nil, apperrors.NewDataAccessError("read availability windows", err)
	}

	return &entities.AvailabilityResponse{
		Date:  date.Format(utils.DateLayout),
		Slots: slots,
	}, nil
}

// resolveDuration falls back to the default length when the service type is
// unknown instead of failing the request.
func (s *AvailabilityService) resolveDuration(ctx context.Context, serviceTypeID uuid.UUID) (int, error) {
	minutes, err := s.durations.GetServiceDuration(ctx, serviceTypeID)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("unknown service type, using default duration",
			zap.String("service_type_id", serviceTypeID.String()),
			zap.Int("minutes", DefaultSlotMinutes))
		return DefaultSlotMinutes, nil
	}
	if err != nil {
		return 0, apperrors.NewDataAccessError("load service duration", err)
	}
	if minutes <= 0 {
		s.logger.Warn("service type has no positive duration, using default",
			zap.String("service_type_id", serviceTypeID.String()),
			zap.Int("stored_minutes", minutes))
		return DefaultSlotMinutes, nil
	}
	return minutes, nil
}

type candidate struct {
	start, end int
	available  bool
}

// GenerateSlots lays durationMinutes-long slots across every window of date,
// starting a new candidate every 30 minutes. A slot is unavailable when it
// overlaps a block, a booking that is not cancelled, or starts before now.
// The result is ordered by start time; identical intervals produced by
// overlapping windows appear once. On daylight-saving transition days, slots
// whose real length differs from their wall-clock labels are left out.
func GenerateSlots(date time.Time, durationMinutes int, windows []db.RecurringAvailability, blocks []db.BlockedRange, bookings []db.Booking, now time.Time) ([]entities.Slot, error) {
	if durationMinutes <= 0 {
		durationMinutes = DefaultSlotMinutes
	}

	var candidates []candidate
	for _, w := range windows {
		winStart, err := utils.ParseClock(w.StartTime)
		if err != nil {
			return nil, fmt.Errorf("window %s: %w", w.ID, err)
		}
		winEnd, err := utils.ParseClock(w.EndTime)
		if err != nil {
			return nil, fmt.Errorf("window %s: %w", w.ID, err)
		}

		for cursor := winStart; cursor+durationMinutes <= winEnd; cursor += slotStepMinutes {
			slotStart := utils.At(date, cursor)
			slotEnd := slotStart.Add(time.Duration(durationMinutes) * time.Minute)
			// Across a DST change the labels would not match the real interval.
			if !utils.OnWallClock(date, cursor, slotStart) || !utils.OnWallClock(date, cursor+durationMinutes, slotEnd) {
				continue
			}
			candidates = append(candidates, candidate{
				start:     cursor,
				end:       cursor + durationMinutes,
				available: !slotStart.Before(now) && !blocked(slotStart, slotEnd, blocks) && !booked(slotStart, slotEnd, bookings),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		return candidates[i].end < candidates[j].end
	})

	slots := make([]entities.Slot, 0, len(candidates))
	for i, c := range candidates {
		if i > 0 && c.start == candidates[i-1].start && c.end == candidates[i-1].end {
			continue
		}
		slots = append(slots, entities.Slot{
			StartTime: utils.FormatClock(c.start),
			EndTime:   utils.FormatClock(c.end),
			Available: c.available,
		})
	}
	return slots, nil
}

func blocked(start, end time.Time, blocks []db.BlockedRange) bool {
	for _, b := range blocks {
		if utils.Overlaps(start, end, b.StartDatetime, b.EndDatetime) {
			return true
		}
	}
	return false
}

func booked(start, end time.Time, bookings []db.Booking) bool {
	for _, b := range bookings {
		if b.Status == db.StatusCancelled {
			continue
		}
		if utils.Overlaps(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}

func parseOptionalUUID(field, value string) (uuid.NullUUID, error) {
	if value == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.NullUUID{}, apperrors.NewValidationError(field, "must be a valid UUID")
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}
