package service

import (
	"context"
	"strings"
	"time"

	"coachhub/internal/db"
	"coachhub/internal/entities"
	apperrors "coachhub/internal/errors"
	"coachhub/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type AdminStore interface {
	CreateAvailabilityWindow(ctx context.Context, w *db.RecurringAvailability) error
	ListAvailabilityWindows(ctx context.Context, coachID uuid.UUID) ([]db.RecurringAvailability, error)
	DeleteAvailabilityWindow(ctx context.Context, id uuid.UUID) error
	CreateBlockedRange(ctx context.Context, b *db.BlockedRange) error
	ListBlockedRanges(ctx context.Context, coachID uuid.UUID) ([]db.BlockedRange, error)
	DeleteBlockedRange(ctx context.Context, id uuid.UUID) error
	UpdateServiceDuration(ctx context.Context, id uuid.UUID, minutes int) error
}

type BookingLister interface {
	ListBookings(ctx context.Context, filter entities.BookingFilter, loc *time.Location) ([]db.Booking, int64, error)
}

type DurationInvalidator interface {
	Invalidate(serviceTypeID uuid.UUID)
}

type AdminService struct {
	store     AdminStore
	bookings  BookingStore
	lister    BookingLister
	durations DurationInvalidator
	notifier  BookingNotifier
	loc       *time.Location
	logger    *zap.Logger
}

func NewAdminService(store AdminStore, bookings BookingStore, lister BookingLister, durations DurationInvalidator, notifier BookingNotifier, loc *time.Location, logger *zap.Logger) *AdminService {
	if loc == nil {
		loc = time.UTC
	}
	return &AdminService{
		store:     store,
		bookings:  bookings,
		lister:    lister,
		durations: durations,
		notifier:  notifier,
		loc:       loc,
		logger:    logger.Named("admin"),
	}
}

func (s *AdminService) CreateAvailabilityWindow(ctx context.Context, req entities.AvailabilityWindowRequest) (*entities.AvailabilityWindowResponse, error) {
	coachID, err := requireUUID("coachId", req.CoachID)
	if err != nil {
		return nil, err
	}
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return nil, apperrors.NewValidationError("dayOfWeek", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	start, err := utils.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperrors.NewValidationError("startTime", "must be HH:MM")
	}
	end, err := utils.ParseClock(req.EndTime)
	if err != nil {
		return nil, apperrors.NewValidationError("endTime", "must be HH:MM")
	}
	if start >= end {
		return nil, apperrors.NewValidationError("endTime", "must be after startTime")
	}

	w := &db.RecurringAvailability{
		ID:        uuid.New(),
		CoachID:   coachID,
		DayOfWeek: req.DayOfWeek,
		StartTime: utils.FormatClock(start),
		EndTime:   utils.FormatClock(end),
	}
	if err := s.store.CreateAvailabilityWindow(ctx, w); err != nil {
		return nil, err
	}
	resp := toWindowResponse(*w)
	return &resp, nil
}

func (s *AdminService) ListAvailabilityWindows(ctx context.Context, coachID string) ([]entities.AvailabilityWindowResponse, error) {
	id, err := requireUUID("coachId", coachID)
	if err != nil {
		return nil, err
	}
	windows, err := s.store.ListAvailabilityWindows(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]entities.AvailabilityWindowResponse, 0, len(windows))
	for _, w := range windows {
		out = append(out, toWindowResponse(w))
	}
	return out, nil
}

func (s *AdminService) DeleteAvailabilityWindow(ctx context.Context, id string) error {
	windowID, err := requireUUID("id", id)
	if err != nil {
		return err
	}
	return s.store.DeleteAvailabilityWindow(ctx, windowID)
}

func (s *AdminService) CreateBlockedRange(ctx context.Context, req entities.BlockedRangeRequest) (*entities.BlockedRangeResponse, error) {
	coachID, err := requireUUID("coachId", req.CoachID)
	if err != nil {
		return nil, err
	}
	if req.StartDatetime.IsZero() || req.EndDatetime.IsZero() {
		return nil, apperrors.NewValidationError("startDatetime", "start and end are required")
	}
	if !req.StartDatetime.Before(req.EndDatetime) {
		return nil, apperrors.NewValidationError("endDatetime", "must be after startDatetime")
	}

	b := &db.BlockedRange{
		ID:            uuid.New(),
		CoachID:       coachID,
		StartDatetime: req.StartDatetime,
		EndDatetime:   req.EndDatetime,
		Reason:        strings.TrimSpace(req.Reason),
	}
	if err := s.store.CreateBlockedRange(ctx, b); err != nil {
		return nil, err
	}
	resp := toBlockResponse(*b)
	return &resp, nil
}

func (s *AdminService) ListBlockedRanges(ctx context.Context, coachID string) ([]entities.BlockedRangeResponse, error) {
	id, err := requireUUID("coachId", coachID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.store.ListBlockedRanges(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]entities.BlockedRangeResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toBlockResponse(b))
	}
	return out, nil
}

func (s *AdminService) DeleteBlockedRange(ctx context.Context, id string) error {
	blockID, err := requireUUID("id", id)
	if err != nil {
		return err
	}
	return s.store.DeleteBlockedRange(ctx, blockID)
}

func (s *AdminService) ListBookings(ctx context.Context, filter entities.BookingFilter) (*entities.BookingsList, error) {
	if filter.Status != "" && !db.ValidBookingStatus(filter.Status) {
		return nil, apperrors.NewValidationError("status", "unknown booking status")
	}
	if filter.CoachID != "" {
		if _, err := uuid.Parse(filter.CoachID); err != nil {
			return nil, apperrors.NewValidationError("coachId", "must be a valid UUID")
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	bookings, total, err := s.lister.ListBookings(ctx, filter, s.loc)
	if err != nil {
		return nil, err
	}
	list := &entities.BookingsList{
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
		Bookings: make([]entities.BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		list.Bookings = append(list.Bookings, toBookingResponse(b))
	}
	return list, nil
}

// UpdateBookingStatus lets staff move a booking through its lifecycle, e.g.
// marking a no-show. Members hear about confirmations and cancellations.
func (s *AdminService) UpdateBookingStatus(ctx context.Context, code, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if !db.ValidBookingStatus(status) {
		return apperrors.NewValidationError("status", "unknown booking status")
	}
	b, err := s.bookings.GetBookingByCode(ctx, code)
	if err != nil {
		return err
	}
	if b.Status == status {
		return nil
	}
	if err := s.bookings.UpdateBookingStatus(ctx, b.ID, status); err != nil {
		return err
	}
	s.logger.Info("booking status changed",
		zap.String("code", code), zap.String("from", b.Status), zap.String("to", status))

	if status == db.StatusConfirmed || status == db.StatusCancelled {
		b.Status = status
		s.notifier.NotifyBooking(*b, status)
	}
	return nil
}

func (s *AdminService) UpdateServiceDuration(ctx context.Context, id string, minutes int) error {
	serviceTypeID, err := requireUUID("id", id)
	if err != nil {
		return err
	}
	if minutes <= 0 || minutes > utils.MinutesPerDay {
		return apperrors.NewValidationError("durationMinutes", "must be between 1 and 1440")
	}
	if err := s.store.UpdateServiceDuration(ctx, serviceTypeID, minutes); err != nil {
		return err
	}
	s.durations.Invalidate(serviceTypeID)
	return nil
}

func requireUUID(field, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, apperrors.NewValidationError(field, "is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(field, "must be a valid UUID")
	}
	return id, nil
}

func toWindowResponse(w db.RecurringAvailability) entities.AvailabilityWindowResponse {
	return entities.AvailabilityWindowResponse{
		ID:        w.ID.String(),
		CoachID:   w.CoachID.String(),
		DayOfWeek: w.DayOfWeek,
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
	}
}

func toBlockResponse(b db.BlockedRange) entities.BlockedRangeResponse {
	return entities.BlockedRangeResponse{
		ID:            b.ID.String(),
		CoachID:       b.CoachID.String(),
		StartDatetime: b.StartDatetime,
		EndDatetime:   b.EndDatetime,
		Reason:        b.Reason,
	}
}
