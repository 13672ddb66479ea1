package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coachhub/internal/db"
	"coachhub/internal/entities"
	apperrors "coachhub/internal/errors"
	"coachhub/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCancellationWindow = 24 * time.Hour

type BookingStore interface {
	CreateBooking(ctx context.Context, b *db.Booking) error
	GetBookingByCode(ctx context.Context, code string) (*db.Booking, error)
	GetBookingBySessionID(ctx context.Context, sessionID string) (*db.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status string) error
}

type PaymentStore interface {
	AttachCheckoutSession(ctx context.Context, bookingID uuid.UUID, sessionID string) error
	UpdatePaymentBySessionID(ctx context.Context, sessionID, status, paymentStatus, paymentIntentID string) error
	GetSessionIDByPaymentIntentID(ctx context.Context, paymentIntentID string) (string, error)
}

type SlotFinder interface {
	GetAvailability(ctx context.Context, req entities.AvailabilityRequest) (*entities.AvailabilityResponse, error)
}

type TierResolver interface {
	TierFor(ctx context.Context, email string) (Tier, error)
}

type BookingNotifier interface {
	NotifyBooking(b db.Booking, status string)
}

type BookingService struct {
	store        BookingStore
	payments     PaymentStore
	gateway      PaymentGateway
	slots        SlotFinder
	tiers        TierResolver
	notifier     BookingNotifier
	loc          *time.Location
	cancelWindow time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

type BookingOption func(*BookingService)

func WithBookingClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

func WithBookingLocation(loc *time.Location) BookingOption {
	return func(s *BookingService) { s.loc = loc }
}

func WithCancellationWindow(d time.Duration) BookingOption {
	return func(s *BookingService) { s.cancelWindow = d }
}

func NewBookingService(store BookingStore, payments PaymentStore, gateway PaymentGateway, slots SlotFinder, tiers TierResolver, notifier BookingNotifier, logger *zap.Logger, opts ...BookingOption) *BookingService {
	s := &BookingService{
		store:        store,
		payments:     payments,
		gateway:      gateway,
		slots:        slots,
		tiers:        tiers,
		notifier:     notifier,
		loc:          time.UTC,
		cancelWindow: defaultCancellationWindow,
		now:          time.Now,
		logger:       logger.Named("booking"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking holds the requested slot as a pending booking and opens a
// checkout session for it. The slot must be offered and available; the store
// re-checks the interval under a per-coach lock, so a concurrent request for
// the same slot fails with ErrSlotTaken.
func (s *BookingService) CreateBooking(ctx context.Context, req entities.BookingRequest) (*entities.CheckoutResponse, error) {
	if err := validateBookingRequest(req); err != nil {
		return nil, err
	}
	coachID, err := uuid.Parse(req.CoachID)
	if err != nil {
		return nil, apperrors.NewValidationError("coachId", "must be a valid UUID")
	}
	serviceTypeID, err := parseOptionalUUID("serviceTypeId", req.ServiceTypeID)
	if err != nil {
		return nil, err
	}
	date, err := utils.ParseDate(req.Date, s.loc)
	if err != nil {
		return nil, apperrors.NewValidationError("date", "must be YYYY-MM-DD")
	}
	wanted, err := utils.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperrors.NewValidationError("startTime", "must be HH:MM")
	}

	availability, err := s.slots.GetAvailability(ctx, entities.AvailabilityRequest{
		Date:          req.Date,
		CoachID:       req.CoachID,
		ServiceTypeID: req.ServiceTypeID,
	})
	if err != nil {
		return nil, err
	}
	slot, ok := findSlot(availability.Slots, utils.FormatClock(wanted))
	if !ok {
		return nil, apperrors.NewValidationError("startTime", "is not an offered slot")
	}
	if !slot.Available {
		return nil, apperrors.ErrSlotTaken
	}

	endMinutes, err := utils.ParseClock(slot.EndTime)
	if err != nil {
		return nil, fmt.Errorf("error reading slot end: %w", err)
	}
	duration := endMinutes - wanted
	start := utils.At(date, wanted)

	tier, err := s.tiers.TierFor(ctx, req.Email)
	if err != nil {
		return nil, apperrors.NewDataAccessError("load membership", err)
	}

	id := uuid.New()
	booking := &db.Booking{
		ID:            id,
		Code:          bookingCode(id),
		CoachID:       coachID,
		ServiceTypeID: serviceTypeID,
		StartTime:     start,
		EndTime:       start.Add(time.Duration(duration) * time.Minute),
		Status:        db.StatusPending,
		MemberName:    strings.TrimSpace(req.Name),
		MemberEmail:   strings.ToLower(strings.TrimSpace(req.Email)),
		MemberPhone:   strings.TrimSpace(req.Phone),
		Language:      normalizeLanguage(req.Language),
		AmountCents:   tier.LessonPrice(duration),
		PaymentStatus: db.PaymentPending,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		if !errors.Is(err, apperrors.ErrSlotTaken) {
			s.logger.Error("creating booking failed", zap.String("coach_id", req.CoachID), zap.Error(err))
		}
		return nil, err
	}

	url, sessionID, err := s.gateway.CreateCheckoutSession(CheckoutParams{
		AmountCents:   booking.AmountCents,
		Description:   fmt.Sprintf("%d-minute lesson, %s %s", duration, req.Date, slot.StartTime),
		CustomerEmail: booking.MemberEmail,
		BookingCode:   booking.Code,
		Language:      booking.Language,
	})
	if err == nil {
		err = s.payments.AttachCheckoutSession(ctx, booking.ID, sessionID)
	}
	if err != nil {
		s.releaseBooking(ctx, booking)
		return nil, fmt.Errorf("error creating checkout session: %w", err)
	}

	s.logger.Info("booking held",
		zap.String("code", booking.Code),
		zap.String("coach_id", booking.CoachID.String()),
		zap.Time("start", booking.StartTime),
		zap.String("tier", tier.Name))

	return &entities.CheckoutResponse{Code: booking.Code, URL: url, SessionID: sessionID}, nil
}

// releaseBooking frees the slot of a booking whose checkout could not start.
func (s *BookingService) releaseBooking(ctx context.Context, b *db.Booking) {
	if err := s.store.UpdateBookingStatus(ctx, b.ID, db.StatusCancelled); err != nil {
		s.logger.Error("releasing booking failed", zap.String("code", b.Code), zap.Error(err))
	}
}

// GetBooking looks a booking up by code. When email is given it must match the
// member's, otherwise the booking is reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, code, email string) (*entities.BookingResponse, error) {
	b, err := s.store.GetBookingByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if email != "" && !strings.EqualFold(strings.TrimSpace(email), b.MemberEmail) {
		return nil, fmt.Errorf("booking with code '%s': %w", code, apperrors.ErrNotFound)
	}
	resp := toBookingResponse(*b)
	return &resp, nil
}

func (s *BookingService) GetBookingBySessionID(ctx context.Context, sessionID string) (*entities.BookingResponse, error) {
	b, err := s.store.GetBookingBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := toBookingResponse(*b)
	return &resp, nil
}

// CancelBooking cancels a booking that starts more than the cancellation
// window from now, refunding it when it was paid.
func (s *BookingService) CancelBooking(ctx context.Context, code string) error {
	b, err := s.store.GetBookingByCode(ctx, code)
	if err != nil {
		return err
	}
	switch b.Status {
	case db.StatusCancelled:
		return nil
	case db.StatusCompleted, db.StatusNoShow:
		return fmt.Errorf("booking %s is %s: %w", code, b.Status, apperrors.ErrCancelWindow)
	}
	if b.StartTime.Sub(s.now()) < s.cancelWindow {
		return fmt.Errorf("booking %s starts within %s: %w", code, s.cancelWindow, apperrors.ErrCancelWindow)
	}

	if b.PaymentStatus == db.PaymentSucceeded && b.StripeSessionID != "" {
		if err := s.gateway.RefundPaymentBySessionID(b.StripeSessionID); err != nil {
			return err
		}
		err = s.payments.UpdatePaymentBySessionID(ctx, b.StripeSessionID, db.StatusCancelled, db.PaymentRefunded, "")
	} else {
		err = s.store.UpdateBookingStatus(ctx, b.ID, db.StatusCancelled)
	}
	if err != nil {
		return err
	}

	b.Status = db.StatusCancelled
	s.notifier.NotifyBooking(*b, db.StatusCancelled)
	return nil
}

// ConfirmCheckout records a completed payment. A booking that was already
// released while the member was paying cannot be honoured and is refunded.
// Repeated deliveries of the same event change nothing.
func (s *BookingService) ConfirmCheckout(ctx context.Context, sessionID, paymentIntentID string) error {
	b, err := s.store.GetBookingBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}

	switch b.Status {
	case db.StatusConfirmed, db.StatusCompleted, db.StatusNoShow:
		s.logger.Debug("duplicate checkout completion", zap.String("code", b.Code), zap.String("session_id", sessionID))
		return nil
	case db.StatusCancelled:
		if b.PaymentStatus == db.PaymentRefunded {
			return nil
		}
		s.logger.Warn("payment arrived for a released booking, refunding",
			zap.String("code", b.Code), zap.String("session_id", sessionID))
		if err := s.gateway.RefundPaymentBySessionID(sessionID); err != nil {
			return err
		}
		return s.payments.UpdatePaymentBySessionID(ctx, sessionID, db.StatusCancelled, db.PaymentRefunded, paymentIntentID)
	}

	if err := s.payments.UpdatePaymentBySessionID(ctx, sessionID, db.StatusConfirmed, db.PaymentSucceeded, paymentIntentID); err != nil {
		return err
	}
	b.Status = db.StatusConfirmed
	b.PaymentStatus = db.PaymentSucceeded
	s.notifier.NotifyBooking(*b, db.StatusConfirmed)
	return nil
}

// MarkRefunded cancels the booking paid by paymentIntentID after a refund.
func (s *BookingService) MarkRefunded(ctx context.Context, paymentIntentID string) error {
	sessionID, err := s.payments.GetSessionIDByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		return err
	}
	return s.payments.UpdatePaymentBySessionID(ctx, sessionID, db.StatusCancelled, db.PaymentRefunded, "")
}

func validateBookingRequest(req entities.BookingRequest) error {
	switch {
	case req.CoachID == "":
		return apperrors.NewValidationError("coachId", "is required")
	case req.Date == "":
		return apperrors.NewValidationError("date", "is required")
	case req.StartTime == "":
		return apperrors.NewValidationError("startTime", "is required")
	case strings.TrimSpace(req.Name) == "":
		return apperrors.NewValidationError("name", "is required")
	case !strings.Contains(req.Email, "@"):
		return apperrors.NewValidationError("email", "must be a valid email address")
	}
	return nil
}

func findSlot(slots []entities.Slot, start string) (entities.Slot, bool) {
	for _, sl := range slots {
		if sl.StartTime == start {
			return sl, true
		}
	}
	return entities.Slot{}, false
}

// bookingCode is the short reference members quote: the first 8 hex digits of the id.
func bookingCode(id uuid.UUID) string {
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := emailCopies[lang]; ok {
		return lang
	}
	return "en"
}

func toBookingResponse(b db.Booking) entities.BookingResponse {
	resp := entities.BookingResponse{
		Code:          b.Code,
		CoachID:       b.CoachID.String(),
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		AmountCents:   b.AmountCents,
		Name:          b.MemberName,
		Email:         b.MemberEmail,
		Phone:         b.MemberPhone,
		Language:      b.Language,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.ServiceTypeID.Valid {
		resp.ServiceTypeID = b.ServiceTypeID.UUID.String()
	}
	return resp
}
