package service_test

import (
	"context"
	"sync"
	"time"

	"coachhub/internal/db"
	"coachhub/internal/entities"
	"coachhub/internal/service"

	"github.com/google/uuid"
	testifymock "github.com/stretchr/testify/mock"
)

type MockBookingStore struct {
	testifymock.Mock
}

func (m *MockBookingStore) CreateBooking(ctx context.Context, b *db.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingStore) GetBookingByCode(ctx context.Context, code string) (*db.Booking, error) {
	args := m.Called(ctx, code)
	b, _ := args.Get(0).(*db.Booking)
	return b, args.Error(1)
}

func (m *MockBookingStore) GetBookingBySessionID(ctx context.Context, sessionID string) (*db.Booking, error) {
	args := m.Called(ctx, sessionID)
	b, _ := args.Get(0).(*db.Booking)
	return b, args.Error(1)
}

func (m *MockBookingStore) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockPaymentStore struct {
	testifymock.Mock
}

func (m *MockPaymentStore) AttachCheckoutSession(ctx context.Context, bookingID uuid.UUID, sessionID string) error {
	return m.Called(ctx, bookingID, sessionID).Error(0)
}

func (m *MockPaymentStore) UpdatePaymentBySessionID(ctx context.Context, sessionID, status, paymentStatus, paymentIntentID string) error {
	return m.Called(ctx, sessionID, status, paymentStatus, paymentIntentID).Error(0)
}

func (m *MockPaymentStore) GetSessionIDByPaymentIntentID(ctx context.Context, paymentIntentID string) (string, error) {
	args := m.Called(ctx, paymentIntentID)
	return args.String(0), args.Error(1)
}

type MockGateway struct {
	testifymock.Mock
}

func (m *MockGateway) CreateCheckoutSession(p service.CheckoutParams) (string, string, error) {
	args := m.Called(p)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockGateway) RefundPaymentBySessionID(sessionID string) error {
	return m.Called(sessionID).Error(0)
}

type MockSlotFinder struct {
	testifymock.Mock
}

func (m *MockSlotFinder) GetAvailability(ctx context.Context, req entities.AvailabilityRequest) (*entities.AvailabilityResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*entities.AvailabilityResponse)
	return resp, args.Error(1)
}

type fixedTier struct {
	tier service.Tier
	err  error
}

func (f fixedTier) TierFor(context.Context, string) (service.Tier, error) {
	return f.tier, f.err
}

type notification struct {
	code   string
	status string
}

// recordingNotifier captures notifications synchronously.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) NotifyBooking(b db.Booking, status string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{code: b.Code, status: status})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

func frozen(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
