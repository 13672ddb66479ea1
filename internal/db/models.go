package db

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"

	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentRefunded  = "refunded"
)

// ValidBookingStatus reports whether s is one of the booking lifecycle states.
func ValidBookingStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// RecurringAvailability is a coach's standing weekly open window.
// DayOfWeek follows time.Weekday (0 = Sunday). Times are "HH:MM" wall clock.
type RecurringAvailability struct {
	ID        uuid.UUID
	CoachID   uuid.UUID
	DayOfWeek int
	StartTime string
	EndTime   string
	CreatedAt time.Time
}

type BlockedRange struct {
	ID            uuid.UUID
	CoachID       uuid.UUID
	StartDatetime time.Time
	EndDatetime   time.Time
	Reason        string
	CreatedAt     time.Time
}

type ServiceType struct {
	ID              uuid.UUID
	Name            string
	DurationMinutes int
}

type Coach struct {
	ID    uuid.UUID
	Name  string
	Email string
}

type Booking struct {
	ID                    uuid.UUID
	Code                  string
	CoachID               uuid.UUID
	ServiceTypeID         uuid.NullUUID
	StartTime             time.Time
	EndTime               time.Time
	Status                string
	MemberName            string
	MemberEmail           string
	MemberPhone           string
	Language              string
	AmountCents           int64
	PaymentStatus         string
	StripeSessionID       string
	StripePaymentIntentID string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Membership struct {
	Email     string
	Tier      string
	StartedAt time.Time
}

type DrillCompletion struct {
	MemberEmail string
	DrillID     string
	CompletedAt time.Time
}
