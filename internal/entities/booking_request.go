package entities

import "time"

type BookingRequest struct {
	CoachID       string `json:"coachId"`
	ServiceTypeID string `json:"serviceTypeId,omitempty"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Language      string `json:"language,omitempty"`
}

type CheckoutResponse struct {
	Code      string `json:"code"`
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

type BookingResponse struct {
	Code          string    `json:"code"`
	CoachID       string    `json:"coachId"`
	ServiceTypeID string    `json:"serviceTypeId,omitempty"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	AmountCents   int64     `json:"amountCents"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Language      string    `json:"language"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
