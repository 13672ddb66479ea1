package entities

import "time"

type AvailabilityWindowRequest struct {
	CoachID   string `json:"coachId"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type AvailabilityWindowResponse struct {
	ID        string `json:"id"`
	CoachID   string `json:"coachId"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type BlockedRangeRequest struct {
	CoachID       string    `json:"coachId"`
	StartDatetime time.Time `json:"startDatetime"`
	EndDatetime   time.Time `json:"endDatetime"`
	Reason        string    `json:"reason,omitempty"`
}

type BlockedRangeResponse struct {
	ID            string    `json:"id"`
	CoachID       string    `json:"coachId"`
	StartDatetime time.Time `json:"startDatetime"`
	EndDatetime   time.Time `json:"endDatetime"`
	Reason        string    `json:"reason,omitempty"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type ServiceDurationRequest struct {
	DurationMinutes int `json:"durationMinutes"`
}

type MembershipRequest struct {
	Email string `json:"email"`
	Tier  string `json:"tier"`
}
