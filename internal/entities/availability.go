package entities

type AvailabilityRequest struct {
	Date          string `json:"date"`
	CoachID       string `json:"coachId,omitempty"`
	ServiceTypeID string `json:"serviceTypeId,omitempty"`
}

type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

type AvailabilityResponse struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

type ServiceTypeResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
}
