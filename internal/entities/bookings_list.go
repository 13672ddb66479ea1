package entities

type BookingFilter struct {
	Date    string
	CoachID string
	Status  string
	Limit   int
	Offset  int
}

type BookingsList struct {
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	Bookings []BookingResponse `json:"bookings"`
}
