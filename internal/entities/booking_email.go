package entities

type BookingEmailData struct {
	MemberName         string
	BookingCode        string
	StartTimeFormatted string
	EndTimeFormatted   string
	Status             string
	Language           string
	CurrentYear        int
	Brand              string

	Heading     string
	Greeting    string
	Intro       string
	CodeLabel   string
	StartLabel  string
	EndLabel    string
	StatusLabel string
	Closing     string
}
