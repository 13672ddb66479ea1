package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// BookingEmail renders entities.BookingEmailData.
var BookingEmail = template.Must(template.ParseFS(files, "booking_email.html"))
