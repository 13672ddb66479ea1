package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"coachhub/internal/db"
	"coachhub/internal/entities"
	"coachhub/internal/templates"

	"go.uber.org/zap"
)

const brandName = "Coach Academy"

type emailCopy struct {
	subject          string
	heading          string
	greeting         string
	intro            string
	codeLabel        string
	startLabel       string
	endLabel         string
	statusLabel      string
	closing          string
	smsTemplate      string
	reminderTemplate string
}

var emailCopies = map[string]emailCopy{
	"en": {
		subject:          "Your lesson booking is %s - Code: %s",
		heading:          "Lesson booking",
		greeting:         "Hello",
		intro:            "Here are the details of your lesson.",
		codeLabel:        "Booking code",
		startLabel:       "Starts",
		endLabel:         "Ends",
		statusLabel:      "Status",
		closing:          "See you on court.",
		smsTemplate:      "%s: lesson %s is %s. Starts %s. More details in your email.",
		reminderTemplate: "%s: reminder, lesson %s starts tomorrow at %s.",
	},
	"es": {
		subject:          "Tu reserva de clase está %s - Código: %s",
		heading:          "Reserva de clase",
		greeting:         "Hola",
		intro:            "Estos son los detalles de tu clase.",
		codeLabel:        "Código de reserva",
		startLabel:       "Comienza",
		endLabel:         "Termina",
		statusLabel:      "Estado",
		closing:          "Nos vemos en la cancha.",
		smsTemplate:      "%s: la clase %s está %s. Comienza %s. Más detalles en tu correo.",
		reminderTemplate: "%s: recordatorio, la clase %s comienza mañana a las %s.",
	},
	"it": {
		subject:          "La tua prenotazione è %s - Codice: %s",
		heading:          "Prenotazione lezione",
		greeting:         "Ciao",
		intro:            "Ecco i dettagli della tua lezione.",
		codeLabel:        "Codice prenotazione",
		startLabel:       "Inizio",
		endLabel:         "Fine",
		statusLabel:      "Stato",
		closing:          "Ci vediamo in campo.",
		smsTemplate:      "%s: la lezione %s è %s. Inizio %s. Altri dettagli nella tua email.",
		reminderTemplate: "%s: promemoria, la lezione %s inizia domani alle %s.",
	},
}

func copyFor(lang string) emailCopy {
	if c, ok := emailCopies[lang]; ok {
		return c
	}
	return emailCopies["en"]
}

// SenderService turns booking state changes into member emails and SMS.
type SenderService struct {
	mail   EmailSender
	sms    SMSSender
	loc    *time.Location
	logger *zap.Logger

	inFlight sync.WaitGroup
}

func NewSenderService(mail EmailSender, sms SMSSender, loc *time.Location, logger *zap.Logger) *SenderService {
	if loc == nil {
		loc = time.UTC
	}
	return &SenderService{mail: mail, sms: sms, loc: loc, logger: logger.Named("sender")}
}

// NotifyBooking sends the email and SMS for b in the background.
func (s *SenderService) NotifyBooking(b db.Booking, status string) {
	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()
		if err := s.SendBookingEmail(b, status); err != nil && !errors.Is(err, ErrNotConfigured) {
			s.logger.Error("booking email failed", zap.String("code", b.Code), zap.Error(err))
		}
		if err := s.SendBookingSMS(b, status); err != nil && !errors.Is(err, ErrNotConfigured) {
			s.logger.Error("booking SMS failed", zap.String("code", b.Code), zap.Error(err))
		}
	}()
}

// Drain waits for notifications started by NotifyBooking to finish, or for
// ctx to end.
func (s *SenderService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notifications still in flight: %w", ctx.Err())
	}
}

func (s *SenderService) SendBookingEmail(b db.Booking, status string) error {
	c := copyFor(b.Language)
	translated := statusTranslation(status, b.Language)

	data := entities.BookingEmailData{
		MemberName:         b.MemberName,
		BookingCode:        b.Code,
		StartTimeFormatted: b.StartTime.In(s.loc).Format("02 Jan 2006 15:04 MST"),
		EndTimeFormatted:   b.EndTime.In(s.loc).Format("02 Jan 2006 15:04 MST"),
		Status:             translated,
		Language:           b.Language,
		CurrentYear:        time.Now().In(s.loc).Year(),
		Brand:              brandName,
		Heading:            c.heading,
		Greeting:           c.greeting,
		Intro:              c.intro,
		CodeLabel:          c.codeLabel,
		StartLabel:         c.startLabel,
		EndLabel:           c.endLabel,
		StatusLabel:        c.statusLabel,
		Closing:            c.closing,
	}

	var html bytes.Buffer
	if err := templates.BookingEmail.Execute(&html, data); err != nil {
		return fmt.Errorf("error rendering booking email %s: %w", b.Code, err)
	}

	subject := fmt.Sprintf(c.subject, translated, b.Code)
	plain := fmt.Sprintf("%s %s,\n\n%s\n\n%s: %s\n%s: %s\n%s: %s\n%s: %s\n\n%s\n\n%s",
		c.greeting, data.MemberName, c.intro,
		c.codeLabel, data.BookingCode,
		c.startLabel, data.StartTimeFormatted,
		c.endLabel, data.EndTimeFormatted,
		c.statusLabel, translated,
		c.closing, brandName,
	)
	return s.mail.SendEmail(b.MemberEmail, b.MemberName, subject, plain, html.String())
}

func (s *SenderService) SendBookingSMS(b db.Booking, status string) error {
	if b.MemberPhone == "" {
		return nil
	}
	c := copyFor(b.Language)
	body := fmt.Sprintf(c.smsTemplate, brandName, b.Code, statusTranslation(status, b.Language),
		b.StartTime.In(s.loc).Format("02/01 15:04"))
	return s.sms.SendSMS(b.MemberPhone, body)
}

func (s *SenderService) SendReminderSMS(b db.Booking) error {
	if b.MemberPhone == "" {
		return nil
	}
	c := copyFor(b.Language)
	body := fmt.Sprintf(c.reminderTemplate, brandName, b.Code, b.StartTime.In(s.loc).Format("15:04"))
	return s.sms.SendSMS(b.MemberPhone, body)
}

// statusTranslation translates a booking status for the member's language.
func statusTranslation(status, lang string) string {
	switch lang {
	case "es":
		switch status {
		case db.StatusPending:
			return "pendiente"
		case db.StatusConfirmed:
			return "confirmada"
		case db.StatusCompleted:
			return "finalizada"
		case db.StatusCancelled:
			return "cancelada"
		}
	case "it":
		switch status {
		case db.StatusPending:
			return "in attesa"
		case db.StatusConfirmed:
			return "confermata"
		case db.StatusCompleted:
			return "completata"
		case db.StatusCancelled:
			return "annullata"
		}
	}
	return status
}
