package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("notification channel is not configured")

type EmailSender interface {
	SendEmail(toEmail, toName, subject, plainText, html string) error
}

type SMSSender interface {
	SendSMS(toNumber, body string) error
}

type SendGridMailer struct {
	apiKey    string
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

func NewSendGridMailer(apiKey, fromEmail, fromName string, logger *zap.Logger) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, fromEmail: fromEmail, fromName: fromName, logger: logger.Named("sendgrid")}
}

func (m *SendGridMailer) SendEmail(toEmail, toName, subject, plainText, html string) error {
	if m.apiKey == "" || m.fromEmail == "" {
		m.logger.Warn("SendGrid is not configured, email not sent", zap.String("to", toEmail))
		return ErrNotConfigured
	}

	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, html)

	response, err := sendgrid.NewSendClient(m.apiKey).Send(message)
	if err != nil {
		return fmt.Errorf("error sending email via SendGrid: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
	}
	m.logger.Info("email sent", zap.String("to", toEmail), zap.String("subject", subject), zap.Int("status", response.StatusCode))
	return nil
}

type TwilioSMS struct {
	client     *twilio.RestClient
	fromNumber string
	logger     *zap.Logger
}

// NewTwilioSMS returns a sender that refuses to send when credentials are missing.
func NewTwilioSMS(accountSID, authToken, fromNumber string, logger *zap.Logger) *TwilioSMS {
	s := &TwilioSMS{fromNumber: fromNumber, logger: logger.Named("twilio")}
	if accountSID != "" && authToken != "" {
		s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username:   accountSID,
			Password:   authToken,
			AccountSid: accountSID,
		})
	}
	return s
}

func (s *TwilioSMS) SendSMS(toNumber, body string) error {
	if s.client == nil || s.fromNumber == "" {
		s.logger.Warn("Twilio is not configured, SMS not sent", zap.String("to", toNumber))
		return ErrNotConfigured
	}
	if !strings.HasPrefix(toNumber, "+") {
		s.logger.Warn("destination number is not E.164", zap.String("to", toNumber))
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.fromNumber)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("error sending SMS: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		s.logger.Info("SMS sent", zap.String("to", toNumber), zap.String("sid", *resp.Sid))
	}
	return nil
}
