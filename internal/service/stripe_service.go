package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/refund"
)

// Stripe will not expire a checkout session sooner than this.
const minCheckoutTTL = 30 * time.Minute

type CheckoutParams struct {
	AmountCents   int64
	Description   string
	CustomerEmail string
	BookingCode   string
	Language      string
}

// PaymentGateway is the slice of Stripe the booking flow uses.
type PaymentGateway interface {
	CreateCheckoutSession(p CheckoutParams) (url, sessionID string, err error)
	RefundPaymentBySessionID(sessionID string) error
}

type StripeService struct {
	currency    string
	frontendURL string
	sessionTTL  time.Duration
}

func NewStripeService(currency, frontendURL string, sessionTTL time.Duration) *StripeService {
	if sessionTTL < minCheckoutTTL {
		sessionTTL = minCheckoutTTL
	}
	return &StripeService{
		currency:    strings.ToLower(currency),
		frontendURL: strings.TrimRight(frontendURL, "/"),
		sessionTTL:  sessionTTL,
	}
}

func (s *StripeService) RefundPaymentBySessionID(sessionID string) error {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return fmt.Errorf("error fetching checkout session %s: %w", sessionID, err)
	}
	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		return fmt.Errorf("no payment intent found for session %s", sessionID)
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
	}
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("error refunding session %s: %w", sessionID, err)
	}
	return nil
}

// CreateCheckoutSession opens a one-off card payment for a lesson. The session
// expires together with the pending booking it pays for.
func (s *StripeService) CreateCheckoutSession(p CheckoutParams) (string, string, error) {
	lang := p.Language
	if lang == "" {
		lang = "en"
	}
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
					UnitAmount: stripe.Int64(p.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(fmt.Sprintf("%s/%s/bookings/confirmation?session_id={CHECKOUT_SESSION_ID}", s.frontendURL, lang)),
		CancelURL:         stripe.String(fmt.Sprintf("%s/%s/bookings/failed?session_id={CHECKOUT_SESSION_ID}", s.frontendURL, lang)),
		CustomerEmail:     stripe.String(p.CustomerEmail),
		ClientReferenceID: stripe.String(p.BookingCode),
		Locale:            stripe.String(lang),
		ExpiresAt:         stripe.Int64(time.Now().Add(s.sessionTTL).Unix()),
	}
	params.AddMetadata("booking_code", p.BookingCode)

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.URL, sess.ID, nil
}
