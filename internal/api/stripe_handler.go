package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "coachhub/internal/errors"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

const maxWebhookBodyBytes = int64(65536)

type CheckoutEvents interface {
	ConfirmCheckout(ctx context.Context, sessionID, paymentIntentID string) error
	MarkRefunded(ctx context.Context, paymentIntentID string) error
}

type StripeWebhookHandler struct {
	secret string
	events CheckoutEvents
	logger *zap.Logger
}

func NewStripeWebhookHandler(secret string, events CheckoutEvents, logger *zap.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{secret: secret, events: events, logger: logger.Named("stripe_webhook")}
}

// HandleWebhook verifies the Stripe signature and applies payment events to
// bookings. A non-2xx answer makes Stripe retry the delivery.
func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Warn("error reading webhook body", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil || sess.ID == "" {
			h.logger.Warn("malformed checkout.session.completed", zap.String("event_id", event.ID))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		paymentIntentID := ""
		if sess.PaymentIntent != nil {
			paymentIntentID = sess.PaymentIntent.ID
		}
		err := h.events.ConfirmCheckout(r.Context(), sess.ID, paymentIntentID)
		if errors.Is(err, apperrors.ErrNotFound) {
			h.logger.Warn("checkout session has no booking", zap.String("session_id", sess.ID))
		} else if err != nil {
			h.logger.Error("confirming checkout failed", zap.String("session_id", sess.ID), zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case stripe.EventTypeChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			h.logger.Warn("malformed charge.refunded", zap.String("event_id", event.ID))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if charge.PaymentIntent != nil && charge.PaymentIntent.ID != "" {
			err := h.events.MarkRefunded(r.Context(), charge.PaymentIntent.ID)
			if errors.Is(err, apperrors.ErrNotFound) {
				h.logger.Warn("refund for unknown payment intent", zap.String("payment_intent", charge.PaymentIntent.ID))
			} else if err != nil {
				h.logger.Error("recording refund failed", zap.String("payment_intent", charge.PaymentIntent.ID), zap.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}

	default:
		h.logger.Debug("unhandled event type", zap.String("type", string(event.Type)))
	}

	w.WriteHeader(http.StatusOK)
}
