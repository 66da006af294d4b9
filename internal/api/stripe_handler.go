package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/samueljjenkins/servicehomie-sub001/internal/service"
)

// StripeWebhookHandler receives the payment provider's signed events and
// applies them to booking and subscription state.
type StripeWebhookHandler struct {
	WebhookSecret string
	Bookings      *service.BookingService
	Subscriptions *service.SubscriptionService
}

func NewStripeWebhookHandler(webhookSecret string, bookings *service.BookingService, subscriptions *service.SubscriptionService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		WebhookSecret: webhookSecret,
		Bookings:      bookings,
		Subscriptions: subscriptions,
	}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading webhook body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	// Signature verification needs the raw bytes, never re-serialized JSON.
	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.WebhookSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("Error parsing checkout.session: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := h.handleCheckoutCompleted(r, &sess); err != nil {
			log.Printf("Error handling checkout.session.completed: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			log.Printf("Error parsing subscription: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := h.Subscriptions.ApplySubscriptionUpdated(r.Context(), sub.ID, string(sub.Status)); err != nil {
			log.Printf("Error handling subscription.updated: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			log.Printf("Error parsing subscription: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := h.Subscriptions.ApplySubscriptionDeleted(r.Context(), sub.ID); err != nil {
			log.Printf("Error handling subscription.deleted: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

// handleCheckoutCompleted routes a completed checkout by its metadata kind:
// booking deposits confirm the booking, subscription checkouts activate the
// technician's entitlement.
func (h *StripeWebhookHandler) handleCheckoutCompleted(r *http.Request, sess *stripe.CheckoutSession) error {
	switch sess.Metadata[service.MetaKind] {
	case service.KindBooking:
		return h.Bookings.ConfirmBySession(r.Context(), sess.ID)

	case service.KindSubscription:
		profileID, err := strconv.Atoi(sess.Metadata[service.MetaProfileID])
		if err != nil {
			log.Printf("checkout.session.completed with bad profile id %q", sess.Metadata[service.MetaProfileID])
			return nil
		}
		var subID, customerID string
		if sess.Subscription != nil {
			subID = sess.Subscription.ID
		}
		if sess.Customer != nil {
			customerID = sess.Customer.ID
		}
		return h.Subscriptions.ApplyCheckoutCompleted(r.Context(), profileID, subID, customerID)

	default:
		log.Printf("checkout.session.completed with unknown kind %q, ignoring", sess.Metadata[service.MetaKind])
		return nil
	}
}

// GetBookingBySessionHandler lets the confirmation page poll for the booking
// tied to a checkout session.
func (h *StripeWebhookHandler) GetBookingBySessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}
	booking, err := h.Bookings.GetBySessionID(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}
	writeJSON(w, booking)
}
