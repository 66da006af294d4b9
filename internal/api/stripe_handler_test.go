package api

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
	"github.com/samueljjenkins/servicehomie-sub001/internal/service"
)

type stubBookingStore struct {
	confirmedSession string
	booking          db.Booking
}

func (s *stubBookingStore) Create(context.Context, *db.Booking) error { return nil }
func (s *stubBookingStore) GetByCode(context.Context, string) (*db.Booking, error) {
	return &s.booking, nil
}
func (s *stubBookingStore) GetBySessionID(context.Context, string) (*db.Booking, error) {
	return &s.booking, nil
}
func (s *stubBookingStore) List(context.Context, string, string, string) ([]db.Booking, error) {
	return nil, nil
}
func (s *stubBookingStore) UpdateStatus(context.Context, string, string) error { return nil }
func (s *stubBookingStore) UpdateStatusBySessionID(_ context.Context, sessionID, status string) error {
	if status == service.BookingConfirmed {
		s.confirmedSession = sessionID
	}
	return nil
}
func (s *stubBookingStore) Reschedule(context.Context, string, string, string) error { return nil }
func (s *stubBookingStore) DeleteByID(context.Context, int) error                    { return nil }

type stubSubscriptionStore struct {
	activatedProfile int
	activatedSub     string
	activatedCust    string
}

func (s *stubSubscriptionStore) GetByProfileID(context.Context, int) (*db.TechnicianSubscription, error) {
	return nil, repository.ErrSubscriptionNotFound
}
func (s *stubSubscriptionStore) GetByStripeSubscriptionID(context.Context, string) (*db.TechnicianSubscription, error) {
	return nil, repository.ErrSubscriptionNotFound
}
func (s *stubSubscriptionStore) EnsureForProfile(context.Context, int) error     { return nil }
func (s *stubSubscriptionStore) SetStatus(context.Context, int, string) error    { return nil }
func (s *stubSubscriptionStore) SetStatusByID(context.Context, int, string) error { return nil }
func (s *stubSubscriptionStore) Activate(_ context.Context, profileID int, subID, customerID string, _ time.Time) error {
	s.activatedProfile = profileID
	s.activatedSub = subID
	s.activatedCust = customerID
	return nil
}
func (s *stubSubscriptionStore) Cancel(context.Context, int, time.Time) error { return nil }
func (s *stubSubscriptionStore) ListProfileIDsForReconciliation(context.Context) ([]int, error) {
	return nil, nil
}

func newRoutingHandler() (*StripeWebhookHandler, *stubBookingStore, *stubSubscriptionStore) {
	bookings := &stubBookingStore{booking: db.Booking{Code: "AB12CD34", Status: service.BookingPending}}
	subs := &stubSubscriptionStore{}
	bookingSvc := service.NewBookingService(bookings, nil, nil, nil)
	subscriptionSvc := service.NewSubscriptionService(subs, nil, nil)
	return NewStripeWebhookHandler("whsec_test", bookingSvc, subscriptionSvc), bookings, subs
}

func TestCheckoutCompletedRoutesBookingKind(t *testing.T) {
	h, bookings, subs := newRoutingHandler()
	r := httptest.NewRequest("POST", "/webhooks/stripe", nil)

	sess := &stripe.CheckoutSession{
		ID:       "cs_1",
		Metadata: map[string]string{service.MetaKind: service.KindBooking, service.MetaBookingCode: "AB12CD34"},
	}
	require.NoError(t, h.handleCheckoutCompleted(r, sess))
	assert.Equal(t, "cs_1", bookings.confirmedSession)
	assert.Zero(t, subs.activatedProfile)
}

func TestCheckoutCompletedRoutesSubscriptionKind(t *testing.T) {
	h, bookings, subs := newRoutingHandler()
	r := httptest.NewRequest("POST", "/webhooks/stripe", nil)

	sess := &stripe.CheckoutSession{
		ID:           "cs_2",
		Metadata:     map[string]string{service.MetaKind: service.KindSubscription, service.MetaProfileID: "7"},
		Subscription: &stripe.Subscription{ID: "S1"},
		Customer:     &stripe.Customer{ID: "C1"},
	}
	require.NoError(t, h.handleCheckoutCompleted(r, sess))
	assert.Equal(t, 7, subs.activatedProfile)
	assert.Equal(t, "S1", subs.activatedSub)
	assert.Equal(t, "C1", subs.activatedCust)
	assert.Empty(t, bookings.confirmedSession)
}

func TestCheckoutCompletedIgnoresUnknownKind(t *testing.T) {
	h, bookings, subs := newRoutingHandler()
	r := httptest.NewRequest("POST", "/webhooks/stripe", nil)

	sess := &stripe.CheckoutSession{ID: "cs_3", Metadata: map[string]string{service.MetaKind: "donation"}}
	require.NoError(t, h.handleCheckoutCompleted(r, sess))
	assert.Empty(t, bookings.confirmedSession)
	assert.Zero(t, subs.activatedProfile)
}

func TestCheckoutCompletedBadProfileIDIsIgnored(t *testing.T) {
	h, _, subs := newRoutingHandler()
	r := httptest.NewRequest("POST", "/webhooks/stripe", nil)

	sess := &stripe.CheckoutSession{
		ID:           "cs_4",
		Metadata:     map[string]string{service.MetaKind: service.KindSubscription, service.MetaProfileID: "not-a-number"},
		Subscription: &stripe.Subscription{ID: "S1"},
	}
	require.NoError(t, h.handleCheckoutCompleted(r, sess))
	assert.Zero(t, subs.activatedProfile)
}
