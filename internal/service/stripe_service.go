package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"
)

// Checkout session metadata keys. The webhook handler routes on Kind.
const (
	MetaKind         = "kind"
	KindSubscription = "subscription"
	KindBooking      = "booking"
	MetaProfileID    = "technician_profile_id"
	MetaBookingCode  = "booking_code"
)

// stripeTimeout bounds every provider call so a hung Stripe request cannot
// block the handler indefinitely.
const stripeTimeout = 5 * time.Second

type StripeService struct {
	SiteURL             string
	SubscriptionPriceID string
	CheckoutRedirectURL string
}

func NewStripeService(siteURL, subscriptionPriceID, checkoutRedirectURL string) *StripeService {
	return &StripeService{
		SiteURL:             siteURL,
		SubscriptionPriceID: subscriptionPriceID,
		CheckoutRedirectURL: checkoutRedirectURL,
	}
}

func (s *StripeService) redirectBase() string {
	if s.CheckoutRedirectURL != "" {
		return s.CheckoutRedirectURL
	}
	return s.SiteURL
}

// CreateSubscriptionCheckout opens a subscription-mode checkout session for
// the technician plan.
func (s *StripeService) CreateSubscriptionCheckout(ctx context.Context, email string, profileID int) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, stripeTimeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: callCtx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.SubscriptionPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(s.redirectBase() + "/technician-dashboard?checkout=success"),
		CancelURL:     stripe.String(s.redirectBase() + "/technician-dashboard?checkout=cancelled"),
		CustomerEmail: stripe.String(email),
	}
	params.AddMetadata(MetaKind, KindSubscription)
	params.AddMetadata(MetaProfileID, strconv.Itoa(profileID))

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// CreateBookingCheckout opens a payment-mode checkout for one booking.
func (s *StripeService) CreateBookingCheckout(ctx context.Context, email, bookingCode, serviceName string, amount int64) (string, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, stripeTimeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: callCtx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(serviceName),
					},
					UnitAmount: stripe.Int64(amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(s.redirectBase() + "/booking/confirmation?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(s.redirectBase() + "/booking/failed?session_id={CHECKOUT_SESSION_ID}"),
		CustomerEmail: stripe.String(email),
	}
	params.AddMetadata(MetaKind, KindBooking)
	params.AddMetadata(MetaBookingCode, bookingCode)

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.URL, sess.ID, nil
}

func (s *StripeService) ListActiveSubscriptions(ctx context.Context, customerID string) ([]ProviderSubscription, error) {
	callCtx, cancel := context.WithTimeout(ctx, stripeTimeout)
	defer cancel()

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = callCtx
	params.Limit = stripe.Int64(10)

	var subs []ProviderSubscription
	it := subscription.List(params)
	for it.Next() {
		sub := it.Subscription()
		item := ProviderSubscription{ID: sub.ID, Status: string(sub.Status)}
		if sub.Customer != nil {
			item.CustomerID = sub.Customer.ID
		}
		subs = append(subs, item)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// FindCustomerByEmail returns the first matching customer id, or "" when the
// provider has never seen the email.
func (s *StripeService) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, stripeTimeout)
	defer cancel()

	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = callCtx
	params.Limit = stripe.Int64(1)

	it := customer.List(params)
	for it.Next() {
		return it.Customer().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", err
	}
	return "", nil
}

func (s *StripeService) CancelAtPeriodEnd(ctx context.Context, subID string) error {
	callCtx, cancel := context.WithTimeout(ctx, stripeTimeout)
	defer cancel()

	params := &stripe.SubscriptionParams{
		Params:            stripe.Params{Context: callCtx},
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	if _, err := subscription.Update(subID, params); err != nil {
		return fmt.Errorf("error scheduling cancellation for subscription %s: %w", subID, err)
	}
	return nil
}

func (s *StripeService) BillingPortalURL(ctx context.Context, customerID string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, stripeTimeout)
	defer cancel()

	params := &stripe.BillingPortalSessionParams{
		Params:    stripe.Params{Context: callCtx},
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.redirectBase() + "/technician-dashboard"),
	}
	sess, err := portalsession.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}
