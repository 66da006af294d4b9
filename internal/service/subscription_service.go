package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
	"github.com/samueljjenkins/servicehomie-sub001/internal/entities"
	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
)

// SubscriptionStore is the persistence surface the entitlement state machine
// runs against.
type SubscriptionStore interface {
	GetByProfileID(ctx context.Context, profileID int) (*db.TechnicianSubscription, error)
	GetByStripeSubscriptionID(ctx context.Context, subID string) (*db.TechnicianSubscription, error)
	EnsureForProfile(ctx context.Context, profileID int) error
	SetStatus(ctx context.Context, profileID int, status string) error
	SetStatusByID(ctx context.Context, id int, status string) error
	Activate(ctx context.Context, profileID int, subID, customerID string, startDate time.Time) error
	Cancel(ctx context.Context, id int, endDate time.Time) error
	ListProfileIDsForReconciliation(ctx context.Context) ([]int, error)
}

type ProfileStore interface {
	GetByID(ctx context.Context, id int) (*db.TechnicianProfile, error)
}

// ProviderSubscription is the slice of the payment provider's subscription
// object the state machine cares about.
type ProviderSubscription struct {
	ID         string
	CustomerID string
	Status     string
}

// PaymentProvider abstracts the Stripe calls the subscription flow needs.
type PaymentProvider interface {
	CreateSubscriptionCheckout(ctx context.Context, email string, profileID int) (url string, err error)
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]ProviderSubscription, error)
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
	CancelAtPeriodEnd(ctx context.Context, subID string) error
	BillingPortalURL(ctx context.Context, customerID string) (string, error)
}

type SubscriptionService struct {
	Subs     SubscriptionStore
	Profiles ProfileStore
	Provider PaymentProvider
}

func NewSubscriptionService(subs SubscriptionStore, profiles ProfileStore, provider PaymentProvider) *SubscriptionService {
	return &SubscriptionService{Subs: subs, Profiles: profiles, Provider: provider}
}

// StartCheckout opens a subscription-mode checkout for the technician and
// marks the local record pending until the completion webhook lands.
func (s *SubscriptionService) StartCheckout(ctx context.Context, profileID int) (string, error) {
	profile, err := s.Profiles.GetByID(ctx, profileID)
	if err != nil {
		return "", err
	}
	url, err := s.Provider.CreateSubscriptionCheckout(ctx, profile.Email, profileID)
	if err != nil {
		return "", fmt.Errorf("error creating subscription checkout: %w", err)
	}
	if err := s.Subs.EnsureForProfile(ctx, profileID); err != nil {
		return "", err
	}
	if err := s.Subs.SetStatus(ctx, profileID, string(StatusPending)); err != nil {
		return "", err
	}
	return url, nil
}

// ApplyCheckoutCompleted handles the checkout.session.completed webhook for
// a subscription checkout: the record becomes active with the provider's
// identifiers backfilled. Idempotent, so redelivery is safe.
func (s *SubscriptionService) ApplyCheckoutCompleted(ctx context.Context, profileID int, subID, customerID string) error {
	if subID == "" {
		return fmt.Errorf("checkout completed without a subscription id for profile %d", profileID)
	}
	if err := s.Subs.EnsureForProfile(ctx, profileID); err != nil {
		return err
	}
	return s.Subs.Activate(ctx, profileID, subID, customerID, time.Now().UTC())
}

// ApplySubscriptionUpdated mirrors the provider's reported status onto the
// local record. Unknown records and unknown statuses are logged, not errors:
// the provider's retry policy should not hammer us over rows we never had.
func (s *SubscriptionService) ApplySubscriptionUpdated(ctx context.Context, subID, rawStatus string) error {
	sub, err := s.Subs.GetByStripeSubscriptionID(ctx, subID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			log.Printf("subscription.updated for unknown subscription %s, ignoring", subID)
			return nil
		}
		return err
	}
	status := NormalizeStatus(rawStatus)
	if !status.Known() {
		log.Printf("subscription %s reported unrecognized status %q", subID, rawStatus)
	}
	if status == StatusCancelled {
		return s.Subs.Cancel(ctx, sub.ID, time.Now().UTC())
	}
	return s.Subs.SetStatusByID(ctx, sub.ID, string(status))
}

// ApplySubscriptionDeleted handles customer.subscription.deleted. A missing
// local record is a no-op.
func (s *SubscriptionService) ApplySubscriptionDeleted(ctx context.Context, subID string) error {
	sub, err := s.Subs.GetByStripeSubscriptionID(ctx, subID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil
		}
		return err
	}
	return s.Subs.Cancel(ctx, sub.ID, time.Now().UTC())
}

// Reconcile self-heals local state against the provider after possibly
// missed webhooks: find the customer (stored id first, then email lookup),
// and if any active subscription exists, force the local record active with
// identifiers backfilled. Returns whether the profile ended up active.
func (s *SubscriptionService) Reconcile(ctx context.Context, profileID int) (bool, error) {
	sub, err := s.Subs.GetByProfileID(ctx, profileID)
	if err != nil {
		return false, err
	}

	customerID := sub.StripeCustomerID
	if customerID == "" {
		profile, err := s.Profiles.GetByID(ctx, profileID)
		if err != nil {
			return false, err
		}
		customerID, err = s.Provider.FindCustomerByEmail(ctx, profile.Email)
		if err != nil {
			return false, fmt.Errorf("error looking up customer by email: %w", err)
		}
		if customerID == "" {
			return false, nil
		}
	}

	active, err := s.Provider.ListActiveSubscriptions(ctx, customerID)
	if err != nil {
		return false, fmt.Errorf("error listing subscriptions for customer %s: %w", customerID, err)
	}
	if len(active) == 0 {
		return false, nil
	}
	if err := s.Subs.Activate(ctx, profileID, active[0].ID, customerID, time.Now().UTC()); err != nil {
		return false, err
	}
	log.Printf("reconciliation activated profile %d from subscription %s", profileID, active[0].ID)
	return true, nil
}

// HasAccess is the dashboard gate: active status and a non-empty provider
// subscription id.
func (s *SubscriptionService) HasAccess(ctx context.Context, profileID int) (bool, error) {
	sub, err := s.Subs.GetByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return false, nil
		}
		return false, err
	}
	return Status(sub.Status) == StatusActive && sub.StripeSubscriptionID != "", nil
}

// CancelAtPeriodEnd asks the provider to stop renewing. The local record
// stays active; the deletion webhook flips it to cancelled when the billing
// period actually ends.
func (s *SubscriptionService) CancelAtPeriodEnd(ctx context.Context, profileID int) error {
	sub, err := s.Subs.GetByProfileID(ctx, profileID)
	if err != nil {
		return err
	}
	if sub.StripeSubscriptionID == "" {
		return fmt.Errorf("profile %d has no subscription to cancel", profileID)
	}
	return s.Provider.CancelAtPeriodEnd(ctx, sub.StripeSubscriptionID)
}

func (s *SubscriptionService) BillingPortalURL(ctx context.Context, profileID int) (string, error) {
	sub, err := s.Subs.GetByProfileID(ctx, profileID)
	if err != nil {
		return "", err
	}
	if sub.StripeCustomerID == "" {
		return "", fmt.Errorf("profile %d has no billing customer", profileID)
	}
	return s.Provider.BillingPortalURL(ctx, sub.StripeCustomerID)
}

func (s *SubscriptionService) Get(ctx context.Context, profileID int) (*entities.SubscriptionResponse, error) {
	sub, err := s.Subs.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return &entities.SubscriptionResponse{
		TechnicianProfileID:  sub.TechnicianProfileID,
		Status:               sub.Status,
		StripeSubscriptionID: sub.StripeSubscriptionID,
		StripeCustomerID:     sub.StripeCustomerID,
		StartDate:            sub.StartDate,
		EndDate:              sub.EndDate,
		HasAccess:            Status(sub.Status) == StatusActive && sub.StripeSubscriptionID != "",
	}, nil
}

// ReconcileAll sweeps every possibly-stale subscription. Used by the
// nightly cron job; failures are logged per profile and do not stop the
// sweep.
func (s *SubscriptionService) ReconcileAll(ctx context.Context) error {
	ids, err := s.Subs.ListProfileIDsForReconciliation(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.Reconcile(ctx, id); err != nil {
			log.Printf("reconciliation failed for profile %d: %v", id, err)
		}
	}
	return nil
}
