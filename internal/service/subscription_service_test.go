package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
)

type fakeSubscriptionStore struct {
	byProfile map[int]*db.TechnicianSubscription
	nextID    int
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{byProfile: map[int]*db.TechnicianSubscription{}, nextID: 1}
}

func (s *fakeSubscriptionStore) GetByProfileID(_ context.Context, profileID int) (*db.TechnicianSubscription, error) {
	sub, ok := s.byProfile[profileID]
	if !ok {
		return nil, repository.ErrSubscriptionNotFound
	}
	copied := *sub
	return &copied, nil
}

func (s *fakeSubscriptionStore) GetByStripeSubscriptionID(_ context.Context, subID string) (*db.TechnicianSubscription, error) {
	for _, sub := range s.byProfile {
		if sub.StripeSubscriptionID == subID && subID != "" {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, repository.ErrSubscriptionNotFound
}

func (s *fakeSubscriptionStore) EnsureForProfile(_ context.Context, profileID int) error {
	if _, ok := s.byProfile[profileID]; !ok {
		s.byProfile[profileID] = &db.TechnicianSubscription{
			ID:                  s.nextID,
			TechnicianProfileID: profileID,
			Status:              string(StatusNone),
		}
		s.nextID++
	}
	return nil
}

func (s *fakeSubscriptionStore) SetStatus(_ context.Context, profileID int, status string) error {
	s.byProfile[profileID].Status = status
	return nil
}

func (s *fakeSubscriptionStore) SetStatusByID(_ context.Context, id int, status string) error {
	for _, sub := range s.byProfile {
		if sub.ID == id {
			sub.Status = status
		}
	}
	return nil
}

func (s *fakeSubscriptionStore) Activate(_ context.Context, profileID int, subID, customerID string, startDate time.Time) error {
	sub := s.byProfile[profileID]
	sub.Status = string(StatusActive)
	sub.StripeSubscriptionID = subID
	sub.StripeCustomerID = customerID
	sub.StartDate = &startDate
	sub.EndDate = nil
	return nil
}

func (s *fakeSubscriptionStore) Cancel(_ context.Context, id int, endDate time.Time) error {
	for _, sub := range s.byProfile {
		if sub.ID == id {
			sub.Status = string(StatusCancelled)
			sub.EndDate = &endDate
		}
	}
	return nil
}

func (s *fakeSubscriptionStore) ListProfileIDsForReconciliation(_ context.Context) ([]int, error) {
	var ids []int
	for id, sub := range s.byProfile {
		switch Status(sub.Status) {
		case StatusNone, StatusPending, StatusPastDue:
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeProfileStore map[int]*db.TechnicianProfile

func (s fakeProfileStore) GetByID(_ context.Context, id int) (*db.TechnicianProfile, error) {
	p, ok := s[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return p, nil
}

type fakeProvider struct {
	checkoutURL     string
	customersByMail map[string]string
	activeSubs      map[string][]ProviderSubscription
	cancelled       []string
}

func (p *fakeProvider) CreateSubscriptionCheckout(context.Context, string, int) (string, error) {
	return p.checkoutURL, nil
}

func (p *fakeProvider) ListActiveSubscriptions(_ context.Context, customerID string) ([]ProviderSubscription, error) {
	return p.activeSubs[customerID], nil
}

func (p *fakeProvider) FindCustomerByEmail(_ context.Context, email string) (string, error) {
	return p.customersByMail[email], nil
}

func (p *fakeProvider) CancelAtPeriodEnd(_ context.Context, subID string) error {
	p.cancelled = append(p.cancelled, subID)
	return nil
}

func (p *fakeProvider) BillingPortalURL(context.Context, string) (string, error) {
	return "https://billing.example/portal", nil
}

func newTestSubscriptionService() (*SubscriptionService, *fakeSubscriptionStore, *fakeProvider) {
	store := newFakeSubscriptionStore()
	provider := &fakeProvider{
		checkoutURL:     "https://checkout.example/session",
		customersByMail: map[string]string{},
		activeSubs:      map[string][]ProviderSubscription{},
	}
	profiles := fakeProfileStore{
		1: {ID: 1, TenantID: "acme", UserID: "user_1", Email: "tech@acme.test"},
	}
	return NewSubscriptionService(store, profiles, provider), store, provider
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusActive, NormalizeStatus("active"))
	assert.Equal(t, StatusPastDue, NormalizeStatus("past_due"))
	assert.Equal(t, StatusCancelled, NormalizeStatus("canceled"))
	assert.Equal(t, StatusCancelled, NormalizeStatus("cancelled"))
	assert.Equal(t, StatusPending, NormalizeStatus("trialing"))
	assert.Equal(t, StatusUnknown, NormalizeStatus("paused_by_moon_phase"))
	assert.False(t, NormalizeStatus("paused_by_moon_phase").Known())
}

func TestCheckoutCompletedActivatesFromNone(t *testing.T) {
	svc, store, _ := newTestSubscriptionService()
	ctx := context.Background()
	require.NoError(t, store.EnsureForProfile(ctx, 1))

	require.NoError(t, svc.ApplyCheckoutCompleted(ctx, 1, "S1", "C1"))

	sub := store.byProfile[1]
	assert.Equal(t, string(StatusActive), sub.Status)
	assert.Equal(t, "S1", sub.StripeSubscriptionID)
	assert.Equal(t, "C1", sub.StripeCustomerID)
	require.NotNil(t, sub.StartDate)
}

func TestCheckoutCompletedWithoutSubscriptionIDFails(t *testing.T) {
	svc, _, _ := newTestSubscriptionService()
	assert.Error(t, svc.ApplyCheckoutCompleted(context.Background(), 1, "", "C1"))
}

func TestSubscriptionUpdatedMirrorsProviderStatus(t *testing.T) {
	svc, store, _ := newTestSubscriptionService()
	ctx := context.Background()
	require.NoError(t, store.EnsureForProfile(ctx, 1))
	require.NoError(t, svc.ApplyCheckoutCompleted(ctx, 1, "S1", "C1"))

	require.NoError(t, svc.ApplySubscriptionUpdated(ctx, "S1", "past_due"))
	assert.Equal(t, string(StatusPastDue), store.byProfile[1].Status)

	// unknown statuses are stored as unknown, not verbatim
	require.NoError(t, svc.ApplySubscriptionUpdated(ctx, "S1", "something_new"))
	assert.Equal(t, string(StatusUnknown), store.byProfile[1].Status)
}

func TestSubscriptionUpdatedUnknownRecordIsNoop(t *testing.T) {
	svc, _, _ := newTestSubscriptionService()
	assert.NoError(t, svc.ApplySubscriptionUpdated(context.Background(), "S404", "active"))
}

func TestSubscriptionDeletedCancels(t *testing.T) {
	svc, store, _ := newTestSubscriptionService()
	ctx := context.Background()
	require.NoError(t, store.EnsureForProfile(ctx, 1))
	require.NoError(t, svc.ApplyCheckoutCompleted(ctx, 1, "S1", "C1"))

	require.NoError(t, svc.ApplySubscriptionDeleted(ctx, "S1"))
	sub := store.byProfile[1]
	assert.Equal(t, string(StatusCancelled), sub.Status)
	require.NotNil(t, sub.EndDate)
}

func TestSubscriptionDeletedUnknownRecordIsNoop(t *testing.T) {
	svc, store, _ := newTestSubscriptionService()
	ctx := context.Background()
	require.NoError(t, store.EnsureForProfile(ctx, 1))

	require.NoError(t, svc.ApplySubscriptionDeleted(ctx, "S404"))
	assert.Equal(t, string(StatusNone), store.byProfile[1].Status)
}

func TestHasAccess(t *testing.T) {
	svc, store, _ := newTestSubscriptionService()
	ctx := context.Background()

	// no record at all
	got, err := svc.HasAccess(ctx, 1)
	require.NoError(t, err)
	assert.False(t, got)

	require.NoError(t, store.EnsureForProfile(ctx, 1))
	got, err = svc.HasAccess(ctx, 1)
	require.NoError(t, err)
	assert.False(t, got)

	// active but with no subscription id must not grant access
	store.byProfile[1].Status = string(StatusActive)
	got, err = svc.HasAccess(ctx, 1)
	require.NoError(t, err)
	assert.False(t, got)

	require.NoError(t, svc.ApplyCheckoutCompleted(ctx, 1, "S1", "C1"))
	got, err = svc.HasAccess(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestReconcileByStoredCustomerID(t *testing.T) {
	svc, store, provider := newTestSubscriptionService()
	ctx := context.Background()
	require.NoError(t, store.EnsureForProfile(ctx, 1))
	store.byProfile[1].StripeCustomerID = "C1"
	provider.activeSubs["C1"] = []ProviderSubscription{{ID: "S9", CustomerID: "C1", Status: "active"}}

	active, err := svc.Reconcile(ctx, 1)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, string(StatusActive), store.byProfile[1].Status)
	assert.Equal(t, "S9", store.byProfile[1].StripeSubscriptionID)
}

func TestReconcileFallsBackToEmailLookup(t *testing.T) {
	svc, store, provider := newTestSubscriptionService()
	ctx := context.Background()
	require.NoError(t, store.EnsureForProfile(ctx, 1))
	provider.customersByMail["tech@acme.test"] = "C7"
	provider.activeSubs["C7"] = []ProviderSubscription{{ID: "S7", CustomerID: "C7", Status: "active"}}

	active, err := svc.Reconcile(ctx, 1)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, "C7", store.byProfile[1].StripeCustomerID)
}

func TestReconcileNoCustomerKeepsGateClosed(t *testing.T) {
	svc, store, _ := newTestSubscriptionService()
	ctx := context.Background()
	require.NoError(t, store.EnsureForProfile(ctx, 1))

	active, err := svc.Reconcile(ctx, 1)
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, string(StatusNone), store.byProfile[1].Status)
}

func TestCancelAtPeriodEndLeavesLocalActive(t *testing.T) {
	svc, store, provider := newTestSubscriptionService()
	ctx := context.Background()
	require.NoError(t, store.EnsureForProfile(ctx, 1))
	require.NoError(t, svc.ApplyCheckoutCompleted(ctx, 1, "S1", "C1"))

	require.NoError(t, svc.CancelAtPeriodEnd(ctx, 1))
	assert.Equal(t, []string{"S1"}, provider.cancelled)
	// stays active until the deletion webhook arrives
	assert.Equal(t, string(StatusActive), store.byProfile[1].Status)
}

func TestStartCheckoutMarksPending(t *testing.T) {
	svc, store, _ := newTestSubscriptionService()
	url, err := svc.StartCheckout(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/session", url)
	assert.Equal(t, string(StatusPending), store.byProfile[1].Status)
}
