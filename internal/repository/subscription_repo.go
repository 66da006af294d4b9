package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrProfileNotFound      = errors.New("technician profile not found")
)

type SubscriptionRepository struct {
	DB *sql.DB
}

func NewSubscriptionRepository(database *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: database}
}

const subscriptionColumns = `id, technician_profile_id, status, stripe_subscription_id, stripe_customer_id, start_date, end_date, created_at, updated_at`

func scanSubscription(row interface{ Scan(...any) error }) (*db.TechnicianSubscription, error) {
	var s db.TechnicianSubscription
	err := row.Scan(
		&s.ID, &s.TechnicianProfileID, &s.Status, &s.StripeSubscriptionID,
		&s.StripeCustomerID, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("error scanning subscription: %w", err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) GetByProfileID(ctx context.Context, profileID int) (*db.TechnicianSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM technician_subscriptions WHERE technician_profile_id = $1`
	return scanSubscription(r.DB.QueryRowContext(ctx, query, profileID))
}

func (r *SubscriptionRepository) GetByStripeSubscriptionID(ctx context.Context, subID string) (*db.TechnicianSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM technician_subscriptions WHERE stripe_subscription_id = $1`
	return scanSubscription(r.DB.QueryRowContext(ctx, query, subID))
}

// EnsureForProfile creates the implicit status=none row a profile starts
// with. Idempotent.
func (r *SubscriptionRepository) EnsureForProfile(ctx context.Context, profileID int) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO technician_subscriptions (technician_profile_id, status, created_at, updated_at)
		VALUES ($1, 'none', NOW(), NOW())
		ON CONFLICT (technician_profile_id) DO NOTHING`, profileID)
	if err != nil {
		return fmt.Errorf("error ensuring subscription row for profile %d: %w", profileID, err)
	}
	return nil
}

func (r *SubscriptionRepository) SetStatus(ctx context.Context, profileID int, status string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE technician_subscriptions SET status = $2, updated_at = NOW()
		WHERE technician_profile_id = $1`, profileID, status)
	if err != nil {
		return fmt.Errorf("error setting subscription status for profile %d: %w", profileID, err)
	}
	return nil
}

// Activate backfills the provider identifiers in the same write that flips
// the status, so the access gate invariant (active implies a subscription
// id) holds after every activation path.
func (r *SubscriptionRepository) Activate(ctx context.Context, profileID int, subID, customerID string, startDate time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE technician_subscriptions
		SET status = 'active', stripe_subscription_id = $2, stripe_customer_id = $3,
		    start_date = $4, end_date = NULL, updated_at = NOW()
		WHERE technician_profile_id = $1`, profileID, subID, customerID, startDate)
	if err != nil {
		return fmt.Errorf("error activating subscription for profile %d: %w", profileID, err)
	}
	return nil
}

func (r *SubscriptionRepository) Cancel(ctx context.Context, id int, endDate time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE technician_subscriptions SET status = 'cancelled', end_date = $2, updated_at = NOW()
		WHERE id = $1`, id, endDate)
	if err != nil {
		return fmt.Errorf("error cancelling subscription %d: %w", id, err)
	}
	return nil
}

func (r *SubscriptionRepository) SetStatusByID(ctx context.Context, id int, status string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE technician_subscriptions SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("error updating subscription %d: %w", id, err)
	}
	return nil
}

// ListProfileIDsForReconciliation returns profiles whose local state could
// be stale: anything not currently active with a known customer or email.
func (r *SubscriptionRepository) ListProfileIDsForReconciliation(ctx context.Context) ([]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT technician_profile_id FROM technician_subscriptions
		WHERE status IN ('none', 'pending', 'past_due')`)
	if err != nil {
		return nil, fmt.Errorf("error listing subscriptions for reconciliation: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning profile id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
