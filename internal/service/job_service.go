package service

import (
	"context"
	"log"
	"time"

	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
)

// stalePendingAge is how long an unpaid booking may sit before the purge job
// removes it.
const stalePendingAge = 24 * time.Hour

type JobService struct {
	Bookings      *repository.BookingRepository
	Subscriptions *SubscriptionService
}

func NewJobService(bookings *repository.BookingRepository, subscriptions *SubscriptionService) *JobService {
	return &JobService{Bookings: bookings, Subscriptions: subscriptions}
}

// PurgeStalePendingBookings deletes bookings whose checkout was never
// completed. Runs hourly.
func (s *JobService) PurgeStalePendingBookings(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-stalePendingAge)
	deleted, err := s.Bookings.DeletePendingOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("Cron job: purged %d stale pending bookings", deleted)
	}
	return nil
}

// ReconcileSubscriptions sweeps possibly-stale subscription records against
// the payment provider. Runs nightly; webhook delivery is not guaranteed and
// the dashboard gate must self-heal.
func (s *JobService) ReconcileSubscriptions(ctx context.Context) error {
	log.Println("Cron job: reconciling technician subscriptions...")
	return s.Subscriptions.ReconcileAll(ctx)
}
