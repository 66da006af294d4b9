package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	httperrors "github.com/samueljjenkins/servicehomie-sub001/internal/errors"
	"github.com/samueljjenkins/servicehomie-sub001/internal/repository"
	"github.com/samueljjenkins/servicehomie-sub001/internal/schedule"
)

// AvailabilityService owns a tenant's weekly schedule: load it, run the pure
// schedule mutations against it, and persist the result as a whole.
type AvailabilityService struct {
	Store repository.AvailabilityStore
}

func NewAvailabilityService(store repository.AvailabilityStore) *AvailabilityService {
	return &AvailabilityService{Store: store}
}

func (s *AvailabilityService) Get(ctx context.Context, tenantID string) (schedule.Weekly, error) {
	return s.Store.Load(ctx, tenantID)
}

func (s *AvailabilityService) UpdateWindow(ctx context.Context, tenantID string, day time.Weekday, index int, field, value string) (schedule.Weekly, error) {
	return s.mutate(ctx, tenantID, func(w schedule.Weekly) (schedule.Weekly, error) {
		return schedule.UpdateWindow(w, day, index, field, value)
	})
}

func (s *AvailabilityService) AddWindow(ctx context.Context, tenantID string, day time.Weekday) (schedule.Weekly, error) {
	return s.mutate(ctx, tenantID, func(w schedule.Weekly) (schedule.Weekly, error) {
		return schedule.AddWindow(w, day)
	})
}

func (s *AvailabilityService) RemoveWindow(ctx context.Context, tenantID string, day time.Weekday, index int) (schedule.Weekly, error) {
	return s.mutate(ctx, tenantID, func(w schedule.Weekly) (schedule.Weekly, error) {
		return schedule.RemoveWindow(w, day, index)
	})
}

func (s *AvailabilityService) ToggleDay(ctx context.Context, tenantID string, day time.Weekday) (schedule.Weekly, error) {
	return s.mutate(ctx, tenantID, func(w schedule.Weekly) (schedule.Weekly, error) {
		return schedule.ToggleDay(w, day), nil
	})
}

// mutate is load-modify-save. A failed load or mutation leaves stored state
// untouched; the save itself is a full replace (last write wins).
func (s *AvailabilityService) mutate(ctx context.Context, tenantID string, fn func(schedule.Weekly) (schedule.Weekly, error)) (schedule.Weekly, error) {
	weekly, err := s.Store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	updated, err := fn(weekly)
	if err != nil {
		return nil, scheduleError(err)
	}
	if err := s.Store.Save(ctx, tenantID, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// scheduleError converts the schedule package's sentinel errors into the
// HTTP taxonomy so handlers can pass them straight through.
func scheduleError(err error) error {
	switch {
	case errors.Is(err, schedule.ErrBadClock),
		errors.Is(err, schedule.ErrWindowInverted),
		errors.Is(err, schedule.ErrWindowOverlap),
		errors.Is(err, schedule.ErrUnknownField):
		return httperrors.Validation("window", err.Error())
	case errors.Is(err, schedule.ErrWindowOutOfRange):
		return httperrors.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
