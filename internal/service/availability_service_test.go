package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httperrors "github.com/samueljjenkins/servicehomie-sub001/internal/errors"
	"github.com/samueljjenkins/servicehomie-sub001/internal/schedule"
)

func seededWeekly() schedule.Weekly {
	w := schedule.DefaultWeekly()
	w[time.Monday] = []schedule.TimeWindow{{Start: schedule.DefaultStart, End: schedule.DefaultEnd}}
	return w
}

func TestAvailabilityMutatePersists(t *testing.T) {
	store := &fakeWeeklyStore{weekly: seededWeekly()}
	svc := NewAvailabilityService(store)
	ctx := context.Background()

	weekly, err := svc.UpdateWindow(ctx, "acme", time.Monday, 0, "end", "12:00")
	require.NoError(t, err)
	assert.Equal(t, "12:00", weekly[time.Monday][0].End)
	assert.Equal(t, "12:00", store.weekly[time.Monday][0].End)
}

func TestAvailabilityMutateRejectedLeavesStoreUntouched(t *testing.T) {
	store := &fakeWeeklyStore{weekly: seededWeekly()}
	svc := NewAvailabilityService(store)
	ctx := context.Background()

	_, err := svc.UpdateWindow(ctx, "acme", time.Monday, 0, "end", "08:00")
	var httpErr *httperrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)
	assert.Equal(t, "window", httpErr.Field)
	assert.Equal(t, schedule.DefaultEnd, store.weekly[time.Monday][0].End)
}

func TestAvailabilityToggleDayRoundTrip(t *testing.T) {
	store := &fakeWeeklyStore{weekly: seededWeekly()}
	svc := NewAvailabilityService(store)
	ctx := context.Background()

	weekly, err := svc.ToggleDay(ctx, "acme", time.Sunday)
	require.NoError(t, err)
	assert.Len(t, weekly[time.Sunday], 1)

	weekly, err = svc.ToggleDay(ctx, "acme", time.Sunday)
	require.NoError(t, err)
	assert.Empty(t, weekly[time.Sunday])
}

func TestAvailabilityRemoveOutOfRange(t *testing.T) {
	svc := NewAvailabilityService(&fakeWeeklyStore{weekly: seededWeekly()})

	_, err := svc.RemoveWindow(context.Background(), "acme", time.Monday, 5)
	var httpErr *httperrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)
}
