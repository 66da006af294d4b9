package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samueljjenkins/servicehomie-sub001/internal/db"
	"github.com/samueljjenkins/servicehomie-sub001/internal/schedule"
)

func TestFoldRules(t *testing.T) {
	rules := []db.AvailabilityRule{
		{TenantID: "acme", DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
		{TenantID: "acme", DayOfWeek: 1, StartTime: "13:00", EndTime: "17:00"},
		{TenantID: "acme", DayOfWeek: 5, StartTime: "10:00", EndTime: "14:00"},
		{TenantID: "acme", DayOfWeek: 9, StartTime: "10:00", EndTime: "14:00"}, // garbage day dropped
	}

	weekly := FoldRules(rules)
	require.Len(t, weekly, 7)
	assert.Len(t, weekly[time.Monday], 2)
	assert.Len(t, weekly[time.Friday], 1)
	assert.Empty(t, weekly[time.Sunday])
	assert.Equal(t, schedule.TimeWindow{Start: "09:00", End: "12:00"}, weekly[time.Monday][0])
}

func TestFlattenWeekly(t *testing.T) {
	weekly := schedule.DefaultWeekly()
	weekly[time.Monday] = []schedule.TimeWindow{
		{Start: "09:00", End: "12:00"},
		{Start: "13:00", End: "17:00"},
	}
	weekly[time.Saturday] = []schedule.TimeWindow{{Start: "10:00", End: "14:00"}}

	rules := FlattenWeekly("acme", weekly)
	require.Len(t, rules, 3)
	assert.Equal(t, db.AvailabilityRule{TenantID: "acme", DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"}, rules[0])
	assert.Equal(t, 6, rules[2].DayOfWeek)
}

func TestFoldFlattenRoundTrip(t *testing.T) {
	weekly := schedule.DefaultWeekly()
	weekly[time.Tuesday] = []schedule.TimeWindow{{Start: "08:30", End: "11:00"}}
	weekly[time.Thursday] = []schedule.TimeWindow{
		{Start: "09:00", End: "12:00"},
		{Start: "14:00", End: "18:00"},
	}

	assert.Equal(t, weekly, FoldRules(FlattenWeekly("acme", weekly)))
}
