package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A Monday well in the future so "now before the day" holds in every test
// that wants the full slot list.
var monday = time.Date(2030, time.June, 3, 0, 0, 0, 0, time.UTC)

var longAgo = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestNextCalendarDays(t *testing.T) {
	from := time.Date(2030, time.June, 3, 15, 42, 7, 0, time.UTC)
	days := NextCalendarDays(14, from)
	require.Len(t, days, 14)
	assert.Equal(t, monday, days[0], "first day is from's midnight")
	for i := 1; i < len(days); i++ {
		assert.Equal(t, days[i-1].AddDate(0, 0, 1), days[i])
	}
}

func TestGenerateSlotsEmptyWeekly(t *testing.T) {
	weekly := DefaultWeekly()
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		assert.Empty(t, GenerateSlots(day, weekly, SlotInterval, longAgo))
	}
}

func TestGenerateSlotsFullBusinessDay(t *testing.T) {
	weekly := DefaultWeekly()
	weekly[time.Monday] = []TimeWindow{{Start: "09:00", End: "17:00"}}

	slots := GenerateSlots(monday, weekly, SlotInterval, longAgo)
	require.Len(t, slots, 16)
	assert.Equal(t, monday.Add(9*time.Hour), slots[0])
	assert.Equal(t, monday.Add(16*time.Hour+30*time.Minute), slots[15])
	for _, s := range slots {
		assert.True(t, s.Add(SlotInterval).Before(monday.Add(17*time.Hour+time.Minute)),
			"slot %v leaves no room for a full interval", s)
	}
}

func TestGenerateSlotsWindowTooShort(t *testing.T) {
	weekly := DefaultWeekly()
	weekly[time.Monday] = []TimeWindow{{Start: "09:00", End: "09:20"}}
	assert.Empty(t, GenerateSlots(monday, weekly, SlotInterval, longAgo))
}

func TestGenerateSlotsDropsPast(t *testing.T) {
	weekly := DefaultWeekly()
	weekly[time.Monday] = []TimeWindow{{Start: "09:00", End: "17:00"}}

	now := monday.Add(12 * time.Hour) // noon on the target day
	slots := GenerateSlots(monday, weekly, SlotInterval, now)
	require.NotEmpty(t, slots)
	assert.Equal(t, monday.Add(12*time.Hour+30*time.Minute), slots[0])
	for _, s := range slots {
		assert.True(t, s.After(now))
	}
}

func TestGenerateSlotsSlotAtNowExcluded(t *testing.T) {
	weekly := DefaultWeekly()
	weekly[time.Monday] = []TimeWindow{{Start: "09:00", End: "17:00"}}

	now := monday.Add(9 * time.Hour) // exactly the first slot
	slots := GenerateSlots(monday, weekly, SlotInterval, now)
	require.NotEmpty(t, slots)
	assert.Equal(t, monday.Add(9*time.Hour+30*time.Minute), slots[0])
}

func TestGenerateSlotsMultipleWindowsOrdered(t *testing.T) {
	weekly := DefaultWeekly()
	// deliberately unsorted
	weekly[time.Monday] = []TimeWindow{
		{Start: "14:00", End: "15:00"},
		{Start: "09:00", End: "10:00"},
	}

	slots := GenerateSlots(monday, weekly, SlotInterval, longAgo)
	require.Len(t, slots, 4)
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i-1].Before(slots[i]), "slots out of order at %d", i)
	}
	assert.Equal(t, monday.Add(9*time.Hour), slots[0])
	assert.Equal(t, monday.Add(14*time.Hour+30*time.Minute), slots[3])
}

func TestGenerateSlotsEndToEnd(t *testing.T) {
	// Tenant with a Monday-only 09:00-12:00 window: Monday has six slots,
	// Tuesday none.
	weekly := DefaultWeekly()
	weekly[time.Monday] = []TimeWindow{{Start: "09:00", End: "12:00"}}

	mondaySlots := GenerateSlots(monday, weekly, SlotInterval, longAgo)
	require.Len(t, mondaySlots, 6)
	assert.Equal(t, monday.Add(9*time.Hour), mondaySlots[0])
	assert.Equal(t, monday.Add(11*time.Hour+30*time.Minute), mondaySlots[5])

	tuesday := monday.AddDate(0, 0, 1)
	assert.Empty(t, GenerateSlots(tuesday, weekly, SlotInterval, longAgo))
}
