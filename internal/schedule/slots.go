package schedule

import (
	"sort"
	"time"
)

// SlotInterval is the spacing between bookable start times.
const SlotInterval = 30 * time.Minute

// NextCalendarDays returns count consecutive days starting at from's
// midnight, inclusive of from.
func NextCalendarDays(count int, from time.Time) []time.Time {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	days := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

// GenerateSlots derives concrete bookable start instants for one calendar day
// from the weekly schedule. Each window is walked from its start in interval
// steps; a slot is emitted only when a full interval still fits before the
// window's end. Slots at or before now are dropped, so today's list shrinks
// as the day goes on. Malformed windows are skipped rather than surfaced:
// the mutation boundary is where validation lives.
func GenerateSlots(day time.Time, weekly Weekly, interval time.Duration, now time.Time) []time.Time {
	windows := make([]TimeWindow, len(weekly[day.Weekday()]))
	copy(windows, weekly[day.Weekday()])
	sortDay(windows)

	step := int(interval / time.Minute)
	var slots []time.Time
	for _, tw := range windows {
		start, err := MinutesOfDay(tw.Start)
		if err != nil {
			continue
		}
		end, err := MinutesOfDay(tw.End)
		if err != nil {
			continue
		}
		for m := start; m+step <= end; m += step {
			slot := time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, day.Location())
			if !slot.After(now) {
				continue
			}
			slots = append(slots, slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	return slots
}
