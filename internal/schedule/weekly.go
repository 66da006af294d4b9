package schedule

import (
	"fmt"
	"sort"
	"time"
)

// TimeWindow is one bookable stretch of a day, "HH:MM" 24-hour local time.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Weekly maps every weekday (Sunday..Saturday) to its windows. All seven keys
// are always present; an empty slice means the day is unavailable.
type Weekly map[time.Weekday][]TimeWindow

const (
	DefaultStart = "09:00"
	DefaultEnd   = "17:00"
)

var (
	ErrBadClock         = fmt.Errorf("time must be HH:MM in 24-hour format")
	ErrWindowInverted   = fmt.Errorf("window start must be before its end")
	ErrWindowOverlap    = fmt.Errorf("windows on the same day must not overlap")
	ErrWindowOutOfRange = fmt.Errorf("window index out of range")
	ErrUnknownField     = fmt.Errorf("window field must be \"start\" or \"end\"")
)

// DefaultWeekly returns a schedule with all seven days present and empty.
func DefaultWeekly() Weekly {
	w := make(Weekly, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		w[d] = []TimeWindow{}
	}
	return w
}

// Clone deep-copies the schedule. Mutating operations work on copies so the
// caller's value is never touched.
func (w Weekly) Clone() Weekly {
	out := make(Weekly, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		windows := make([]TimeWindow, len(w[d]))
		copy(windows, w[d])
		out[d] = windows
	}
	return out
}

// MinutesOfDay parses "HH:MM" into minutes since midnight.
func MinutesOfDay(clock string) (int, error) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, clock)
	}
	var hh, mm int
	if _, err := fmt.Sscanf(clock, "%02d:%02d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, clock)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, clock)
	}
	return hh*60 + mm, nil
}

// validateDay checks every window parses, runs forward, and that the set is
// overlap-free. Windows touching end-to-start ("09:00-12:00" then
// "12:00-17:00") are allowed.
func validateDay(windows []TimeWindow) error {
	type span struct{ start, end int }
	spans := make([]span, 0, len(windows))
	for _, tw := range windows {
		start, err := MinutesOfDay(tw.Start)
		if err != nil {
			return err
		}
		end, err := MinutesOfDay(tw.End)
		if err != nil {
			return err
		}
		if start >= end {
			return fmt.Errorf("%w: %s-%s", ErrWindowInverted, tw.Start, tw.End)
		}
		spans = append(spans, span{start, end})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return ErrWindowOverlap
		}
	}
	return nil
}

// sortDay orders a day's windows by start time. Unparseable windows keep
// their relative position; validateDay rejects them before they get here on
// the mutation path.
func sortDay(windows []TimeWindow) {
	sort.SliceStable(windows, func(i, j int) bool {
		a, errA := MinutesOfDay(windows[i].Start)
		b, errB := MinutesOfDay(windows[j].Start)
		if errA != nil || errB != nil {
			return false
		}
		return a < b
	})
}

// UpdateWindow replaces one field ("start" or "end") of one window and
// returns the updated schedule. The changed day is re-validated and re-sorted.
func UpdateWindow(w Weekly, day time.Weekday, index int, field, value string) (Weekly, error) {
	if index < 0 || index >= len(w[day]) {
		return nil, fmt.Errorf("%w: day %d index %d", ErrWindowOutOfRange, day, index)
	}
	out := w.Clone()
	switch field {
	case "start":
		out[day][index].Start = value
	case "end":
		out[day][index].End = value
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if err := validateDay(out[day]); err != nil {
		return nil, err
	}
	sortDay(out[day])
	return out, nil
}

// AddWindow appends the default 09:00-17:00 window to a day. Fails if the
// default would overlap an existing window.
func AddWindow(w Weekly, day time.Weekday) (Weekly, error) {
	out := w.Clone()
	out[day] = append(out[day], TimeWindow{Start: DefaultStart, End: DefaultEnd})
	if err := validateDay(out[day]); err != nil {
		return nil, err
	}
	sortDay(out[day])
	return out, nil
}

// RemoveWindow drops one window; removing the last makes the day unavailable.
func RemoveWindow(w Weekly, day time.Weekday, index int) (Weekly, error) {
	if index < 0 || index >= len(w[day]) {
		return nil, fmt.Errorf("%w: day %d index %d", ErrWindowOutOfRange, day, index)
	}
	out := w.Clone()
	out[day] = append(out[day][:index], out[day][index+1:]...)
	return out, nil
}

// ToggleDay flips a day between enabled and disabled: any windows are
// cleared, an empty day is seeded with the default window.
func ToggleDay(w Weekly, day time.Weekday) Weekly {
	out := w.Clone()
	if len(out[day]) > 0 {
		out[day] = []TimeWindow{}
	} else {
		out[day] = []TimeWindow{{Start: DefaultStart, End: DefaultEnd}}
	}
	return out
}
