package availability

import "time"

type Interval struct {
	Start time.Time
	End   time.Time
}

// Slot is a candidate viewing window annotated with whether it is free.
type Slot struct {
	Start     time.Time
	End       time.Time
	Available bool
}

// DaySlots generates consecutive back-to-back windows of the given duration
// from dayStart, stopping once a window's end would pass dayEnd. A slot is
// unavailable iff it overlaps any busy interval (half-open semantics).
//
// Pure function: no clock, no I/O. All times are expected to be in the same
// location.
func DaySlots(dayStart, dayEnd time.Time, duration time.Duration, busy []Interval) []Slot {
	if duration <= 0 || !dayEnd.After(dayStart) {
		return nil
	}

	var slots []Slot
	for start := dayStart; !start.Add(duration).After(dayEnd); start = start.Add(duration) {
		end := start.Add(duration)
		slots = append(slots, Slot{
			Start:     start,
			End:       end,
			Available: !OverlapsAny(start, end, busy),
		})
	}
	return slots
}

// OverlapsAny reports whether [start,end) intersects any busy interval.
func OverlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		// Half-open intervals: [start,end) overlaps [b.Start,b.End) iff start < b.End && b.Start < end.
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}
