package availability

import "time"

type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps applies the half-open test: [start,end) overlaps [iv.Start,iv.End)
// iff start < iv.End && iv.Start < end.
func (iv Interval) Overlaps(start, end time.Time) bool {
	return start.Before(iv.End) && iv.Start.Before(end)
}

// Slots enumerates bookable start times on a fixed grid: candidates are
// windowStart, windowStart+step, ... and a candidate [t, t+duration) is
// emitted unless it overlaps the break window or any busy interval.
//
// The grid advances by step regardless of accept/reject, so when step is
// smaller than duration the offered starts may overlap each other; that is
// the wire contract, not a bug. Busy intervals are tested one by one and do
// not need to be merged first.
func Slots(windowStart, windowEnd time.Time, brk *Interval, duration, step time.Duration, busy []Interval) []time.Time {
	if duration <= 0 || step <= 0 {
		return nil
	}
	if !windowEnd.After(windowStart) {
		return nil
	}

	var slots []time.Time
	for t := windowStart; !t.Add(duration).After(windowEnd); t = t.Add(step) {
		end := t.Add(duration)
		if brk != nil && brk.Overlaps(t, end) {
			continue
		}
		if overlapsAny(t, end, busy) {
			continue
		}
		slots = append(slots, t)
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
