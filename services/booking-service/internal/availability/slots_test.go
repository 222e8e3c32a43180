package availability

import (
	"testing"
	"time"
)

func day(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
}

func hhmm(slots []time.Time) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Format("15:04"))
	}
	return out
}

func assertSlots(t *testing.T, got []time.Time, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d slots %v, got %d %v", len(want), want, len(got), hhmm(got))
	}
	for i, w := range want {
		if got[i].Format("15:04") != w {
			t.Fatalf("slot %d: expected %s, got %s", i, w, got[i].Format("15:04"))
		}
	}
}

func TestSlots_MorningShiftNoOccupancy(t *testing.T) {
	d := day(t)
	got := Slots(d.Add(8*time.Hour), d.Add(12*time.Hour), nil, time.Hour, time.Hour, nil)
	assertSlots(t, got, "08:00", "09:00", "10:00", "11:00")
}

func TestSlots_BreakExcludesOverlappingStartOnly(t *testing.T) {
	d := day(t)
	brk := &Interval{Start: d.Add(10 * time.Hour), End: d.Add(10*time.Hour + 30*time.Minute)}
	got := Slots(d.Add(8*time.Hour), d.Add(12*time.Hour), brk, time.Hour, time.Hour, nil)
	// [10:00,11:00) touches the break; [11:00,12:00) does not.
	assertSlots(t, got, "08:00", "09:00", "11:00")
}

func TestSlots_OccupiedIntervalExcluded(t *testing.T) {
	d := day(t)
	busy := []Interval{{Start: d.Add(9 * time.Hour), End: d.Add(10 * time.Hour)}}
	got := Slots(d.Add(8*time.Hour), d.Add(12*time.Hour), nil, time.Hour, time.Hour, busy)
	assertSlots(t, got, "08:00", "10:00", "11:00")
}

func TestSlots_CountFormula(t *testing.T) {
	d := day(t)
	cases := []struct {
		windowHours int
		duration    time.Duration
		step        time.Duration
	}{
		{8, 60 * time.Minute, 60 * time.Minute},
		{8, 45 * time.Minute, 30 * time.Minute},
		{4, 90 * time.Minute, 60 * time.Minute},
		{6, 30 * time.Minute, 15 * time.Minute},
	}
	for _, c := range cases {
		start := d.Add(8 * time.Hour)
		end := start.Add(time.Duration(c.windowHours) * time.Hour)
		got := Slots(start, end, nil, c.duration, c.step, nil)
		window := end.Sub(start)
		want := int((window-c.duration)/c.step) + 1
		if len(got) != want {
			t.Fatalf("window=%dh D=%s G=%s: expected %d slots, got %d",
				c.windowHours, c.duration, c.step, want, len(got))
		}
	}
}

func TestSlots_ZeroLengthWindow(t *testing.T) {
	d := day(t)
	if got := Slots(d.Add(8*time.Hour), d.Add(8*time.Hour), nil, time.Hour, time.Hour, nil); got != nil {
		t.Fatalf("expected no slots for zero-length window, got %v", hhmm(got))
	}
}

func TestSlots_DurationLongerThanWindow(t *testing.T) {
	d := day(t)
	if got := Slots(d.Add(8*time.Hour), d.Add(9*time.Hour), nil, 2*time.Hour, time.Hour, nil); got != nil {
		t.Fatalf("expected no slots, got %v", hhmm(got))
	}
}

func TestSlots_StepSmallerThanDurationOverlap(t *testing.T) {
	d := day(t)
	got := Slots(d.Add(8*time.Hour), d.Add(10*time.Hour), nil, 90*time.Minute, 30*time.Minute, nil)
	// Offered starts overlap each other when the grid is finer than the
	// duration; that is intended.
	assertSlots(t, got, "08:00", "08:30")
}

func TestIntervalOverlaps_HalfOpen(t *testing.T) {
	d := day(t)
	iv := Interval{Start: d.Add(9 * time.Hour), End: d.Add(10 * time.Hour)}

	if iv.Overlaps(d.Add(10*time.Hour), d.Add(11*time.Hour)) {
		t.Fatal("back-to-back intervals must not overlap")
	}
	if iv.Overlaps(d.Add(8*time.Hour), d.Add(9*time.Hour)) {
		t.Fatal("interval ending at busy start must not overlap")
	}
	if !iv.Overlaps(d.Add(9*time.Hour+30*time.Minute), d.Add(10*time.Hour+30*time.Minute)) {
		t.Fatal("straddling interval must overlap")
	}
}
