package model

import "time"

// Recurrence says on which days a shift applies: every week on a fixed
// weekday, or on exactly one calendar date. The two cases are mutually
// exclusive by construction; the zero value matches nothing.
type Recurrence struct {
	weekly  bool
	weekday time.Weekday
	oneOff  time.Time
}

// Weekly returns a recurrence matching every date falling on wd.
func Weekly(wd time.Weekday) Recurrence {
	return Recurrence{weekly: true, weekday: wd}
}

// OneOff returns a recurrence matching a single calendar date.
func OneOff(date time.Time) Recurrence {
	return Recurrence{oneOff: midnight(date)}
}

func (r Recurrence) Matches(date time.Time) bool {
	if r.weekly {
		return date.Weekday() == r.weekday
	}
	if r.oneOff.IsZero() {
		return false
	}
	return midnight(date).Equal(r.oneOff)
}

// WeeklyOn reports the weekday for a weekly recurrence.
func (r Recurrence) WeeklyOn() (time.Weekday, bool) {
	return r.weekday, r.weekly
}

// OneOffOn reports the date for a one-off recurrence.
func (r Recurrence) OneOffOn() (time.Time, bool) {
	if r.weekly || r.oneOff.IsZero() {
		return time.Time{}, false
	}
	return r.oneOff, true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BreakWindow is a hard block inside a shift (lunch). Minutes from midnight.
type BreakWindow struct {
	StartMinute int
	EndMinute   int
}

// Shift is a nurse's declared working window. Start/end are minutes from
// midnight on whichever dates the recurrence matches.
type Shift struct {
	ID          string
	NurseID     string
	Recurrence  Recurrence
	StartMinute int
	EndMinute   int
	Break       *BreakWindow
	Active      bool
}

// Window anchors the shift's working hours on a concrete date.
func (s Shift) Window(date time.Time) (start, end time.Time) {
	day := midnight(date)
	return day.Add(time.Duration(s.StartMinute) * time.Minute),
		day.Add(time.Duration(s.EndMinute) * time.Minute)
}

// BreakOn anchors the break window on a concrete date; ok is false when the
// shift has no break.
func (s Shift) BreakOn(date time.Time) (start, end time.Time, ok bool) {
	if s.Break == nil {
		return time.Time{}, time.Time{}, false
	}
	day := midnight(date)
	return day.Add(time.Duration(s.Break.StartMinute) * time.Minute),
		day.Add(time.Duration(s.Break.EndMinute) * time.Minute),
		true
}

// Nurse is the worker summary exposed by the availability API.
type Nurse struct {
	ID       string
	Name     string
	PhotoURL string
	Active   bool
}

// NurseShift pairs a shift with its owner, as returned by the shift calendar.
type NurseShift struct {
	Nurse Nurse
	Shift Shift
}
