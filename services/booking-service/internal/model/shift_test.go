package model

import (
	"testing"
	"time"
)

func TestRecurrence_WeeklyMatches(t *testing.T) {
	rec := Weekly(time.Monday)

	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !rec.Matches(monday) {
		t.Fatal("expected weekly Monday recurrence to match a Monday")
	}
	if !rec.Matches(monday.AddDate(0, 0, 7)) {
		t.Fatal("expected recurrence to match the next Monday too")
	}
	if rec.Matches(monday.AddDate(0, 0, 1)) {
		t.Fatal("expected recurrence not to match a Tuesday")
	}
}

func TestRecurrence_OneOffMatchesSingleDate(t *testing.T) {
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	rec := OneOff(date)

	if !rec.Matches(date) {
		t.Fatal("expected one-off to match its date")
	}
	// Time of day on the probe is irrelevant.
	if !rec.Matches(date.Add(14 * time.Hour)) {
		t.Fatal("expected one-off to match any time on its date")
	}
	if rec.Matches(date.AddDate(0, 0, 7)) {
		t.Fatal("expected one-off not to match a later date, same weekday or not")
	}
}

func TestRecurrence_ZeroValueMatchesNothing(t *testing.T) {
	var rec Recurrence
	if rec.Matches(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("zero recurrence must not match")
	}
}

func TestShift_WindowAnchorsMinutes(t *testing.T) {
	s := Shift{StartMinute: 8 * 60, EndMinute: 12 * 60}
	date := time.Date(2026, 3, 9, 15, 30, 0, 0, time.UTC)

	start, end := s.Window(date)
	if start.Hour() != 8 || start.Minute() != 0 {
		t.Fatalf("expected window start 08:00, got %s", start.Format("15:04"))
	}
	if end.Hour() != 12 {
		t.Fatalf("expected window end 12:00, got %s", end.Format("15:04"))
	}
	if start.Day() != 9 {
		t.Fatalf("expected window anchored on the 9th, got day %d", start.Day())
	}
}

func TestShift_BreakOn(t *testing.T) {
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	s := Shift{StartMinute: 8 * 60, EndMinute: 16 * 60}
	if _, _, ok := s.BreakOn(date); ok {
		t.Fatal("expected no break")
	}

	s.Break = &BreakWindow{StartMinute: 12 * 60, EndMinute: 13 * 60}
	bs, be, ok := s.BreakOn(date)
	if !ok {
		t.Fatal("expected break present")
	}
	if bs.Hour() != 12 || be.Hour() != 13 {
		t.Fatalf("expected break 12:00-13:00, got %s-%s", bs.Format("15:04"), be.Format("15:04"))
	}
}
