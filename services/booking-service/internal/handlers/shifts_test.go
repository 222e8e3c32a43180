package handlers

import (
	"testing"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/model"
)

func intp(v int) *int { return &v }

func TestBuildShift_WeeklyValid(t *testing.T) {
	s, msg := buildShift(createShiftRequest{
		NurseID:     "n1",
		Weekday:     intp(1),
		StartMinute: 8 * 60,
		EndMinute:   16 * 60,
	})
	if msg != "" {
		t.Fatalf("unexpected validation message: %s", msg)
	}
	wd, ok := s.Recurrence.WeeklyOn()
	if !ok || wd != time.Monday {
		t.Fatalf("expected weekly Monday, got %v,%v", wd, ok)
	}
	if !s.Active {
		t.Fatal("expected new shift active")
	}
}

func TestBuildShift_OneOffValid(t *testing.T) {
	s, msg := buildShift(createShiftRequest{
		NurseID:     "n1",
		Date:        "2026-03-09",
		StartMinute: 8 * 60,
		EndMinute:   12 * 60,
	})
	if msg != "" {
		t.Fatalf("unexpected validation message: %s", msg)
	}
	date, ok := s.Recurrence.OneOffOn()
	if !ok || !date.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected one-off 2026-03-09, got %v,%v", date, ok)
	}
}

func TestBuildShift_WeekdayXorDate(t *testing.T) {
	if _, msg := buildShift(createShiftRequest{NurseID: "n1", StartMinute: 0, EndMinute: 60}); msg == "" {
		t.Fatal("expected rejection when neither weekday nor date set")
	}
	if _, msg := buildShift(createShiftRequest{
		NurseID: "n1", Weekday: intp(1), Date: "2026-03-09", StartMinute: 0, EndMinute: 60,
	}); msg == "" {
		t.Fatal("expected rejection when both weekday and date set")
	}
}

func TestBuildShift_WindowValidation(t *testing.T) {
	if _, msg := buildShift(createShiftRequest{
		NurseID: "n1", Weekday: intp(1), StartMinute: 10 * 60, EndMinute: 10 * 60,
	}); msg == "" {
		t.Fatal("expected rejection of zero-length window")
	}
	if _, msg := buildShift(createShiftRequest{
		NurseID: "n1", Weekday: intp(1), StartMinute: 8 * 60, EndMinute: 25 * 60,
	}); msg == "" {
		t.Fatal("expected rejection of end past midnight")
	}
	if _, msg := buildShift(createShiftRequest{
		NurseID: "n1", Weekday: intp(7), StartMinute: 8 * 60, EndMinute: 12 * 60,
	}); msg == "" {
		t.Fatal("expected rejection of weekday 7")
	}
}

func TestBuildShift_BreakBothOrNeither(t *testing.T) {
	if _, msg := buildShift(createShiftRequest{
		NurseID: "n1", Weekday: intp(1), StartMinute: 8 * 60, EndMinute: 16 * 60,
		BreakStart: intp(12 * 60),
	}); msg == "" {
		t.Fatal("expected rejection of half-specified break")
	}

	s, msg := buildShift(createShiftRequest{
		NurseID: "n1", Weekday: intp(1), StartMinute: 8 * 60, EndMinute: 16 * 60,
		BreakStart: intp(12 * 60), BreakEnd: intp(13 * 60),
	})
	if msg != "" {
		t.Fatalf("unexpected validation message: %s", msg)
	}
	if s.Break == nil || s.Break.StartMinute != 12*60 {
		t.Fatalf("expected break kept, got %+v", s.Break)
	}
}

func TestBuildShift_BreakInsideWindow(t *testing.T) {
	if _, msg := buildShift(createShiftRequest{
		NurseID: "n1", Weekday: intp(1), StartMinute: 8 * 60, EndMinute: 12 * 60,
		BreakStart: intp(13 * 60), BreakEnd: intp(14 * 60),
	}); msg == "" {
		t.Fatal("expected rejection of break outside window")
	}
}

func TestOverlapError(t *testing.T) {
	d := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	occupied := []model.Appointment{
		{ID: "a1", StartTime: d.Add(9 * time.Hour), EndTime: d.Add(10 * time.Hour)},
	}

	if err := overlapError(occupied, d.Add(9*time.Hour+30*time.Minute), d.Add(10*time.Hour+30*time.Minute), "", testLogger()); err == nil {
		t.Fatal("expected conflict for straddling interval")
	}
	if err := overlapError(occupied, d.Add(10*time.Hour), d.Add(11*time.Hour), "", testLogger()); err != nil {
		t.Fatalf("back-to-back must not conflict: %v", err)
	}
	// Editing a1 itself must not conflict with its own old interval.
	if err := overlapError(occupied, d.Add(9*time.Hour), d.Add(10*time.Hour), "a1", testLogger()); err != nil {
		t.Fatalf("self overlap must be ignored on edit: %v", err)
	}
}
