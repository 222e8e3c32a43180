package availability

import (
	"testing"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/model"
)

func TestBusyIntervals_UsesEndTime(t *testing.T) {
	d := day(t)
	appts := []model.Appointment{
		{ID: "a1", StartTime: d.Add(9 * time.Hour), EndTime: d.Add(10*time.Hour + 30*time.Minute)},
	}
	busy := BusyIntervals(appts, nil)
	if len(busy) != 1 {
		t.Fatalf("expected 1 interval, got %d", len(busy))
	}
	if !busy[0].End.Equal(d.Add(10*time.Hour + 30*time.Minute)) {
		t.Fatalf("expected end 10:30, got %s", busy[0].End.Format("15:04"))
	}
}

func TestBusyIntervals_MissingEndFallsBackToOneHour(t *testing.T) {
	d := day(t)
	appts := []model.Appointment{
		{ID: "a1", StartTime: d.Add(14 * time.Hour)},
	}
	busy := BusyIntervals(appts, nil)
	if len(busy) != 1 {
		t.Fatalf("expected 1 interval, got %d", len(busy))
	}
	if !busy[0].End.Equal(d.Add(15 * time.Hour)) {
		t.Fatalf("expected end 15:00, got %s", busy[0].End.Format("15:04"))
	}
}
