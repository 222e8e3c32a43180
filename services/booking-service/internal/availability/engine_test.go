package availability

import (
	"context"
	"testing"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/apperr"
	"github.com/careops/homenurse/services/booking-service/internal/model"
)

type fakeShifts struct {
	shifts []model.NurseShift
}

func (f fakeShifts) ShiftsOn(_ context.Context, _ time.Time) ([]model.NurseShift, error) {
	return f.shifts, nil
}

type fakeOccupancy struct {
	byNurse map[string][]model.Appointment
}

func (f fakeOccupancy) OccupiedByNurseOn(_ context.Context, nurseID string, _ time.Time) ([]model.Appointment, error) {
	return f.byNurse[nurseID], nil
}

type fakeCatalog struct {
	services map[string]model.Service
}

func (f fakeCatalog) GetService(_ context.Context, id string) (model.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return model.Service{}, apperr.NotFound("service %s not found", id)
	}
	return svc, nil
}

func testEngine(shifts []model.NurseShift, occ map[string][]model.Appointment) *Engine {
	catalog := fakeCatalog{services: map[string]model.Service{
		"svc1": {ID: "svc1", Name: "Injection", DurationMinutes: 60},
	}}
	return NewEngine(fakeShifts{shifts: shifts}, fakeOccupancy{byNurse: occ}, catalog, time.Hour, nil)
}

func weeklyShift(nurse model.Nurse, startMin, endMin int) model.NurseShift {
	return model.NurseShift{
		Nurse: nurse,
		Shift: model.Shift{
			ID:          "s-" + nurse.ID,
			NurseID:     nurse.ID,
			Recurrence:  model.Weekly(time.Monday),
			StartMinute: startMin,
			EndMinute:   endMin,
			Active:      true,
		},
	}
}

func TestEngineForDate_GroupsByNurse(t *testing.T) {
	d := day(t) // a Monday
	ana := model.Nurse{ID: "n1", Name: "Ana"}
	eva := model.Nurse{ID: "n2", Name: "Eva"}
	engine := testEngine([]model.NurseShift{
		weeklyShift(ana, 8*60, 10*60),
		weeklyShift(eva, 9*60, 11*60),
	}, nil)

	got, err := engine.ForDate(context.Background(), d, "svc1")
	if err != nil {
		t.Fatalf("ForDate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 nurses, got %d", len(got))
	}
	if got[0].Nurse.ID != "n1" || got[1].Nurse.ID != "n2" {
		t.Fatalf("expected shift order n1,n2, got %s,%s", got[0].Nurse.ID, got[1].Nurse.ID)
	}
	if len(got[0].Slots) != 2 || got[0].Slots[0] != "08:00" || got[0].Slots[1] != "09:00" {
		t.Fatalf("unexpected slots for n1: %v", got[0].Slots)
	}
}

func TestEngineForDate_OmitsFullyBookedNurse(t *testing.T) {
	d := day(t)
	ana := model.Nurse{ID: "n1", Name: "Ana"}
	occ := map[string][]model.Appointment{
		"n1": {{ID: "a1", NurseID: "n1", StartTime: d.Add(8 * time.Hour), EndTime: d.Add(10 * time.Hour)}},
	}
	engine := testEngine([]model.NurseShift{weeklyShift(ana, 8*60, 10*60)}, occ)

	got, err := engine.ForDate(context.Background(), d, "svc1")
	if err != nil {
		t.Fatalf("ForDate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected fully booked nurse omitted, got %v", got)
	}
}

func TestEngineForDate_MultiShiftConcatNoDedup(t *testing.T) {
	d := day(t)
	ana := model.Nurse{ID: "n1", Name: "Ana"}
	// Two shifts sharing the 09:00 hour produce the start twice.
	engine := testEngine([]model.NurseShift{
		weeklyShift(ana, 8*60, 10*60),
		weeklyShift(ana, 9*60, 11*60),
	}, nil)

	got, err := engine.ForDate(context.Background(), d, "svc1")
	if err != nil {
		t.Fatalf("ForDate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 nurse, got %d", len(got))
	}
	want := []string{"08:00", "09:00", "09:00", "10:00"}
	if len(got[0].Slots) != len(want) {
		t.Fatalf("expected slots %v, got %v", want, got[0].Slots)
	}
	for i := range want {
		if got[0].Slots[i] != want[i] {
			t.Fatalf("expected slots %v, got %v", want, got[0].Slots)
		}
	}
}

func TestEngineForDate_UnknownService(t *testing.T) {
	engine := testEngine(nil, nil)
	_, err := engine.ForDate(context.Background(), day(t), "nope")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
