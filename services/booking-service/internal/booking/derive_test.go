package booking

import (
	"reflect"
	"testing"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/apperr"
	"github.com/careops/homenurse/services/booking-service/internal/model"
)

func baseService() model.Service {
	return model.Service{
		ID:                   "svc1",
		Name:                 "Wound care",
		BasePriceCents:       2000,
		SupplySurchargeCents: 500,
		DurationMinutes:      60,
		TravelBufferMinutes:  30,
	}
}

func start(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
}

func TestDerive_SurchargeApplied(t *testing.T) {
	d, err := Derive(Input{
		Service:       baseService(),
		Start:         start(t),
		LocationType:  model.LocationHome,
		NurseAssigned: true,
		IsNew:         true,
	})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if d.PriceCents != 2500 {
		t.Fatalf("expected price 2500, got %d", d.PriceCents)
	}
}

func TestDerive_NoSurchargeWithOwnSupplies(t *testing.T) {
	d, err := Derive(Input{
		Service:        baseService(),
		Start:          start(t),
		LocationType:   model.LocationHome,
		HasOwnSupplies: true,
		NurseAssigned:  true,
		IsNew:          true,
	})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if d.PriceCents != 2000 {
		t.Fatalf("expected price 2000, got %d", d.PriceCents)
	}
}

func TestDerive_NoSurchargeWhenServiceIncludesSupplies(t *testing.T) {
	svc := baseService()
	svc.IncludesSupplies = true
	d, err := Derive(Input{Service: svc, Start: start(t), LocationType: model.LocationHome, NurseAssigned: true})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if d.PriceCents != 2000 {
		t.Fatalf("expected price 2000, got %d", d.PriceCents)
	}
}

func TestDerive_GuardWithoutNurseFails(t *testing.T) {
	svc := baseService()
	svc.IsGuard = true
	_, err := Derive(Input{Service: svc, Start: start(t), LocationType: model.LocationHome, IsNew: true})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDerive_EndAndDeparture(t *testing.T) {
	s := start(t)
	d, err := Derive(Input{Service: baseService(), Start: s, LocationType: model.LocationHome, NurseAssigned: true})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if !d.End.Equal(s.Add(time.Hour)) {
		t.Fatalf("expected end %s, got %s", s.Add(time.Hour), d.End)
	}
	if d.Departure == nil || !d.Departure.Equal(s.Add(-30*time.Minute)) {
		t.Fatalf("expected departure 30min before start, got %v", d.Departure)
	}
}

func TestDerive_NoDepartureAtBase(t *testing.T) {
	d, err := Derive(Input{Service: baseService(), Start: start(t), LocationType: model.LocationBase, NurseAssigned: true})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if d.Departure != nil {
		t.Fatalf("expected no departure at base, got %v", d.Departure)
	}
	if d.Address != BaseAddress || d.MapsLink != BaseMapsLink {
		t.Fatalf("expected base location, got %q %q", d.Address, d.MapsLink)
	}
}

func TestDerive_HomeSnapshotOnCreateOnly(t *testing.T) {
	lat, lng := -2.17, -79.92
	profile := &model.PatientProfile{
		Address:   "Calle 10 y Av. Principal",
		Reference: "Casa azul",
		Latitude:  &lat,
		Longitude: &lng,
	}

	created, err := Derive(Input{
		Service:       baseService(),
		Profile:       profile,
		Start:         start(t),
		LocationType:  model.LocationHome,
		NurseAssigned: true,
		IsNew:         true,
	})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if created.Address != profile.Address || created.Reference != profile.Reference {
		t.Fatalf("expected profile snapshot, got %q %q", created.Address, created.Reference)
	}
	if created.MapsLink == "" {
		t.Fatal("expected maps link synthesized from coordinates")
	}

	// On edit the stored snapshot wins; the profile is not consulted.
	edited, err := Derive(Input{
		Service:       baseService(),
		Profile:       profile,
		Start:         start(t),
		LocationType:  model.LocationHome,
		Address:       "Direccion original",
		NurseAssigned: true,
		IsNew:         false,
	})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if edited.Address != "Direccion original" {
		t.Fatalf("expected stored address kept on edit, got %q", edited.Address)
	}
}

func TestDerive_Idempotent(t *testing.T) {
	in := Input{
		Service:       baseService(),
		Start:         start(t),
		LocationType:  model.LocationHome,
		Address:       "Calle 10",
		NurseAssigned: true,
	}
	first, err := Derive(in)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	second, err := Derive(in)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Derive not deterministic: %+v vs %+v", first, second)
	}
}
