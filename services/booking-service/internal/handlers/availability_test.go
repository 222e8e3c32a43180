package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/apperr"
	"github.com/careops/homenurse/services/booking-service/internal/availability"
	"github.com/careops/homenurse/services/booking-service/internal/model"
)

type stubShifts struct {
	shifts []model.NurseShift
}

func (s stubShifts) ShiftsOn(_ context.Context, _ time.Time) ([]model.NurseShift, error) {
	return s.shifts, nil
}

type stubOccupancy struct{}

func (stubOccupancy) OccupiedByNurseOn(_ context.Context, _ string, _ time.Time) ([]model.Appointment, error) {
	return nil, nil
}

type stubCatalog struct {
	services map[string]model.Service
}

func (s stubCatalog) GetService(_ context.Context, id string) (model.Service, error) {
	svc, ok := s.services[id]
	if !ok {
		return model.Service{}, apperr.NotFound("service %s not found", id)
	}
	return svc, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func availabilityTestHandler() *AvailabilityHandler {
	shifts := stubShifts{shifts: []model.NurseShift{{
		Nurse: model.Nurse{ID: "n1", Name: "Ana", PhotoURL: "https://cdn.example/ana.jpg"},
		Shift: model.Shift{
			NurseID:     "n1",
			Recurrence:  model.Weekly(time.Monday),
			StartMinute: 8 * 60,
			EndMinute:   10 * 60,
			Active:      true,
		},
	}}}
	catalog := stubCatalog{services: map[string]model.Service{
		"svc1": {ID: "svc1", Name: "Injection", DurationMinutes: 60},
	}}
	engine := availability.NewEngine(shifts, stubOccupancy{}, catalog, time.Hour, testLogger())
	return NewAvailabilityHandler(engine, testLogger())
}

func TestAvailabilityGet_Success(t *testing.T) {
	h := availabilityTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/availability?date=2026-03-09&service_id=svc1", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp availabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "success" {
		t.Fatalf("expected status success, got %q", resp.Status)
	}
	if len(resp.Availability) != 1 {
		t.Fatalf("expected 1 worker, got %d", len(resp.Availability))
	}
	entry := resp.Availability[0]
	if entry.Worker.ID != "n1" || entry.Worker.PhotoURL == nil {
		t.Fatalf("unexpected worker: %+v", entry.Worker)
	}
	want := []string{"08:00", "09:00"}
	if len(entry.Slots) != len(want) || entry.Slots[0] != want[0] || entry.Slots[1] != want[1] {
		t.Fatalf("expected slots %v, got %v", want, entry.Slots)
	}
}

func TestAvailabilityGet_MissingParams(t *testing.T) {
	h := availabilityTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/availability?date=2026-03-09", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAvailabilityGet_BadDate(t *testing.T) {
	h := availabilityTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/availability?date=03-09-2026&service_id=svc1", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAvailabilityGet_UnknownService(t *testing.T) {
	h := availabilityTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/availability?date=2026-03-09&service_id=nope", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAvailabilityGet_MethodNotAllowed(t *testing.T) {
	h := availabilityTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/availability", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
