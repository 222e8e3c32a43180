package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/services/booking-service/internal/booking"
	"github.com/careops/homenurse/services/booking-service/internal/model"
	"github.com/careops/homenurse/services/booking-service/internal/storage"
)

type AppointmentHandler struct {
	pool    *db.Pool
	appts   *storage.AppointmentRepository
	catalog *storage.CatalogRepository
	logger  *slog.Logger
}

func NewAppointmentHandler(pool *db.Pool, appts *storage.AppointmentRepository, catalog *storage.CatalogRepository, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{pool: pool, appts: appts, catalog: catalog, logger: logger}
}

type appointmentItem struct {
	ID              string   `json:"id"`
	PatientID       string   `json:"patient_id"`
	NurseID         string   `json:"nurse_id,omitempty"`
	ServiceID       string   `json:"service_id"`
	Status          string   `json:"status"`
	Date            string   `json:"date"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time,omitempty"`
	LocationType    string   `json:"location_type"`
	Address         string   `json:"address,omitempty"`
	MapsLink        string   `json:"maps_link,omitempty"`
	FinalPriceCents int64    `json:"final_price_cents"`
	DepartureTime   string   `json:"departure_time,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		respondError(w, http.StatusBadRequest, "date required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	nurseID := strings.TrimSpace(r.URL.Query().Get("nurse_id"))

	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	appts, err := h.appts.ListByDate(r.Context(), date, nurseID, limit)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to list appointments")
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		items = append(items, appointmentToItem(a))
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "success", "appointments": items})
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		AppointmentID string `json:"appointment_id"`
		Status        string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	status := model.AppointmentStatus(strings.TrimSpace(req.Status))
	if req.AppointmentID == "" || !status.Valid() {
		respondError(w, http.StatusBadRequest, "appointment_id and a valid status are required")
		return
	}

	if err := h.appts.UpdateStatus(r.Context(), req.AppointmentID, status); err != nil {
		respondAppError(w, h.logger, err, "failed to update status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

type updateAppointmentRequest struct {
	AppointmentID  string   `json:"appointment_id"`
	ServiceID      string   `json:"service_id"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	WorkerID       *string  `json:"worker_id"`
	LocationType   string   `json:"location_type"`
	Address        *string  `json:"address"`
	Reference      *string  `json:"reference"`
	MapsLink       *string  `json:"maps_link"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	HasOwnSupplies *bool    `json:"has_own_supplies"`
	Notes          *string  `json:"notes"`
}

// Update edits an appointment. Derived fields are never accepted from the
// request; they are recomputed from scratch on every save. The existing
// location snapshot is kept unless the caller overrides it explicitly.
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		respondError(w, http.StatusBadRequest, "appointment_id required")
		return
	}

	ctx := r.Context()
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.appts.GetForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to load appointment")
		return
	}

	if req.ServiceID != "" {
		appt.ServiceID = strings.TrimSpace(req.ServiceID)
	}
	if req.WorkerID != nil {
		appt.NurseID = strings.TrimSpace(*req.WorkerID)
	}
	if req.LocationType != "" {
		lt := model.LocationType(req.LocationType)
		if !lt.Valid() {
			respondError(w, http.StatusBadRequest, "invalid location_type")
			return
		}
		appt.LocationType = lt
	}
	if req.Date != "" {
		d, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		appt.Date = d
		appt.StartTime = time.Date(d.Year(), d.Month(), d.Day(),
			appt.StartTime.Hour(), appt.StartTime.Minute(), 0, 0, time.UTC)
	}
	if req.Time != "" {
		clock, err := time.Parse("15:04", req.Time)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid time, expected HH:MM")
			return
		}
		appt.StartTime = time.Date(appt.Date.Year(), appt.Date.Month(), appt.Date.Day(),
			clock.Hour(), clock.Minute(), 0, 0, time.UTC)
	}
	if req.Address != nil {
		appt.Address = strings.TrimSpace(*req.Address)
	}
	if req.Reference != nil {
		appt.Reference = strings.TrimSpace(*req.Reference)
	}
	if req.MapsLink != nil {
		appt.MapsLink = strings.TrimSpace(*req.MapsLink)
	}
	if req.Latitude != nil {
		appt.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		appt.Longitude = req.Longitude
	}
	if req.HasOwnSupplies != nil {
		appt.HasOwnSupplies = *req.HasOwnSupplies
	}
	if req.Notes != nil {
		appt.Notes = strings.TrimSpace(*req.Notes)
	}

	svc, err := h.catalog.GetService(ctx, appt.ServiceID)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to load service")
		return
	}

	derived, err := booking.Derive(booking.Input{
		Service:        svc,
		Start:          appt.StartTime,
		LocationType:   appt.LocationType,
		Address:        appt.Address,
		Reference:      appt.Reference,
		MapsLink:       appt.MapsLink,
		Latitude:       appt.Latitude,
		Longitude:      appt.Longitude,
		HasOwnSupplies: appt.HasOwnSupplies,
		NurseAssigned:  appt.NurseID != "",
		IsNew:          false,
	})
	if err != nil {
		respondAppError(w, h.logger, err, "failed to derive appointment")
		return
	}

	appt.EndTime = derived.End
	appt.DepartureTime = derived.Departure
	appt.Address = derived.Address
	appt.Reference = derived.Reference
	appt.MapsLink = derived.MapsLink
	appt.Latitude = derived.Latitude
	appt.Longitude = derived.Longitude
	appt.FinalPriceCents = derived.PriceCents

	if appt.NurseID != "" && appt.Status.Occupying() {
		occupied, err := h.appts.OccupiedByNurseOnForUpdate(ctx, tx, appt.NurseID, appt.Date)
		if err != nil {
			respondAppError(w, h.logger, err, "failed to verify availability")
			return
		}
		if err := overlapError(occupied, appt.StartTime, appt.EndTime, appt.ID, h.logger); err != nil {
			respondAppError(w, h.logger, err, "failed to verify availability")
			return
		}
	}

	if err := h.appts.UpdateTx(ctx, tx, &appt); err != nil {
		respondAppError(w, h.logger, err, "failed to save appointment")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to commit")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"appointment": appointmentToItem(appt),
	})
}

func appointmentToItem(a model.Appointment) appointmentItem {
	item := appointmentItem{
		ID:              a.ID,
		PatientID:       a.PatientID,
		NurseID:         a.NurseID,
		ServiceID:       a.ServiceID,
		Status:          string(a.Status),
		Date:            a.Date.Format("2006-01-02"),
		StartTime:       a.StartTime.UTC().Format(time.RFC3339),
		LocationType:    string(a.LocationType),
		Address:         a.Address,
		MapsLink:        a.MapsLink,
		FinalPriceCents: a.FinalPriceCents,
		Latitude:        a.Latitude,
		Longitude:       a.Longitude,
		Notes:           a.Notes,
	}
	if !a.EndTime.IsZero() {
		item.EndTime = a.EndTime.UTC().Format(time.RFC3339)
	}
	if a.DepartureTime != nil {
		item.DepartureTime = a.DepartureTime.UTC().Format(time.RFC3339)
	}
	return item
}
