package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/services/booking-service/internal/apperr"
	"github.com/careops/homenurse/services/booking-service/internal/availability"
	"github.com/careops/homenurse/services/booking-service/internal/booking"
	"github.com/careops/homenurse/services/booking-service/internal/model"
	"github.com/careops/homenurse/services/booking-service/internal/outbox"
	"github.com/careops/homenurse/services/booking-service/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type BookingHandler struct {
	pool       *db.Pool
	users      *storage.UserRepository
	appts      *storage.AppointmentRepository
	catalog    *storage.CatalogRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
}

func NewBookingHandler(pool *db.Pool, users *storage.UserRepository, appts *storage.AppointmentRepository, catalog *storage.CatalogRepository, outboxRepo *outbox.Repository, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		pool:       pool,
		users:      users,
		appts:      appts,
		catalog:    catalog,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

type clientPayload struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
}

type bookAppointmentPayload struct {
	ServiceID      string   `json:"service_id"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	WorkerID       string   `json:"worker_id"`
	LocationType   string   `json:"location_type"`
	Address        string   `json:"address"`
	Reference      string   `json:"reference"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Notes          string   `json:"notes"`
	HasOwnSupplies bool     `json:"has_own_supplies"`
}

type bookRequest struct {
	Client      clientPayload          `json:"client"`
	Appointment bookAppointmentPayload `json:"appointment"`
}

type bookResponse struct {
	Status        string `json:"status"`
	AppointmentID string `json:"appointment_id"`
	Message       string `json:"message"`
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	req.Client.Email = strings.ToLower(strings.TrimSpace(req.Client.Email))
	req.Client.NationalID = strings.TrimSpace(req.Client.NationalID)
	req.Client.FirstName = strings.TrimSpace(req.Client.FirstName)
	req.Client.LastName = strings.TrimSpace(req.Client.LastName)
	if req.Client.Email == "" && req.Client.NationalID == "" {
		respondError(w, http.StatusBadRequest, "client email or national_id required")
		return
	}

	appt := req.Appointment
	appt.ServiceID = strings.TrimSpace(appt.ServiceID)
	appt.WorkerID = strings.TrimSpace(appt.WorkerID)
	if appt.ServiceID == "" || appt.Date == "" || appt.Time == "" {
		respondError(w, http.StatusBadRequest, "service_id, date and time are required")
		return
	}
	locType := model.LocationType(appt.LocationType)
	if !locType.Valid() {
		respondError(w, http.StatusBadRequest, "invalid location_type")
		return
	}

	date, err := time.ParseInLocation("2006-01-02", appt.Date, time.UTC)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	clock, err := time.Parse("15:04", appt.Time)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid time, expected HH:MM")
		return
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)

	ctx := r.Context()

	svc, err := h.catalog.GetService(ctx, appt.ServiceID)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to load service")
		return
	}
	if (locType == model.LocationBase && !svc.AllowsBase) ||
		(locType == model.LocationHome && !svc.AllowsHome) {
		respondError(w, http.StatusBadRequest, "service is not offered at that location")
		return
	}

	client, found, err := h.users.FindClientByEmailOrNationalID(ctx, req.Client.Email, req.Client.NationalID)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to look up client")
		return
	}

	var profile *model.PatientProfile
	if found {
		profile, err = h.users.GetProfile(ctx, client.ID)
		if err != nil {
			respondAppError(w, h.logger, err, "failed to load patient profile")
			return
		}
	}

	tempPassword := ""
	if !found {
		tempPassword = uuid.NewString()[:12]
		hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
		if err != nil {
			respondAppError(w, h.logger, err, "failed to create account")
			return
		}
		client = model.Client{
			ID:           uuid.NewString(),
			Email:        req.Client.Email,
			NationalID:   req.Client.NationalID,
			FirstName:    req.Client.FirstName,
			LastName:     req.Client.LastName,
			Phone:        strings.TrimSpace(req.Client.Phone),
			PasswordHash: string(hash),
		}
		profile = &model.PatientProfile{
			UserID:    client.ID,
			Address:   strings.TrimSpace(appt.Address),
			Reference: strings.TrimSpace(appt.Reference),
			Latitude:  appt.Latitude,
			Longitude: appt.Longitude,
		}
	}

	derived, err := booking.Derive(booking.Input{
		Service:        svc,
		Profile:        profile,
		Start:          start,
		LocationType:   locType,
		Address:        strings.TrimSpace(appt.Address),
		Reference:      strings.TrimSpace(appt.Reference),
		Latitude:       appt.Latitude,
		Longitude:      appt.Longitude,
		HasOwnSupplies: appt.HasOwnSupplies,
		NurseAssigned:  appt.WorkerID != "",
		IsNew:          true,
	})
	if err != nil {
		respondAppError(w, h.logger, err, "failed to derive appointment")
		return
	}

	tx, err := h.pool.Begin(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if !found {
		if err := h.users.CreateClientTx(ctx, tx, &client, profile); err != nil {
			if storage.IsUniqueViolation(err) {
				respondError(w, http.StatusConflict, "account already exists")
				return
			}
			respondAppError(w, h.logger, err, "failed to create account")
			return
		}
	}

	// Re-read committed occupancy under lock just before insert. The public
	// form was filled from an availability snapshot that may be stale by now.
	if appt.WorkerID != "" {
		if err := h.checkOverlap(ctx, tx, appt.WorkerID, date, start, derived.End, ""); err != nil {
			respondAppError(w, h.logger, err, "failed to verify availability")
			return
		}
	}

	record := &model.Appointment{
		PatientID:       client.ID,
		NurseID:         appt.WorkerID,
		ServiceID:       svc.ID,
		Status:          model.StatusPending,
		Date:            date,
		StartTime:       start,
		EndTime:         derived.End,
		LocationType:    locType,
		Address:         derived.Address,
		Reference:       derived.Reference,
		MapsLink:        derived.MapsLink,
		Latitude:        derived.Latitude,
		Longitude:       derived.Longitude,
		HasOwnSupplies:  appt.HasOwnSupplies,
		FinalPriceCents: derived.PriceCents,
		DepartureTime:   derived.Departure,
		Notes:           strings.TrimSpace(appt.Notes),
	}
	id, err := h.appts.CreateTx(ctx, tx, record)
	if err != nil {
		if storage.IsExclusionViolation(err) || storage.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "the selected slot is no longer available")
			return
		}
		respondAppError(w, h.logger, err, "failed to create appointment")
		return
	}

	if err := h.emitBookingEvents(ctx, tx, id, record, client, tempPassword); err != nil {
		respondAppError(w, h.logger, err, "failed to enqueue notifications")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to commit")
		return
	}

	respondJSON(w, http.StatusCreated, bookResponse{
		Status:        "success",
		AppointmentID: id,
		Message:       "appointment booked",
	})
}

// checkOverlap re-reads the nurse's occupying appointments FOR UPDATE and
// rejects the interval [start, end) when it touches any of them. excludeID
// skips the appointment being edited.
func (h *BookingHandler) checkOverlap(ctx context.Context, tx pgx.Tx, nurseID string, date, start, end time.Time, excludeID string) error {
	occupied, err := h.appts.OccupiedByNurseOnForUpdate(ctx, tx, nurseID, date)
	if err != nil {
		return err
	}
	return overlapError(occupied, start, end, excludeID, h.logger)
}

func overlapError(occupied []model.Appointment, start, end time.Time, excludeID string, logger *slog.Logger) error {
	kept := occupied[:0:0]
	for _, a := range occupied {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		kept = append(kept, a)
	}
	for _, iv := range availability.BusyIntervals(kept, logger) {
		if iv.Overlaps(start, end) {
			return apperr.Conflict("the selected slot overlaps an existing appointment")
		}
	}
	return nil
}

func (h *BookingHandler) emitBookingEvents(ctx context.Context, tx pgx.Tx, id string, appt *model.Appointment, client model.Client, tempPassword string) error {
	booked, err := json.Marshal(map[string]any{
		"appointment_id": id,
		"patient_id":     client.ID,
		"nurse_id":       appt.NurseID,
		"service_id":     appt.ServiceID,
		"date":           appt.Date.Format("2006-01-02"),
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     outbox.EventAppointmentBooked,
		Payload:       booked,
	}); err != nil {
		return err
	}

	if tempPassword != "" && client.Email != "" {
		welcome, err := json.Marshal(map[string]any{
			"recipient":     client.Email,
			"name":          strings.TrimSpace(client.FirstName + " " + client.LastName),
			"email":         client.Email,
			"temp_password": tempPassword,
		})
		if err != nil {
			return err
		}
		if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
			AggregateType: "client",
			AggregateID:   client.ID,
			EventType:     outbox.EventWelcomeRequested,
			Payload:       welcome,
		}); err != nil {
			return err
		}
	}

	if client.Phone != "" {
		text := "Tu cita ha sido agendada para el " + appt.Date.Format("2006-01-02") +
			" a las " + appt.StartTime.Format("15:04") + "."
		msg, err := json.Marshal(map[string]any{
			"phone": client.Phone,
			"text":  text,
		})
		if err != nil {
			return err
		}
		if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
			AggregateType: "client",
			AggregateID:   client.ID,
			EventType:     outbox.EventMessageRequested,
			Payload:       msg,
		}); err != nil {
			return err
		}
	}
	return nil
}
