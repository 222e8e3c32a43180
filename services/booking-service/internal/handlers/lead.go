package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/services/booking-service/internal/model"
	"github.com/careops/homenurse/services/booking-service/internal/reminder"
	"github.com/careops/homenurse/services/booking-service/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type LeadHandler struct {
	pool      *db.Pool
	users     *storage.UserRepository
	reminders *storage.ReminderRepository
	catalog   *storage.CatalogRepository
	shifts    *storage.ShiftRepository
	logger    *slog.Logger
}

func NewLeadHandler(pool *db.Pool, users *storage.UserRepository, reminders *storage.ReminderRepository, catalog *storage.CatalogRepository, shifts *storage.ShiftRepository, logger *slog.Logger) *LeadHandler {
	return &LeadHandler{pool: pool, users: users, reminders: reminders, catalog: catalog, shifts: shifts, logger: logger}
}

type leadPayload struct {
	MedicationID    string `json:"medication_id"`
	MedicationText  string `json:"medication_text"`
	ApplicationDate string `json:"application_date"`
	WorkerID        string `json:"worker_id"`
	Rating          int    `json:"rating"`
	Notes           string `json:"notes"`
}

type leadRequest struct {
	Client clientPayload `json:"client"`
	Lead   leadPayload   `json:"lead"`
}

type leadResponse struct {
	Status     string `json:"status"`
	ReminderID string `json:"reminder_id"`
}

// Create captures a follow-up lead from the public site: a WEB reminder for
// the patient, plus an optional nurse rating. The client account is created
// silently when unknown; leads never trigger a welcome notification.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	req.Client.Email = strings.ToLower(strings.TrimSpace(req.Client.Email))
	req.Client.NationalID = strings.TrimSpace(req.Client.NationalID)
	if req.Client.Email == "" && req.Client.NationalID == "" {
		respondError(w, http.StatusBadRequest, "client email or national_id required")
		return
	}
	req.Lead.MedicationID = strings.TrimSpace(req.Lead.MedicationID)
	req.Lead.WorkerID = strings.TrimSpace(req.Lead.WorkerID)
	if req.Lead.Rating != 0 && (req.Lead.Rating < 1 || req.Lead.Rating > 5) {
		respondError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	ctx := r.Context()

	var dueDate *time.Time
	if req.Lead.ApplicationDate != "" {
		d, err := time.ParseInLocation("2006-01-02", req.Lead.ApplicationDate, time.UTC)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid application_date, expected YYYY-MM-DD")
			return
		}
		dueDate = &d
	} else if req.Lead.MedicationID != "" {
		med, err := h.catalog.GetMedication(ctx, req.Lead.MedicationID)
		if err != nil {
			respondAppError(w, h.logger, err, "failed to load medication")
			return
		}
		d, err := reminder.DueDate(time.Now().UTC(), med)
		if err != nil {
			respondAppError(w, h.logger, err, "failed to compute due date")
			return
		}
		dueDate = &d
	}

	if req.Lead.WorkerID != "" {
		if _, err := h.shifts.GetNurse(ctx, req.Lead.WorkerID); err != nil {
			respondAppError(w, h.logger, err, "failed to load nurse")
			return
		}
	}

	client, found, err := h.users.FindClientByEmailOrNationalID(ctx, req.Client.Email, req.Client.NationalID)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to look up client")
		return
	}

	tx, err := h.pool.Begin(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if !found {
		hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()[:12]), bcrypt.DefaultCost)
		if err != nil {
			respondAppError(w, h.logger, err, "failed to create account")
			return
		}
		client = model.Client{
			ID:           uuid.NewString(),
			Email:        req.Client.Email,
			NationalID:   req.Client.NationalID,
			FirstName:    strings.TrimSpace(req.Client.FirstName),
			LastName:     strings.TrimSpace(req.Client.LastName),
			Phone:        strings.TrimSpace(req.Client.Phone),
			PasswordHash: string(hash),
		}
		if err := h.users.CreateClientTx(ctx, tx, &client, nil); err != nil {
			respondAppError(w, h.logger, err, "failed to create account")
			return
		}
	}

	rem := &model.Reminder{
		PatientID:        client.ID,
		MedicationID:     req.Lead.MedicationID,
		MedicationText:   strings.TrimSpace(req.Lead.MedicationText),
		SuggestedNurseID: req.Lead.WorkerID,
		DueDate:          dueDate,
		Origin:           model.OriginWeb,
		Status:           model.ReminderPending,
		Notes:            strings.TrimSpace(req.Lead.Notes),
	}
	id, err := h.reminders.CreateTx(ctx, tx, rem)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to create reminder")
		return
	}

	if req.Lead.Rating >= 1 && req.Lead.WorkerID != "" {
		fb := &model.NurseFeedback{
			NurseID:   req.Lead.WorkerID,
			PatientID: client.ID,
			Rating:    req.Lead.Rating,
			Comment:   strings.TrimSpace(req.Lead.Notes),
		}
		if err := h.users.InsertFeedback(ctx, tx, fb); err != nil {
			respondAppError(w, h.logger, err, "failed to record feedback")
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to commit")
		return
	}

	respondJSON(w, http.StatusCreated, leadResponse{Status: "success", ReminderID: id})
}
