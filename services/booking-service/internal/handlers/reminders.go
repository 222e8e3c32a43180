package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/model"
	"github.com/careops/homenurse/services/booking-service/internal/storage"
)

type ReminderHandler struct {
	reminders *storage.ReminderRepository
	logger    *slog.Logger
}

func NewReminderHandler(reminders *storage.ReminderRepository, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, logger: logger}
}

type reminderItem struct {
	ID                  string `json:"id"`
	PatientID           string `json:"patient_id"`
	SuggestedServiceID  string `json:"suggested_service_id,omitempty"`
	MedicationID        string `json:"medication_id,omitempty"`
	MedicationText      string `json:"medication_text,omitempty"`
	OriginAppointmentID string `json:"origin_appointment_id,omitempty"`
	SuggestedNurseID    string `json:"suggested_nurse_id,omitempty"`
	DueDate             string `json:"due_date,omitempty"`
	Origin              string `json:"origin"`
	Status              string `json:"status"`
	Notes               string `json:"notes,omitempty"`
	CreatedAt           string `json:"created_at"`
}

func reminderToItem(rem model.Reminder) reminderItem {
	item := reminderItem{
		ID:                  rem.ID,
		PatientID:           rem.PatientID,
		SuggestedServiceID:  rem.SuggestedServiceID,
		MedicationID:        rem.MedicationID,
		MedicationText:      rem.MedicationText,
		OriginAppointmentID: rem.OriginAppointmentID,
		SuggestedNurseID:    rem.SuggestedNurseID,
		Origin:              string(rem.Origin),
		Status:              string(rem.Status),
		Notes:               rem.Notes,
		CreatedAt:           rem.CreatedAt.UTC().Format(time.RFC3339),
	}
	if rem.DueDate != nil {
		item.DueDate = rem.DueDate.Format("2006-01-02")
	}
	return item
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var status model.ReminderStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status = model.ReminderStatus(raw)
		if !status.Valid() {
			respondError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	reminders, err := h.reminders.List(r.Context(), status, limit)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to list reminders")
		return
	}

	items := make([]reminderItem, 0, len(reminders))
	for _, rem := range reminders {
		items = append(items, reminderToItem(rem))
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "success", "reminders": items})
}

func (h *ReminderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		ReminderID string `json:"reminder_id"`
		Status     string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.ReminderID = strings.TrimSpace(req.ReminderID)
	next := model.ReminderStatus(strings.TrimSpace(req.Status))
	if req.ReminderID == "" || !next.Valid() {
		respondError(w, http.StatusBadRequest, "reminder_id and a valid status are required")
		return
	}

	if err := h.reminders.UpdateStatus(r.Context(), req.ReminderID, next); err != nil {
		respondAppError(w, h.logger, err, "failed to update reminder")
		return
	}

	rem, err := h.reminders.Get(r.Context(), req.ReminderID)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to load reminder")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "success", "reminder": reminderToItem(rem)})
}
