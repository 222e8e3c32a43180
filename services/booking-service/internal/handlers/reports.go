package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/services/booking-service/internal/model"
	"github.com/careops/homenurse/services/booking-service/internal/storage"
)

type ReportHandler struct {
	pool      *db.Pool
	reports   *storage.ReportRepository
	appts     *storage.AppointmentRepository
	reminders *storage.ReminderRepository
	catalog   *storage.CatalogRepository
	logger    *slog.Logger
}

func NewReportHandler(pool *db.Pool, reports *storage.ReportRepository, appts *storage.AppointmentRepository, reminders *storage.ReminderRepository, catalog *storage.CatalogRepository, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{pool: pool, reports: reports, appts: appts, reminders: reminders, catalog: catalog, logger: logger}
}

const defaultReturnWaitHours = 24

// returnVisitDue computes when a service's mandatory return visit is due,
// counted from the visit that was just closed out.
func returnVisitDue(svc model.Service, start time.Time) time.Time {
	wait := svc.ReturnWaitHours
	if wait <= 0 {
		wait = defaultReturnWaitHours
	}
	return start.Add(time.Duration(wait) * time.Hour)
}

type createReportRequest struct {
	AppointmentID  string `json:"appointment_id"`
	TechnicalNotes string `json:"technical_notes"`
	NeedsFollowUp  bool   `json:"needs_follow_up"`
	FollowUpDate   string `json:"follow_up_date"`
	FollowUpNotes  string `json:"follow_up_notes"`
	RegisteredBy   string `json:"registered_by"`
}

// Create files the close-out report for a visit. A follow-up flag spawns a
// SYSTEM reminder for the patient unless the appointment already has one;
// services that mandate a return visit (sutures, IV courses) get one
// scheduled automatically even without the flag.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		respondError(w, http.StatusBadRequest, "appointment_id required")
		return
	}

	var followUpDate *time.Time
	if req.FollowUpDate != "" {
		d, err := time.ParseInLocation("2006-01-02", req.FollowUpDate, time.UTC)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid follow_up_date, expected YYYY-MM-DD")
			return
		}
		followUpDate = &d
	}
	if req.NeedsFollowUp && followUpDate == nil {
		respondError(w, http.StatusBadRequest, "follow_up_date required when needs_follow_up is set")
		return
	}

	ctx := r.Context()

	appt, err := h.appts.Get(ctx, req.AppointmentID)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to load appointment")
		return
	}

	svc, err := h.catalog.GetService(ctx, appt.ServiceID)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to load service")
		return
	}

	hasReminder, err := h.reminders.ExistsForAppointment(ctx, req.AppointmentID)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to check reminders")
		return
	}

	tx, err := h.pool.Begin(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	report := &model.ServiceReport{
		AppointmentID:  appt.ID,
		TechnicalNotes: strings.TrimSpace(req.TechnicalNotes),
		NeedsFollowUp:  req.NeedsFollowUp,
		FollowUpDate:   followUpDate,
		FollowUpNotes:  strings.TrimSpace(req.FollowUpNotes),
		RegisteredBy:   strings.TrimSpace(req.RegisteredBy),
	}
	reportID, err := h.reports.CreateTx(ctx, tx, report)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to create report")
		return
	}

	dueDate := followUpDate
	notes := strings.TrimSpace(req.FollowUpNotes)
	if !req.NeedsFollowUp && svc.RequiresReturn {
		due := returnVisitDue(svc, appt.StartTime)
		dueDate = &due
		if notes == "" {
			notes = "Visita de retorno programada"
		}
	}

	reminderID := ""
	if (req.NeedsFollowUp || svc.RequiresReturn) && !hasReminder {
		rem := &model.Reminder{
			PatientID:           appt.PatientID,
			SuggestedServiceID:  appt.ServiceID,
			OriginAppointmentID: appt.ID,
			SuggestedNurseID:    appt.NurseID,
			DueDate:             dueDate,
			Origin:              model.OriginSystem,
			Status:              model.ReminderPending,
			Notes:               notes,
		}
		reminderID, err = h.reminders.CreateTx(ctx, tx, rem)
		if err != nil {
			respondAppError(w, h.logger, err, "failed to create follow-up reminder")
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to commit")
		return
	}

	resp := map[string]string{"status": "success", "report_id": reportID}
	if reminderID != "" {
		resp["reminder_id"] = reminderID
	}
	respondJSON(w, http.StatusCreated, resp)
}
