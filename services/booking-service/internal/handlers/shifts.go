package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/model"
	"github.com/careops/homenurse/services/booking-service/internal/storage"
)

type ShiftHandler struct {
	shifts *storage.ShiftRepository
	logger *slog.Logger
}

func NewShiftHandler(shifts *storage.ShiftRepository, logger *slog.Logger) *ShiftHandler {
	return &ShiftHandler{shifts: shifts, logger: logger}
}

type shiftItem struct {
	ID          string `json:"id"`
	NurseID     string `json:"nurse_id"`
	Weekday     *int   `json:"weekday,omitempty"`
	Date        string `json:"date,omitempty"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	BreakStart  *int   `json:"break_start_minute,omitempty"`
	BreakEnd    *int   `json:"break_end_minute,omitempty"`
	Active      bool   `json:"active"`
}

type createShiftRequest struct {
	NurseID     string `json:"nurse_id"`
	Weekday     *int   `json:"weekday"`
	Date        string `json:"date"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	BreakStart  *int   `json:"break_start_minute"`
	BreakEnd    *int   `json:"break_end_minute"`
}

func (h *ShiftHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	nurseID := strings.TrimSpace(r.URL.Query().Get("nurse_id"))
	if nurseID == "" {
		respondError(w, http.StatusBadRequest, "nurse_id required")
		return
	}

	shifts, err := h.shifts.ListByNurse(r.Context(), nurseID)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to list shifts")
		return
	}

	items := make([]shiftItem, 0, len(shifts))
	for _, s := range shifts {
		items = append(items, shiftToItem(s))
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "success", "shifts": items})
}

func (h *ShiftHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req createShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.NurseID = strings.TrimSpace(req.NurseID)
	req.Date = strings.TrimSpace(req.Date)
	if req.NurseID == "" {
		respondError(w, http.StatusBadRequest, "nurse_id required")
		return
	}

	shift, msg := buildShift(req)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	id, err := h.shifts.Create(r.Context(), shift)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to create shift")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "success", "shift_id": id})
}

func (h *ShiftHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		ShiftID string `json:"shift_id"`
		createShiftRequest
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.ShiftID = strings.TrimSpace(req.ShiftID)
	req.NurseID = strings.TrimSpace(req.NurseID)
	req.Date = strings.TrimSpace(req.Date)
	if req.ShiftID == "" || req.NurseID == "" {
		respondError(w, http.StatusBadRequest, "shift_id and nurse_id required")
		return
	}

	shift, msg := buildShift(req.createShiftRequest)
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	shift.ID = req.ShiftID

	if err := h.shifts.Update(r.Context(), shift); err != nil {
		respondAppError(w, h.logger, err, "failed to update shift")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *ShiftHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		ShiftID string `json:"shift_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.ShiftID = strings.TrimSpace(req.ShiftID)
	if req.ShiftID == "" {
		respondError(w, http.StatusBadRequest, "shift_id required")
		return
	}

	if err := h.shifts.Deactivate(r.Context(), req.ShiftID); err != nil {
		respondAppError(w, h.logger, err, "failed to deactivate shift")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// buildShift validates the request and returns either a shift or an error
// message. A shift recurs weekly or happens once, never both; a break needs
// both bounds and must sit inside the working window.
func buildShift(req createShiftRequest) (model.Shift, string) {
	hasWeekday := req.Weekday != nil
	hasDate := req.Date != ""
	if hasWeekday == hasDate {
		return model.Shift{}, "exactly one of weekday or date is required"
	}

	var rec model.Recurrence
	if hasWeekday {
		if *req.Weekday < 0 || *req.Weekday > 6 {
			return model.Shift{}, "weekday must be 0 (Sunday) through 6 (Saturday)"
		}
		rec = model.Weekly(time.Weekday(*req.Weekday))
	} else {
		d, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
		if err != nil {
			return model.Shift{}, "invalid date, expected YYYY-MM-DD"
		}
		rec = model.OneOff(d)
	}

	if req.StartMinute < 0 || req.EndMinute > 24*60 || req.StartMinute >= req.EndMinute {
		return model.Shift{}, "start_minute must be before end_minute within the day"
	}

	var brk *model.BreakWindow
	if (req.BreakStart == nil) != (req.BreakEnd == nil) {
		return model.Shift{}, "break requires both break_start_minute and break_end_minute"
	}
	if req.BreakStart != nil {
		if *req.BreakStart >= *req.BreakEnd || *req.BreakStart < req.StartMinute || *req.BreakEnd > req.EndMinute {
			return model.Shift{}, "break must fall inside the working window"
		}
		brk = &model.BreakWindow{StartMinute: *req.BreakStart, EndMinute: *req.BreakEnd}
	}

	return model.Shift{
		NurseID:     req.NurseID,
		Recurrence:  rec,
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
		Break:       brk,
		Active:      true,
	}, ""
}

func shiftToItem(s model.Shift) shiftItem {
	item := shiftItem{
		ID:          s.ID,
		NurseID:     s.NurseID,
		StartMinute: s.StartMinute,
		EndMinute:   s.EndMinute,
		Active:      s.Active,
	}
	if wd, ok := s.Recurrence.WeeklyOn(); ok {
		d := int(wd)
		item.Weekday = &d
	}
	if date, ok := s.Recurrence.OneOffOn(); ok {
		item.Date = date.Format("2006-01-02")
	}
	if s.Break != nil {
		bs, be := s.Break.StartMinute, s.Break.EndMinute
		item.BreakStart = &bs
		item.BreakEnd = &be
	}
	return item
}
