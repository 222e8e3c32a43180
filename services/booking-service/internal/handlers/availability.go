package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/availability"
)

type AvailabilityHandler struct {
	engine *availability.Engine
	logger *slog.Logger
}

func NewAvailabilityHandler(engine *availability.Engine, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{engine: engine, logger: logger}
}

type workerItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	PhotoURL *string `json:"photo_url"`
}

type availabilityItem struct {
	Worker workerItem `json:"worker"`
	Slots  []string   `json:"slots"`
}

type availabilityResponse struct {
	Status       string             `json:"status"`
	Availability []availabilityItem `json:"availability"`
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	if dateStr == "" || serviceID == "" {
		respondError(w, http.StatusBadRequest, "date and service_id are required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entries, err := h.engine.ForDate(r.Context(), date, serviceID)
	if err != nil {
		respondAppError(w, h.logger, err, "failed to compute availability")
		return
	}

	items := make([]availabilityItem, 0, len(entries))
	for _, e := range entries {
		item := availabilityItem{
			Worker: workerItem{ID: e.Nurse.ID, Name: e.Nurse.Name},
			Slots:  e.Slots,
		}
		if e.Nurse.PhotoURL != "" {
			photo := e.Nurse.PhotoURL
			item.Worker.PhotoURL = &photo
		}
		items = append(items, item)
	}

	respondJSON(w, http.StatusOK, availabilityResponse{Status: "success", Availability: items})
}
