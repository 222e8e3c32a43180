// Package handlers implements the booking service HTTP API. All responses
// share one JSON envelope: {"status":"success",...} or
// {"status":"error","message":...}.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/careops/homenurse/services/booking-service/internal/apperr"
)

func respondJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"status": "error", "message": msg})
}

// respondAppError maps the domain error taxonomy onto HTTP status codes and
// hides internal details behind the fallback message.
func respondAppError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	switch {
	case apperr.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case apperr.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case apperr.IsConflict(err):
		respondError(w, http.StatusConflict, err.Error())
	default:
		logger.Error(fallback, "err", err)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
