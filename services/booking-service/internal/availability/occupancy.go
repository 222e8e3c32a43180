package availability

import (
	"log/slog"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/model"
)

// missingEndFallback is how long an appointment is assumed to take when its
// derived end time is missing. Such rows are a data inconsistency; each one
// is logged so it can be repaired.
const missingEndFallback = time.Hour

// BusyIntervals converts a nurse's occupying appointments into the half-open
// intervals the slot enumerator rejects against.
func BusyIntervals(appts []model.Appointment, logger *slog.Logger) []Interval {
	busy := make([]Interval, 0, len(appts))
	for _, a := range appts {
		end := a.EndTime
		if end.IsZero() {
			end = a.StartTime.Add(missingEndFallback)
			if logger != nil {
				logger.Warn("appointment missing end time, assuming one hour",
					"appointment_id", a.ID,
					"nurse_id", a.NurseID,
					"start", a.StartTime.Format(time.RFC3339),
				)
			}
		}
		busy = append(busy, Interval{Start: a.StartTime, End: end})
	}
	return busy
}
