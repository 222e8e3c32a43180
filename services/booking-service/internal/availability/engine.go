package availability

import (
	"context"
	"log/slog"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/model"
)

// DefaultStep is the slot grid granularity offered to the public API.
const DefaultStep = 60 * time.Minute

// ShiftSource resolves which nurses work on a date.
type ShiftSource interface {
	ShiftsOn(ctx context.Context, date time.Time) ([]model.NurseShift, error)
}

// OccupancySource yields a nurse's already-committed appointments on a date,
// restricted to the occupying statuses.
type OccupancySource interface {
	OccupiedByNurseOn(ctx context.Context, nurseID string, date time.Time) ([]model.Appointment, error)
}

// ServiceSource resolves catalog services.
type ServiceSource interface {
	GetService(ctx context.Context, id string) (model.Service, error)
}

// NurseAvailability is one marketplace entry: a nurse plus their free start
// times ("HH:MM") for the queried date.
type NurseAvailability struct {
	Nurse model.Nurse
	Slots []string
}

type Engine struct {
	shifts    ShiftSource
	occupancy OccupancySource
	services  ServiceSource
	step      time.Duration
	logger    *slog.Logger
}

func NewEngine(shifts ShiftSource, occupancy OccupancySource, services ServiceSource, step time.Duration, logger *slog.Logger) *Engine {
	if step <= 0 {
		step = DefaultStep
	}
	return &Engine{
		shifts:    shifts,
		occupancy: occupancy,
		services:  services,
		step:      step,
		logger:    logger,
	}
}

// ForDate runs the availability query for one date and service: every shift
// matching the date is enumerated independently against its nurse's
// occupancy, and the results are grouped by nurse.
//
// A nurse with several matching shifts (a recurring and a one-off, say) gets
// the slot lists concatenated in shift order with duplicates included, since
// a duplicate start usually means a data-entry mistake worth surfacing.
// Nurses with no free slot are omitted entirely.
func (e *Engine) ForDate(ctx context.Context, date time.Time, serviceID string) ([]NurseAvailability, error) {
	svc, err := e.services.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	duration := time.Duration(svc.DurationMinutes) * time.Minute

	shifts, err := e.shifts.ShiftsOn(ctx, date)
	if err != nil {
		return nil, err
	}

	busyByNurse := make(map[string][]Interval)
	slotsByNurse := make(map[string][]string)
	var order []model.Nurse

	for _, ns := range shifts {
		busy, ok := busyByNurse[ns.Nurse.ID]
		if !ok {
			appts, err := e.occupancy.OccupiedByNurseOn(ctx, ns.Nurse.ID, date)
			if err != nil {
				return nil, err
			}
			busy = BusyIntervals(appts, e.logger)
			busyByNurse[ns.Nurse.ID] = busy
		}

		start, end := ns.Shift.Window(date)
		var brk *Interval
		if bs, be, ok := ns.Shift.BreakOn(date); ok {
			brk = &Interval{Start: bs, End: be}
		}

		starts := Slots(start, end, brk, duration, e.step, busy)
		if len(starts) == 0 {
			continue
		}

		if _, seen := slotsByNurse[ns.Nurse.ID]; !seen {
			order = append(order, ns.Nurse)
		}
		for _, s := range starts {
			slotsByNurse[ns.Nurse.ID] = append(slotsByNurse[ns.Nurse.ID], s.Format("15:04"))
		}
	}

	out := make([]NurseAvailability, 0, len(order))
	for _, nurse := range order {
		out = append(out, NurseAvailability{Nurse: nurse, Slots: slotsByNurse[nurse.ID]})
	}
	return out, nil
}
