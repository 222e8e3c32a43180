package model

import "time"

type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "PENDING"
	StatusConfirmed   AppointmentStatus = "CONFIRMED"
	StatusEnRoute     AppointmentStatus = "EN_ROUTE"
	StatusRescheduled AppointmentStatus = "RESCHEDULED"
	StatusCancelled   AppointmentStatus = "CANCELLED"
	StatusCompleted   AppointmentStatus = "COMPLETED"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusEnRoute, StatusRescheduled,
		StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// OccupyingStatuses is the single authoritative set of statuses that block a
// nurse's time from being offered again. Cancelled and completed visits free
// the slot.
var OccupyingStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusEnRoute,
	StatusRescheduled,
}

// Occupying reports whether an appointment in this status blocks its interval.
func (s AppointmentStatus) Occupying() bool {
	for _, o := range OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

type LocationType string

const (
	LocationHome  LocationType = "AT_HOME"
	LocationBase  LocationType = "AT_BASE"
	LocationOther LocationType = "OTHER"
)

func (l LocationType) Valid() bool {
	switch l {
	case LocationHome, LocationBase, LocationOther:
		return true
	}
	return false
}

// Appointment is a committed visit. EndTime, DepartureTime, the location
// snapshot and FinalPriceCents are derived; nothing outside the booking
// factory writes them.
type Appointment struct {
	ID        string
	PatientID string
	NurseID   string // empty when unassigned
	ServiceID string
	Status    AppointmentStatus

	Date      time.Time // midnight UTC
	StartTime time.Time
	EndTime   time.Time // zero on legacy rows with missing data

	LocationType LocationType
	Address      string
	Reference    string
	MapsLink     string
	Latitude     *float64
	Longitude    *float64

	HasOwnSupplies  bool
	FinalPriceCents int64
	DepartureTime   *time.Time

	Rescheduled bool
	Notes       string
	CreatedAt   time.Time
}
