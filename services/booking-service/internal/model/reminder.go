package model

import "time"

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "PENDING"
	ReminderContacted ReminderStatus = "CONTACTED"
	ReminderScheduled ReminderStatus = "SCHEDULED"
	ReminderDiscarded ReminderStatus = "DISCARDED"
)

func (s ReminderStatus) Valid() bool {
	switch s {
	case ReminderPending, ReminderContacted, ReminderScheduled, ReminderDiscarded:
		return true
	}
	return false
}

// CanTransitionTo enforces the reminder lifecycle:
// PENDING -> CONTACTED -> SCHEDULED, with DISCARDED reachable from any
// non-terminal state. SCHEDULED and DISCARDED are terminal.
func (s ReminderStatus) CanTransitionTo(next ReminderStatus) bool {
	switch s {
	case ReminderPending:
		return next == ReminderContacted || next == ReminderDiscarded
	case ReminderContacted:
		return next == ReminderScheduled || next == ReminderDiscarded
	}
	return false
}

type ReminderOrigin string

const (
	OriginSystem ReminderOrigin = "SYSTEM" // created by a service-report close-out
	OriginWeb    ReminderOrigin = "WEB"    // public lead capture
)

// Reminder is a follow-up lead: "this patient should be contacted around
// DueDate to book the next visit". OriginAppointmentID is traceability only;
// the reminder never mutates its origin appointment.
type Reminder struct {
	ID                  string
	PatientID           string
	SuggestedServiceID  string // optional
	MedicationID        string // optional catalog reference
	MedicationText      string // optional free text
	OriginAppointmentID string // optional
	SuggestedNurseID    string // optional
	DueDate             *time.Time
	Origin              ReminderOrigin
	Status              ReminderStatus
	Notes               string
	CreatedAt           time.Time
}
