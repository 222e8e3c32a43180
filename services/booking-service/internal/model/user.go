package model

import "time"

// Client is a patient account. Accounts are matched by email OR national id,
// and auto-created by the public booking flow when neither matches.
type Client struct {
	ID           string
	Email        string
	NationalID   string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

// PatientProfile carries the location data frozen into AT_HOME appointments
// at creation time.
type PatientProfile struct {
	UserID    string
	Address   string
	Reference string
	City      string
	Latitude  *float64
	Longitude *float64
	MapsLink  string
}

// ServiceReport is the close-out a nurse files after a visit. A follow-up
// flag on it spawns a SYSTEM reminder.
type ServiceReport struct {
	ID             string
	AppointmentID  string
	TechnicalNotes string
	NeedsFollowUp  bool
	FollowUpDate   *time.Time
	FollowUpNotes  string
	RegisteredBy   string
	CreatedAt      time.Time
}

// NurseFeedback is a patient rating captured by the public lead endpoint.
type NurseFeedback struct {
	ID        string
	NurseID   string
	PatientID string
	Rating    int // 1..5
	Comment   string
	CreatedAt time.Time
}
