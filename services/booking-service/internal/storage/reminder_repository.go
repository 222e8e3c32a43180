package storage

import (
	"context"
	"errors"

	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/services/booking-service/internal/apperr"
	"github.com/careops/homenurse/services/booking-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReminderRepository struct {
	pool *db.Pool
}

func NewReminderRepository(pool *db.Pool) *ReminderRepository {
	return &ReminderRepository{pool: pool}
}

const reminderColumns = `
	id::text, patient_id::text, COALESCE(suggested_service_id::text, ''),
	COALESCE(medication_id::text, ''), COALESCE(medication_text, ''),
	COALESCE(origin_appointment_id::text, ''), COALESCE(suggested_nurse_id::text, ''),
	due_date, origin, status, COALESCE(notes, ''), created_at`

func (r *ReminderRepository) CreateTx(ctx context.Context, tx pgx.Tx, rem *model.Reminder) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO reminders
			(id, patient_id, suggested_service_id, medication_id, medication_text,
			 origin_appointment_id, suggested_nurse_id, due_date, origin, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, id, rem.PatientID, nullIfEmpty(rem.SuggestedServiceID), nullIfEmpty(rem.MedicationID),
		rem.MedicationText, nullIfEmpty(rem.OriginAppointmentID), nullIfEmpty(rem.SuggestedNurseID),
		rem.DueDate, rem.Origin, rem.Status, rem.Notes)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *ReminderRepository) Get(ctx context.Context, id string) (model.Reminder, error) {
	rem, err := scanReminder(r.pool.QueryRow(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Reminder{}, apperr.NotFound("reminder %s not found", id)
	}
	return rem, err
}

// List returns reminders, optionally filtered by status, due-soonest first
// (undated ones last).
func (r *ReminderRepository) List(ctx context.Context, status model.ReminderStatus, limit int) ([]model.Reminder, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE ($1 = '' OR status = $1)
		ORDER BY due_date ASC NULLS LAST, created_at DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// UpdateStatus applies a transition after checking it against the state
// machine under a row lock.
func (r *ReminderRepository) UpdateStatus(ctx context.Context, id string, next model.ReminderStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current model.ReminderStatus
	err = tx.QueryRow(ctx, `
		SELECT status
		FROM reminders
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("reminder %s not found", id)
	}
	if err != nil {
		return err
	}

	if !current.CanTransitionTo(next) {
		return apperr.Validation("reminder cannot move from %s to %s", current, next)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE reminders
		SET status = $2
		WHERE id = $1
	`, id, next); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ExistsForAppointment guards against duplicate follow-up reminders from
// repeated service-report saves.
func (r *ReminderRepository) ExistsForAppointment(ctx context.Context, appointmentID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reminders WHERE origin_appointment_id = $1
		)
	`, appointmentID).Scan(&exists)
	return exists, err
}

func scanReminder(row pgx.Row) (model.Reminder, error) {
	var rem model.Reminder
	err := row.Scan(
		&rem.ID, &rem.PatientID, &rem.SuggestedServiceID,
		&rem.MedicationID, &rem.MedicationText,
		&rem.OriginAppointmentID, &rem.SuggestedNurseID,
		&rem.DueDate, &rem.Origin, &rem.Status, &rem.Notes, &rem.CreatedAt,
	)
	if err != nil {
		return model.Reminder{}, err
	}
	return rem, nil
}
