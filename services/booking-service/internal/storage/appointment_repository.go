package storage

import (
	"context"
	"errors"
	"time"

	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/services/booking-service/internal/apperr"
	"github.com/careops/homenurse/services/booking-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const appointmentColumns = `
	id::text, patient_id::text, COALESCE(nurse_id::text, ''), service_id::text, status,
	date, start_time, COALESCE(end_time, 'epoch'::timestamptz),
	location_type, address, COALESCE(reference, ''), COALESCE(maps_link, ''),
	latitude, longitude, has_own_supplies, final_price_cents, departure_time,
	rescheduled, COALESCE(notes, ''), created_at`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID, &a.PatientID, &a.NurseID, &a.ServiceID, &a.Status,
		&a.Date, &a.StartTime, &a.EndTime,
		&a.LocationType, &a.Address, &a.Reference, &a.MapsLink,
		&a.Latitude, &a.Longitude, &a.HasOwnSupplies, &a.FinalPriceCents, &a.DepartureTime,
		&a.Rescheduled, &a.Notes, &a.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	// The epoch sentinel stands in for a NULL end time (legacy rows).
	if a.EndTime.Unix() == 0 {
		a.EndTime = time.Time{}
	}
	return a, nil
}

// CreateTx inserts a fully-derived appointment inside the booking transaction
// and returns its id.
func (r *AppointmentRepository) CreateTx(ctx context.Context, tx pgx.Tx, a *model.Appointment) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO appointments
			(id, patient_id, nurse_id, service_id, status, date, start_time, end_time,
			 location_type, address, reference, maps_link, latitude, longitude,
			 has_own_supplies, final_price_cents, departure_time, rescheduled, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, id, a.PatientID, nullIfEmpty(a.NurseID), a.ServiceID, a.Status, a.Date, a.StartTime, a.EndTime,
		a.LocationType, a.Address, a.Reference, a.MapsLink, a.Latitude, a.Longitude,
		a.HasOwnSupplies, a.FinalPriceCents, a.DepartureTime, a.Rescheduled, a.Notes)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (model.Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Appointment{}, apperr.NotFound("appointment %s not found", id)
	}
	return a, err
}

// GetForUpdate locks the appointment row for the duration of an edit
// transaction.
func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Appointment, error) {
	a, err := scanAppointment(tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Appointment{}, apperr.NotFound("appointment %s not found", id)
	}
	return a, err
}

// UpdateTx rewrites the editable and derived fields together; derived values
// are never persisted separately from the inputs they were computed from.
func (r *AppointmentRepository) UpdateTx(ctx context.Context, tx pgx.Tx, a *model.Appointment) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET nurse_id = $2,
			service_id = $3,
			status = $4,
			date = $5,
			start_time = $6,
			end_time = $7,
			location_type = $8,
			address = $9,
			reference = $10,
			maps_link = $11,
			latitude = $12,
			longitude = $13,
			has_own_supplies = $14,
			final_price_cents = $15,
			departure_time = $16,
			rescheduled = $17,
			notes = $18
		WHERE id = $1
	`, a.ID, nullIfEmpty(a.NurseID), a.ServiceID, a.Status, a.Date, a.StartTime, a.EndTime,
		a.LocationType, a.Address, a.Reference, a.MapsLink, a.Latitude, a.Longitude,
		a.HasOwnSupplies, a.FinalPriceCents, a.DepartureTime, a.Rescheduled, a.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment %s not found", a.ID)
	}
	return nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET status = $2
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment %s not found", id)
	}
	return nil
}

// OccupiedByNurseOn returns the nurse's appointments on a date whose status
// blocks their interval, ordered by start time.
func (r *AppointmentRepository) OccupiedByNurseOn(ctx context.Context, nurseID string, date time.Time) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE nurse_id = $1
			AND date = $2
			AND status = ANY($3)
		ORDER BY start_time ASC
	`, nurseID, date, occupyingStatusStrings())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// OccupiedByNurseOnForUpdate is the commit-time variant: it locks the
// occupying rows so two concurrent bookings for the same nurse/date
// serialize, letting the caller re-validate non-overlap before insert.
func (r *AppointmentRepository) OccupiedByNurseOnForUpdate(ctx context.Context, tx pgx.Tx, nurseID string, date time.Time) ([]model.Appointment, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE nurse_id = $1
			AND date = $2
			AND status = ANY($3)
		ORDER BY start_time ASC
		FOR UPDATE
	`, nurseID, date, occupyingStatusStrings())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *AppointmentRepository) ListByDate(ctx context.Context, date time.Time, nurseID string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE date = $1
			AND ($2 = '' OR nurse_id::text = $2)
		ORDER BY start_time ASC
		LIMIT $3
	`, date, nurseID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	var appts []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func occupyingStatusStrings() []string {
	out := make([]string, len(model.OccupyingStatuses))
	for i, s := range model.OccupyingStatuses {
		out[i] = string(s)
	}
	return out
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// IsUniqueViolation reports a Postgres unique-constraint error (23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsExclusionViolation reports a Postgres exclusion-constraint error (23P01),
// raised by the overlap constraint on appointments.
func IsExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}
