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
)

// ShiftRepository is the shift calendar store. Recurrence maps to the
// mutually exclusive weekday / one_off_date columns; the tagged variant in
// the model keeps "both set" and "neither set" unrepresentable in code.
type ShiftRepository struct {
	pool *db.Pool
}

func NewShiftRepository(pool *db.Pool) *ShiftRepository {
	return &ShiftRepository{pool: pool}
}

// ShiftsOn resolves the shift calendar for one date: active shifts whose
// one-off date equals the date, plus active weekly shifts on its weekday.
// Both kinds are returned together when they coexist for a nurse; there is
// no specific-over-recurring override.
func (r *ShiftRepository) ShiftsOn(ctx context.Context, date time.Time) ([]model.NurseShift, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := r.pool.Query(ctx, `
		SELECT s.id::text, s.nurse_id::text, s.weekday, s.one_off_date,
			s.start_minute, s.end_minute, s.break_start_minute, s.break_end_minute, s.active,
			n.name, COALESCE(n.photo_url, ''), n.active
		FROM shifts s
		JOIN nurses n ON n.id = s.nurse_id
		WHERE s.active = true
			AND n.active = true
			AND (s.one_off_date = $1 OR (s.one_off_date IS NULL AND s.weekday = $2))
		ORDER BY n.name ASC, s.start_minute ASC
	`, day, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.NurseShift
	for rows.Next() {
		ns, err := scanNurseShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ShiftRepository) ListByNurse(ctx context.Context, nurseID string) ([]model.Shift, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id::text, s.nurse_id::text, s.weekday, s.one_off_date,
			s.start_minute, s.end_minute, s.break_start_minute, s.break_end_minute, s.active
		FROM shifts s
		WHERE s.nurse_id = $1
		ORDER BY s.weekday ASC NULLS LAST, s.one_off_date ASC NULLS LAST, s.start_minute ASC
	`, nurseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ShiftRepository) Create(ctx context.Context, s model.Shift) (string, error) {
	id := uuid.NewString()
	weekday, oneOff := recurrenceColumns(s.Recurrence)
	breakStart, breakEnd := breakColumns(s.Break)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shifts
			(id, nurse_id, weekday, one_off_date, start_minute, end_minute,
			 break_start_minute, break_end_minute, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, s.NurseID, weekday, oneOff, s.StartMinute, s.EndMinute, breakStart, breakEnd, s.Active)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *ShiftRepository) Update(ctx context.Context, s model.Shift) error {
	weekday, oneOff := recurrenceColumns(s.Recurrence)
	breakStart, breakEnd := breakColumns(s.Break)
	tag, err := r.pool.Exec(ctx, `
		UPDATE shifts
		SET weekday = $2,
			one_off_date = $3,
			start_minute = $4,
			end_minute = $5,
			break_start_minute = $6,
			break_end_minute = $7,
			active = $8
		WHERE id = $1
	`, s.ID, weekday, oneOff, s.StartMinute, s.EndMinute, breakStart, breakEnd, s.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("shift %s not found", s.ID)
	}
	return nil
}

func (r *ShiftRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shifts
		SET active = false
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("shift %s not found", id)
	}
	return nil
}

func scanNurseShift(rows pgx.Rows) (model.NurseShift, error) {
	var (
		ns         model.NurseShift
		weekday    *int
		oneOff     *time.Time
		breakStart *int
		breakEnd   *int
	)
	err := rows.Scan(
		&ns.Shift.ID, &ns.Shift.NurseID, &weekday, &oneOff,
		&ns.Shift.StartMinute, &ns.Shift.EndMinute, &breakStart, &breakEnd, &ns.Shift.Active,
		&ns.Nurse.Name, &ns.Nurse.PhotoURL, &ns.Nurse.Active,
	)
	if err != nil {
		return model.NurseShift{}, err
	}
	ns.Nurse.ID = ns.Shift.NurseID
	ns.Shift.Recurrence = recurrenceFromColumns(weekday, oneOff)
	ns.Shift.Break = breakFromColumns(breakStart, breakEnd)
	return ns, nil
}

func scanShift(rows pgx.Rows) (model.Shift, error) {
	var (
		s          model.Shift
		weekday    *int
		oneOff     *time.Time
		breakStart *int
		breakEnd   *int
	)
	err := rows.Scan(
		&s.ID, &s.NurseID, &weekday, &oneOff,
		&s.StartMinute, &s.EndMinute, &breakStart, &breakEnd, &s.Active,
	)
	if err != nil {
		return model.Shift{}, err
	}
	s.Recurrence = recurrenceFromColumns(weekday, oneOff)
	s.Break = breakFromColumns(breakStart, breakEnd)
	return s, nil
}

func recurrenceColumns(r model.Recurrence) (weekday any, oneOff any) {
	if wd, ok := r.WeeklyOn(); ok {
		return int(wd), nil
	}
	if date, ok := r.OneOffOn(); ok {
		return nil, date
	}
	return nil, nil
}

// recurrenceFromColumns prefers the one-off date when a legacy row carries
// both columns; the variant type cannot hold both.
func recurrenceFromColumns(weekday *int, oneOff *time.Time) model.Recurrence {
	if oneOff != nil {
		return model.OneOff(*oneOff)
	}
	if weekday != nil {
		return model.Weekly(time.Weekday(*weekday))
	}
	return model.Recurrence{}
}

func breakColumns(b *model.BreakWindow) (start any, end any) {
	if b == nil {
		return nil, nil
	}
	return b.StartMinute, b.EndMinute
}

func breakFromColumns(start, end *int) *model.BreakWindow {
	if start == nil || end == nil {
		return nil
	}
	return &model.BreakWindow{StartMinute: *start, EndMinute: *end}
}

// GetNurse resolves a nurse summary.
func (r *ShiftRepository) GetNurse(ctx context.Context, id string) (model.Nurse, error) {
	var n model.Nurse
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, COALESCE(photo_url, ''), active
		FROM nurses
		WHERE id = $1
	`, id).Scan(&n.ID, &n.Name, &n.PhotoURL, &n.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Nurse{}, apperr.NotFound("nurse %s not found", id)
	}
	if err != nil {
		return model.Nurse{}, err
	}
	return n, nil
}
