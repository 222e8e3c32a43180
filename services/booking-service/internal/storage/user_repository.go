package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/services/booking-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// clientLookupFilter builds the identifier predicate for account matching.
// Blank identifiers contribute no condition at all: accounts created from a
// national-id-only booking carry email = '', and a bare `email = $1` with an
// empty parameter would match the first such row instead of the caller's own.
func clientLookupFilter(email, nationalID string) (string, []any) {
	var conds []string
	var args []any
	if email != "" {
		args = append(args, email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if nationalID != "" {
		args = append(args, nationalID)
		conds = append(conds, fmt.Sprintf("national_id = $%d", len(args)))
	}
	return strings.Join(conds, " OR "), args
}

// FindClientByEmailOrNationalID matches an existing account on either
// identifier; the public booking form accepts both.
func (r *UserRepository) FindClientByEmailOrNationalID(ctx context.Context, email, nationalID string) (model.Client, bool, error) {
	filter, args := clientLookupFilter(email, nationalID)
	if filter == "" {
		return model.Client{}, false, nil
	}

	var c model.Client
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, email, COALESCE(national_id, ''), first_name, last_name,
			COALESCE(phone, ''), password_hash, created_at
		FROM clients
		WHERE `+filter+`
		LIMIT 1
	`, args...).Scan(
		&c.ID, &c.Email, &c.NationalID, &c.FirstName, &c.LastName,
		&c.Phone, &c.PasswordHash, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Client{}, false, nil
	}
	if err != nil {
		return model.Client{}, false, err
	}
	return c, true, nil
}

// CreateClientTx inserts a new client account plus its patient profile
// inside the booking transaction.
func (r *UserRepository) CreateClientTx(ctx context.Context, tx pgx.Tx, c *model.Client, p *model.PatientProfile) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO clients (id, email, national_id, first_name, last_name, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Email, c.NationalID, c.FirstName, c.LastName, c.Phone, c.PasswordHash)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	p.UserID = c.ID
	_, err = tx.Exec(ctx, `
		INSERT INTO patient_profiles (user_id, address, reference, city, latitude, longitude, maps_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.UserID, p.Address, p.Reference, p.City, p.Latitude, p.Longitude, p.MapsLink)
	return err
}

// GetProfile returns nil without error when the client has no profile; the
// booking factory treats the missing fields as blank.
func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*model.PatientProfile, error) {
	var p model.PatientProfile
	err := r.pool.QueryRow(ctx, `
		SELECT user_id::text, COALESCE(address, ''), COALESCE(reference, ''), COALESCE(city, ''),
			latitude, longitude, COALESCE(maps_link, '')
		FROM patient_profiles
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Address, &p.Reference, &p.City, &p.Latitude, &p.Longitude, &p.MapsLink)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertFeedback records a public nurse rating (lead capture flow).
func (r *UserRepository) InsertFeedback(ctx context.Context, tx pgx.Tx, f *model.NurseFeedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO nurse_feedback (id, nurse_id, patient_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
	`, f.ID, f.NurseID, f.PatientID, f.Rating, f.Comment)
	return err
}
