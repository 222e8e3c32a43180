package storage

import (
	"context"
	"errors"

	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/services/booking-service/internal/apperr"
	"github.com/careops/homenurse/services/booking-service/internal/model"
	"github.com/jackc/pgx/v5"
)

// CatalogRepository reads the service and medication catalogs. Both are
// maintained by staff tooling and read-only to the booking core.
type CatalogRepository struct {
	pool *db.Pool
}

func NewCatalogRepository(pool *db.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

const serviceColumns = `
	id::text, category_id::text, name, COALESCE(description, ''),
	base_price_cents, supply_surcharge_cents, includes_supplies,
	duration_minutes, travel_buffer_minutes, is_guard,
	requires_return, return_wait_hours, allows_base, allows_home, active`

func (r *CatalogRepository) GetService(ctx context.Context, id string) (model.Service, error) {
	var s model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = $1
	`, id).Scan(
		&s.ID, &s.CategoryID, &s.Name, &s.Description,
		&s.BasePriceCents, &s.SupplySurchargeCents, &s.IncludesSupplies,
		&s.DurationMinutes, &s.TravelBufferMinutes, &s.IsGuard,
		&s.RequiresReturn, &s.ReturnWaitHours, &s.AllowsBase, &s.AllowsHome, &s.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Service{}, apperr.NotFound("service %s not found", id)
	}
	if err != nil {
		return model.Service{}, err
	}
	return s, nil
}

func (r *CatalogRepository) ListActiveServices(ctx context.Context) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE active = true
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(
			&s.ID, &s.CategoryID, &s.Name, &s.Description,
			&s.BasePriceCents, &s.SupplySurchargeCents, &s.IncludesSupplies,
			&s.DurationMinutes, &s.TravelBufferMinutes, &s.IsGuard,
			&s.RequiresReturn, &s.ReturnWaitHours, &s.AllowsBase, &s.AllowsHome, &s.Active,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *CatalogRepository) GetMedication(ctx context.Context, id string) (model.Medication, error) {
	var m model.Medication
	var unit string
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, frequency_value, frequency_unit
		FROM medications
		WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.FrequencyValue, &unit)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Medication{}, apperr.NotFound("medication %s not found", id)
	}
	if err != nil {
		return model.Medication{}, err
	}
	m.FrequencyUnit = model.FrequencyUnit(unit)
	return m, nil
}
