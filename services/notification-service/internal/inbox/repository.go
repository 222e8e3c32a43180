package inbox

import (
	"context"
	"errors"

	"github.com/careops/homenurse/libs/db"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record claims an event id, returning false when it was seen before. The
// primary key on event_id is what makes redelivered messages harmless.
func (r *Repository) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO inbox_events (event_id, event_type) VALUES ($1, $2)`,
		eventID, eventType)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return false, nil
	}
	return err == nil, err
}
