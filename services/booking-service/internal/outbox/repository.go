package outbox

import (
	"context"
	"time"

	"github.com/careops/homenurse/libs/db"
	otelx "github.com/careops/homenurse/libs/otel"
	"github.com/jackc/pgx/v5"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stages an event in the same transaction as the state change it
// announces. The active trace is snapshotted so the publisher can resume it.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, evt Event) error {
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	_, err := tx.Exec(ctx,
		`INSERT INTO outbox_events
		   (aggregate_type, aggregate_id, event_type, payload, traceparent, tracestate)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		evt.AggregateType, evt.AggregateID, evt.EventType, evt.Payload, traceparent, tracestate)
	return err
}

// Record is one staged outbox row as the publisher sees it.
type Record struct {
	ID            int64
	EventID       string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	Traceparent   string
	Tracestate    string
	CreatedAt     time.Time
}

// FetchUnpublished claims up to limit pending rows in insertion order.
// SKIP LOCKED lets several publisher instances drain concurrently without
// double-claiming.
func (r *Repository) FetchUnpublished(ctx context.Context, tx pgx.Tx, limit int) ([]Record, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, event_id, aggregate_type, aggregate_id, event_type,
		        payload, traceparent, tracestate, created_at
		   FROM outbox_events
		  WHERE published_at IS NULL
		  ORDER BY id
		  LIMIT $1
		  FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(&rec.ID, &rec.EventID, &rec.AggregateType, &rec.AggregateID,
			&rec.EventType, &rec.Payload, &rec.Traceparent, &rec.Tracestate, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) MarkPublished(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`UPDATE outbox_events SET published_at = now() WHERE id = ANY($1)`, ids)
	return err
}
