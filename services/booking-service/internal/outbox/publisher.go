package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/libs/kafkax"
	otelx "github.com/careops/homenurse/libs/otel"
	"github.com/segmentio/kafka-go"
)

// Publisher drains outbox_events to Kafka. Rows are claimed with SKIP LOCKED
// inside a transaction and marked published in the same transaction, so a
// crash between write and mark at worst republishes a batch. Consumers dedup
// on event_id, which makes that safe.
type Publisher struct {
	pool   *db.Pool
	repo   *Repository
	logger *slog.Logger
	cfg    PublisherConfig
}

type PublisherConfig struct {
	Brokers   string
	PollEvery time.Duration
	BatchSize int
}

func NewPublisher(pool *db.Pool, repo *Repository, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Publisher{pool: pool, repo: repo, logger: logger, cfg: cfg}
}

func (p *Publisher) Run(ctx context.Context) {
	brokers := kafkax.SplitBrokers(p.cfg.Brokers)
	if len(brokers) == 0 {
		p.logger.Warn("outbox publisher disabled (no kafka brokers configured)")
		return
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
	}
	defer writer.Close()

	tick := time.NewTicker(p.cfg.PollEvery)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			n, err := p.drainOnce(ctx, writer)
			if err != nil {
				p.logger.Error("outbox publish failed", "err", err)
			} else if n > 0 {
				p.logger.Debug("outbox batch published", "count", n)
			}
		}
	}
}

func (p *Publisher) drainOnce(ctx context.Context, writer *kafka.Writer) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch, err := p.repo.FetchUnpublished(ctx, tx, p.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, tx.Commit(ctx)
	}

	msgs := make([]kafka.Message, len(batch))
	ids := make([]int64, len(batch))
	for i, rec := range batch {
		headers := []kafka.Header{
			{Key: "event_id", Value: []byte(rec.EventID)},
			{Key: "event_type", Value: []byte(rec.EventType)},
		}
		traced := otelx.ContextWithTraceContext(ctx, rec.Traceparent, rec.Tracestate)
		msgs[i] = kafka.Message{
			Topic:   rec.EventType,
			Key:     []byte(rec.AggregateID),
			Value:   rec.Payload,
			Headers: kafkax.InjectTraceHeaders(traced, headers),
		}
		ids[i] = rec.ID
	}

	if err := writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, err
	}
	if err := p.repo.MarkPublished(ctx, tx, ids); err != nil {
		return 0, err
	}
	return len(batch), tx.Commit(ctx)
}
