package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/careops/homenurse/libs/kafkax"
	"github.com/careops/homenurse/services/notification-service/internal/inbox"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const readRetryDelay = time.Second

// Handler processes one deduplicated message. A returned error is logged and
// the message is skipped; the inbox row keeps a redelivery from retrying it.
type Handler func(ctx context.Context, msg kafka.Message) error

type Config struct {
	Brokers string
	GroupID string
	Topic   string
}

// Consumer reads one topic within a consumer group and runs the handler for
// each message that passes inbox dedup.
type Consumer struct {
	reader  *kafka.Reader
	inbox   *inbox.Repository
	handler Handler
	logger  *slog.Logger
	tracer  trace.Tracer
}

func New(logger *slog.Logger, inboxRepo *inbox.Repository, cfg Config, handler Handler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  kafkax.SplitBrokers(cfg.Brokers),
			GroupID:  cfg.GroupID,
			Topic:    cfg.Topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		inbox:   inboxRepo,
		handler: handler,
		logger:  logger.With("topic", cfg.Topic),
		tracer:  otel.Tracer("kafka"),
	}
}

func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			time.Sleep(readRetryDelay)
			continue
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	ctx = kafkax.ExtractTraceContext(ctx, msg)
	ctx, span := c.tracer.Start(ctx, "kafka.consume", trace.WithAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", msg.Topic),
	))
	defer span.End()

	meta := kafkax.ExtractEventMeta(msg)
	fresh, err := c.inbox.Record(ctx, meta.EventID, meta.EventType)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("inbox record failed", "err", err, "event_id", meta.EventID)
		return
	}
	if !fresh {
		c.logger.Info("duplicate event ignored", "event_id", meta.EventID, "event_type", meta.EventType)
		return
	}

	if err := c.handler(ctx, msg); err != nil {
		span.RecordError(err)
		c.logger.Error("handler error", "err", err, "event_id", meta.EventID)
	}
}
