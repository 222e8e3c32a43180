package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/careops/homenurse/libs/config"
	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/libs/httpx"
	"github.com/careops/homenurse/libs/kafkax"
	otelx "github.com/careops/homenurse/libs/otel"
	"github.com/careops/homenurse/libs/runtime"
	"github.com/careops/homenurse/services/notification-service/internal/consumer"
	"github.com/careops/homenurse/services/notification-service/internal/email"
	"github.com/careops/homenurse/services/notification-service/internal/inbox"
	"github.com/careops/homenurse/services/notification-service/internal/storage"
	"github.com/careops/homenurse/services/notification-service/internal/whatsapp"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	topicWelcome = "notification.welcome.requested.v1"
	topicMessage = "notification.message.requested.v1"
)

type welcomePayload struct {
	Recipient    string `json:"recipient"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	TempPassword string `json:"temp_password"`
}

type messagePayload struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
}

// recordAttempt logs the delivery outcome; a failed insert only loses the
// audit row, never the message.
func recordAttempt(ctx context.Context, repo *storage.Repository, logger *slog.Logger, n storage.Notification) {
	if err := repo.Insert(ctx, n); err != nil {
		logger.Error("failed to record notification attempt", "err", err, "channel", n.Channel)
	}
}

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8081")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	inboxRepo := inbox.NewRepository(pool)
	notificationsRepo := storage.NewRepository(pool)

	emailSender := email.NewSMTPSender(
		config.String("SMTP_HOST", "mailpit"),
		config.String("SMTP_PORT", "1025"),
		config.String("SMTP_FROM", "no-reply@homenurse.local"),
	)

	var waSender whatsapp.Sender
	switch strings.ToLower(config.String("WHATSAPP_PROVIDER", "noop")) {
	case "webhook":
		waSender = whatsapp.NewWebhookSender(
			config.String("WHATSAPP_WEBHOOK_URL", ""),
			config.String("WHATSAPP_WEBHOOK_TOKEN", ""),
		)
	default:
		waSender = whatsapp.NewNoopSender()
	}

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "notification-service")

	welcomeConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topicWelcome,
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload welcomePayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid welcome payload", "err", err)
			return nil
		}
		if payload.Recipient == "" || payload.TempPassword == "" {
			logger.Error("missing welcome fields")
			return nil
		}

		meta := kafkax.ExtractEventMeta(msg)
		subject, body := email.WelcomeBody(payload.Name, payload.Email, payload.TempPassword)
		n := storage.Notification{
			EventID:   meta.EventID,
			Channel:   "email",
			Recipient: payload.Recipient,
			Payload:   map[string]any{"name": payload.Name, "email": payload.Email},
			Status:    "sent",
		}
		if err := emailSender.Send(payload.Recipient, subject, body); err != nil {
			logger.Error("welcome mail failed", "err", err, "recipient", payload.Recipient)
			n.Status = "failed"
			n.Error = err.Error()
		}
		recordAttempt(ctx, notificationsRepo, logger, n)
		return nil
	})
	go welcomeConsumer.Run(ctx)

	messageConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topicMessage,
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload messagePayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid message payload", "err", err)
			return nil
		}
		if payload.Phone == "" || payload.Text == "" {
			logger.Error("missing message fields")
			return nil
		}

		meta := kafkax.ExtractEventMeta(msg)
		n := storage.Notification{
			EventID:   meta.EventID,
			Channel:   "whatsapp",
			Recipient: payload.Phone,
			Payload:   map[string]any{"text": payload.Text},
			Status:    "sent",
		}
		if err := waSender.Send(ctx, payload.Phone, payload.Text); err != nil {
			logger.Error("whatsapp send failed", "err", err, "phone", payload.Phone)
			n.Status = "failed"
			n.Error = err.Error()
		}
		recordAttempt(ctx, notificationsRepo, logger, n)
		return nil
	})
	go messageConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
