package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/careops/homenurse/libs/config"
	"github.com/careops/homenurse/libs/db"
	"github.com/careops/homenurse/libs/httpx"
	"github.com/careops/homenurse/libs/kafkax"
	otelx "github.com/careops/homenurse/libs/otel"
	"github.com/careops/homenurse/libs/runtime"
	"github.com/careops/homenurse/services/booking-service/internal/availability"
	"github.com/careops/homenurse/services/booking-service/internal/handlers"
	"github.com/careops/homenurse/services/booking-service/internal/outbox"
	"github.com/careops/homenurse/services/booking-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8080")
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

	appts := storage.NewAppointmentRepository(pool)
	shifts := storage.NewShiftRepository(pool)
	catalog := storage.NewCatalogRepository(pool)
	users := storage.NewUserRepository(pool)
	reminders := storage.NewReminderRepository(pool)
	reports := storage.NewReportRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	step := config.DurationMinutes("SLOT_STEP_MINUTES", availability.DefaultStep)
	engine := availability.NewEngine(shifts, appts, catalog, step, logger)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	availabilityHandler := handlers.NewAvailabilityHandler(engine, logger)
	bookingHandler := handlers.NewBookingHandler(pool, users, appts, catalog, outboxRepo, logger)
	leadHandler := handlers.NewLeadHandler(pool, users, reminders, catalog, shifts, logger)
	shiftHandler := handlers.NewShiftHandler(shifts, logger)
	appointmentHandler := handlers.NewAppointmentHandler(pool, appts, catalog, logger)
	reportHandler := handlers.NewReportHandler(pool, reports, appts, reminders, catalog, logger)
	reminderHandler := handlers.NewReminderHandler(reminders, logger)
	catalogHandler := handlers.NewCatalogHandler(catalog, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/public/availability", availabilityHandler.Get)
	mux.HandleFunc("/api/v1/public/book", bookingHandler.Book)
	mux.HandleFunc("/api/v1/public/lead", leadHandler.Create)
	mux.HandleFunc("/api/v1/public/services", catalogHandler.List)
	mux.HandleFunc("/api/v1/shifts", shiftHandler.List)
	mux.HandleFunc("/api/v1/shifts/create", shiftHandler.Create)
	mux.HandleFunc("/api/v1/shifts/update", shiftHandler.Update)
	mux.HandleFunc("/api/v1/shifts/deactivate", shiftHandler.Deactivate)
	mux.HandleFunc("/api/v1/appointments", appointmentHandler.List)
	mux.HandleFunc("/api/v1/appointments/status", appointmentHandler.UpdateStatus)
	mux.HandleFunc("/api/v1/appointments/update", appointmentHandler.Update)
	mux.HandleFunc("/api/v1/reports", reportHandler.Create)
	mux.HandleFunc("/api/v1/reminders", reminderHandler.List)
	mux.HandleFunc("/api/v1/reminders/status", reminderHandler.UpdateStatus)

	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	var rateLimitMW httpx.Middleware
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, isTruthy(config.String("RATE_LIMIT_FAIL_OPEN", "true")))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS")),
			AllowedHeaders:   parseList(config.String("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id")),
			AllowCredentials: isTruthy(config.String("CORS_ALLOW_CREDENTIALS", "false")),
			MaxAge:           time.Duration(config.Int("CORS_MAX_AGE_SECONDS", 600)) * time.Second,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(30*time.Second),
		rateLimitMW,
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
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
