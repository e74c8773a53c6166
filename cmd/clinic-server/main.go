package main

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"clinicbook/internal/booking"
	"clinicbook/internal/consumer"
	"clinicbook/internal/handlers"
	"clinicbook/internal/lifecycle"
	"clinicbook/internal/outbox"
	"clinicbook/internal/reports"
	"clinicbook/internal/sessions"
	"clinicbook/internal/storage"
	"clinicbook/libs/config"
	"clinicbook/libs/db"
	"clinicbook/libs/httpx"
	"clinicbook/libs/kafkax"
	otelx "clinicbook/libs/otel"
	"clinicbook/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "clinic-server")
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
	pool, err := db.Open(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
		MinConns: int32(config.Int("DB_MIN_CONNS", 1)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.String("REDIS_ADDR", "localhost:6379"),
		Password: config.String("REDIS_PASSWORD", ""),
	})
	defer rdb.Close()

	sessionStore := sessions.NewStore(rdb, sessions.Config{
		TTL:     time.Duration(config.Int("SESSION_TTL_HOURS", 24)) * time.Hour,
		Sliding: config.Bool("SESSION_SLIDING", false),
	})

	store := storage.NewStore(pool)
	bookingSvc := booking.NewService(booking.NewPgRepository(store))
	lifecycleSvc := lifecycle.NewService(lifecycle.NewPgRepository(store))
	reportsRepo := reports.NewRepository(pool)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")

	outboxPublisher := outbox.NewPublisher(pool, outbox.NewRepository(pool), logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	if kafkaBrokers != "" {
		slotConsumer := consumer.New(logger, consumer.Config{
			Brokers: kafkaBrokers,
			GroupID: config.String("KAFKA_GROUP_ID", "clinic-server"),
			Topic:   config.String("KAFKA_SLOTS_TOPIC", consumer.TopicSlotsProvisioned),
		}, consumer.SlotsHandler(consumer.NewPgStore(store), logger))
		go slotConsumer.Run(ctx)
	}

	setupReportingExport(ctx, logger)

	guard := handlers.NewGuard(sessionStore)
	authHandler := handlers.NewAuthHandler(store, sessionStore, logger)
	catalogHandler := handlers.NewCatalogHandler(store, logger)
	bookingHandler := handlers.NewBookingHandler(bookingSvc, store, logger)
	staffHandler := handlers.NewStaffHandler(lifecycleSvc, store, logger)
	reportsHandler := handlers.NewReportsHandler(reportsRepo, logger)
	billingHandler := handlers.NewBillingHandler(store, logger, handlers.BillingConfig{
		StripeSecretKey:               config.String("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:           config.String("STRIPE_WEBHOOK_SECRET", ""),
		StripeWebhookToleranceSeconds: config.Int("STRIPE_WEBHOOK_TOLERANCE_SECONDS", 300),
		CheckoutSuccessURL:            config.String("CHECKOUT_SUCCESS_URL", "http://localhost:3000/billing/success"),
		CheckoutCancelURL:             config.String("CHECKOUT_CANCEL_URL", "http://localhost:3000/billing/cancel"),
	})

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "redis", Check: sessionStore.ReadyCheck()},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkax.SplitBrokers(kafkaBrokers))},
	)
	handlers.Routes(mux, guard, authHandler, catalogHandler, bookingHandler, staffHandler, reportsHandler, billingHandler)

	rateLimit := httpx.NewRedisRateLimiter(rdb,
		config.Int("RATE_LIMIT_PER_MINUTE", 120), time.Minute, service)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           10 * time.Minute,
		}),
		rateLimit.Middleware(logger, true),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(30*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

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
