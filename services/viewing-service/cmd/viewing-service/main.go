package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/propview/libs/config"
	"github.com/md-rashed-zaman/propview/libs/db"
	"github.com/md-rashed-zaman/propview/libs/httpx"
	"github.com/md-rashed-zaman/propview/libs/kafkax"
	otelx "github.com/md-rashed-zaman/propview/libs/otel"
	"github.com/md-rashed-zaman/propview/libs/runtime"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/handlers"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/outbox"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/scheduling"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/seed"
	"github.com/md-rashed-zaman/propview/services/viewing-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func parseList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func main() {
	service := config.String("SERVICE_NAME", "viewing-service")
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
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL, int32(config.Int("DB_MAX_CONNS", 10)))
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	tzName := config.String("BUSINESS_TZ", "UTC")
	location, err := time.LoadLocation(tzName)
	if err != nil {
		logger.Error("invalid BUSINESS_TZ, falling back to UTC", "tz", tzName, "err", err)
		location = time.UTC
	}

	if err := storage.EnsureSchema(ctx, pool); err != nil {
		logger.Error("schema setup failed", "err", err)
		panic(err)
	}

	listingRepo := storage.NewListingRepository(pool)
	userRepo := storage.NewUserRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	viewingRepo := storage.NewViewingRepository(pool, outboxRepo)

	if config.Bool("LISTINGS_SEED", true) {
		if err := seed.Listings(ctx, listingRepo, logger); err != nil {
			logger.Error("listing seed failed", "err", err)
		}
	}

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Seconds("OUTBOX_POLL_SECONDS", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	scheduler := scheduling.NewScheduler(listingRepo, viewingRepo, scheduling.DefaultPolicy(location), time.Now, logger)

	authHandler := handlers.NewAuthHandler(userRepo, jwtSecret, config.Seconds("JWT_TTL_SECONDS", 24*time.Hour))
	listingHandler := handlers.NewListingHandler(listingRepo)
	viewingHandler := handlers.NewViewingHandler(scheduler, location)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("/api/v1/auth/login", authHandler.Login)
	mux.Handle("/api/v1/auth/me", handlers.RequireAuth(jwtSecret, http.HandlerFunc(authHandler.Me)))
	mux.HandleFunc("/api/v1/listings", listingHandler.List)
	mux.HandleFunc("/api/v1/listings/get", listingHandler.Get)
	mux.Handle("/api/v1/viewings/slots", handlers.RequireAuth(jwtSecret, http.HandlerFunc(viewingHandler.Slots)))
	mux.Handle("/api/v1/viewings/schedule", handlers.RequireAuth(jwtSecret, http.HandlerFunc(viewingHandler.Schedule)))
	mux.Handle("/api/v1/viewings", handlers.RequireAuth(jwtSecret, http.HandlerFunc(viewingHandler.List)))
	mux.Handle("/api/v1/viewings/cancel", handlers.RequireAuth(jwtSecret, http.HandlerFunc(viewingHandler.Cancel)))

	rateLimit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	var limiter httpx.Middleware
	if redisAddr := config.String("REDIS_ADDR", ""); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		limiter = httpx.NewRedisRateLimiter(rdb, rateLimit, time.Minute, service).Middleware(logger, true)
	} else {
		limiter = httpx.NewRateLimiter(rateLimit, time.Minute).Middleware()
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS")),
			AllowedHeaders: parseList(config.String("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id")),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
		limiter,
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "viewing")
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
