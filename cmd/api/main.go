// Package main is the entry point for the trip wizard API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for goose
	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/tripwizard/internal/cache"
	"github.com/pkordes/tripwizard/internal/config"
	"github.com/pkordes/tripwizard/internal/handler"
	"github.com/pkordes/tripwizard/internal/middleware"
	"github.com/pkordes/tripwizard/internal/provider"
	"github.com/pkordes/tripwizard/internal/repo"
	"github.com/pkordes/tripwizard/internal/service"
	"github.com/pkordes/tripwizard/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- New Relic --------------------------------------------------------
	// Disabled unless a license key is configured; a nil app is a no-op
	// everywhere it is passed.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled() {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			slog.Error("failed to start new relic", "error", err)
			os.Exit(1)
		}
		defer nrApp.Shutdown(10 * time.Second)
		slog.Info("new relic enabled", "app", cfg.NewRelic.AppName)
	}

	// --- Database ---------------------------------------------------------
	if cfg.MigrateOnStart {
		if err := migrate(context.Background(), cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Redis ------------------------------------------------------------
	// Without REDIS_ADDR searches are not cached and Idempotency-Key is ignored.
	var searchCache cache.SearchCache = cache.Noop{}
	var idempotencyStore redis.Cmdable
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, nrApp)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		searchCache = cache.NewRedis(rc, cfg.Redis.SearchTTL)
		idempotencyStore = rc
		slog.Info("redis connection established", "addr", cfg.Redis.Addr)
	}

	// --- Providers --------------------------------------------------------
	providers := provider.NewResilient(
		provider.NewHTTPSet(provider.URLs{
			Flights:    cfg.Providers.FlightURL,
			Hotels:     cfg.Providers.HotelURL,
			Activities: cfg.Providers.ActivityURL,
			Currency:   cfg.Providers.CurrencyURL,
			Visa:       cfg.Providers.VisaURL,
		}, cfg.Providers.APIKey, cfg.Providers.Timeout),
		provider.NewStaticSet(),
		provider.Options{Retries: uint64(cfg.Providers.Retries)},
		logger,
	)

	// --- Services ---------------------------------------------------------
	drafts := repo.NewDraftRepo(pool)
	svc := handler.Services{
		Trips:   service.NewTripService(drafts),
		Drafts:  service.NewDraftService(drafts),
		Costs:   service.NewCostService(drafts, providers),
		Exports: service.NewExportService(drafts),
		Search:  service.NewSearchService(providers, searchCache, repo.NewPricingRuleRepo(pool), logger),
		Lookups: service.NewLookupService(providers, providers),
	}

	// --- Router -----------------------------------------------------------
	// RequestID and RealIP run first so the logger and New Relic see them.
	// Recoverer sits inside the logger so a panic is still logged as a 500.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewRelic(nrApp))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	server := handler.NewServer(svc, logger)
	r.Mount("/", server.Routes(handler.RouteOptions{
		Auth:        middleware.NewAuthHandler([]byte(cfg.JWTSecret)),
		Idempotency: middleware.NewIdempotencyHandler(idempotencyStore, logger),
	}))

	// --- HTTP Server ------------------------------------------------------
	// Provider calls retry with backoff, so writes get more room than reads.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations. goose needs database/sql, not a
// pgx pool, so it gets its own short-lived connection.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "count", len(results))
	return nil
}
