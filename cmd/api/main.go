// Copyright (c) 2026 GalleManga. All rights reserved.

// Command api is the entry point for the GalleManga HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration (.env, then environment variables).
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Build storage, page counting, payments and domain services.
//  6. Start the reconcile schedule and the HTTP server.
//  7. Shut down gracefully on SIGINT or SIGTERM.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/gallemanga/gallemanga/internal/api"
	"github.com/gallemanga/gallemanga/internal/core/category"
	"github.com/gallemanga/gallemanga/internal/core/chapter"
	"github.com/gallemanga/gallemanga/internal/core/manga"
	"github.com/gallemanga/gallemanga/internal/core/review"
	"github.com/gallemanga/gallemanga/internal/library"
	"github.com/gallemanga/gallemanga/internal/platform/config"
	"github.com/gallemanga/gallemanga/internal/platform/constants"
	"github.com/gallemanga/gallemanga/internal/platform/migration"
	"github.com/gallemanga/gallemanga/internal/platform/payment"
	"github.com/gallemanga/gallemanga/internal/platform/pdfpage"
	pgstore "github.com/gallemanga/gallemanga/internal/platform/postgres"
	redisstore "github.com/gallemanga/gallemanga/internal/platform/redis"
	"github.com/gallemanga/gallemanga/internal/platform/sec"
	"github.com/gallemanga/gallemanga/internal/platform/storage"
	"github.com/gallemanga/gallemanga/internal/users/auth"
	"github.com/gallemanga/gallemanga/internal/wallet"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context lives until shutdown; background work stops with it.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer rootCancel()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL & Redis ─────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Infrastructure ─────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize session tokens")

	files, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadMaxBytes)
	must(log, err, "prepare upload directory")

	pageCounter := pdfpage.NewCounter(log)

	stripeBackend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: constants.PaymentCallTimeout},
	})
	provider := payment.NewStripeProviderWithBackend(cfg.StripeSecretKey, stripeBackend)

	liveness, readiness := api.NewHealthHandlers(log,
		api.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		api.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(auth.NewUserRepository(pool), auth.NewSessionStore(rdb), tokens, cfg.SessionMaxAge, log)

	libraryService := library.NewService(library.NewPostgresRepository(pool), log)

	chapterRepository := chapter.NewChapterRepository(pool)
	chapterService := chapter.NewService(chapterRepository, files, pageCounter, libraryService, log)

	walletService := wallet.NewService(wallet.NewPostgresRepository(pool), chapterRepository, provider, wallet.Options{
		PublicBaseURL:   cfg.PublicBaseURL,
		Currency:        cfg.CheckoutCurrency,
		ReconcileMinAge: cfg.ReconcileMinAge,
	}, log)

	reconciler, err := wallet.NewReconciler(rootCtx, walletService, cfg.ReconcileSchedule, log)
	must(log, err, "schedule checkout reconciliation")
	reconciler.Start()
	defer reconciler.Stop()

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, cfg.SessionMaxAge, cfg.CookieSecure),
		Category:  category.NewHandler(category.NewService(category.NewPostgresRepository(pool), log)),
		Manga:     manga.NewHandler(manga.NewService(manga.NewPostgresRepository(pool), files, log)),
		Chapter:   chapter.NewHandler(chapterService),
		Review:    review.NewHandler(review.NewService(review.NewPostgresRepository(pool), log)),
		Wallet:    wallet.NewHandler(walletService),
		Library:   library.NewHandler(libraryService),
		Uploads:   files.Handler(),
	}

	// ── 7. HTTP Server & Graceful Shutdown ────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, authService, handlers)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}
	rootCancel()

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(logger)
	return logger
}

// must logs a structured fatal error and terminates the process if err is non-nil.
// It is limited to startup wiring.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
