// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package api wires the chi router, the middleware chain and every domain
handler into a runnable [http.Server].

Routes are mounted without a version prefix:

  - /api/auth, /api/categories, /api/mangas, /api/chapters
  - /api/gallecoins, /api/library, /api/favorites, /api/reviews
  - /health, /ready, /metrics and the read-only /uploads tree
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gallemanga/gallemanga/internal/core/category"
	"github.com/gallemanga/gallemanga/internal/core/chapter"
	"github.com/gallemanga/gallemanga/internal/core/manga"
	"github.com/gallemanga/gallemanga/internal/core/review"
	"github.com/gallemanga/gallemanga/internal/library"
	"github.com/gallemanga/gallemanga/internal/platform/config"
	"github.com/gallemanga/gallemanga/internal/platform/constants"
	"github.com/gallemanga/gallemanga/internal/platform/metrics"
	"github.com/gallemanga/gallemanga/internal/platform/middleware"
	"github.com/gallemanga/gallemanga/internal/platform/storage"
	"github.com/gallemanga/gallemanga/internal/users/auth"
	"github.com/gallemanga/gallemanga/internal/wallet"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups the domain handler sets built in main.go.
type Handlers struct {
	// Liveness is the /health handler.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler.
	Readiness http.HandlerFunc

	Auth     *auth.Handler
	Category *category.Handler
	Manga    *manga.Handler
	Chapter  *chapter.Handler
	Review   *review.Handler
	Wallet   *wallet.Handler
	Library  *library.Handler

	// Uploads serves stored covers and chapter PDFs.
	Uploads http.Handler
}

// # Server Initialization

// NewServer constructs the router with the full middleware chain and
// registers every route group.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, resolver middleware.SessionResolver, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(metrics.InstrumentHandler)
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.Authenticate(resolver))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Handle("/metrics", metrics.Handler())
	r.Handle(storage.PublicPrefix+"*", h.Uploads)

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Route("/categories", h.Category.RegisterRoutes)

		api.Route("/mangas", func(mangas chi.Router) {
			h.Manga.RegisterRoutes(mangas)
			mangas.Route("/{id}/chapters", h.Chapter.RegisterMangaRoutes)
			mangas.Route("/{id}/reviews", h.Review.RegisterMangaRoutes)
		})

		api.Route("/chapters", func(chapters chi.Router) {
			h.Wallet.RegisterChapterRoutes(chapters)
			h.Chapter.RegisterRoutes(chapters)
		})

		api.Route("/gallecoins", h.Wallet.RegisterRoutes)
		api.Route("/library", h.Library.RegisterRoutes)
		api.Route("/favorites", h.Library.RegisterFavoriteRoutes)
		api.Route("/reviews", h.Review.RegisterRoutes)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
