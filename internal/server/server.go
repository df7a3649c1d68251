// Package server provides the dashboard preview and API server. It
// validates and compiles documents over HTTP, serves revisions from the
// local store, and in watch mode live-reloads the preview page when the
// source document changes.
package server

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/peterhq/peter/internal/cache"
	"github.com/peterhq/peter/internal/executor"
	"github.com/peterhq/peter/internal/store"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the listen address.
	Addr string

	// Store serves pushed revisions. Nil disables the dashboards API.
	Store store.Store

	// Runner executes queries for previews. Nil leaves widgets pending.
	Runner executor.Runner

	// Cache holds query results between compile passes.
	Cache cache.Cache

	// TTL is the cache freshness window.
	TTL time.Duration

	// File is the document being previewed. Empty means store-only
	// mode where previews resolve slugs instead.
	File string

	// Watch reloads connected preview pages when File changes.
	Watch bool

	// NoAuth disables the session check on the API.
	NoAuth bool

	// Token is the shared secret accepted by the login endpoint.
	Token string

	// SessionSecret signs session cookies. Random when empty.
	SessionSecret string

	// Logger receives request and watcher events. Nil discards.
	Logger *slog.Logger
}

// Server is the preview/API server.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	sessions *sessions.CookieStore
	notify   *notifier
}

// New creates a server from the config.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}
	sessionStore := sessions.NewCookieStore(secret)
	sessionStore.MaxAge(86400)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		cfg:      cfg,
		logger:   logger,
		sessions: sessionStore,
		notify:   newNotifier(),
	}
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting preview server", "addr", fmt.Sprintf("http://%s", s.cfg.Addr))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch && s.cfg.File != "" {
		eg.Go(func() error {
			return s.watchFile(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Debug("shutting down preview server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Routes builds the chi router. Exposed for httptest use.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)
	r.Get("/", s.handleShell)
	r.Get("/events", s.handleEvents)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(s.requireSession)
		api.Post("/validate", s.handleValidate)
		api.Post("/compile", s.handleCompile)
		api.Get("/preview", s.handlePreview)
		api.Get("/dashboards", s.handleListDashboards)
		api.Route("/dashboards/{slug}", func(d chi.Router) {
			d.Get("/", s.handleGetDashboard)
				d.Put("/", s.handlePutDashboard)
			d.Get("/history", s.handleDashboardHistory)
			d.Get("/plan", s.handleDashboardPlan)
		})
	})

	return r
}
