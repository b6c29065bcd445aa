// Package server wires the story client together and runs it over HTTP.
//
// DEPENDENCY INJECTION FLOW:
//
//	Config → sqlite.DB (session store)
//	       → api.Client (story API)
//	       → controller.App (state, page, notifications, controllers)
//	       → handler.Handler (rendering surface) → chi router
//
// Everything is assembled in New, the composition root; nothing below it
// constructs its own dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snooze/internal/api"
	"github.com/sakif/snooze/internal/config"
	"github.com/sakif/snooze/internal/controller"
	"github.com/sakif/snooze/internal/handler"
	"github.com/sakif/snooze/internal/middleware"
	sqliteRepo "github.com/sakif/snooze/internal/repository/sqlite"
)

// The API client must satisfy what the controllers consume.
var _ controller.API = (*api.Client)(nil)

// shutdownTimeout bounds how long in-flight requests get on shutdown.
const shutdownTimeout = 30 * time.Second

// Server is the rendering surface and everything it owns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	app    *controller.App
}

// New opens the session store, builds the controllers and registers routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.SessionDB != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.SessionDB), 0o755); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	client := api.New(cfg.APIURL, cfg.APITimeout, logger.With(slog.String("component", "api")))
	app := controller.NewApp(client, db, controller.Options{StoryLimit: cfg.StoryLimit}, logger)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		app:    app,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// App returns the controllers.
func (s *Server) App() *controller.App {
	return s.app
}

// Close releases the session store.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes installs middleware, then the handler's routes.
//
// MIDDLEWARE ORDER:
//  1. RequestID: tags each request so log lines can be correlated
//  2. RealIP
//  3. Recoverer: a panic becomes a 500 instead of a crash
//  4. Logger
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	h, err := handler.New(s.app, s.logger.With(slog.String("component", "handler")))
	if err != nil {
		return fmt.Errorf("creating handler: %w", err)
	}
	h.Routes(s.router)

	return nil
}

// Start restores the session, loads the feed and serves until SIGINT or
// SIGTERM. The session store is closed on return.
func (s *Server) Start() error {
	defer s.db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.app.Start(ctx)

	s.logger.Info("client starting",
		slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		slog.String("api", s.config.APIURL),
		slog.String("session_db", s.config.SessionDB),
	)
	return ListenAndServe(ctx, fmt.Sprintf(":%d", s.config.Port), s.router, s.logger)
}

// ListenAndServe serves h on addr until ctx is done, then shuts down
// gracefully. It is shared by the client and the development API.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server stopped gracefully")
	}

	return nil
}
