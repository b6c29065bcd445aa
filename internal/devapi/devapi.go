// Package devapi is an in-memory implementation of the Hack-or-Snooze REST API.
//
// It exists so the client can be developed and tested without the hosted
// service: `snooze devapi` serves it on a local port, and tests mount it on an
// httptest.Server. It uses the hosted API's paths and JSON envelopes
// but keeps everything in memory.
//
// ROUTES:
//
//	POST   /signup                                {user:{username,password,name}}
//	POST   /login                                 {user:{username,password}}
//	GET    /users/{username}?token=
//	PATCH  /users/{username}                      {token, user:{name}}
//	POST   /users/{username}/favorites/{storyId}  {token}
//	DELETE /users/{username}/favorites/{storyId}  {token}
//	GET    /stories?skip=&limit=
//	POST   /stories                               {token, story:{title,author,url}}
//	PATCH  /stories/{storyId}                     {token, story:{...}}
//	DELETE /stories/{storyId}                     {token}
package devapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/auth"
	"github.com/sakif/snooze/internal/middleware"
	"github.com/sakif/snooze/internal/model"
)

// Pagination bounds for GET /stories.
const (
	DefaultStoryLimit = 25
	MaxStoryLimit     = 100
)

// Server is the development API.
type Server struct {
	store     *store
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
	router    chi.Router
}

// New creates a development API that signs tokens with tokens and hashes
// passwords with passwords.
func New(tokens *auth.TokenService, passwords *auth.PasswordService, logger *slog.Logger) *Server {
	s := &Server{
		store:     newStore(),
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Post("/signup", s.handleSignup)
	s.router.Post("/login", s.handleLogin)

	s.router.Route("/users/{username}", func(r chi.Router) {
		r.Get("/", s.handleGetUser)
		r.Patch("/", s.handleUpdateUser)
		r.Post("/favorites/{storyId}", s.handleAddFavorite)
		r.Delete("/favorites/{storyId}", s.handleRemoveFavorite)
	})

	s.router.Route("/stories", func(r chi.Router) {
		r.Get("/", s.handleListStories)
		r.Post("/", s.handleCreateStory)
		r.Patch("/{storyId}", s.handleUpdateStory)
		r.Delete("/{storyId}", s.handleDeleteStory)
	})
}

// Seed creates an account and posts stories as it, oldest first.
// Used by `snooze devapi --seed` and by tests.
func (s *Server) Seed(username, password, name string, stories ...model.StoryFields) error {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("devapi: seeding %s: %w", username, err)
	}
	if _, err := s.store.createAccount(username, name, hash); err != nil {
		return fmt.Errorf("devapi: seeding %s: %w", username, err)
	}
	for _, f := range stories {
		s.store.createStory(username, f)
	}
	return nil
}

// authenticate resolves the token to an account.
// username, when non-empty, must match the token's owner.
func (s *Server) authenticate(token, username string) (string, error) {
	if token == "" {
		return "", apperror.Unauthorized("A token is required")
	}
	owner, err := s.tokens.Validate(token)
	if err != nil {
		return "", apperror.Unauthorized("Invalid token")
	}
	if _, ok := s.store.account(owner); !ok {
		return "", apperror.Unauthorized("Invalid token")
	}
	if username != "" && owner != username {
		return "", apperror.Unauthorized("Token does not match username")
	}
	return owner, nil
}

// writeAPIError renders err in the hosted API's error envelope.
func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	}

	message := apperror.Message(err, "Internal Server Error")
	if status == http.StatusInternalServerError {
		s.logger.Error("devapi: internal error", slog.String("error", err.Error()))
		message = "Internal Server Error"
	}

	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"status":  status,
			"title":   http.StatusText(status),
			"message": message,
		},
	})
}

func requireFields(fields map[string]string) error {
	var missing []string
	for _, name := range []string{"username", "password", "name", "title", "author", "url"} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperror.ValidationFailed(missing[0],
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}
	return nil
}
