package devapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/auth"
	"github.com/sakif/snooze/internal/model"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type authRequest struct {
	User credentials `json:"user"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type storyRequest struct {
	Token string            `json:"token"`
	Story model.StoryFields `json:"story"`
}

type userUpdateRequest struct {
	Token string `json:"token"`
	User  struct {
		Name string `json:"name"`
	} `json:"user"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := decode(r, &req); err != nil {
		s.writeAPIError(w, err)
		return
	}
	if err := requireFields(map[string]string{
		"username": req.User.Username,
		"password": req.User.Password,
		"name":     req.User.Name,
	}); err != nil {
		s.writeAPIError(w, err)
		return
	}

	hash, err := s.passwords.Hash(req.User.Password)
	if err != nil {
		s.writeAPIError(w, apperror.ValidationFailed("password", err.Error()))
		return
	}
	if _, err := s.store.createAccount(req.User.Username, req.User.Name, hash); err != nil {
		s.writeAPIError(w, err)
		return
	}

	s.logger.Info("devapi: account created", slog.String("username", req.User.Username))
	s.respondWithToken(w, http.StatusCreated, req.User.Username)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := decode(r, &req); err != nil {
		s.writeAPIError(w, err)
		return
	}

	a, ok := s.store.account(req.User.Username)
	if !ok {
		s.writeAPIError(w, apperror.NotFound("user", req.User.Username))
		return
	}
	if err := s.passwords.Verify(a.passwordHash, req.User.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.writeAPIError(w, apperror.Unauthorized("Invalid password"))
			return
		}
		s.writeAPIError(w, err)
		return
	}

	s.respondWithToken(w, http.StatusOK, a.username)
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, username string) {
	token, err := s.tokens.Issue(username)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	u, err := s.store.user(username)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, status, map[string]any{"token": token, "user": u})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if _, err := s.authenticate(r.URL.Query().Get("token"), username); err != nil {
		s.writeAPIError(w, err)
		return
	}

	u, err := s.store.user(username)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req userUpdateRequest
	if err := decode(r, &req); err != nil {
		s.writeAPIError(w, err)
		return
	}
	if _, err := s.authenticate(req.Token, username); err != nil {
		s.writeAPIError(w, err)
		return
	}
	if err := requireFields(map[string]string{"name": req.User.Name}); err != nil {
		s.writeAPIError(w, err)
		return
	}
	if err := s.store.rename(username, req.User.Name); err != nil {
		s.writeAPIError(w, err)
		return
	}

	u, _ := s.store.user(username)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Name updated successfully!", "user": u})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	s.handleFavorite(w, r, s.store.addFavorite, "Favorite Added Successfully!")
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	s.handleFavorite(w, r, s.store.removeFavorite, "Favorite Removed!")
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request, apply func(username, storyID string) error, message string) {
	username := chi.URLParam(r, "username")
	storyID := chi.URLParam(r, "storyId")

	var req tokenRequest
	if err := decode(r, &req); err != nil {
		s.writeAPIError(w, err)
		return
	}
	if _, err := s.authenticate(req.Token, username); err != nil {
		s.writeAPIError(w, err)
		return
	}
	if err := apply(username, storyID); err != nil {
		s.writeAPIError(w, err)
		return
	}

	u, _ := s.store.user(username)
	writeJSON(w, http.StatusOK, map[string]any{"message": message, "user": u})
}

func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", DefaultStoryLimit)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	skip, err := intParam(r, "skip", 0)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	if limit <= 0 || limit > MaxStoryLimit {
		limit = DefaultStoryLimit
	}
	if skip < 0 {
		skip = 0
	}

	writeJSON(w, http.StatusOK, map[string]any{"stories": s.store.listStories(limit, skip)})
}

func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if err := decode(r, &req); err != nil {
		s.writeAPIError(w, err)
		return
	}
	owner, err := s.authenticate(req.Token, "")
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	f := req.Story.Trimmed()
	if err := requireFields(map[string]string{"title": f.Title, "author": f.Author, "url": f.URL}); err != nil {
		s.writeAPIError(w, err)
		return
	}

	st := s.store.createStory(owner, f)
	s.logger.Info("devapi: story created", slog.String("storyId", st.StoryID), slog.String("username", owner))
	writeJSON(w, http.StatusCreated, map[string]any{"story": st})
}

func (s *Server) handleUpdateStory(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "storyId")

	var req storyRequest
	if err := decode(r, &req); err != nil {
		s.writeAPIError(w, err)
		return
	}
	owner, err := s.authenticate(req.Token, "")
	if err != nil {
		s.writeAPIError(w, err)
		return
	}

	st, err := s.store.updateStory(owner, storyID, req.Story.Trimmed())
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Story updated successfully!", "story": st})
}

func (s *Server) handleDeleteStory(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "storyId")

	var req tokenRequest
	if err := decode(r, &req); err != nil {
		s.writeAPIError(w, err)
		return
	}
	owner, err := s.authenticate(req.Token, "")
	if err != nil {
		s.writeAPIError(w, err)
		return
	}

	st, err := s.store.deleteStory(owner, storyID)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Deleted story '%s'", st.Title),
		"story":   st,
	})
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("devapi: failed to encode JSON response", slog.String("error", err.Error()))
	}
}
