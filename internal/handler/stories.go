package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snooze/internal/model"
)

// messageResult carries the status message the story API returned.
type messageResult struct {
	Message string `json:"message"`
}

// favoriteResult is the favorite membership after a toggle.
type favoriteResult struct {
	StoryID  string `json:"storyId"`
	Favorite bool   `json:"favorite"`
}

func storyFields(in map[string]string) model.StoryFields {
	return model.StoryFields{
		Title:  in["title"],
		Author: in["author"],
		URL:    in["url"],
	}
}

// HandleSubmit posts a new story.
//
// HTTP: POST /api/stories
// BODY: {"title": "...", "author": "...", "url": "..."}
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(w, r)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	story, err := h.app.Feed.Submit(r.Context(), storyFields(in))
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	h.respond(w, r, story, nil)
}

// HandleEditForm opens the edit form for one of the user's stories.
//
// HTTP: POST /api/stories/{id}/edit-form
func (h *Handler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	err := h.app.Feed.ShowEditForm(chi.URLParam(r, "id"))
	h.respond(w, r, nil, err)
}

// HandleEdit saves an edited story.
//
// HTTP: POST /api/stories/{id}
// BODY: {"title": "...", "author": "...", "url": "..."}
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(w, r)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	msg, err := h.app.Feed.Edit(r.Context(), chi.URLParam(r, "id"), storyFields(in))
	h.respond(w, r, messageResult{Message: msg}, err)
}

// HandleDelete deletes one of the user's stories.
//
// HTTP: POST /api/stories/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	msg, err := h.app.Feed.Delete(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, messageResult{Message: msg}, err)
}

// HandleFavorite toggles a story's favorite membership.
//
// HTTP: POST /api/stories/{id}/favorite
func (h *Handler) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fav, err := h.app.Feed.ToggleFavorite(r.Context(), id)
	h.respond(w, r, favoriteResult{StoryID: id, Favorite: fav}, err)
}
