package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/snooze/internal/apperror"
)

// Nav view names accepted by HandleNav.
const (
	ViewAll       = "all"
	ViewLogin     = "login"
	ViewSubmit    = "submit"
	ViewFavorites = "favorites"
	ViewMyStories = "my-stories"
	ViewProfile   = "profile"
)

// HandleNav switches the page to one view.
//
// HTTP: POST /api/nav/{view}
func (h *Handler) HandleNav(w http.ResponseWriter, r *http.Request) {
	nav := h.app.Nav

	var err error
	switch name := chi.URLParam(r, "view"); name {
	case ViewAll:
		err = nav.AllStories(r.Context())
	case ViewLogin:
		nav.Login()
	case ViewSubmit:
		err = nav.Submit()
	case ViewFavorites:
		err = nav.Favorites()
	case ViewMyStories:
		err = nav.MyStories()
	case ViewProfile:
		err = nav.Profile()
	default:
		err = apperror.NotFound("view", name)
	}

	h.respond(w, r, nil, err)
}

// HandleMore is the pagination trigger. The page script calls it when the
// last story scrolls into view and reloads the page afterwards; the retry
// button after a failed load posts it as a form.
//
// The notifications it produces ("Loaded N more stories", the exhaustion
// notice, load failures) stay queued so the reload renders them. The JSON
// body carries a copy.
//
// HTTP: POST /api/feed/more
func (h *Handler) HandleMore(w http.ResponseWriter, r *http.Request) {
	res, err := h.app.Feed.TriggerVisible(r.Context())
	h.finish(w, r, res, err, h.app.Notes.Pending)
}
