package handler

import "github.com/go-chi/chi/v5"

// Routes registers the page and every action on r.
//
// ROUTES:
//
//	GET  /                            page (HTML)
//	GET  /api/page                    page (JSON)
//	POST /api/nav/{view}              all | login | submit | favorites | my-stories | profile
//	POST /api/feed/more               pagination trigger
//	POST /api/login                   username, password
//	POST /api/signup                  username, password, name
//	POST /api/logout
//	POST /api/stories                 title, author, url
//	POST /api/stories/{id}            title, author, url (edit)
//	POST /api/stories/{id}/edit-form
//	POST /api/stories/{id}/delete
//	POST /api/stories/{id}/favorite
//	POST /api/profile/name            name
//	POST /api/profile/name/edit
//	POST /api/profile/name/cancel
//
// Actions are POST only so plain HTML forms can reach all of them.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandlePage)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.markNotifications)

		r.Get("/page", h.HandlePageJSON)

		r.Post("/nav/{view}", h.HandleNav)
		r.Post("/feed/more", h.HandleMore)

		r.Post("/login", h.HandleLogin)
		r.Post("/signup", h.HandleSignup)
		r.Post("/logout", h.HandleLogout)

		r.Post("/stories", h.HandleSubmit)
		r.Post("/stories/{id}", h.HandleEdit)
		r.Post("/stories/{id}/edit-form", h.HandleEditForm)
		r.Post("/stories/{id}/delete", h.HandleDelete)
		r.Post("/stories/{id}/favorite", h.HandleFavorite)

		r.Post("/profile/name", h.HandleUpdateName)
		r.Post("/profile/name/edit", h.HandleEditName)
		r.Post("/profile/name/cancel", h.HandleCancelName)
	})
}
