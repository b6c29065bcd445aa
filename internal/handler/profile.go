package handler

import "net/http"

// HandleEditName opens the inline display-name form.
//
// HTTP: POST /api/profile/name/edit
func (h *Handler) HandleEditName(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, nil, h.app.Profile.ShowEditName())
}

// HandleCancelName closes the display-name form.
//
// HTTP: POST /api/profile/name/cancel
func (h *Handler) HandleCancelName(w http.ResponseWriter, r *http.Request) {
	h.app.Profile.CancelEditName()
	h.respond(w, r, nil, nil)
}

// HandleUpdateName saves a new display name.
//
// HTTP: POST /api/profile/name
// BODY: {"name": "..."}
func (h *Handler) HandleUpdateName(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(w, r)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	msg, err := h.app.Profile.UpdateName(r.Context(), in["name"])
	h.respond(w, r, messageResult{Message: msg}, err)
}
