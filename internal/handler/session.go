package handler

import (
	"net/http"

	"github.com/sakif/snooze/internal/model"
)

// userResult is the public part of the user returned by login and signup.
// The login token stays on the server.
type userResult struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

func toUserResult(u *model.User) any {
	if u == nil {
		return nil
	}
	return userResult{Username: u.Username, Name: u.Name}
}

// HandleLogin logs in with username and password.
//
// HTTP: POST /api/login
// BODY: {"username": "...", "password": "..."} or the equivalent form
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(w, r)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	u, err := h.app.Auth.Login(r.Context(), in["username"], in["password"])
	h.respond(w, r, toUserResult(u), err)
}

// HandleSignup creates an account and logs it in.
//
// HTTP: POST /api/signup
// BODY: {"username": "...", "password": "...", "name": "..."}
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(w, r)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}
	u, err := h.app.Auth.Signup(r.Context(), in["username"], in["password"], in["name"])
	h.respond(w, r, toUserResult(u), err)
}

// HandleLogout forgets the session.
//
// HTTP: POST /api/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	err := h.app.Auth.Logout(r.Context())
	h.respond(w, r, nil, err)
}
