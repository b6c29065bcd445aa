package controller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/auth"
	"github.com/sakif/snooze/internal/model"
	"github.com/sakif/snooze/internal/notify"
	"github.com/sakif/snooze/internal/repository"
	"github.com/sakif/snooze/internal/view"
)

// Phase is the auth state machine's current state.
type Phase int32

const (
	PhaseLoggedOut Phase = iota
	PhaseTransitioning
	PhaseLoggedIn
)

func (p Phase) String() string {
	switch p {
	case PhaseLoggedOut:
		return "logged-out"
	case PhaseTransitioning:
		return "transitioning"
	case PhaseLoggedIn:
		return "logged-in"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// User-visible auth failure messages.
const (
	MsgBadCredentials = "Incorrect username/password combination."
	MsgLoginFailed    = "An error has occurred."
	MsgUsernameTaken  = "Username is already taken. Please select another username"
	MsgSignupFailed   = "Bad request / invalid username/password combination."
)

// Auth drives login, signup, logout and session restore.
//
// STATE MACHINE:
//
//	logged-out ──login/signup/restore──▶ transitioning ──ok──▶ logged-in
//	     ▲                                     │
//	     └────────────────failure──────────────┘
//	logged-in ──logout──▶ transitioning ──▶ logged-out
//
// A second submission while transitioning is refused with apperror.ErrBusy.
type Auth struct {
	api     API
	state   *State
	page    *view.Page
	session repository.SessionStore
	feed    *Feed
	nav     *Nav
	notes   *notify.Center
	logger  *slog.Logger

	mu    sync.Mutex
	phase Phase
}

// NewAuth creates the auth controller.
func NewAuth(api API, state *State, page *view.Page, session repository.SessionStore,
	feed *Feed, nav *Nav, notes *notify.Center, logger *slog.Logger) *Auth {
	return &Auth{
		api:     api,
		state:   state,
		page:    page,
		session: session,
		feed:    feed,
		nav:     nav,
		notes:   notes,
		logger:  logger,
	}
}

// Phase returns the current phase.
func (a *Auth) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Login exchanges credentials for a user. On success the user becomes
// current, the session is persisted, the nav switches to the logged-in
// links and the feed is reloaded. On failure the login form stays as it was
// and no user is set.
func (a *Auth) Login(ctx context.Context, username, password string) (*model.User, error) {
	prev, err := a.begin()
	if err != nil {
		return nil, err
	}

	user, err := a.api.Login(ctx, username, password)
	if err != nil {
		a.end(prev)
		msg := MsgLoginFailed
		if isClientError(err) {
			msg = MsgBadCredentials
		}
		a.logger.Info("login failed",
			slog.String("username", username),
			slog.String("kind", apperror.Kind(err)),
		)
		a.notes.Error(msg)
		return nil, fmt.Errorf("logging in: %w", err)
	}

	a.establish(ctx, user, true)
	return a.state.User(), nil
}

// Signup creates an account and logs it in, with the same success path as
// Login.
func (a *Auth) Signup(ctx context.Context, username, password, name string) (*model.User, error) {
	prev, err := a.begin()
	if err != nil {
		return nil, err
	}

	user, err := a.api.Signup(ctx, username, password, name)
	if err != nil {
		a.end(prev)
		msg := MsgSignupFailed
		if apperror.StatusOf(err) == http.StatusConflict {
			msg = MsgUsernameTaken
		}
		a.logger.Info("signup failed",
			slog.String("username", username),
			slog.String("kind", apperror.Kind(err)),
		)
		a.notes.Error(msg)
		return nil, fmt.Errorf("signing up: %w", err)
	}

	a.establish(ctx, user, true)
	return a.state.User(), nil
}

// Logout clears the persisted session and the current user and resets the
// page to the logged-out view of the loaded feed.
func (a *Auth) Logout(ctx context.Context) error {
	prev, err := a.begin()
	if err != nil {
		return err
	}

	if err := a.session.Clear(ctx); err != nil {
		a.end(prev)
		a.logger.Error("clearing session", slog.String("error", err.Error()))
		a.notes.Error("Could not log out: " + apperror.Message(err, "session store error"))
		return fmt.Errorf("logging out: %w", err)
	}

	username := ""
	if u := a.state.User(); u != nil {
		username = u.Username
	}

	a.state.ClearUser()
	a.nav.UpdateOnLogout()
	a.page.HideAll()
	a.page.SetProfile(view.ProfileView{})
	a.page.SetEditForm(view.EditStoryForm{})
	a.page.SetList(view.RegionFavorites, nil, "")
	a.page.SetList(view.RegionMyStories, nil, "")
	a.feed.RenderAllStories()
	a.page.Show(view.RegionAllStories)

	a.end(PhaseLoggedOut)
	a.logger.Info("logged out", slog.String("username", username))
	return nil
}

// Restore logs back in with the persisted token and username. It reports
// whether a user was restored.
//
// A missing, malformed or rejected session is not an error: the client
// falls back to logged-out silently and the failure is only logged at
// debug level. The stored credentials are left in place.
func (a *Auth) Restore(ctx context.Context) bool {
	token, okToken, err := a.session.Get(ctx, repository.KeyToken)
	if err != nil {
		a.logger.Debug("session restore: reading token", slog.String("error", err.Error()))
		return false
	}
	username, okUser, err := a.session.Get(ctx, repository.KeyUsername)
	if err != nil {
		a.logger.Debug("session restore: reading username", slog.String("error", err.Error()))
		return false
	}
	if !okToken || !okUser || token == "" || username == "" {
		return false
	}

	claims, err := auth.Inspect(token)
	if err != nil {
		a.logger.Debug("session restore: unusable token", slog.String("error", err.Error()))
		return false
	}
	if claims.Username != username {
		a.logger.Debug("session restore: token belongs to another user",
			slog.String("stored", username),
			slog.String("token", claims.Username),
		)
		return false
	}

	prev, err := a.begin()
	if err != nil {
		return false
	}

	user, err := a.api.RestoreSession(ctx, token, username)
	if err != nil {
		a.end(prev)
		a.logger.Debug("session restore: rejected by API",
			slog.String("username", username),
			slog.String("kind", apperror.Kind(err)),
		)
		return false
	}

	a.establish(ctx, user, false)
	return true
}

// establish makes user current. reload re-fetches the feed, which is what a
// fresh login needs; restore runs before the first feed load anyway.
func (a *Auth) establish(ctx context.Context, user *model.User, reload bool) {
	a.state.SetUser(user)

	if err := a.persist(ctx, user); err != nil {
		// The user is logged in for this run; only auto-login is lost.
		a.logger.Error("persisting session", slog.String("error", err.Error()))
	}

	a.nav.UpdateOnLogin()
	a.page.Hide(view.RegionLoginForm, view.RegionSignupForm)
	a.end(PhaseLoggedIn)

	a.logger.Info("logged in", slog.String("username", user.Username))

	if reload {
		a.page.HideAll()
		a.page.Show(view.RegionAllStories)
		if _, err := a.feed.LoadInitial(ctx); err != nil {
			a.logger.Warn("reloading feed after login", slog.String("error", err.Error()))
			a.feed.RenderAllStories()
		}
	}
}

func (a *Auth) persist(ctx context.Context, user *model.User) error {
	if err := a.session.Set(ctx, repository.KeyToken, user.LoginToken); err != nil {
		return err
	}
	return a.session.Set(ctx, repository.KeyUsername, user.Username)
}

func (a *Auth) begin() (Phase, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase == PhaseTransitioning {
		return a.phase, apperror.Busy("a login or logout is already in progress")
	}
	prev := a.phase
	a.phase = PhaseTransitioning
	return prev, nil
}

func (a *Auth) end(next Phase) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.phase = next
}

// isClientError reports whether err carries a 4xx API status.
func isClientError(err error) bool {
	status := apperror.StatusOf(err)
	return status >= http.StatusBadRequest && status < http.StatusInternalServerError
}
