package controller

import (
	"context"
	"log/slog"

	"github.com/sakif/snooze/internal/notify"
	"github.com/sakif/snooze/internal/repository"
	"github.com/sakif/snooze/internal/view"
)

// App wires the controllers around one State, one Page and one notification
// center. It is the composition root used by the server.
type App struct {
	State   *State
	Page    *view.Page
	Notes   *notify.Center
	Feed    *Feed
	Auth    *Auth
	Profile *Profile
	Nav     *Nav

	logger *slog.Logger
}

// Options tune an App.
type Options struct {
	StoryLimit     int
	NotifyCapacity int
}

// NewApp builds the controllers.
func NewApp(api API, session repository.SessionStore, opts Options, logger *slog.Logger) *App {
	state := NewState()
	page := view.NewPage()
	notes := notify.NewCenter(opts.NotifyCapacity, logger)

	feed := NewFeed(api, state, page, notes, opts.StoryLimit, logger.With(slog.String("controller", "feed")))
	profile := NewProfile(api, state, page, notes, logger.With(slog.String("controller", "profile")))
	nav := NewNav(state, page, feed, profile)
	authCtl := NewAuth(api, state, page, session, feed, nav, notes, logger.With(slog.String("controller", "auth")))

	return &App{
		State:   state,
		Page:    page,
		Notes:   notes,
		Feed:    feed,
		Auth:    authCtl,
		Profile: profile,
		Nav:     nav,
		logger:  logger,
	}
}

// Start restores a persisted session, if any, then loads the first page of
// the feed. A feed failure is reported through the notification center and
// does not stop the app.
func (a *App) Start(ctx context.Context) {
	if a.Auth.Restore(ctx) {
		a.logger.Info("session restored")
	}
	if _, err := a.Feed.LoadInitial(ctx); err != nil {
		a.logger.Warn("initial feed load failed", slog.String("error", err.Error()))
	}
}
