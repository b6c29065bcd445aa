// Package controller holds the interaction logic of the story client: the
// feed, auth, profile and nav controllers.
//
// THE LAYERS:
//
//	handler (HTTP rendering surface) → controller → API client / session store
//
// Controllers never touch HTTP. They mutate two things:
//
//   - State: the current user and the loaded feed (the only source of truth
//     for favorite membership);
//   - view.Page: which regions are shown and what each list contains.
//
// Every action returns (T, error). The error wraps an apperror kind, and a
// user-visible notification has already been pushed to the notify.Center
// when the action failed, so callers only decide how to respond.
package controller

import (
	"context"

	"github.com/sakif/snooze/internal/model"
)

// API is the part of the Hack-or-Snooze REST API the controllers consume.
// *api.Client implements it; tests use an in-memory fake.
type API interface {
	Login(ctx context.Context, username, password string) (*model.User, error)
	Signup(ctx context.Context, username, password, name string) (*model.User, error)
	RestoreSession(ctx context.Context, token, username string) (*model.User, error)

	ListStories(ctx context.Context, limit, skip int) ([]model.Story, error)
	CreateStory(ctx context.Context, token string, fields model.StoryFields) (*model.Story, error)
	UpdateStory(ctx context.Context, token, storyID string, fields model.StoryFields) (string, error)
	DeleteStory(ctx context.Context, token, storyID string) (string, error)

	AddFavorite(ctx context.Context, token, username, storyID string) error
	RemoveFavorite(ctx context.Context, token, username, storyID string) error
	UpdateDisplayName(ctx context.Context, token, username, name string) (string, error)
}
