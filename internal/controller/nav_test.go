package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/view"
)

func TestNavShowsExactlyOneView(t *testing.T) {
	app, _ := loggedInApp(t, 3)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
		want []view.Region
	}{
		{"login", func() error { app.Nav.Login(); return nil }, []view.Region{view.RegionLoginForm, view.RegionSignupForm}},
		{"submit", app.Nav.Submit, []view.Region{view.RegionSubmitForm, view.RegionAllStories}},
		{"favorites", app.Nav.Favorites, []view.Region{view.RegionFavorites}},
		{"my stories", app.Nav.MyStories, []view.Region{view.RegionMyStories}},
		{"profile", app.Nav.Profile, []view.Region{view.RegionProfile}},
		{"all stories", func() error { return app.Nav.AllStories(ctx) }, []view.Region{view.RegionAllStories}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.run())
			assert.Equal(t, tt.want, app.Page.Snapshot().Visible)
		})
	}
}

func TestNavRequiresLogin(t *testing.T) {
	api := newFakeAPI(t)
	app, _ := newTestApp(t, api)

	for name, run := range map[string]func() error{
		"submit":     app.Nav.Submit,
		"favorites":  app.Nav.Favorites,
		"my stories": app.Nav.MyStories,
		"profile":    app.Nav.Profile,
	} {
		err := run()
		assert.True(t, errors.Is(err, apperror.ErrUnauthorized), name)
		assert.Equal(t, []view.Region{view.RegionAllStories}, app.Page.Snapshot().Visible, name)
	}
}

func TestAllStoriesResetsToFirstPage(t *testing.T) {
	app, _ := loggedInApp(t, 25)
	ctx := context.Background()

	_, err := app.Feed.LoadMore(ctx)
	require.NoError(t, err)
	require.Equal(t, 20, app.State.FeedLen())

	require.NoError(t, app.Nav.AllStories(ctx))
	assert.Equal(t, 10, app.State.FeedLen())
	assert.Len(t, app.Page.List(view.RegionAllStories).Items, 10)
}
