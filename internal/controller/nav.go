package controller

import (
	"context"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/view"
)

// Nav switches between page regions. Every action hides all regions, shows
// one and loads its data. Views that need a user return
// apperror.ErrUnauthorized when logged out and leave the page untouched.
type Nav struct {
	state   *State
	page    *view.Page
	feed    *Feed
	profile *Profile
}

// NewNav creates the nav controller.
func NewNav(state *State, page *view.Page, feed *Feed, profile *Profile) *Nav {
	return &Nav{state: state, page: page, feed: feed, profile: profile}
}

// AllStories re-enters the all-stories view, resetting the feed to page one.
func (n *Nav) AllStories(ctx context.Context) error {
	n.page.HideAll()
	n.page.Show(view.RegionAllStories)
	_, err := n.feed.LoadInitial(ctx)
	return err
}

// Login shows the login and signup forms.
func (n *Nav) Login() {
	n.page.HideAll()
	n.page.Show(view.RegionLoginForm, view.RegionSignupForm)
}

// Submit shows the story form above the loaded feed.
func (n *Nav) Submit() error {
	if !n.state.LoggedIn() {
		return apperror.Unauthorized("log in to submit a story")
	}
	n.page.HideAll()
	n.page.Show(view.RegionSubmitForm, view.RegionAllStories)
	n.feed.RenderAllStories()
	return nil
}

// Favorites shows the current user's favorites.
func (n *Nav) Favorites() error {
	if !n.state.LoggedIn() {
		return apperror.Unauthorized("log in to see your favorites")
	}
	n.page.HideAll()
	return n.feed.ShowFavorites()
}

// MyStories shows the stories the current user posted.
func (n *Nav) MyStories() error {
	if !n.state.LoggedIn() {
		return apperror.Unauthorized("log in to see your stories")
	}
	n.page.HideAll()
	return n.feed.ShowMyStories()
}

// Profile shows the current user's profile.
func (n *Nav) Profile() error {
	if !n.state.LoggedIn() {
		return apperror.Unauthorized("log in to see your profile")
	}
	n.page.HideAll()
	return n.profile.Show()
}

// UpdateOnLogin switches the nav to the logged-in links.
func (n *Nav) UpdateOnLogin() {
	nv := view.NavView{LoggedIn: true}
	if u := n.state.User(); u != nil {
		nv.Username = u.Username
	}
	n.page.SetNav(nv)
}

// UpdateOnLogout switches the nav back to the login link.
func (n *Nav) UpdateOnLogout() {
	n.page.SetNav(view.NavView{})
}
