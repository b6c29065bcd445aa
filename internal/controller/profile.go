package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/model"
	"github.com/sakif/snooze/internal/notify"
	"github.com/sakif/snooze/internal/view"
)

// dateLayout is how the account creation date is shown.
const dateLayout = "2006-01-02"

// Profile renders the current user's profile and edits the display name.
type Profile struct {
	api    API
	state  *State
	page   *view.Page
	notes  *notify.Center
	logger *slog.Logger
}

// NewProfile creates the profile controller.
func NewProfile(api API, state *State, page *view.Page, notes *notify.Center, logger *slog.Logger) *Profile {
	return &Profile{api: api, state: state, page: page, notes: notes, logger: logger}
}

// Show renders name, username and account creation date.
func (p *Profile) Show() error {
	user := p.state.User()
	if user == nil {
		return apperror.Unauthorized("log in to see your profile")
	}
	p.page.SetProfile(profileView(user))
	p.page.Show(view.RegionProfile)
	return nil
}

// ShowEditName opens the inline display-name form.
func (p *Profile) ShowEditName() error {
	if !p.state.LoggedIn() {
		return apperror.Unauthorized("log in to edit your name")
	}
	p.page.Show(view.RegionEditNameForm)
	return nil
}

// CancelEditName closes the inline form without saving.
func (p *Profile) CancelEditName() {
	p.page.Hide(view.RegionEditNameForm)
}

// UpdateName saves a new display name. On success the state and the
// rendered profile change and the form closes; the API's message is
// returned and shown as a notification.
func (p *Profile) UpdateName(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		err := apperror.ValidationFailed("name", "Name is required")
		p.notes.Error(err.Error())
		return "", err
	}

	user := p.state.User()
	if user == nil {
		err := apperror.Unauthorized("log in to edit your name")
		p.notes.Error(err.Error())
		return "", err
	}

	msg, err := p.api.UpdateDisplayName(ctx, user.LoginToken, user.Username, name)
	if err != nil {
		p.logger.Warn("updating display name",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
		p.notes.Error("Could not update name: " + apperror.Message(err, "An error has occurred."))
		return "", fmt.Errorf("updating name: %w", err)
	}

	p.state.UpdateUser(func(u *model.User) { u.Name = name })
	if u := p.state.User(); u != nil {
		p.page.SetProfile(profileView(u))
	}
	p.page.Hide(view.RegionEditNameForm)
	p.notes.Info(msg)

	return msg, nil
}

func profileView(u *model.User) view.ProfileView {
	created := ""
	if !u.CreatedAt.IsZero() {
		created = u.CreatedAt.Format(dateLayout)
	}
	return view.ProfileView{
		Name:           u.Name,
		Username:       u.Username,
		AccountCreated: created,
	}
}
