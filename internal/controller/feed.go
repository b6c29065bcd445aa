package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/model"
	"github.com/sakif/snooze/internal/notify"
	"github.com/sakif/snooze/internal/view"
)

// DefaultStoryLimit is the feed page size.
const DefaultStoryLimit = 10

// Empty-list messages.
const (
	EmptyFavorites = "No favorites added yet!"
	EmptyMyStories = "No stories added by user yet!"
)

// LoadResult describes what a feed load did.
type LoadResult struct {
	Added     int  `json:"added"`
	Total     int  `json:"total"`
	Exhausted bool `json:"exhausted"`
	Skipped   bool `json:"skipped"` // another load was in flight or the trigger was not armed
}

// Feed loads, renders and paginates the story feed, and owns the story
// actions (submit, edit, delete, favorite).
//
// PAGINATION GUARDS:
// The pagination trigger can fire many times while a page is loading.
// Four flags keep that from turning into duplicate requests:
//
//	armed     - the trigger may fire; cleared before each fetch
//	inFlight  - a LoadMore is running; re-entrant calls are skipped
//	exhausted - the API returned nothing new; no further requests until
//	            LoadInitial resets the feed
//	failed    - the last LoadMore failed; the trigger is armed again but
//	            only a user action should fire it
//
// WHY ATOMICS AND A MUTEX?
// The flags are read on every page render, which must never wait behind a
// slow API call, so they are atomic. loadMu only serializes the fetch and
// the feed update, so LoadInitial and LoadMore never interleave their
// skip offsets.
//
// FAVORITE GUARD:
// toggling holds the ids with a favorite request in flight. A second toggle
// of the same story is refused with apperror.ErrBusy and sends nothing.
type Feed struct {
	api    API
	state  *State
	page   *view.Page
	notes  *notify.Center
	logger *slog.Logger
	limit  int

	loadMu    sync.Mutex
	armed     atomic.Bool
	inFlight  atomic.Bool
	exhausted atomic.Bool
	failed    atomic.Bool

	toggleMu sync.Mutex
	toggling map[string]struct{}
}

// NewFeed creates a feed controller that pages limit stories at a time.
func NewFeed(api API, state *State, page *view.Page, notes *notify.Center, limit int, logger *slog.Logger) *Feed {
	if limit <= 0 {
		limit = DefaultStoryLimit
	}
	return &Feed{
		api:      api,
		state:    state,
		page:     page,
		notes:    notes,
		logger:   logger,
		limit:    limit,
		toggling: make(map[string]struct{}),
	}
}

// Limit is the page size.
func (f *Feed) Limit() int { return f.limit }

// Armed reports whether the pagination trigger may fire.
func (f *Feed) Armed() bool { return f.armed.Load() }

// Exhausted reports whether the API has run out of stories.
func (f *Feed) Exhausted() bool { return f.exhausted.Load() }

// Failed reports whether the last LoadMore failed. The rendering surface
// then offers an explicit retry instead of firing on visibility.
func (f *Feed) Failed() bool { return f.failed.Load() }

// LoadInitial fetches the first page, replaces the feed, renders the
// all-stories list and arms the pagination trigger.
func (f *Feed) LoadInitial(ctx context.Context) (LoadResult, error) {
	f.loadMu.Lock()
	defer f.loadMu.Unlock()

	f.armed.Store(false)

	stories, err := f.api.ListStories(ctx, f.limit, 0)
	if err != nil {
		f.fail("Could not load stories", err)
		return LoadResult{}, fmt.Errorf("loading stories: %w", err)
	}

	f.state.ReplaceFeed(stories)
	f.exhausted.Store(false)
	f.failed.Store(false)
	f.RenderAllStories()
	f.page.Show(view.RegionAllStories)
	f.armed.Store(true)

	f.logger.Debug("feed loaded", slog.Int("stories", len(stories)))
	return LoadResult{Added: len(stories), Total: len(stories)}, nil
}

// LoadMore fetches the next page, skipping the stories already loaded.
//
// When the API returns nothing new the feed is marked exhausted and the
// user is told how many stories exist; this happens once per feed reset.
// Further calls return immediately without a request.
func (f *Feed) LoadMore(ctx context.Context) (LoadResult, error) {
	if !f.inFlight.CompareAndSwap(false, true) {
		return LoadResult{Total: f.state.FeedLen(), Skipped: true}, nil
	}
	defer f.inFlight.Store(false)

	f.loadMu.Lock()
	defer f.loadMu.Unlock()

	before := f.state.FeedLen()
	if f.exhausted.Load() {
		f.armed.Store(false)
		return LoadResult{Total: before, Exhausted: true}, nil
	}

	stories, err := f.api.ListStories(ctx, f.limit, before)
	if err != nil {
		f.fail("Could not load more stories", err)
		f.failed.Store(true)
		f.armed.Store(true)
		return LoadResult{Total: before}, fmt.Errorf("loading more stories: %w", err)
	}
	f.failed.Store(false)

	added := f.state.AppendFeed(stories)
	total := before + added

	if added == 0 {
		f.armed.Store(false)
		if f.exhausted.CompareAndSwap(false, true) {
			f.notes.Info(fmt.Sprintf("There are only a total of %d stories. No more stories to show.", total))
		}
		return LoadResult{Total: total, Exhausted: true}, nil
	}

	f.RenderAllStories()
	f.notes.Info(fmt.Sprintf("Loaded %d more stories", added))
	f.armed.Store(true)

	return LoadResult{Added: added, Total: total}, nil
}

// TriggerVisible is called when the last rendered story scrolls into view.
// It fires LoadMore at most once per arm.
func (f *Feed) TriggerVisible(ctx context.Context) (LoadResult, error) {
	if !f.armed.CompareAndSwap(true, false) {
		return LoadResult{Total: f.state.FeedLen(), Exhausted: f.exhausted.Load(), Skipped: true}, nil
	}
	return f.LoadMore(ctx)
}

// RenderAllStories re-renders the all-stories list from the loaded feed.
// Stars are shown only to a logged-in user.
func (f *Feed) RenderAllStories() {
	user := f.state.User()
	f.page.SetList(view.RegionAllStories, view.RenderList(f.state.Feed(), allStoriesFlags(user)), "")
}

// ShowFavorites renders the current user's favorites, newest first.
func (f *Feed) ShowFavorites() error {
	user := f.state.User()
	if user == nil {
		return apperror.Unauthorized("log in to see your favorites")
	}
	items := view.RenderList(view.NewestFirst(user.Favorites), func(s model.Story) view.Flags {
		return view.Flags{ShowStar: true, Favorite: user.IsFavorite(s.StoryID)}
	})
	f.page.SetList(view.RegionFavorites, items, EmptyFavorites)
	f.page.Show(view.RegionFavorites)
	return nil
}

// ShowMyStories renders the stories the current user posted, newest first,
// with delete and edit affordances.
func (f *Feed) ShowMyStories() error {
	user := f.state.User()
	if user == nil {
		return apperror.Unauthorized("log in to see your stories")
	}
	f.renderMyStories(user)
	f.page.Show(view.RegionMyStories)
	return nil
}

func (f *Feed) renderMyStories(user *model.User) {
	items := view.RenderList(view.NewestFirst(user.OwnStories), func(s model.Story) view.Flags {
		return view.Flags{ShowDelete: true, ShowStar: true, ShowEdit: true, Favorite: user.IsFavorite(s.StoryID)}
	})
	f.page.SetList(view.RegionMyStories, items, EmptyMyStories)
}

// Submit posts a new story as the current user.
//
// Empty fields (after trimming) are rejected before any request is made.
// On success the story goes on top of the feed and the all-stories list,
// and the submit form is reset and hidden.
func (f *Feed) Submit(ctx context.Context, fields model.StoryFields) (*model.Story, error) {
	fields = fields.Trimmed()
	if err := validateStoryFields(fields); err != nil {
		f.notes.Error(err.Error())
		return nil, err
	}

	user := f.state.User()
	if user == nil {
		err := apperror.Unauthorized("log in to submit a story")
		f.notes.Error(err.Error())
		return nil, err
	}

	story, err := f.api.CreateStory(ctx, user.LoginToken, fields)
	if err != nil {
		f.fail("Could not submit story", err)
		return nil, fmt.Errorf("submitting story: %w", err)
	}

	f.state.AddStory(*story)
	f.page.PrependItem(view.RegionAllStories, view.RenderStory(*story, allStoriesFlags(f.state.User())(*story)))
	f.page.Hide(view.RegionSubmitForm)

	f.logger.Info("story submitted",
		slog.String("story_id", story.StoryID),
		slog.String("username", user.Username),
	)
	return story, nil
}

// ShowEditForm opens the edit form pre-filled with one of the user's stories.
func (f *Feed) ShowEditForm(storyID string) error {
	user := f.state.User()
	if user == nil {
		return apperror.Unauthorized("log in to edit stories")
	}
	story, ok := model.FindStory(user.OwnStories, storyID)
	if !ok {
		return apperror.NotFound("story", storyID)
	}
	f.page.SetEditForm(view.EditStoryForm{StoryID: story.StoryID, StoryFields: story.Fields()})
	f.page.Show(view.RegionEditStoryForm)
	return nil
}

// Edit saves new fields for one of the user's stories, re-renders the
// my-stories list and closes the edit form. It returns the API's message.
func (f *Feed) Edit(ctx context.Context, storyID string, fields model.StoryFields) (string, error) {
	fields = fields.Trimmed()
	if err := validateStoryFields(fields); err != nil {
		f.notes.Error(err.Error())
		return "", err
	}

	user := f.state.User()
	if user == nil {
		err := apperror.Unauthorized("log in to edit stories")
		f.notes.Error(err.Error())
		return "", err
	}

	msg, err := f.api.UpdateStory(ctx, user.LoginToken, storyID, fields)
	if err != nil {
		f.fail("Could not update story", err)
		return "", fmt.Errorf("updating story %s: %w", storyID, err)
	}

	if story, ok := f.state.FindStory(storyID); ok {
		story.Title, story.Author, story.URL = fields.Title, fields.Author, fields.URL
		f.state.ReplaceStory(story)
	}

	f.renderMyStories(f.state.User())
	f.page.Hide(view.RegionEditStoryForm)
	f.page.SetEditForm(view.EditStoryForm{})
	f.notes.Info(msg)

	return msg, nil
}

// Delete removes one of the user's stories and its rendered item.
// It returns the API's message.
func (f *Feed) Delete(ctx context.Context, storyID string) (string, error) {
	user := f.state.User()
	if user == nil {
		err := apperror.Unauthorized("log in to delete stories")
		f.notes.Error(err.Error())
		return "", err
	}

	msg, err := f.api.DeleteStory(ctx, user.LoginToken, storyID)
	if err != nil {
		f.fail("Could not delete story", err)
		return "", fmt.Errorf("deleting story %s: %w", storyID, err)
	}

	f.state.RemoveStory(storyID)
	f.page.RemoveItem(storyID)
	if u := f.state.User(); u != nil && len(u.OwnStories) == 0 {
		f.renderMyStories(u)
	}
	f.notes.Info(msg)

	f.logger.Info("story deleted", slog.String("story_id", storyID))
	return msg, nil
}

// ToggleFavorite flips the favorite membership of a story and returns the
// new membership.
//
// Membership is read from State, never from the rendered icon. The state
// and every rendered star change only after the API call succeeds; on
// failure both keep their previous value. The star is marked busy for the
// duration of the request.
func (f *Feed) ToggleFavorite(ctx context.Context, storyID string) (bool, error) {
	user := f.state.User()
	if user == nil {
		err := apperror.Unauthorized("log in to favorite stories")
		f.notes.Error(err.Error())
		return false, err
	}

	if !f.beginToggle(storyID) {
		return user.IsFavorite(storyID), apperror.Busy("a favorite change for this story is already in progress")
	}
	defer f.endToggle(storyID)

	story, ok := f.state.FindStory(storyID)
	if !ok {
		err := apperror.NotFound("story", storyID)
		f.notes.Error(err.Error())
		return false, err
	}

	f.page.SetStarBusy(storyID, true)
	defer f.page.SetStarBusy(storyID, false)

	wasFavorite := f.state.IsFavorite(storyID)

	var err error
	if wasFavorite {
		err = f.api.RemoveFavorite(ctx, user.LoginToken, user.Username, storyID)
	} else {
		err = f.api.AddFavorite(ctx, user.LoginToken, user.Username, storyID)
	}
	if err != nil {
		f.fail("Could not update favorite", err)
		return wasFavorite, fmt.Errorf("toggling favorite %s: %w", storyID, err)
	}

	f.state.SetFavorite(story, !wasFavorite)
	f.page.SetStar(storyID, view.StarClass(!wasFavorite))

	return !wasFavorite, nil
}

func (f *Feed) beginToggle(storyID string) bool {
	f.toggleMu.Lock()
	defer f.toggleMu.Unlock()
	if _, busy := f.toggling[storyID]; busy {
		return false
	}
	f.toggling[storyID] = struct{}{}
	return true
}

func (f *Feed) endToggle(storyID string) {
	f.toggleMu.Lock()
	defer f.toggleMu.Unlock()
	delete(f.toggling, storyID)
}

// fail logs err and pushes a user-visible notification for it.
func (f *Feed) fail(action string, err error) {
	f.logger.Warn(action,
		slog.String("kind", apperror.Kind(err)),
		slog.String("error", err.Error()),
	)
	f.notes.Error(fmt.Sprintf("%s: %s", action, apperror.Message(err, "An error has occurred.")))
}

func allStoriesFlags(user *model.User) func(model.Story) view.Flags {
	return func(s model.Story) view.Flags {
		if user == nil {
			return view.Flags{}
		}
		return view.Flags{ShowStar: true, Favorite: user.IsFavorite(s.StoryID)}
	}
}

func validateStoryFields(f model.StoryFields) error {
	switch {
	case f.Title == "":
		return apperror.ValidationFailed("title", "Title is required")
	case f.Author == "":
		return apperror.ValidationFailed("author", "Author is required")
	case f.URL == "":
		return apperror.ValidationFailed("url", "URL is required")
	}
	return nil
}
