package controller

import (
	"sync"

	"github.com/sakif/snooze/internal/model"
)

// State is the session context shared by the controllers: who is logged in
// and which stories the feed has loaded. It replaces page-global variables
// with one value that has a defined update API. Safe for concurrent use.
//
// Readers get copies. A caller holding a *model.User from User() cannot
// change the state behind the lock's back.
type State struct {
	mu   sync.RWMutex
	user *model.User
	feed []model.Story
}

// NewState returns an empty, logged-out state.
func NewState() *State {
	return &State{}
}

// User returns a copy of the current user, or nil when logged out.
func (s *State) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// LoggedIn reports whether a user is set.
func (s *State) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsFavorite reports whether the current user has favorited storyID.
// Always false when logged out.
func (s *State) IsFavorite(storyID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsFavorite(storyID)
}

// SetUser makes u the current user.
func (s *State) SetUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u.Clone()
}

// ClearUser logs the current user out of the state.
func (s *State) ClearUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// UpdateUser applies fn to the current user under the write lock.
// It reports false, without calling fn, when nobody is logged in.
func (s *State) UpdateUser(fn func(u *model.User)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return false
	}
	fn(s.user)
	return true
}

// Feed returns a copy of the loaded feed.
func (s *State) Feed() []model.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Story{}, s.feed...)
}

// FeedLen is the number of loaded stories, which is also the skip offset
// of the next page.
func (s *State) FeedLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.feed)
}

// ReplaceFeed resets the feed to stories (page one).
func (s *State) ReplaceFeed(stories []model.Story) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed = append([]model.Story{}, stories...)
}

// AppendFeed appends the stories not already loaded and returns how many
// were added. The feed only grows while paging.
func (s *State) AppendFeed(stories []model.Story) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.feed))
	for _, st := range s.feed {
		seen[st.StoryID] = struct{}{}
	}

	added := 0
	for _, st := range stories {
		if _, dup := seen[st.StoryID]; dup {
			continue
		}
		seen[st.StoryID] = struct{}{}
		s.feed = append(s.feed, st)
		added++
	}
	return added
}

// AddStory records a story the current user just posted: on top of the feed
// and at the end of the user's own stories (API order, oldest first).
func (s *State) AddStory(st model.Story) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed = append([]model.Story{st}, s.feed...)
	if s.user != nil {
		s.user.OwnStories = append(s.user.OwnStories, st)
	}
}

// ReplaceStory swaps an edited story wherever it is held.
func (s *State) ReplaceStory(st model.Story) {
	s.mu.Lock()
	defer s.mu.Unlock()
	model.ReplaceStory(s.feed, st)
	if s.user != nil {
		model.ReplaceStory(s.user.Favorites, st)
		model.ReplaceStory(s.user.OwnStories, st)
	}
}

// RemoveStory drops a deleted story from the feed, favorites and own stories.
func (s *State) RemoveStory(storyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed = model.RemoveStory(s.feed, storyID)
	if s.user != nil {
		s.user.Favorites = model.RemoveStory(s.user.Favorites, storyID)
		s.user.OwnStories = model.RemoveStory(s.user.OwnStories, storyID)
	}
}

// SetFavorite adds st to, or removes it from, the current user's favorites.
func (s *State) SetFavorite(st model.Story, favorite bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	if !favorite {
		s.user.Favorites = model.RemoveStory(s.user.Favorites, st.StoryID)
		return
	}
	if !s.user.IsFavorite(st.StoryID) {
		s.user.Favorites = append(s.user.Favorites, st)
	}
}

// FindStory looks storyID up in the feed, then the user's favorites, then
// the user's own stories.
func (s *State) FindStory(storyID string) (model.Story, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := model.FindStory(s.feed, storyID); ok {
		return st, true
	}
	if s.user == nil {
		return model.Story{}, false
	}
	if st, ok := model.FindStory(s.user.Favorites, storyID); ok {
		return st, true
	}
	return model.FindStory(s.user.OwnStories, storyID)
}
