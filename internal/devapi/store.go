package devapi

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/model"
)

type account struct {
	username     string
	name         string
	passwordHash string
	createdAt    time.Time
	favorites    []string // story ids, in the order they were added
}

// store keeps accounts and stories in memory. Safe for concurrent use.
type store struct {
	mu       sync.RWMutex
	accounts map[string]*account
	stories  map[string]*model.Story
	now      func() time.Time
}

func newStore() *store {
	return &store{
		accounts: make(map[string]*account),
		stories:  make(map[string]*model.Story),
		now:      time.Now,
	}
}

func (s *store) createAccount(username, name, passwordHash string) (*account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[username]; ok {
		return nil, apperror.Conflict("user", username)
	}
	a := &account{
		username:     username,
		name:         name,
		passwordHash: passwordHash,
		createdAt:    s.now().UTC(),
	}
	s.accounts[username] = a
	return a, nil
}

func (s *store) account(username string) (*account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[username]
	return a, ok
}

func (s *store) rename(username, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[username]
	if !ok {
		return apperror.NotFound("user", username)
	}
	a.name = name
	return nil
}

// user assembles the public view of an account with its favorites and stories.
func (s *store) user(username string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[username]
	if !ok {
		return model.User{}, apperror.NotFound("user", username)
	}

	u := model.User{
		Username:   a.username,
		Name:       a.name,
		CreatedAt:  a.createdAt,
		Favorites:  []model.Story{},
		OwnStories: []model.Story{},
	}
	for _, id := range a.favorites {
		if st, ok := s.stories[id]; ok {
			u.Favorites = append(u.Favorites, *st)
		}
	}
	for _, st := range s.sortedLocked() {
		if st.Username == username {
			u.OwnStories = append([]model.Story{st}, u.OwnStories...)
		}
	}
	return u, nil
}

func (s *store) addFavorite(username, storyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[username]
	if !ok {
		return apperror.NotFound("user", username)
	}
	if _, ok := s.stories[storyID]; !ok {
		return apperror.NotFound("story", storyID)
	}
	for _, id := range a.favorites {
		if id == storyID {
			return nil
		}
	}
	a.favorites = append(a.favorites, storyID)
	return nil
}

func (s *store) removeFavorite(username, storyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[username]
	if !ok {
		return apperror.NotFound("user", username)
	}
	if _, ok := s.stories[storyID]; !ok {
		return apperror.NotFound("story", storyID)
	}
	a.favorites = without(a.favorites, storyID)
	return nil
}

func (s *store) createStory(username string, f model.StoryFields) model.Story {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	st := &model.Story{
		StoryID:   xid.New().String(),
		Title:     f.Title,
		Author:    f.Author,
		URL:       f.URL,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.stories[st.StoryID] = st
	return *st
}

func (s *store) story(id string) (model.Story, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stories[id]
	if !ok {
		return model.Story{}, false
	}
	return *st, true
}

// updateStory applies the non-empty fields of f. Only the poster may edit.
func (s *store) updateStory(username, id string, f model.StoryFields) (model.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stories[id]
	if !ok {
		return model.Story{}, apperror.NotFound("story", id)
	}
	if st.Username != username {
		return model.Story{}, apperror.Forbidden("You can only update stories you posted")
	}
	if f.Title != "" {
		st.Title = f.Title
	}
	if f.Author != "" {
		st.Author = f.Author
	}
	if f.URL != "" {
		st.URL = f.URL
	}
	st.UpdatedAt = s.now().UTC()
	return *st, nil
}

// deleteStory removes a story and drops it from every favorites list.
func (s *store) deleteStory(username, id string) (model.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stories[id]
	if !ok {
		return model.Story{}, apperror.NotFound("story", id)
	}
	if st.Username != username {
		return model.Story{}, apperror.Forbidden("You can only delete stories you posted")
	}
	delete(s.stories, id)
	for _, a := range s.accounts {
		a.favorites = without(a.favorites, id)
	}
	return *st, nil
}

// listStories returns stories newest first, paginated.
func (s *store) listStories(limit, skip int) []model.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedLocked()
	if skip >= len(all) {
		return []model.Story{}
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all
}

// sortedLocked returns stories newest first. xid ids sort by creation time,
// which breaks ties between stories created in the same instant.
func (s *store) sortedLocked() []model.Story {
	out := make([]model.Story, 0, len(s.stories))
	for _, st := range s.stories {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].StoryID > out[j].StoryID
	})
	return out
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
