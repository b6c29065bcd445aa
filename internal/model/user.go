package model

import "time"

// User is the account of the currently logged-in person.
//
// Favorites and OwnStories are ordered as the API returns them (oldest first);
// views that want newest first reverse them at render time.
//
// LoginToken carries a `json:"-"` tag so it never appears in page snapshots.
type User struct {
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	LoginToken string    `json:"-"`
	Favorites  []Story   `json:"favorites"`
	OwnStories []Story   `json:"stories"`
}

// IsFavorite reports whether the story with the given id is in u.Favorites.
func (u *User) IsFavorite(storyID string) bool {
	return indexOf(u.Favorites, storyID) >= 0
}

// IsOwnStory reports whether the story with the given id was posted by u.
func (u *User) IsOwnStory(storyID string) bool {
	return indexOf(u.OwnStories, storyID) >= 0
}

// Clone returns a deep copy so callers can read it without holding a lock.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Favorites = append([]Story(nil), u.Favorites...)
	c.OwnStories = append([]Story(nil), u.OwnStories...)
	return &c
}

// FindStory looks a story up by id in a slice.
func FindStory(stories []Story, storyID string) (Story, bool) {
	if i := indexOf(stories, storyID); i >= 0 {
		return stories[i], true
	}
	return Story{}, false
}

// RemoveStory returns stories without the entry matching storyID.
func RemoveStory(stories []Story, storyID string) []Story {
	out := stories[:0:0]
	for _, s := range stories {
		if s.StoryID != storyID {
			out = append(out, s)
		}
	}
	return out
}

// ReplaceStory swaps the entry matching updated.StoryID in place.
// It reports whether a match was found.
func ReplaceStory(stories []Story, updated Story) bool {
	if i := indexOf(stories, updated.StoryID); i >= 0 {
		stories[i] = updated
		return true
	}
	return false
}

func indexOf(stories []Story, storyID string) int {
	for i := range stories {
		if stories[i].StoryID == storyID {
			return i
		}
	}
	return -1
}
