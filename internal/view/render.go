// Package view turns model values into renderer-agnostic view models and keeps
// the page state (which regions are shown, what each list contains).
//
// Nothing here knows about HTML or HTTP: the handler package renders a
// Snapshot with html/template or JSON, tests assert on it directly.
package view

import (
	"github.com/sakif/snooze/internal/model"
)

// Star icon classes. The rendered class is always derived from the current
// user's favorites; see RenderStory.
const (
	StarFavorite    = "fas"
	StarNotFavorite = "far"
)

// Flags select the affordances shown next to a story.
//
// All stories: star only, and only when logged in.
// My stories:  delete + star + edit.
// Favorites:   star.
type Flags struct {
	ShowDelete bool
	ShowStar   bool
	ShowEdit   bool
	Favorite   bool // current membership in the user's favorites
}

// StoryView is everything a renderer needs to draw one story.
type StoryView struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	HostName   string `json:"hostName"`
	Author     string `json:"author"`
	PostedBy   string `json:"postedBy"`
	ShowDelete bool   `json:"showDelete"`
	ShowEdit   bool   `json:"showEdit"`
	Star       string `json:"star,omitempty"` // "", StarFavorite or StarNotFavorite
	StarBusy   bool   `json:"starBusy,omitempty"`
}

// RenderStory is a pure function from a story and flags to its view model.
func RenderStory(s model.Story, f Flags) StoryView {
	v := StoryView{
		ID:         s.StoryID,
		Title:      s.Title,
		URL:        s.URL,
		HostName:   s.HostName(),
		Author:     s.Author,
		PostedBy:   s.Username,
		ShowDelete: f.ShowDelete,
		ShowEdit:   f.ShowEdit,
	}
	if f.ShowStar {
		v.Star = StarClass(f.Favorite)
	}
	return v
}

// StarClass maps favorite membership to the icon class.
func StarClass(favorite bool) string {
	if favorite {
		return StarFavorite
	}
	return StarNotFavorite
}

// RenderList renders stories in order using flagsFor to pick each story's flags.
func RenderList(stories []model.Story, flagsFor func(model.Story) Flags) []StoryView {
	out := make([]StoryView, 0, len(stories))
	for _, s := range stories {
		out = append(out, RenderStory(s, flagsFor(s)))
	}
	return out
}

// NewestFirst returns a reversed copy of stories. The API returns favorites and
// own stories oldest first; the lists show the latest on top.
func NewestFirst(stories []model.Story) []model.Story {
	out := make([]model.Story, len(stories))
	for i, s := range stories {
		out[len(stories)-1-i] = s
	}
	return out
}
