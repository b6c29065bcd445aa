// Package model defines the data structures used throughout the application.
package model

import (
	"net/url"
	"strings"
	"time"
)

// Story is a single entry of the feed as returned by the Hack-or-Snooze API.
//
// The JSON tags match the API's wire format, so the same struct is decoded by
// the API client and encoded by the development API:
//
//	{"storyId":"...","title":"...","author":"...","url":"...","username":"...","createdAt":"..."}
type Story struct {
	StoryID   string    `json:"storyId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Username  string    `json:"username"` // who posted it, not the author
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// StoryFields is the editable part of a story: what the submit and edit forms send.
type StoryFields struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f StoryFields) Trimmed() StoryFields {
	return StoryFields{
		Title:  strings.TrimSpace(f.Title),
		Author: strings.TrimSpace(f.Author),
		URL:    strings.TrimSpace(f.URL),
	}
}

// Fields returns the editable part of s.
func (s Story) Fields() StoryFields {
	return StoryFields{Title: s.Title, Author: s.Author, URL: s.URL}
}

// HostName returns the host part of the story URL ("example.com" for
// "https://example.com/a/b"). Unparseable URLs fall back to the raw string.
func (s Story) HostName() string {
	u, err := url.Parse(s.URL)
	if err != nil || u.Host == "" {
		return s.URL
	}
	return u.Hostname()
}
