package view

import (
	"sync"

	"github.com/sakif/snooze/internal/model"
)

// Region names a page area the controllers show, hide, or fill.
type Region string

const (
	RegionAllStories    Region = "all-stories"
	RegionFavorites     Region = "favorites"
	RegionMyStories     Region = "my-stories"
	RegionProfile       Region = "user-profile"
	RegionLoginForm     Region = "login-form"
	RegionSignupForm    Region = "signup-form"
	RegionSubmitForm    Region = "submit-story-form"
	RegionEditStoryForm Region = "edit-story-form"
	RegionEditNameForm  Region = "edit-username-form"
)

// Regions lists every region in display order.
var Regions = []Region{
	RegionLoginForm,
	RegionSignupForm,
	RegionSubmitForm,
	RegionEditStoryForm,
	RegionAllStories,
	RegionFavorites,
	RegionMyStories,
	RegionProfile,
	RegionEditNameForm,
}

// listRegions are the regions holding a story list.
var listRegions = []Region{RegionAllStories, RegionFavorites, RegionMyStories}

// ListView is the content of a list region. Empty is shown instead of
// items when there are none ("No favorites added yet!").
type ListView struct {
	Items []StoryView `json:"items"`
	Empty string      `json:"empty,omitempty"`
}

// ProfileView is the user-profile region.
type ProfileView struct {
	Name           string `json:"name"`
	Username       string `json:"username"`
	AccountCreated string `json:"accountCreated"` // YYYY-MM-DD
}

// NavView drives which nav links are shown.
type NavView struct {
	LoggedIn bool   `json:"loggedIn"`
	Username string `json:"username,omitempty"`
}

// EditStoryForm holds the values pre-filled into the edit-story form.
type EditStoryForm struct {
	StoryID string `json:"storyId"`
	model.StoryFields
}

// Page is the mutable state of the rendered page. Safe for concurrent use.
type Page struct {
	mu       sync.RWMutex
	visible  map[Region]bool
	lists    map[Region]ListView
	profile  ProfileView
	nav      NavView
	editForm EditStoryForm
}

// NewPage returns the page as it looks on first load: the all-stories list
// visible and empty, everything else hidden.
func NewPage() *Page {
	p := &Page{
		visible: make(map[Region]bool),
		lists:   make(map[Region]ListView),
	}
	p.visible[RegionAllStories] = true
	return p
}

// HideAll hides every region.
func (p *Page) HideAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for r := range p.visible {
		delete(p.visible, r)
	}
}

// Show makes the given regions visible.
func (p *Page) Show(regions ...Region) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range regions {
		p.visible[r] = true
	}
}

// Hide hides the given regions.
func (p *Page) Hide(regions ...Region) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range regions {
		delete(p.visible, r)
	}
}

// Visible reports whether r is shown.
func (p *Page) Visible(r Region) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.visible[r]
}

// SetList replaces the content of a list region.
func (p *Page) SetList(r Region, items []StoryView, empty string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	lv := ListView{Items: append([]StoryView{}, items...)}
	if len(items) == 0 {
		lv.Empty = empty
	}
	p.lists[r] = lv
}

// List returns a copy of a list region's content.
func (p *Page) List(r Region) ListView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyList(p.lists[r])
}

// PrependItem puts item on top of a list region.
func (p *Page) PrependItem(r Region, item StoryView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	lv := p.lists[r]
	lv.Items = append([]StoryView{item}, lv.Items...)
	lv.Empty = ""
	p.lists[r] = lv
}

// RemoveItem removes the story with id from every list region.
// It reports whether anything was removed.
func (p *Page) RemoveItem(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	removed := false
	for _, r := range listRegions {
		lv := p.lists[r]
		kept := lv.Items[:0:0]
		for _, it := range lv.Items {
			if it.ID == id {
				removed = true
				continue
			}
			kept = append(kept, it)
		}
		lv.Items = kept
		p.lists[r] = lv
	}
	return removed
}

// SetStar sets the star class of story id in every list that shows a star.
func (p *Page) SetStar(id, star string) {
	p.eachItem(id, func(it *StoryView) {
		if it.Star != "" {
			it.Star = star
		}
	})
}

// SetStarBusy disables (busy=true) or re-enables the star of story id.
func (p *Page) SetStarBusy(id string, busy bool) {
	p.eachItem(id, func(it *StoryView) { it.StarBusy = busy })
}

// SetProfile replaces the user-profile region.
func (p *Page) SetProfile(v ProfileView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = v
}

// SetNav replaces the nav state.
func (p *Page) SetNav(v NavView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nav = v
}

// SetEditForm pre-fills the edit-story form.
func (p *Page) SetEditForm(f EditStoryForm) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editForm = f
}

// EditForm returns the edit-story form values.
func (p *Page) EditForm() EditStoryForm {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.editForm
}

// Snapshot returns an immutable copy of the page for rendering.
func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{
		Visible:  []Region{},
		Lists:    make(map[Region]ListView, len(p.lists)),
		Profile:  p.profile,
		Nav:      p.nav,
		EditForm: p.editForm,
	}
	for _, r := range Regions {
		if p.visible[r] {
			s.Visible = append(s.Visible, r)
		}
	}
	for r, lv := range p.lists {
		s.Lists[r] = copyList(lv)
	}
	return s
}

func (p *Page) eachItem(id string, fn func(*StoryView)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range listRegions {
		lv := p.lists[r]
		for i := range lv.Items {
			if lv.Items[i].ID == id {
				fn(&lv.Items[i])
			}
		}
	}
}

func copyList(lv ListView) ListView {
	return ListView{Items: append([]StoryView{}, lv.Items...), Empty: lv.Empty}
}

// Snapshot is a point-in-time copy of a Page.
type Snapshot struct {
	Visible  []Region            `json:"visible"`
	Lists    map[Region]ListView `json:"lists"`
	Profile  ProfileView         `json:"profile"`
	Nav      NavView             `json:"nav"`
	EditForm EditStoryForm       `json:"editForm"`
}

// Shown reports whether the named region is visible. Used by templates.
func (s Snapshot) Shown(name string) bool {
	for _, r := range s.Visible {
		if string(r) == name {
			return true
		}
	}
	return false
}

// List returns the named list region. Used by templates.
func (s Snapshot) List(name string) ListView {
	return s.Lists[Region(name)]
}
