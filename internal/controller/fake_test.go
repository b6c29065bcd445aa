package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/auth"
	"github.com/sakif/snooze/internal/model"
)

// =========================================================================
// FAKE API
// =========================================================================
//
// fakeAPI implements API in memory. Stories are kept newest first, like
// the hosted API returns them. Tests can:
//   - inject an error for an operation (failWith)
//   - hold an operation until released (hold), to exercise in-flight guards
//   - count calls per operation (count)

type fakeAccount struct {
	password string
	user     model.User
}

type fakeAPI struct {
	mu       sync.Mutex
	tokens   *auth.TokenService
	accounts map[string]*fakeAccount
	stories  []model.Story
	nextID   int

	calls map[string]int
	errs  map[string]error
	gates map[string]chan struct{}
	enter map[string]chan struct{}
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	tokens, err := auth.NewTokenService("controller-test-secret-0123456789", 0)
	require.NoError(t, err)
	return &fakeAPI{
		tokens:   tokens,
		accounts: make(map[string]*fakeAccount),
		calls:    make(map[string]int),
		errs:     make(map[string]error),
		gates:    make(map[string]chan struct{}),
		enter:    make(map[string]chan struct{}),
	}
}

// seedStories adds n stories posted by "seed"; story n-1 is the newest.
func (f *fakeAPI) seedStories(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.nextID++
		st := model.Story{
			StoryID:   fmt.Sprintf("s%d", f.nextID),
			Title:     fmt.Sprintf("Story %d", f.nextID),
			Author:    "author",
			URL:       "https://example.com/" + fmt.Sprint(f.nextID),
			Username:  "seed",
			CreatedAt: time.Date(2024, 1, 1, 0, 0, f.nextID, 0, time.UTC),
		}
		f.stories = append([]model.Story{st}, f.stories...)
	}
}

func (f *fakeAPI) addAccount(username, password, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[username] = &fakeAccount{
		password: password,
		user: model.User{
			Username:  username,
			Name:      name,
			CreatedAt: time.Date(2023, 5, 17, 9, 30, 0, 0, time.UTC),
		},
	}
}

func (f *fakeAPI) failWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

// hold makes op block until the returned release func is called. entered
// receives once the call is blocked.
func (f *fakeAPI) hold(op string) (entered <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	in := make(chan struct{}, 1)
	f.gates[op] = gate
	f.enter[op] = in
	var once sync.Once
	return in, func() { once.Do(func() { close(gate) }) }
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// begin records a call and applies injected behaviour.
func (f *fakeAPI) begin(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls[op]++
	gate, in := f.gates[op], f.enter[op]
	err := f.errs[op]
	f.mu.Unlock()

	if gate != nil {
		select {
		case in <- struct{}{}:
		default:
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return apperror.Timeout(op)
		}
	}
	return err
}

func (f *fakeAPI) userFor(username string) *model.User {
	u := f.accounts[username].user
	u.LoginToken, _ = f.tokens.Issue(username)
	return u.Clone()
}

func (f *fakeAPI) owner(token string) (*fakeAccount, error) {
	username, err := f.tokens.Validate(token)
	if err != nil {
		return nil, apperror.FromStatus(401, "Invalid token")
	}
	acct, ok := f.accounts[username]
	if !ok {
		return nil, apperror.FromStatus(401, "Invalid token")
	}
	return acct, nil
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (*model.User, error) {
	if err := f.begin(ctx, "login"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[username]
	if !ok {
		return nil, apperror.FromStatus(404, "Could not find user")
	}
	if acct.password != password {
		return nil, apperror.FromStatus(401, "Invalid password")
	}
	return f.userFor(username), nil
}

func (f *fakeAPI) Signup(ctx context.Context, username, password, name string) (*model.User, error) {
	if err := f.begin(ctx, "signup"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.accounts[username]; taken {
		return nil, apperror.FromStatus(409, "Username taken")
	}
	f.accounts[username] = &fakeAccount{
		password: password,
		user:     model.User{Username: username, Name: name, CreatedAt: time.Now().UTC()},
	}
	return f.userFor(username), nil
}

func (f *fakeAPI) RestoreSession(ctx context.Context, token, username string) (*model.User, error) {
	if err := f.begin(ctx, "restore"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, err := f.owner(token)
	if err != nil {
		return nil, err
	}
	if acct.user.Username != username {
		return nil, apperror.FromStatus(401, "Token does not match username")
	}
	u := acct.user.Clone()
	u.LoginToken = token
	return u, nil
}

func (f *fakeAPI) ListStories(ctx context.Context, limit, skip int) ([]model.Story, error) {
	if err := f.begin(ctx, "list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if skip >= len(f.stories) {
		return []model.Story{}, nil
	}
	end := min(skip+limit, len(f.stories))
	return append([]model.Story{}, f.stories[skip:end]...), nil
}

func (f *fakeAPI) CreateStory(ctx context.Context, token string, fields model.StoryFields) (*model.Story, error) {
	if err := f.begin(ctx, "create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, err := f.owner(token)
	if err != nil {
		return nil, err
	}
	f.nextID++
	st := model.Story{
		StoryID:   fmt.Sprintf("s%d", f.nextID),
		Title:     fields.Title,
		Author:    fields.Author,
		URL:       fields.URL,
		Username:  acct.user.Username,
		CreatedAt: time.Now().UTC(),
	}
	f.stories = append([]model.Story{st}, f.stories...)
	acct.user.OwnStories = append(acct.user.OwnStories, st)
	return &st, nil
}

func (f *fakeAPI) UpdateStory(ctx context.Context, token, storyID string, fields model.StoryFields) (string, error) {
	if err := f.begin(ctx, "update"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.owner(token); err != nil {
		return "", err
	}
	for i := range f.stories {
		if f.stories[i].StoryID == storyID {
			f.stories[i].Title, f.stories[i].Author, f.stories[i].URL = fields.Title, fields.Author, fields.URL
			return "Story updated successfully!", nil
		}
	}
	return "", apperror.FromStatus(404, "No such story")
}

func (f *fakeAPI) DeleteStory(ctx context.Context, token, storyID string) (string, error) {
	if err := f.begin(ctx, "delete"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, err := f.owner(token)
	if err != nil {
		return "", err
	}
	st, ok := model.FindStory(f.stories, storyID)
	if !ok {
		return "", apperror.FromStatus(404, "No such story")
	}
	f.stories = model.RemoveStory(f.stories, storyID)
	acct.user.OwnStories = model.RemoveStory(acct.user.OwnStories, storyID)
	return fmt.Sprintf("Deleted story '%s'", st.Title), nil
}

func (f *fakeAPI) AddFavorite(ctx context.Context, token, username, storyID string) error {
	return f.favorite(ctx, "addFavorite", token, storyID, true)
}

func (f *fakeAPI) RemoveFavorite(ctx context.Context, token, username, storyID string) error {
	return f.favorite(ctx, "removeFavorite", token, storyID, false)
}

func (f *fakeAPI) favorite(ctx context.Context, op, token, storyID string, add bool) error {
	if err := f.begin(ctx, op); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, err := f.owner(token)
	if err != nil {
		return err
	}
	st, ok := model.FindStory(f.stories, storyID)
	if !ok {
		return apperror.FromStatus(404, "No such story")
	}
	acct.user.Favorites = model.RemoveStory(acct.user.Favorites, storyID)
	if add {
		acct.user.Favorites = append(acct.user.Favorites, st)
	}
	return nil
}

func (f *fakeAPI) UpdateDisplayName(ctx context.Context, token, username, name string) (string, error) {
	if err := f.begin(ctx, "updateName"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, err := f.owner(token)
	if err != nil {
		return "", err
	}
	acct.user.Name = name
	return "Name updated successfully!", nil
}

// =========================================================================
// FAKE SESSION STORE
// =========================================================================

type memSession struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newMemSession() *memSession {
	return &memSession{values: make(map[string]string)}
}

func (m *memSession) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memSession) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *memSession) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.values = make(map[string]string)
	return nil
}

// =========================================================================
// HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T, api *fakeAPI) (*App, *memSession) {
	t.Helper()
	session := newMemSession()
	app := NewApp(api, session, Options{StoryLimit: 10}, testLogger())
	return app, session
}

// loggedInApp returns an app with alice logged in and the first page loaded.
func loggedInApp(t *testing.T, stories int) (*App, *fakeAPI) {
	t.Helper()
	api := newFakeAPI(t)
	api.seedStories(stories)
	api.addAccount("alice", "secret", "Alice")

	app, _ := newTestApp(t, api)
	_, err := app.Auth.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	app.Notes.Drain()
	return app, api
}

func messages(app *App) []string {
	var out []string
	for _, n := range app.Notes.Drain() {
		out = append(out, n.Message)
	}
	return out
}
