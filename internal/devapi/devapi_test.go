package devapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/snooze/internal/auth"
	"github.com/sakif/snooze/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tokens, err := auth.NewTokenService("devapi-test-secret-0123456789", 0)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(tokens, auth.NewPasswordServiceWithCost(bcrypt.MinCost), logger)
}

// call sends a JSON request and decodes the JSON response into a map.
func call(t *testing.T, s *Server, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	s.ServeHTTP(rr, req)

	var out map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return rr.Code, out
}

func signup(t *testing.T, s *Server, username string) string {
	t.Helper()
	code, out := call(t, s, http.MethodPost, "/signup", map[string]any{
		"user": map[string]string{"username": username, "password": "pw-" + username, "name": "Name " + username},
	})
	require.Equal(t, http.StatusCreated, code, out)
	return out["token"].(string)
}

func errorStatus(out map[string]any) int {
	e, _ := out["error"].(map[string]any)
	f, _ := e["status"].(float64)
	return int(f)
}

func TestSignupAndLogin(t *testing.T) {
	s := newTestServer(t)
	signup(t, s, "alice")

	code, out := call(t, s, http.MethodPost, "/signup", map[string]any{
		"user": map[string]string{"username": "alice", "password": "x", "name": "Again"},
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, http.StatusConflict, errorStatus(out))

	code, out = call(t, s, http.MethodPost, "/login", map[string]any{
		"user": map[string]string{"username": "alice", "password": "pw-alice"},
	})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, out["token"])
	user := out["user"].(map[string]any)
	assert.Equal(t, "Name alice", user["name"])

	code, _ = call(t, s, http.MethodPost, "/login", map[string]any{
		"user": map[string]string{"username": "alice", "password": "wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, s, http.MethodPost, "/login", map[string]any{
		"user": map[string]string{"username": "nobody", "password": "x"},
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSignupRequiresFields(t *testing.T) {
	s := newTestServer(t)

	code, out := call(t, s, http.MethodPost, "/signup", map[string]any{
		"user": map[string]string{"username": "bob", "password": "", "name": "Bob"},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, http.StatusBadRequest, errorStatus(out))
}

func TestStoriesPagination(t *testing.T) {
	s := newTestServer(t)
	var fields []model.StoryFields
	for i := 0; i < 25; i++ {
		fields = append(fields, model.StoryFields{
			Title:  fmt.Sprintf("story %02d", i),
			Author: "a",
			URL:    "https://example.com",
		})
	}
	require.NoError(t, s.Seed("seed", "seed-password", "Seeder", fields...))

	_, out := call(t, s, http.MethodGet, "/stories?limit=10&skip=0", nil)
	page := out["stories"].([]any)
	require.Len(t, page, 10)
	assert.Equal(t, "story 24", page[0].(map[string]any)["title"], "newest first")

	_, out = call(t, s, http.MethodGet, "/stories?limit=10&skip=20", nil)
	assert.Len(t, out["stories"].([]any), 5)

	_, out = call(t, s, http.MethodGet, "/stories?limit=10&skip=25", nil)
	assert.Empty(t, out["stories"].([]any))

	code, _ := call(t, s, http.MethodGet, "/stories?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStoryLifecycleAndFavorites(t *testing.T) {
	s := newTestServer(t)
	aliceToken := signup(t, s, "alice")
	bobToken := signup(t, s, "bob")

	code, out := call(t, s, http.MethodPost, "/stories", map[string]any{
		"token": aliceToken,
		"story": model.StoryFields{Title: "T", Author: "A", URL: "https://x.io"},
	})
	require.Equal(t, http.StatusCreated, code, out)
	storyID := out["story"].(map[string]any)["storyId"].(string)

	code, _ = call(t, s, http.MethodPost, "/stories", map[string]any{
		"token": aliceToken,
		"story": model.StoryFields{Title: "", Author: "A", URL: "https://x.io"},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, s, http.MethodPatch, "/stories/"+storyID, map[string]any{
		"token": bobToken,
		"story": model.StoryFields{Title: "hijacked"},
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, out = call(t, s, http.MethodPatch, "/stories/"+storyID, map[string]any{
		"token": aliceToken,
		"story": model.StoryFields{Title: "T2"},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "T2", out["story"].(map[string]any)["title"])
	assert.Equal(t, "A", out["story"].(map[string]any)["author"], "empty fields are left alone")

	code, out = call(t, s, http.MethodPost, "/users/bob/favorites/"+storyID, map[string]any{"token": bobToken})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Favorite Added Successfully!", out["message"])
	assert.Len(t, out["user"].(map[string]any)["favorites"].([]any), 1)

	code, _ = call(t, s, http.MethodPost, "/users/alice/favorites/"+storyID, map[string]any{"token": bobToken})
	assert.Equal(t, http.StatusUnauthorized, code, "token must belong to the path user")

	code, out = call(t, s, http.MethodDelete, "/stories/"+storyID, map[string]any{"token": aliceToken})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Deleted story 'T2'", out["message"])

	code, out = call(t, s, http.MethodGet, "/users/bob?token="+bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, out["user"].(map[string]any)["favorites"].([]any), "deleting a story drops it from favorites")

	code, _ = call(t, s, http.MethodDelete, "/users/bob/favorites/"+storyID, map[string]any{"token": bobToken})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGetUserRequiresValidToken(t *testing.T) {
	s := newTestServer(t)
	signup(t, s, "alice")

	code, out := call(t, s, http.MethodGet, "/users/alice?token=garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", out["error"].(map[string]any)["title"])
}

func TestUpdateUserName(t *testing.T) {
	s := newTestServer(t)
	token := signup(t, s, "alice")

	code, out := call(t, s, http.MethodPatch, "/users/alice", map[string]any{
		"token": token,
		"user":  map[string]string{"name": "Alice Liddell"},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Alice Liddell", out["user"].(map[string]any)["name"])
}
