// Package api is the HTTP client for a Hack-or-Snooze compatible REST API.
//
// WIRE FORMAT:
// Requests and responses are JSON. Authenticated calls carry the login token
// in the body ("token") or, for GET, in the query string. Failures come back
// as:
//
//	{"error": {"status": 401, "title": "Unauthorized", "message": "..."}}
//
// and are turned into *apperror.AppError values by apperror.FromStatus.
//
// TIMEOUTS:
// Every call runs under its own context.WithTimeout. A hung API therefore
// surfaces as apperror.ErrTimeout instead of leaving the caller waiting.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/model"
)

// DefaultTimeout bounds a single API call when the caller does not choose one.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a response body is decoded.
const maxResponseBytes = 4 << 20

// Client talks to the API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Client for the API rooted at baseURL
// (e.g. "https://hack-or-snooze-v3.herokuapp.com").
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		logger:  logger,
	}
}

// userEnvelope is the body of login/signup/user responses.
type userEnvelope struct {
	Token   string     `json:"token,omitempty"`
	Message string     `json:"message,omitempty"`
	User    model.User `json:"user"`
}

type storyEnvelope struct {
	Message string      `json:"message,omitempty"`
	Story   model.Story `json:"story"`
}

type storiesEnvelope struct {
	Stories []model.Story `json:"stories"`
}

type errorEnvelope struct {
	Error struct {
		Status  int    `json:"status"`
		Title   string `json:"title"`
		Message any    `json:"message"` // the hosted API sometimes sends a list
	} `json:"error"`
}

// Login exchanges credentials for a user with a fresh login token.
func (c *Client) Login(ctx context.Context, username, password string) (*model.User, error) {
	body := map[string]any{"user": map[string]string{
		"username": username,
		"password": password,
	}}

	var out userEnvelope
	if err := c.do(ctx, "logging in", http.MethodPost, "/login", nil, body, &out); err != nil {
		return nil, err
	}
	out.User.LoginToken = out.Token
	return &out.User, nil
}

// Signup creates an account and returns it logged in.
func (c *Client) Signup(ctx context.Context, username, password, name string) (*model.User, error) {
	body := map[string]any{"user": map[string]string{
		"username": username,
		"password": password,
		"name":     name,
	}}

	var out userEnvelope
	if err := c.do(ctx, "signing up", http.MethodPost, "/signup", nil, body, &out); err != nil {
		return nil, err
	}
	out.User.LoginToken = out.Token
	return &out.User, nil
}

// RestoreSession fetches the user behind a previously issued token.
func (c *Client) RestoreSession(ctx context.Context, token, username string) (*model.User, error) {
	q := url.Values{"token": {token}}

	var out userEnvelope
	if err := c.do(ctx, "restoring session", http.MethodGet, "/users/"+url.PathEscape(username), q, nil, &out); err != nil {
		return nil, err
	}
	out.User.LoginToken = token
	return &out.User, nil
}

// ListStories returns up to limit stories, newest first, after skipping skip.
func (c *Client) ListStories(ctx context.Context, limit, skip int) ([]model.Story, error) {
	q := url.Values{
		"limit": {strconv.Itoa(limit)},
		"skip":  {strconv.Itoa(skip)},
	}

	var out storiesEnvelope
	if err := c.do(ctx, "listing stories", http.MethodGet, "/stories", q, nil, &out); err != nil {
		return nil, err
	}
	if out.Stories == nil {
		out.Stories = []model.Story{}
	}
	return out.Stories, nil
}

// CreateStory posts a new story as the token's owner.
func (c *Client) CreateStory(ctx context.Context, token string, fields model.StoryFields) (*model.Story, error) {
	body := map[string]any{"token": token, "story": fields}

	var out storyEnvelope
	if err := c.do(ctx, "creating story", http.MethodPost, "/stories", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Story, nil
}

// UpdateStory edits a story and returns the API's status message.
func (c *Client) UpdateStory(ctx context.Context, token, storyID string, fields model.StoryFields) (string, error) {
	body := map[string]any{"token": token, "story": fields}

	var out storyEnvelope
	if err := c.do(ctx, "updating story", http.MethodPatch, "/stories/"+url.PathEscape(storyID), nil, body, &out); err != nil {
		return "", err
	}
	return messageOr(out.Message, "Story updated!"), nil
}

// DeleteStory removes a story and returns the API's status message.
func (c *Client) DeleteStory(ctx context.Context, token, storyID string) (string, error) {
	body := map[string]any{"token": token}

	var out storyEnvelope
	if err := c.do(ctx, "deleting story", http.MethodDelete, "/stories/"+url.PathEscape(storyID), nil, body, &out); err != nil {
		return "", err
	}
	return messageOr(out.Message, "Story deleted!"), nil
}

// AddFavorite marks a story as a favorite of username.
func (c *Client) AddFavorite(ctx context.Context, token, username, storyID string) error {
	return c.do(ctx, "adding favorite", http.MethodPost, favoritePath(username, storyID), nil,
		map[string]any{"token": token}, nil)
}

// RemoveFavorite unmarks a favorite.
func (c *Client) RemoveFavorite(ctx context.Context, token, username, storyID string) error {
	return c.do(ctx, "removing favorite", http.MethodDelete, favoritePath(username, storyID), nil,
		map[string]any{"token": token}, nil)
}

// UpdateDisplayName changes the user's name and returns the API's status message.
func (c *Client) UpdateDisplayName(ctx context.Context, token, username, name string) (string, error) {
	body := map[string]any{"token": token, "user": map[string]string{"name": name}}

	var out userEnvelope
	if err := c.do(ctx, "updating name", http.MethodPatch, "/users/"+url.PathEscape(username), nil, body, &out); err != nil {
		return "", err
	}
	return messageOr(out.Message, "Name updated!"), nil
}

// do performs one API call under the client timeout and decodes the response
// into out (which may be nil).
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encoding %s request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("api: building %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(ctx, op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	limited := io.LimitReader(resp.Body, maxResponseBytes)

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, limited)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, limited)
		return nil
	}
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		if ctx.Err() != nil {
			return c.transportError(ctx, op, err)
		}
		return fmt.Errorf("api: decoding %s response: %w", op, err)
	}
	return nil
}

func (c *Client) transportError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		c.logger.Warn("api call timed out", slog.String("op", op), slog.Duration("timeout", c.timeout))
		return apperror.Timeout(op)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("api: %s: %w", op, err)
	default:
		c.logger.Warn("api call failed", slog.String("op", op), slog.String("error", err.Error()))
		return apperror.Unavailable(op, err)
	}
}

// decodeError reads the API error envelope; a body that is not an envelope
// still yields an error classified by status.
func decodeError(status int, body io.Reader) error {
	var env errorEnvelope
	message := ""
	if err := json.NewDecoder(body).Decode(&env); err == nil {
		switch m := env.Error.Message.(type) {
		case string:
			message = m
		case []any:
			parts := make([]string, 0, len(m))
			for _, p := range m {
				parts = append(parts, fmt.Sprint(p))
			}
			message = strings.Join(parts, "; ")
		}
		if message == "" {
			message = env.Error.Title
		}
	}
	return apperror.FromStatus(status, message)
}

func favoritePath(username, storyID string) string {
	return "/users/" + url.PathEscape(username) + "/favorites/" + url.PathEscape(storyID)
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
