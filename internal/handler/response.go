package handler

// RESPONSE HELPERS:
// Every action endpoint answers in one of two ways:
//
//   - HTML form posts (Accept: text/html) get a 303 redirect back to "/",
//     where the page, including any notifications, is rendered again;
//   - everything else gets JSON: a PageResponse on success, an
//     ErrorResponse on failure.
//
// CONSISTENT ERROR FORMAT:
//   {"error": "validation_error", "message": "Title is required", "notifications": [...]}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/notify"
	"github.com/sakif/snooze/internal/view"
)

// ErrorResponse is the JSON body of a failed action.
type ErrorResponse struct {
	Error         string                `json:"error"`   // machine-readable kind, e.g. "not_found"
	Message       string                `json:"message"` // human-readable description
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// PageResponse is the JSON body of a successful action: the page after the
// action, the notifications it produced and an action-specific result.
type PageResponse struct {
	Page          view.Snapshot         `json:"page"`
	Notifications []notify.Notification `json:"notifications"`
	Result        any                   `json:"result,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps an error kind to the status the rendering surface answers with.
//
//	validation   → 400
//	unauthorized → 401
//	forbidden    → 403
//	not found    → 404
//	conflict     → 409
//	busy         → 409 (the same action is still in flight)
//	unavailable  → 502 (the story API failed)
//	timeout      → 504 (the story API did not answer in time)
//	other        → 500
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict), errors.Is(err, apperror.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, apperror.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends err as an ErrorResponse. Errors without an AppError in
// their chain get a generic message so internals do not leak.
func writeError(w http.ResponseWriter, err error, notes []notify.Notification) {
	status := statusFor(err)
	resp := ErrorResponse{
		Error:         apperror.Kind(err),
		Message:       apperror.Message(err, "An internal error occurred"),
		Notifications: notes,
	}
	if status == http.StatusInternalServerError {
		resp.Message = "An internal error occurred"
	}
	writeJSON(w, status, resp)
}

// isJSON reports whether the request body is JSON.
func isJSON(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/json"
}

// wantsHTML reports whether the caller is a browser submitting a form.
func wantsHTML(r *http.Request) bool {
	return !isJSON(r) && strings.Contains(r.Header.Get("Accept"), "text/html")
}

// readInput collects the string fields of a JSON object body or a form.
func readInput(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	if isJSON(r) {
		in := map[string]string{}
		if r.Body == nil || r.ContentLength == 0 {
			return in, nil
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
			return nil, apperror.ValidationFailed("body", "Invalid JSON body")
		}
		return in, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, apperror.ValidationFailed("body", "Invalid form body")
	}
	in := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		in[k] = r.PostForm.Get(k)
	}
	return in, nil
}

const maxBodyBytes = 64 << 10
