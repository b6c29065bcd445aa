// Package handler is the HTTP rendering surface of the story client.
//
// It renders the controllers' page model (view.Page) as HTML for a browser
// or as JSON for scripts, and turns form and JSON submissions into
// controller actions. Handlers never contain interaction logic: they parse
// input, call one controller method and render the page that results.
package handler

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sakif/snooze/internal/apperror"
	"github.com/sakif/snooze/internal/controller"
	"github.com/sakif/snooze/internal/notify"
	"github.com/sakif/snooze/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the page and every action endpoint.
type Handler struct {
	app       *controller.App
	templates *template.Template
	logger    *slog.Logger
}

// New parses the embedded templates once and returns a Handler for app.
func New(app *controller.App, logger *slog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/page.html")
	if err != nil {
		return nil, err
	}
	return &Handler{app: app, templates: tmpl, logger: logger}, nil
}

// pageData is what the templates receive.
type pageData struct {
	Title         string
	Page          view.Snapshot
	Notifications []notify.Notification
	Feed          feedStatus
}

type feedStatus struct {
	Armed     bool
	Exhausted bool
	Failed    bool
}

// HandlePage renders the whole page and delivers pending notifications.
//
// HTTP: GET /
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:         "Hack or Snooze",
		Page:          h.app.Page.Snapshot(),
		Notifications: h.app.Notes.Drain(),
		Feed: feedStatus{
			Armed:     h.app.Feed.Armed(),
			Exhausted: h.app.Feed.Exhausted(),
			Failed:    h.app.Feed.Failed(),
		},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandlePageJSON returns the page model and pending notifications.
//
// HTTP: GET /api/page
func (h *Handler) HandlePageJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.pageResponse(nil))
}

func (h *Handler) pageResponse(result any) PageResponse {
	return PageResponse{
		Page:          h.app.Page.Snapshot(),
		Notifications: h.app.Notes.Drain(),
		Result:        result,
	}
}

type markKey struct{}

// markNotifications records how many notifications existed when the
// request arrived, so respond can tell whether the action produced one.
func (h *Handler) markNotifications(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), markKey{}, h.app.Notes.Seq())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// notifiedSince reports whether a notification was queued after the
// request's mark. Requests without a mark count as not notified.
func (h *Handler) notifiedSince(r *http.Request) bool {
	mark, ok := r.Context().Value(markKey{}).(uint64)
	return ok && h.app.Notes.Seq() > mark
}

// respond finishes an action. Browsers are sent back to the page; JSON
// callers get the page or the error, with notifications either way.
//
// Controllers notify most failures themselves; an error that left no
// notification behind (a guard that refused the action) gets one here so
// the browser still sees why nothing happened.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, result any, err error) {
	h.finish(w, r, result, err, h.app.Notes.Drain)
}

// finish is respond with a choice of how notifications are collected:
// Drain hands them to the caller, Pending leaves them queued for the next
// page render.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, result any, err error, collect func() []notify.Notification) {
	if err != nil && !h.notifiedSince(r) {
		h.app.Notes.Error(apperror.Message(err, "An error has occurred."))
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Error("action failed",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err, collect())
		return
	}
	writeJSON(w, http.StatusOK, PageResponse{
		Page:          h.app.Page.Snapshot(),
		Notifications: collect(),
		Result:        result,
	})
}
