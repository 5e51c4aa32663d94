// Package web serves the feed page and accepts post submissions.
package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/starford/mannaz/internal/feed"
	"github.com/starford/mannaz/internal/models"
)

const (
	sessionName   = "mannaz_session"
	postStatusKey = "poststatus"

	loadErrMsg = "unable to load posts"
)

// Status is the one-shot submission outcome surfaced to the visitor on
// their next feed load. An unread status silently expires with the
// session.
type Status struct {
	OK      bool
	Message string
}

// Handler holds the web route handlers.
type Handler struct {
	svc      *feed.Service
	sessions sessions.Store
	renderer *Renderer

	maxBodyBytes  int64
	maxImageBytes int64
}

// NewHandler creates a new Handler.
func NewHandler(svc *feed.Service, store sessions.Store, renderer *Renderer, maxBodyBytes, maxImageBytes int64) *Handler {
	return &Handler{
		svc:           svc,
		sessions:      store,
		renderer:      renderer,
		maxBodyBytes:  maxBodyBytes,
		maxImageBytes: maxImageBytes,
	}
}

// feedView is the template data for the feed page.
type feedView struct {
	Status    *Status
	Posts     []feed.Item
	LoadError string
}

// Home handles GET /home: pops the pending submission status (if any)
// and renders the visible feed.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	view := feedView{Status: h.popStatus(w, r)}

	posts, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("list posts failed", slog.String("error", err.Error()))
		view.LoadError = loadErrMsg
	} else {
		view.Posts = posts
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, view); err != nil {
		slog.Error("render feed failed", slog.String("error", err.Error()))
	}
}

// CreatePost handles POST /post: parses the multipart form, runs the
// submission pipeline, stores the outcome in the session, and redirects
// back to the feed.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseMultipartForm(128 << 10); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, fmt.Sprintf("request too large, limit is %d bytes", h.maxBodyBytes),
				http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "error parsing form", http.StatusBadRequest)
		return
	}

	sub := models.Submission{
		Author:    r.FormValue("user"),
		AvatarURL: r.FormValue("avatar"),
		Date:      r.FormValue("date"),
		Text:      r.FormValue("text"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
		if readErr != nil {
			slog.Error("read image failed", slog.String("error", readErr.Error()))
			http.Error(w, "error reading image", http.StatusBadRequest)
			return
		}
		if int64(len(data)) > h.maxImageBytes {
			h.storeStatus(w, r, Status{Message: fmt.Sprintf("image too large, limit is %d bytes", h.maxImageBytes)})
			http.Redirect(w, r, "/home", http.StatusSeeOther)
			return
		}
		sub.Image = data
		sub.ImageType = header.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile):
		// No image supplied; a valid, silent no-op.
	default:
		http.Error(w, "error reading image", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.Submit(r.Context(), sub); err != nil {
		slog.Error("submission failed",
			slog.String("user", sub.Author),
			slog.String("error", err.Error()))
		h.storeStatus(w, r, Status{Message: err.Error()})
	} else {
		h.storeStatus(w, r, Status{OK: true})
	}
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// storeStatus records the submission outcome in the visitor's session.
func (h *Handler) storeStatus(w http.ResponseWriter, r *http.Request, st Status) {
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		slog.Error("get session failed", slog.String("error", err.Error()))
		return
	}
	sess.Values[postStatusKey] = st
	if err := sess.Save(r, w); err != nil {
		slog.Error("save session failed", slog.String("error", err.Error()))
	}
}

// popStatus reads and clears the pending status. At-most-once delivery:
// the status is removed even if the page render later fails.
func (h *Handler) popStatus(w http.ResponseWriter, r *http.Request) *Status {
	sess, err := h.sessions.Get(r, sessionName)
	if err != nil {
		slog.Error("get session failed", slog.String("error", err.Error()))
		return nil
	}
	v, ok := sess.Values[postStatusKey]
	if !ok {
		return nil
	}
	delete(sess.Values, postStatusKey)
	if err := sess.Save(r, w); err != nil {
		slog.Error("save session failed", slog.String("error", err.Error()))
	}
	st, ok := v.(Status)
	if !ok {
		return nil
	}
	return &st
}
