package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all web routes mounted.
// assetsDir is the directory served under /assets. events, if non-nil,
// is mounted at GET /events.
func NewRouter(h *Handler, assetsDir string, events http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/home", h.Home)
	r.Post("/post", h.CreatePost)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/home", http.StatusPermanentRedirect)
	})

	// Media files written by the submission pipeline.
	assets := http.StripPrefix("/assets/", http.FileServer(http.Dir(assetsDir)))
	r.Get("/assets/*", assets.ServeHTTP)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
