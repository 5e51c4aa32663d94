package web

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Renderer renders the feed page template and can hot-reload it when
// the template file changes on disk.
type Renderer struct {
	path string

	mu   sync.RWMutex
	tmpl *template.Template
}

// NewRenderer parses the template at path. Parsing failures are fatal
// to startup; the feed page is the critical path.
func NewRenderer(path string) (*Renderer, error) {
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("web: parse template %s: %w", path, err)
	}
	return &Renderer{path: path, tmpl: tmpl}, nil
}

// Render executes the template with data.
func (rd *Renderer) Render(w io.Writer, data any) error {
	rd.mu.RLock()
	tmpl := rd.tmpl
	rd.mu.RUnlock()
	return tmpl.Execute(w, data)
}

func (rd *Renderer) reload() error {
	tmpl, err := template.ParseFiles(rd.path)
	if err != nil {
		return err
	}
	rd.mu.Lock()
	rd.tmpl = tmpl
	rd.mu.Unlock()
	return nil
}

// Watch re-parses the template whenever its directory reports a change,
// until ctx is cancelled. A broken edit keeps the last good template.
func (rd *Renderer) Watch(ctx context.Context, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(rd.path)
	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("template watcher: started", slog.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			logger.Info("template watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".html") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if err := rd.reload(); err != nil {
				logger.Warn("template watcher: reload failed",
					slog.String("path", rd.path),
					slog.String("error", err.Error()))
				continue
			}
			logger.Debug("template watcher: reloaded", slog.String("path", rd.path))

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("template watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
