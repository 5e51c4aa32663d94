// Package internal provides the main application initialization and
// runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/mannaz/internal/avatar"
	"github.com/starford/mannaz/internal/feed"
	"github.com/starford/mannaz/internal/mcpserver"
	"github.com/starford/mannaz/internal/mediastore"
	"github.com/starford/mannaz/internal/poststore"
	"github.com/starford/mannaz/internal/session"
	"github.com/starford/mannaz/internal/sse"
	"github.com/starford/mannaz/internal/web"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("assets_path", cfg.Assets.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the assets root exists before the media store opens it.
	if err := os.MkdirAll(cfg.Assets.Path, 0o755); err != nil {
		return fmt.Errorf("create assets dir: %w", err)
	}

	media, err := mediastore.NewFS(cfg.Assets.Path)
	if err != nil {
		return fmt.Errorf("init media store: %w", err)
	}

	// Open the posts table; created idempotently if absent.
	db, err := poststore.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init post store: %w", err)
	}
	defer db.Close()

	fetcher := avatar.NewFetcher(cfg.Avatar.Timeout())

	if app.mcpMode {
		svc := feed.NewService(db, media, fetcher, nil)
		logger.Info("Serving MCP tools on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// SSE broker for feed refresh events.
	broker := sse.NewBroker()
	defer broker.Close()

	svc := feed.NewService(db, media, fetcher, broker.PublishPost)

	sessions := session.NewStore(cfg.Session.TTL(), cfg.Session.MaxSessions)

	renderer, err := web.NewRenderer(cfg.Templates.Path)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	handler := web.NewHandler(svc, sessions, renderer,
		cfg.Upload.MaxBodyBytes, cfg.Upload.MaxImageBytes)
	webRouter := web.NewRouter(handler, cfg.Assets.Path, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", webRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Template hot reload.
	if cfg.Templates.Watch {
		g.Go(func() error {
			if err := renderer.Watch(gCtx, logger); err != nil {
				logger.Warn("template watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
