// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/memyaml/internal/api"
	"github.com/starford/memyaml/internal/apperr"
	"github.com/starford/memyaml/internal/deckservice"
	"github.com/starford/memyaml/internal/history"
	"github.com/starford/memyaml/internal/mcpserver"
	"github.com/starford/memyaml/internal/review"
	"github.com/starford/memyaml/internal/scaffold"
	"github.com/starford/memyaml/internal/session"
	"github.com/starford/memyaml/internal/sse"
	"github.com/starford/memyaml/internal/storage"
	"github.com/starford/memyaml/internal/watcher"
)

// Run serves the deck over HTTP with live reload until a signal arrives or ctx ends.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Structured JSON logger.
	logger := newLogger(app.out, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("deck_dir", app.dir()),
		slog.Bool("history", cfg.History.Enabled),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2*time.Second, 0)
	defer broker.Close()

	svc, closeDeck, err := app.openService(ctx, logger, deckservice.WithPublisher(broker))
	if err != nil {
		return err
	}
	defer closeDeck()

	broker.SetStatsSource(func() any {
		st, err := svc.Stats(ctx)
		if err != nil {
			logger.Warn("stats for SSE failed", slog.String("error", err.Error()))
			return nil
		}
		return st
	})

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
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

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled {
		deckRoot := svc.Deck(gCtx).Root
		g.Go(func() error {
			if err := watcher.Watch(gCtx, deckRoot, cfg.Watch.Debounce, logger, svc.Reload); err != nil {
				logger.Error("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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
		defer signal.Stop(quit)

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
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// Review runs the terminal review loop on the configured input and output.
func Review(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	logger := newLogger(app.errOut, app.config.App.LogLevel)

	sess, closeDeck, err := app.openSession(ctx, logger)
	if err != nil {
		return err
	}
	defer closeDeck()

	return review.New(sess, app.in, app.out, nil).Run(ctx)
}

// Status prints the deck summary and history counts.
func Status(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	logger := newLogger(app.errOut, app.config.App.LogLevel)

	svc, closeDeck, err := app.openService(ctx, logger)
	if err != nil {
		return err
	}
	defer closeDeck()

	st, err := svc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	writeStatus(app.out, svc.Deck(ctx), st)
	return nil
}

// ServeMCP serves the deck as MCP tools over stdio. Logs go to stderr.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	logger := newLogger(app.errOut, app.config.App.LogLevel)
	slog.SetDefault(logger)

	svc, closeDeck, err := app.openService(ctx, logger)
	if err != nil {
		return err
	}
	defer closeDeck()

	logger.Info("MCP server starting on stdio", slog.String("deck", svc.Deck(ctx).Name))
	return mcpserver.New(svc, app.version).ServeStdio()
}

// Init writes a starter deck into the deck directory, creating it if needed.
func Init(_ context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	dir := app.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create deck dir: %w", err)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if err := scaffold.Init(store, app.name); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(app.out, "Deck initialized at %s\n", store.Root())
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// openSession opens the deck and, when enabled, the history database. The
// returned func closes the database.
func (a *application) openSession(ctx context.Context, logger *slog.Logger) (*session.Session, func(), error) {
	store, err := storage.NewFS(a.dir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("open deck %s: %w", a.dir(), apperr.ErrDeckNotFound)
		}
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	sessOpts := []session.Option{session.WithLogger(logger)}
	closeFn := func() {}

	if a.config.History.Enabled {
		dsn := a.config.History.DSN(store.Root())
		db, err := history.Open(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("init history: %w", err)
		}
		sessOpts = append(sessOpts, session.WithHistory(db))
		closeFn = func() {
			if err := db.Close(); err != nil {
				logger.Warn("history close failed", slog.String("error", err.Error()))
			}
		}
		a.history = db
	}

	sess, err := session.Open(ctx, store, sessOpts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return sess, closeFn, nil
}

func (a *application) openService(ctx context.Context, logger *slog.Logger, opts ...deckservice.Option) (*deckservice.Service, func(), error) {
	sess, closeFn, err := a.openSession(ctx, logger)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, deckservice.WithLogger(logger))
	if a.history != nil {
		opts = append(opts, deckservice.WithHistory(a.history))
	}
	return deckservice.New(sess, opts...), closeFn, nil
}

func writeStatus(w io.Writer, deck deckservice.DeckInfo, st *deckservice.Stats) {
	var b strings.Builder
	fmt.Fprintf(&b, "Deck:      %s\n", deck.Name)
	if deck.Description != "" {
		fmt.Fprintf(&b, "           %s\n", deck.Description)
	}
	fmt.Fprintf(&b, "Location:  %s\n", deck.Root)
	fmt.Fprintf(&b, "Cards:     %d\n", st.Total)
	fmt.Fprintf(&b, "Due:       %d (%d new)\n", st.Due, st.Unseen)
	fmt.Fprintf(&b, "Scheduled: %d\n", st.Scheduled)
	fmt.Fprintf(&b, "Ignored:   %d\n", st.Ignored)
	if st.NextDue != nil {
		fmt.Fprintf(&b, "Next due:  %s\n", st.NextDue.Local().Format(time.DateTime))
	}
	if h := st.History; h != nil {
		fmt.Fprintf(&b, "Reviews:   %d total, %d today\n", h.Reviews, h.ReviewsSince)
	}
	_, _ = io.WriteString(w, b.String())
}
