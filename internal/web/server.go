// Package web serves the documentation API over HTTP. It exposes the current
// snapshot, its analysis, and the rendered documents as JSON, and can watch
// the extraction file to rebuild automatically.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/pbnj-labs/pbnj/internal/engine"
)

// Server is the documentation API server.
type Server struct {
	engine    *engine.Engine
	port      int
	watch     bool
	inputPath string
	logger    *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Engine    *engine.Engine
	Port      int
	Watch     bool
	InputPath string
	Logger    *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		engine:    cfg.Engine,
		port:      cfg.Port,
		watch:     cfg.Watch,
		inputPath: cfg.InputPath,
		logger:    logger,
	}
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchInput(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// routes builds the router. Split out so tests can exercise handlers without
// binding a port.
func (s *Server) routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/project", s.handleProject)
		r.Get("/model", s.handleModel)
		r.Get("/analysis", s.handleAnalysis)
		r.Get("/tables", s.handleTables)
		r.Get("/measures", s.handleMeasures)
		r.Get("/relationships", s.handleRelationships)
		r.Get("/transformations", s.handleTransformations)
		r.Get("/documents", s.handleDocuments)
		r.Get("/documents/{type}", s.handleDocument)
		r.Get("/export/{format}", s.handleExport)
		r.Post("/rebuild", s.handleRebuild)
	})
	return r
}

// watchInput watches the extraction file's directory and rebuilds on change.
func (s *Server) watchInput(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors replace files instead of writing in place.
	if err := watcher.Add(filepath.Dir(s.inputPath)); err != nil {
		s.logger.Error("failed to watch input directory", "error", err)
		return nil
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.inputPath) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(200*time.Millisecond, func() {
				s.logger.Debug("input changed, rebuilding", "file", event.Name)
				if _, err := s.engine.Build(ctx, false); err != nil {
					s.logger.Error("rebuild failed", "error", err)
				}
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}
