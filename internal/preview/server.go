// Package preview runs the local serve mode: an HTTP server over the build
// output, a content watcher triggering rebuilds, and an optional periodic
// rebuild schedule.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/quillworks/pressbuild/internal/config"
	"github.com/quillworks/pressbuild/internal/logfields"
	"github.com/quillworks/pressbuild/internal/metrics"
	"github.com/quillworks/pressbuild/internal/pipeline"
	"github.com/quillworks/pressbuild/internal/watch"
)

// Server serves the output directory and keeps it fresh.
type Server struct {
	cfg    *config.Config
	runner *pipeline.Runner

	mu        sync.Mutex // serializes rebuilds
	lastError error
}

// New creates a preview server around an existing runner.
func New(cfg *config.Config, runner *pipeline.Runner) *Server {
	return &Server{cfg: cfg, runner: runner}
}

// Run builds once, then serves until the context is canceled. Failed
// rebuilds keep the last good output on disk; the status endpoint reports
// the error.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx)

	watcher, err := watch.New(s.cfg.Content.Root, watch.DebounceConfig{
		QuietWindow: s.cfg.Serve.QuietWindow,
		MaxDelay:    s.cfg.Serve.MaxDelay,
	}, func() { s.rebuild(ctx) })
	if err != nil {
		return err
	}
	go func() {
		if err := watcher.Run(ctx); err != nil {
			slog.Warn("Watcher stopped", logfields.Error(err))
		}
	}()

	scheduler, err := s.startSchedule(ctx)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	return s.serveHTTP(ctx)
}

// startSchedule installs the periodic rebuild job when configured.
func (s *Server) startSchedule(ctx context.Context) (gocron.Scheduler, error) {
	interval := s.cfg.Serve.RebuildEvery
	if interval <= 0 {
		return nil, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { s.rebuild(ctx) }),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}
	scheduler.Start()

	slog.Info("Periodic rebuild scheduled", slog.Duration("every", interval))
	return scheduler, nil
}

func (s *Server) rebuild(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.runner.Run(ctx)
	s.lastError = err
}

func (s *Server) serveHTTP(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.Output.Directory)))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", s.handleHealth)

	server := &http.Server{
		Addr:              s.cfg.Serve.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening",
			slog.String("addr", s.cfg.Serve.Addr),
			logfields.Path(s.cfg.Output.Directory))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	err := s.lastError
	s.mu.Unlock()

	if err != nil {
		http.Error(w, "last build failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}
