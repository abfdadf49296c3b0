// Package server implements the flowsmith conversion HTTP API.
//
// The API exposes the conversion pipeline over HTTP:
//
//	POST /api/convert        submit a flow for conversion (sync or async)
//	GET  /api/jobs/{id}      poll an asynchronous conversion job
//	GET  /api/jobs/{id}/ws   stream job progress over WebSocket
//	GET  /healthz            liveness probe
//
// Asynchronous jobs run in a background goroutine and are kept in a
// bounded LRU store; the oldest finished jobs are evicted when the store
// is full.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/flowsmith/flowsmith/pkg/observability"
	"github.com/flowsmith/flowsmith/pkg/pipeline"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultJobCapacity     = 256
	DefaultShutdownTimeout = 10 * time.Second
	defaultReadHeaderTO    = 5 * time.Second
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address (e.g., ":8080").
	Addr string

	// Runner executes the conversion pipeline. Required.
	Runner *pipeline.Runner

	// Logger receives request and job logs. Defaults to log.Default().
	Logger *log.Logger

	// JobCapacity bounds the async job store. Defaults to DefaultJobCapacity.
	JobCapacity int

	// ShutdownTimeout bounds graceful shutdown. Defaults to DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

// Server serves the conversion API.
type Server struct {
	cfg     Config
	runner  *pipeline.Runner
	logger  *log.Logger
	jobs    *jobStore
	handler http.Handler
}

// New creates a Server from the given config.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("server: Runner is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.JobCapacity == 0 {
		cfg.JobCapacity = DefaultJobCapacity
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	jobs, err := newJobStore(cfg.JobCapacity)
	if err != nil {
		return nil, fmt.Errorf("server: job store: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		runner: cfg.Runner,
		logger: cfg.Logger,
		jobs:   jobs,
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the server's HTTP handler, for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// routes builds the chi router with all endpoints registered.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Get("/jobs/{id}", s.handleJob)
		r.Get("/jobs/{id}/ws", s.handleJobWS)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: defaultReadHeaderTO,
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack delegates to the underlying writer so WebSocket upgrades work
// behind the logging middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}

// observe is middleware that logs requests and notifies server hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, rec.status, elapsed)
		s.logger.Debugf("%s %s %d (%s)", r.Method, r.URL.Path, rec.status, elapsed.Round(time.Millisecond))
	})
}

// handleHealth implements the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
