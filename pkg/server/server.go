// Package server serves starry skies over HTTP.
//
// Every request runs its own placement session, so concurrent requests
// never share state. Routes:
//
//	GET /            HTML page with a fresh sky
//	GET /sky.svg     standalone SVG
//	GET /sky.png     PNG raster
//	GET /api/sky     sky document (JSON)
//	GET /api/catalog tier catalog (JSON)
//	GET /healthz     liveness and build info
//
// The query parameters seed, width, height, margin, strategy, relaxed,
// popups and scale override the configured defaults.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/pipeline"
)

const (
	// DefaultRequestTimeout bounds one request, placement included.
	DefaultRequestTimeout = 30 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Server is the starsky HTTP server.
type Server struct {
	runner  *pipeline.Runner
	source  catalog.Source
	base    pipeline.Options
	logger  *log.Logger
	timeout time.Duration
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTimeout overrides [DefaultRequestTimeout].
func WithTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }

// New creates a server. src may be nil for the built-in catalog; base
// supplies defaults for every request.
func New(runner *pipeline.Runner, src catalog.Source, base pipeline.Options, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		source:  src,
		base:    base,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/", s.handlePage)
	r.Get("/sky.svg", s.handleSVG)
	r.Get("/sky.png", s.handlePNG)
	r.Route("/api", func(r chi.Router) {
		r.Get("/sky", s.handleSky)
		r.Get("/catalog", s.handleCatalog)
	})
	r.Get("/healthz", s.handleHealth)
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
