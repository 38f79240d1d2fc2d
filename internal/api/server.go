// Package api exposes the drawing pipeline and gallery over HTTP.
//
// The server is a thin shell: request decoding and status mapping live
// here, everything else is the pipeline runner and the gallery store.
// Metrics come from a Prometheus adapter plugged into the observability
// hooks, served on /metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moldraw/moldraw/pkg/gallery"
	"github.com/moldraw/moldraw/pkg/pipeline"
)

// Config holds the server knobs.
type Config struct {
	// Addr is the listen address. Empty means [DefaultAddr].
	Addr string
	// RequestTimeout bounds a single request. Zero means
	// [DefaultRequestTimeout].
	RequestTimeout time.Duration
}

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8017"

// DefaultRequestTimeout bounds one request end to end. PNG rendering of a
// large molecule is the slow path it must cover.
const DefaultRequestTimeout = 30 * time.Second

// Server serves the drawing API.
type Server struct {
	runner  *pipeline.Runner
	store   gallery.Store
	logger  *log.Logger
	metrics *Metrics
	httpSrv *http.Server
}

// New assembles the server. A nil store disables the gallery endpoints
// with 503s rather than panics; runner must not be nil.
func New(cfg Config, runner *pipeline.Runner, store gallery.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	s := &Server{
		runner: runner,
		store:  store,
		logger: logger,
	}
	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(cfg),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// routes builds the chi router with the standard middleware stack.
func (s *Server) routes(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/draw", s.handleDraw)
		r.Route("/gallery", func(r chi.Router) {
			r.Get("/", s.handleGalleryList)
			r.Post("/", s.handleGallerySave)
			r.Get("/{id}", s.handleGalleryGet)
		})
	})

	return r
}

// Start serves until the context is cancelled, then drains in-flight
// requests.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server draining")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request with the chi request ID.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
