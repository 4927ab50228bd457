// Package server exposes session-scoped KPI processing over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blctm/gigagreen/internal/config"
	"github.com/blctm/gigagreen/internal/infrastructure"
	"github.com/blctm/gigagreen/internal/session"
	"github.com/blctm/gigagreen/pkg/cellkpi"
)

// Server handles uploads for many sessions, one file at a time.
type Server struct {
	cfg      config.ServerConfig
	pipeline *cellkpi.Pipeline
	sessions *session.Manager
	metrics  *Metrics
	registry *prometheus.Registry
	logger   *slog.Logger

	// processMu keeps a single file in flight across all sessions.
	processMu sync.Mutex
}

// New creates a server with its own session manager and metrics registry.
func New(cfg config.ServerConfig, pipeline *cellkpi.Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	sessions := session.NewManager(pipeline.NewStore)
	registry := prometheus.NewRegistry()
	return &Server{
		cfg:      cfg,
		pipeline: pipeline,
		sessions: sessions,
		metrics:  NewMetrics(registry, sessions.Count),
		registry: registry,
		logger:   logger.With(slog.String("component", "server")),
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/sessions", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/", s.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Use(s.sessionCtx)
			r.Delete("/", s.endSession)
			r.Post("/files", s.uploadFiles)
			r.Get("/summary", s.getSummary)
			r.Get("/summary.csv", s.downloadCSV)
			r.Get("/summary.xlsx", s.downloadXLSX)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// requestID tags the request context with a fresh id, reusing X-Request-ID when sent.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(infrastructure.WithRequestID(r.Context(), id)))
	})
}

type sessionCtxKey struct{}

// sessionCtx loads the session named in the URL into the request context.
func (s *Server) sessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			renderError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
		ctx = infrastructure.WithSessionID(ctx, sess.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionCtxKey{}).(*session.Session)
	return sess
}
