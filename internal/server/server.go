// Package server exposes the analysis pipeline over HTTP with per-session state.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/datalens-cli/internal/chart"
	"github.com/KaramelBytes/datalens-cli/internal/session"
)

// Config holds the server settings.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	SessionTTL     time.Duration
	Session        session.Options
	ChartSize      chart.Size
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		MaxUploadBytes: 32 << 20,
		SessionTTL:     30 * time.Minute,
		Session:        session.DefaultOptions(),
		ChartSize:      chart.DefaultSize,
	}
}

// Server routes requests to sessions held in a TTL store.
type Server struct {
	cfg     Config
	log     logrus.FieldLogger
	store   *session.Store
	metrics *Metrics
	router  *chi.Mux
}

// New builds a server. Call Close to stop session expiry.
func New(cfg Config, log logrus.FieldLogger) *Server {
	s := &Server{cfg: cfg, log: log, metrics: newMetrics(), router: chi.NewRouter()}
	sopt := cfg.Session
	sopt.Observe = s.metrics.observeReport
	s.store = session.NewStore(cfg.SessionTTL, sopt, func(id string) {
		s.log.WithField("session", id).Info("session expired")
		s.metrics.sessions.Set(float64(s.store.Len()))
	})
	s.store.Start()
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.handler())

	s.router.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/upload", s.handleUpload)
			r.Get("/report", s.handleReport)
			r.Get("/overview", s.handleOverview)
			r.Get("/missing", s.handleMissing)
			r.Get("/describe", s.handleDescribe)
			r.Get("/correlation", s.handleCorrelation)
			r.Get("/stats/{column}", s.handleStats)
			r.Get("/categorical/{column}", s.handleCategorical)
			r.Get("/charts/{file}", s.handleChart)
		})
	})
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Close stops the session expiry loop.
func (s *Server) Close() { s.store.Stop() }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.Addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	defer s.Close()
	return srv.Shutdown(shutdownCtx)
}
