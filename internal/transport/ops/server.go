package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bizvet/bizvet/internal/metrics"
	"github.com/bizvet/bizvet/internal/version"
)

// Config holds the ops listener settings.
type Config struct {
	Port        int
	ShutdownSec int
}

// Server exposes operational endpoints while a verification run is in
// flight: Prometheus metrics and a liveness probe.
type Server struct {
	cfg    Config
	logger *zap.Logger
	srv    *http.Server
}

func NewServer(cfg Config, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Router builds the ops endpoint tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/healthz", s.handleHealth)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": version.Version,
		"commit":  version.Commit,
	})
}

// Start begins serving in the background. A zero port disables the server.
func (s *Server) Start() {
	if s.cfg.Port <= 0 {
		s.logger.Info("Ops server disabled")
		return
	}

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		s.logger.Info("Starting ops server", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Ops server error", zap.Error(err))
		}
	}()
}

// Shutdown stops the listener, waiting up to the configured grace period.
// It is a no-op when the server never started.
func (s *Server) Shutdown() {
	if s.srv == nil {
		return
	}

	grace := time.Duration(s.cfg.ShutdownSec) * time.Second
	if grace <= 0 {
		grace = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Ops server shutdown error", zap.Error(err))
	}
	s.logger.Info("Ops server stopped")
}
