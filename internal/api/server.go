// Package api exposes the scraper over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/dashboard"
	"github.com/IshaanNene/HeadlineGoat/internal/engine"
	"github.com/IshaanNene/HeadlineGoat/internal/observability"
	"github.com/IshaanNene/HeadlineGoat/internal/parser"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// Scraper is the part of the engine the API drives.
type Scraper interface {
	ScrapeAll(ctx context.Context, targets []types.Target, opts ...engine.RunOption) *types.Report
	Stats() *engine.Stats
}

// Server wires HTTP handlers to the scraper and site registry.
type Server struct {
	router   chi.Router
	cfg      config.APIConfig
	scraper  Scraper
	registry *parser.Registry
	quota    Quota
	metrics  *observability.Metrics
	allowed  map[string]bool
	logger   *slog.Logger
	now      func() time.Time
}

// NewServer constructs a Server with middleware and routes. A nil quota
// disables rate limiting; nil metrics disables the metrics route.
func NewServer(
	cfg *config.Config,
	scraper Scraper,
	registry *parser.Registry,
	quota Quota,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Server {
	s := &Server{
		cfg:      cfg.API,
		scraper:  scraper,
		registry: registry,
		quota:    quota,
		metrics:  metrics,
		allowed:  make(map[string]bool),
		logger:   logger.With("component", "api_server"),
		now:      time.Now,
	}

	for _, name := range cfg.API.AllowedSites {
		site := registry.Resolve(types.Target{Name: name})
		if site == nil {
			s.logger.Warn("allowed site is not registered", "site", name)
			continue
		}
		s.allowed[site.ID()] = true
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.metricsMiddleware)

	r.Method(http.MethodGet, "/", dashboard.New(s, config.Version, logger))
	r.Get("/healthz", s.healthz)
	r.Get("/sites", s.listSites)
	r.Get("/stats", s.stats)
	if metrics != nil && cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(s.quotaMiddleware)
		r.Use(middleware.Timeout(2 * time.Minute))
		r.Get("/scrape", s.scrapeQuery)
		r.Post("/scrape", s.scrapeBatch)
		r.Get("/audio", s.audio)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("write JSON failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
