// Package http exposes the query service plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/observability"
	"github.com/couchcryptid/flood-claims-service/internal/query"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the gauge query API over HTTP.
type Server struct {
	httpServer *http.Server
	querier    query.Querier
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer wires the router. The querier may be the bare service or the
// cache decorator around it.
func NewServer(addr string, querier query.Querier, ready ReadinessChecker, logger *slog.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		querier: querier,
		logger:  logger,
		metrics: metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", handleReady(ready))
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Get("/gauges/nearby", s.handleNearby)
		r.Get("/timeline", s.handleTimeline)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	req, err := parseQueryRequest(r)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	res, err := s.querier.Query(r.Context(), req)
	if err != nil {
		s.internalError(w, err)
		return
	}
	gauges := res.Gauges
	if gauges == nil {
		gauges = []domain.RankedGauge{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"gauges": gauges})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	req, err := parseQueryRequest(r)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	res, err := s.querier.Query(r.Context(), req)
	if err != nil {
		s.internalError(w, err)
		return
	}
	events := res.Events
	if events == nil {
		events = []domain.TimelineEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// parseQueryRequest validates lat, lon, and the optional max_km parameter.
func parseQueryRequest(r *http.Request) (query.Request, error) {
	lat, err := parseFloatParam(r, "lat", -90, 90)
	if err != nil {
		return query.Request{}, err
	}
	lon, err := parseFloatParam(r, "lon", -180, 180)
	if err != nil {
		return query.Request{}, err
	}
	maxKm := query.DefaultMaxDistanceKm
	if raw := r.URL.Query().Get("max_km"); raw != "" {
		maxKm, err = strconv.ParseFloat(raw, 64)
		if err != nil || maxKm <= 0 {
			return query.Request{}, fmt.Errorf("invalid max_km %q", raw)
		}
	}
	return query.Request{Target: domain.Geo{Lat: lat, Lon: lon}, MaxDistanceKm: maxKm}, nil
}

func parseFloatParam(r *http.Request, name string, min, max float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing parameter %s", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < min || v > max {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.metrics.QueryRequests.WithLabelValues("bad_request").Inc()
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("query failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
