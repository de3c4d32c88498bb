package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/observability"
)

// DefaultMaxDistanceKm is the search radius used when a query does not set one.
const DefaultMaxDistanceKm = 50.0

// Request is the explicit query context: a target coordinate and a radius.
// There is no session state anywhere else; every query carries its own.
type Request struct {
	Target        domain.Geo `json:"target"`
	MaxDistanceKm float64    `json:"max_distance_km"`
}

// Result holds the ranked gauges within radius and their flattened timeline.
type Result struct {
	Gauges []domain.RankedGauge   `json:"gauges"`
	Events []domain.TimelineEvent `json:"events"`
}

// Querier answers interactive queries. Service is the direct implementation;
// rediscache.CachedQuerier decorates it.
type Querier interface {
	Query(ctx context.Context, req Request) (Result, error)
}

// Service composes NearbyGauges and BuildTimeline over a fixed summary set
// loaded once at startup. The summaries are shared read-only across requests.
type Service struct {
	summaries []domain.GaugeClaimsSummary
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService creates a query service over the loaded summaries.
func NewService(summaries []domain.GaugeClaimsSummary, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{summaries: summaries, logger: logger, metrics: metrics}
}

// Query ranks gauges around the request target and flattens their timeline.
// Zero results is a normal, reportable outcome.
func (s *Service) Query(_ context.Context, req Request) (Result, error) {
	start := time.Now()

	ranked := NearbyGauges(req.Target, s.summaries, req.MaxDistanceKm)
	events := BuildTimeline(ranked)

	outcome := "ok"
	if len(ranked) == 0 {
		outcome = "empty"
	}
	s.metrics.QueryRequests.WithLabelValues(outcome).Inc()
	s.metrics.QueryDuration.Observe(time.Since(start).Seconds())

	s.logger.Debug("query served",
		"lat", req.Target.Lat,
		"lon", req.Target.Lon,
		"max_distance_km", req.MaxDistanceKm,
		"gauges", len(ranked),
		"events", len(events),
	)
	return Result{Gauges: ranked, Events: events}, nil
}

// CheckReadiness reports whether the service can answer queries.
func (s *Service) CheckReadiness(_ context.Context) error {
	if len(s.summaries) == 0 {
		return errors.New("no gauge summaries loaded")
	}
	return nil
}
