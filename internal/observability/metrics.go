package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for both the
// batch pipeline and the interactive query service.
type Metrics struct {
	// Ingestion metrics.
	ClaimsIngested     prometheus.Counter
	ClaimsDropped      prometheus.Counter
	FootprintsIngested prometheus.Counter
	FootprintsSkipped  prometheus.Counter

	// Batch pipeline metrics.
	RadiusQueries      prometheus.Counter
	FootprintsExpanded prometheus.Counter
	SummariesPersisted prometheus.Counter
	CorruptSummaries   prometheus.Counter
	PipelineRunning    prometheus.Gauge
	IndexBuildDuration prometheus.Histogram
	BatchDuration      prometheus.Histogram

	// Query service metrics.
	QueryRequests *prometheus.CounterVec // labels: outcome={ok,empty,bad_request}
	QueryDuration prometheus.Histogram
	CacheLookups  *prometheus.CounterVec // labels: result={hit,miss,error}
}

// NewMetrics creates all metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ClaimsIngested,
		m.ClaimsDropped,
		m.FootprintsIngested,
		m.FootprintsSkipped,
		m.RadiusQueries,
		m.FootprintsExpanded,
		m.SummariesPersisted,
		m.CorruptSummaries,
		m.PipelineRunning,
		m.IndexBuildDuration,
		m.BatchDuration,
		m.QueryRequests,
		m.QueryDuration,
		m.CacheLookups,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ClaimsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_claims",
			Name:      "claims_ingested_total",
			Help:      "Claim records accepted during ingestion.",
		}),
		ClaimsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_claims",
			Name:      "claims_dropped_total",
			Help:      "Claim records dropped for unparsable coordinates or dates.",
		}),
		FootprintsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_claims",
			Name:      "footprints_ingested_total",
			Help:      "Gauge footprint records accepted during ingestion.",
		}),
		FootprintsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_claims",
			Name:      "footprints_skipped_total",
			Help:      "Gauge footprint records skipped for mismatched vertex arrays.",
		}),
		RadiusQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_claims",
			Name:      "radius_queries_total",
			Help:      "Radius queries issued against the spatial index.",
		}),
		FootprintsExpanded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_claims",
			Name:      "footprints_expanded_total",
			Help:      "Footprints fully expanded and aggregated.",
		}),
		SummariesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_claims",
			Name:      "summaries_persisted_total",
			Help:      "Gauge claim summaries written to the store.",
		}),
		CorruptSummaries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_claims",
			Name:      "corrupt_summaries_total",
			Help:      "Loaded summaries excluded for parallel-array length mismatch.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_claims",
			Name:      "pipeline_running",
			Help:      "1 while the batch pipeline is active.",
		}),
		IndexBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_claims",
			Name:      "index_build_duration_seconds",
			Help:      "Time to build the spatial index over all claims.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_claims",
			Name:      "batch_duration_seconds",
			Help:      "Duration of a complete batch run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}),
		QueryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_claims",
			Name:      "query_requests_total",
			Help:      "Interactive queries by outcome.",
		}, []string{"outcome"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_claims",
			Name:      "query_duration_seconds",
			Help:      "Duration of nearest-gauge queries.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_claims",
			Name:      "query_cache_total",
			Help:      "Query cache lookups by result.",
		}, []string{"result"}),
	}
}
