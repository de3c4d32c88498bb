// Package pipeline implements the batch phase: spatial index build, footprint
// expansion, per-date aggregation, and summary assembly. It is a pure
// in-memory pass over its inputs; ingestion and persistence live in adapters.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/geo"
	"github.com/couchcryptid/flood-claims-service/internal/observability"
)

// DefaultRadiusKm is the claim-matching radius around each footprint vertex.
const DefaultRadiusKm = 50.0

// Pipeline runs the batch spatial join. Footprint expansions are independent
// of each other (shared read-only index, per-footprint accumulator), so they
// fan out over a bounded worker pool; output order stays deterministic
// because each worker writes to its footprint's slot.
type Pipeline struct {
	logger   *slog.Logger
	metrics  *observability.Metrics
	radiusKm float64
	workers  int
}

// New creates a Pipeline. workers <= 0 means one worker per CPU.
func New(logger *slog.Logger, metrics *observability.Metrics, radiusKm float64, workers int) *Pipeline {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{
		logger:   logger,
		metrics:  metrics,
		radiusKm: radiusKm,
		workers:  workers,
	}
}

// Run executes the full batch: build the index over claim coordinates, expand
// every footprint, aggregate matched claims by date, and return one summary
// per footprint in input order. Rerunning on identical inputs reproduces
// identical summaries. Cancellation is coarse: the pipeline stops handing out
// footprints once the context is done and returns the context error;
// summaries completed before that point are discarded by the caller, never
// partially written.
func (p *Pipeline) Run(ctx context.Context, claims []domain.ClaimPoint, footprints []domain.GaugeFootprint) ([]domain.GaugeClaimsSummary, error) {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.logger.Info("batch pipeline started",
		"claims", len(claims),
		"footprints", len(footprints),
		"radius_km", p.radiusKm,
		"workers", p.workers,
	)

	index, err := p.buildIndex(claims)
	if err != nil {
		return nil, err
	}

	results := make([]domain.GaugeClaimsSummary, len(footprints))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				f := footprints[i]
				matched := ExpandFootprint(f, index, claims, p.radiusKm)
				dates, counts := AggregateByDate(matched)
				results[i] = domain.NewGaugeClaimsSummary(f, dates, counts)

				p.metrics.RadiusQueries.Add(float64(f.VertexCount()))
				p.metrics.FootprintsExpanded.Inc()
			}
		}()
	}

send:
	for i := range footprints {
		select {
		case <-ctx.Done():
			break send
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		p.logger.Info("batch pipeline cancelled", "reason", err)
		return nil, err
	}

	p.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("batch pipeline finished",
		"summaries", len(results),
		"duration", time.Since(start),
	)
	return results, nil
}

func (p *Pipeline) buildIndex(claims []domain.ClaimPoint) (*geo.Tree, error) {
	start := time.Now()
	lons := make([]float64, len(claims))
	lats := make([]float64, len(claims))
	for i, c := range claims {
		lons[i] = c.Lon
		lats[i] = c.Lat
	}
	index, err := geo.Build(lons, lats)
	if err != nil {
		return nil, fmt.Errorf("build claim index: %w", err)
	}
	p.metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("claim index built", "points", index.Len(), "duration", time.Since(start))
	return index, nil
}
