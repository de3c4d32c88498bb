// Package postgres persists gauge claim summaries. The schema is typed —
// date[] and integer[] columns for the parallel arrays — replacing the legacy
// stringified-list-in-a-text-cell encoding. Upserts are keyed on gauge ID so
// rerunning a batch on identical inputs converges to the same rows.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/observability"
)

const schema = `
CREATE TABLE IF NOT EXISTS gauge_claim_summaries (
	gauge_id           text PRIMARY KEY,
	dates              date[] NOT NULL DEFAULT '{}',
	claim_counts       integer[] NOT NULL DEFAULT '{}',
	discharge_cfs      double precision NOT NULL DEFAULT 0,
	drainage_area_sqmi double precision NOT NULL DEFAULT 0,
	centroid_lon       double precision,
	centroid_lat       double precision,
	generated_at       timestamptz NOT NULL
)`

const upsertSummary = `
INSERT INTO gauge_claim_summaries
	(gauge_id, dates, claim_counts, discharge_cfs, drainage_area_sqmi, centroid_lon, centroid_lat, generated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (gauge_id) DO UPDATE SET
	dates = EXCLUDED.dates,
	claim_counts = EXCLUDED.claim_counts,
	discharge_cfs = EXCLUDED.discharge_cfs,
	drainage_area_sqmi = EXCLUDED.drainage_area_sqmi,
	centroid_lon = EXCLUDED.centroid_lon,
	centroid_lat = EXCLUDED.centroid_lat,
	generated_at = EXCLUDED.generated_at`

// Store is the persisted gauge-summary store, the batch/interactive boundary.
type Store struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New connects a pooled store and verifies the connection.
func New(ctx context.Context, dsn string, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, logger: logger, metrics: metrics}, nil
}

// Close releases pool resources.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the summary table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveAll upserts every summary in one batch round trip. Summaries failing
// the parallel-array invariant are refused up front — corrupt data never
// reaches the store.
func (s *Store) SaveAll(ctx context.Context, summaries []domain.GaugeClaimsSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	for _, sum := range summaries {
		if err := sum.Validate(); err != nil {
			return err
		}
	}

	batch := &pgx.Batch{}
	for _, sum := range summaries {
		var lon, lat *float64
		if sum.Centroid != nil {
			lon, lat = &sum.Centroid.Lon, &sum.Centroid.Lat
		}
		batch.Queue(upsertSummary,
			sum.GaugeID, sum.Dates, toInt32(sum.ClaimCounts),
			sum.DischargeCfs, sum.DrainageAreaSqMi, lon, lat, sum.GeneratedAt)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range summaries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save summaries: %w", err)
		}
	}

	s.metrics.SummariesPersisted.Add(float64(len(summaries)))
	s.logger.Info("summaries persisted", "count", len(summaries))
	return nil
}

// LoadAll reads every summary ordered by gauge ID. A row whose parallel
// arrays disagree in length is corrupt: it is logged, counted, and excluded —
// never silently truncated.
func (s *Store) LoadAll(ctx context.Context) ([]domain.GaugeClaimsSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT gauge_id, dates, claim_counts, discharge_cfs, drainage_area_sqmi,
		       centroid_lon, centroid_lat, generated_at
		FROM gauge_claim_summaries
		ORDER BY gauge_id`)
	if err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}
	defer rows.Close()

	var out []domain.GaugeClaimsSummary
	for rows.Next() {
		var (
			sum      domain.GaugeClaimsSummary
			counts   []int32
			lon, lat *float64
		)
		if err := rows.Scan(&sum.GaugeID, &sum.Dates, &counts,
			&sum.DischargeCfs, &sum.DrainageAreaSqMi, &lon, &lat, &sum.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.ClaimCounts = toInt(counts)
		for i, d := range sum.Dates {
			sum.Dates[i] = domain.DateOnly(d)
		}
		if lon != nil && lat != nil {
			sum.Centroid = &domain.Geo{Lat: *lat, Lon: *lon}
		}

		if err := sum.Validate(); err != nil {
			if errors.Is(err, domain.ErrCorruptSummary) {
				s.logger.Warn("corrupt summary excluded", "gauge_id", sum.GaugeID, "error", err)
				s.metrics.CorruptSummaries.Inc()
				continue
			}
			return nil, err
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}
	return out, nil
}

func toInt32(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func toInt(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
