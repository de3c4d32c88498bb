package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrCorruptSummary marks a loaded summary whose parallel arrays disagree in
// length. The record is excluded from further processing, never truncated.
var ErrCorruptSummary = errors.New("corrupt gauge summary: dates and claim counts differ in length")

// Geo is a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GaugeFootprint describes a gauge's watershed extent as parallel
// longitude/latitude vertex arrays plus discharge and drainage metadata.
type GaugeFootprint struct {
	GaugeID          string
	Lons             []float64
	Lats             []float64
	DischargeCfs     float64
	DrainageAreaSqMi float64
}

// NewGaugeFootprint validates the parallel vertex arrays. A length mismatch
// is fatal for the record only; the caller skips it and keeps going.
func NewGaugeFootprint(gaugeID string, lons, lats []float64, dischargeCfs, drainageAreaSqMi float64) (GaugeFootprint, error) {
	if len(lons) != len(lats) {
		return GaugeFootprint{}, fmt.Errorf("gauge %q: %d longitudes vs %d latitudes", gaugeID, len(lons), len(lats))
	}
	return GaugeFootprint{
		GaugeID:          gaugeID,
		Lons:             lons,
		Lats:             lats,
		DischargeCfs:     dischargeCfs,
		DrainageAreaSqMi: drainageAreaSqMi,
	}, nil
}

// VertexCount returns the number of footprint vertices.
func (f GaugeFootprint) VertexCount() int { return len(f.Lons) }

// Centroid returns the arithmetic mean of the footprint vertices, or nil when
// the footprint has no vertices.
func (f GaugeFootprint) Centroid() *Geo {
	if len(f.Lons) == 0 {
		return nil
	}
	var sumLon, sumLat float64
	for i := range f.Lons {
		sumLon += f.Lons[i]
		sumLat += f.Lats[i]
	}
	n := float64(len(f.Lons))
	return &Geo{Lat: sumLat / n, Lon: sumLon / n}
}

// GaugeClaimsSummary is the persisted per-gauge result of a batch run:
// parallel dates/claimCounts arrays sorted ascending by date, footprint
// metadata, and the footprint centroid (nil when the footprint is empty).
// Summaries are read-only once produced; the interactive phase shares them
// across queries without copying or locking.
type GaugeClaimsSummary struct {
	GaugeID          string      `json:"gauge_id"`
	Dates            []time.Time `json:"dates"`
	ClaimCounts      []int       `json:"claim_counts"`
	DischargeCfs     float64     `json:"discharge_cfs"`
	DrainageAreaSqMi float64     `json:"drainage_area_sqmi"`
	Centroid         *Geo        `json:"centroid,omitempty"`
	GeneratedAt      time.Time   `json:"generated_at"`
}

// NewGaugeClaimsSummary assembles a summary from a footprint and its
// aggregated (dates, counts) arrays, stamping GeneratedAt from the package
// clock. Every footprint yields a summary, even with zero matched claims.
func NewGaugeClaimsSummary(f GaugeFootprint, dates []time.Time, counts []int) GaugeClaimsSummary {
	return GaugeClaimsSummary{
		GaugeID:          f.GaugeID,
		Dates:            dates,
		ClaimCounts:      counts,
		DischargeCfs:     f.DischargeCfs,
		DrainageAreaSqMi: f.DrainageAreaSqMi,
		Centroid:         f.Centroid(),
		GeneratedAt:      clock.Now().UTC(),
	}
}

// Validate checks the parallel-array invariant. Returns ErrCorruptSummary
// (wrapped with the gauge ID) on mismatch.
func (s GaugeClaimsSummary) Validate() error {
	if len(s.Dates) != len(s.ClaimCounts) {
		return fmt.Errorf("gauge %q: %d dates vs %d counts: %w",
			s.GaugeID, len(s.Dates), len(s.ClaimCounts), ErrCorruptSummary)
	}
	return nil
}

// TotalClaims sums the per-date claim counts.
func (s GaugeClaimsSummary) TotalClaims() int {
	total := 0
	for _, c := range s.ClaimCounts {
		total += c
	}
	return total
}

// RankedGauge is a transient view of a summary ranked by geodesic distance
// from a query target. Never persisted.
type RankedGauge struct {
	GaugeID    string             `json:"gauge_id"`
	DistanceKm float64            `json:"distance_km"`
	Summary    GaugeClaimsSummary `json:"summary"`
}

// TimelineEvent is one flattened (gauge, date, count) row for timeline
// presentation, carrying the gauge's discharge and ranking distance.
type TimelineEvent struct {
	GaugeID      string    `json:"gauge_id"`
	Date         time.Time `json:"date"`
	ClaimCount   int       `json:"claim_count"`
	DischargeCfs float64   `json:"discharge_cfs"`
	DistanceKm   float64   `json:"distance_km"`
}
