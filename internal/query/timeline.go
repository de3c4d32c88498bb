package query

import "github.com/couchcryptid/flood-claims-service/internal/domain"

// BuildTimeline flattens ranked gauges into one event sequence: for each
// gauge, one event per (date, count) pair in summary order, carrying the
// gauge's discharge and ranking distance. Per-gauge ordering is preserved;
// any global chronological re-sort is the caller's business, not this
// function's. Gauges with zero events contribute nothing.
func BuildTimeline(ranked []domain.RankedGauge) []domain.TimelineEvent {
	var out []domain.TimelineEvent
	for _, r := range ranked {
		for i, date := range r.Summary.Dates {
			out = append(out, domain.TimelineEvent{
				GaugeID:      r.GaugeID,
				Date:         date,
				ClaimCount:   r.Summary.ClaimCounts[i],
				DischargeCfs: r.Summary.DischargeCfs,
				DistanceKm:   r.DistanceKm,
			})
		}
	}
	return out
}
