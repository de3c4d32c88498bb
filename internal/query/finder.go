// Package query implements the interactive phase: nearest-gauge ranking and
// timeline flattening over the immutable summaries loaded from the store.
// Every query is a pure function of its request and the loaded summaries, so
// concurrent queries need no locking.
package query

import (
	"sort"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/geo"
)

// NearbyGauges ranks summaries by ellipsoidal geodesic distance from the
// target and keeps those within maxDistanceKm, sorted ascending by distance
// with gauge ID as the tiebreak for determinism. Summaries without a centroid
// (empty footprints) are skipped silently. An empty result is a normal
// outcome, not an error.
func NearbyGauges(target domain.Geo, summaries []domain.GaugeClaimsSummary, maxDistanceKm float64) []domain.RankedGauge {
	var out []domain.RankedGauge
	for _, s := range summaries {
		if s.Centroid == nil {
			continue
		}
		d := geo.GeodesicKm(target.Lat, target.Lon, s.Centroid.Lat, s.Centroid.Lon)
		if d > maxDistanceKm {
			continue
		}
		out = append(out, domain.RankedGauge{GaugeID: s.GaugeID, DistanceKm: d, Summary: s})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].GaugeID < out[j].GaugeID
	})
	return out
}
