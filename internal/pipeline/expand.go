package pipeline

import (
	"sort"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/geo"
)

// ExpandFootprint issues one radius query per footprint vertex against the
// shared index and returns the matched claims, deduplicated across vertices:
// a claim inside the radius of several vertices of the same gauge is counted
// once per date it occurred, not once per vertex. Matched claims are returned
// in index order so aggregation output is deterministic.
//
// A footprint with zero vertices matches nothing; that is a normal outcome,
// not an error. No distance filtering happens beyond the fixed radius.
func ExpandFootprint(f domain.GaugeFootprint, index *geo.Tree, claims []domain.ClaimPoint, radiusKm float64) []domain.ClaimPoint {
	matched := make(map[int]struct{})
	for v := 0; v < f.VertexCount(); v++ {
		for _, i := range index.QueryRadius(f.Lats[v], f.Lons[v], radiusKm) {
			matched[i] = struct{}{}
		}
	}
	if len(matched) == 0 {
		return nil
	}

	idx := make([]int, 0, len(matched))
	for i := range matched {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]domain.ClaimPoint, len(idx))
	for n, i := range idx {
		out[n] = claims[i]
	}
	return out
}
