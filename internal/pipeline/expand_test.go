package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
	"github.com/couchcryptid/flood-claims-service/internal/geo"
)

func buildIndexFor(t *testing.T, claims []domain.ClaimPoint) *geo.Tree {
	t.Helper()
	lons := make([]float64, len(claims))
	lats := make([]float64, len(claims))
	for i, c := range claims {
		lons[i] = c.Lon
		lats[i] = c.Lat
	}
	index, err := geo.Build(lons, lats)
	require.NoError(t, err)
	return index
}

func footprint(t *testing.T, id string, lons, lats []float64) domain.GaugeFootprint {
	t.Helper()
	f, err := domain.NewGaugeFootprint(id, lons, lats, 1000, 100)
	require.NoError(t, err)
	return f
}

func TestExpandFootprint(t *testing.T) {
	claims := []domain.ClaimPoint{
		claimOn("near", -86.75, 36.15, day(2020, 5, 1)),
		claimOn("far", -90.00, 30.00, day(2020, 5, 1)),
	}
	index := buildIndexFor(t, claims)

	t.Run("matches claims within radius of a vertex", func(t *testing.T) {
		f := footprint(t, "g", []float64{-86.75}, []float64{36.15})
		matched := ExpandFootprint(f, index, claims, 50)

		require.Len(t, matched, 1)
		assert.Equal(t, "near", matched[0].ID)
	})

	t.Run("claim seen by several vertices counted once", func(t *testing.T) {
		// Both vertices are within 50 km of the "near" claim.
		f := footprint(t, "g", []float64{-86.80, -86.70}, []float64{36.10, 36.20})
		matched := ExpandFootprint(f, index, claims, 50)

		require.Len(t, matched, 1)
		assert.Equal(t, "near", matched[0].ID)
	})

	t.Run("zero vertices matches nothing", func(t *testing.T) {
		f := footprint(t, "g", nil, nil)
		assert.Empty(t, ExpandFootprint(f, index, claims, 50))
	})

	t.Run("no distance filtering inside the radius", func(t *testing.T) {
		// A claim 40 km out is included just like one at the vertex.
		spread := []domain.ClaimPoint{
			claimOn("at-vertex", -86.75, 36.15, day(2020, 5, 1)),
			claimOn("forty-km", -86.75, 36.15+40.0/111.195, day(2020, 5, 2)),
		}
		idx := buildIndexFor(t, spread)
		f := footprint(t, "g", []float64{-86.75}, []float64{36.15})

		matched := ExpandFootprint(f, idx, spread, 50)
		assert.Len(t, matched, 2)
	})
}
