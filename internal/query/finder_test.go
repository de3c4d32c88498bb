package query

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-claims-service/internal/domain"
)

func summaryAt(id string, centroid *domain.Geo) domain.GaugeClaimsSummary {
	return domain.GaugeClaimsSummary{
		GaugeID:     id,
		Dates:       []time.Time{},
		ClaimCounts: []int{},
		Centroid:    centroid,
	}
}

func TestNearbyGauges_NashvilleScenario(t *testing.T) {
	// Footprint vertices (-86.80,36.10) and (-86.70,36.20) → centroid
	// (-86.75,36.15); the target is downtown Nashville.
	f, err := domain.NewGaugeFootprint("03431500", []float64{-86.80, -86.70}, []float64{36.10, 36.20}, 52000, 2971)
	require.NoError(t, err)
	summaries := []domain.GaugeClaimsSummary{
		domain.NewGaugeClaimsSummary(f, nil, nil),
	}

	got := NearbyGauges(domain.Geo{Lat: 36.1627, Lon: -86.7816}, summaries, 50)

	require.Len(t, got, 1)
	assert.Equal(t, "03431500", got[0].GaugeID)
	assert.InDelta(t, 3.17, got[0].DistanceKm, 0.02)
}

func TestNearbyGauges_ZeroDistanceAtCentroid(t *testing.T) {
	summaries := []domain.GaugeClaimsSummary{
		summaryAt("g", &domain.Geo{Lat: 36.15, Lon: -86.75}),
	}

	got := NearbyGauges(domain.Geo{Lat: 36.15, Lon: -86.75}, summaries, 50)
	require.Len(t, got, 1)
	assert.InDelta(t, 0, got[0].DistanceKm, 1e-9)
}

func TestNearbyGauges_SortedAscendingWithTiebreak(t *testing.T) {
	target := domain.Geo{Lat: 36.15, Lon: -86.75}
	summaries := []domain.GaugeClaimsSummary{
		summaryAt("far", &domain.Geo{Lat: 36.45, Lon: -86.75}),
		summaryAt("b-same", &domain.Geo{Lat: 36.25, Lon: -86.75}),
		summaryAt("a-same", &domain.Geo{Lat: 36.25, Lon: -86.75}),
		summaryAt("near", &domain.Geo{Lat: 36.16, Lon: -86.75}),
	}

	got := NearbyGauges(target, summaries, 500)
	require.Len(t, got, 4)

	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool {
		return got[i].DistanceKm < got[j].DistanceKm
	}))
	assert.Equal(t, "near", got[0].GaugeID)
	// Identical centroids rank by gauge ID for determinism.
	assert.Equal(t, "a-same", got[1].GaugeID)
	assert.Equal(t, "b-same", got[2].GaugeID)
	assert.Equal(t, "far", got[3].GaugeID)
}

func TestNearbyGauges_FiltersByRadius(t *testing.T) {
	target := domain.Geo{Lat: 36.15, Lon: -86.75}
	summaries := []domain.GaugeClaimsSummary{
		summaryAt("in", &domain.Geo{Lat: 36.16, Lon: -86.75}),
		summaryAt("out", &domain.Geo{Lat: 40.00, Lon: -86.75}),
	}

	got := NearbyGauges(target, summaries, 50)
	require.Len(t, got, 1)
	assert.Equal(t, "in", got[0].GaugeID)
}

func TestNearbyGauges_SkipsMissingCentroid(t *testing.T) {
	summaries := []domain.GaugeClaimsSummary{
		summaryAt("no-centroid", nil),
		summaryAt("ok", &domain.Geo{Lat: 36.15, Lon: -86.75}),
	}

	got := NearbyGauges(domain.Geo{Lat: 36.15, Lon: -86.75}, summaries, 1e9)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].GaugeID)
}

func TestNearbyGauges_EmptyResults(t *testing.T) {
	t.Run("no summaries", func(t *testing.T) {
		assert.Empty(t, NearbyGauges(domain.Geo{}, nil, 50))
	})

	t.Run("nothing in radius", func(t *testing.T) {
		summaries := []domain.GaugeClaimsSummary{
			summaryAt("far", &domain.Geo{Lat: -40, Lon: 120}),
		}
		assert.Empty(t, NearbyGauges(domain.Geo{Lat: 36.15, Lon: -86.75}, summaries, 50))
	})
}
