package geo

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteRadius is the reference implementation: a full haversine scan.
func bruteRadius(lons, lats []float64, lat, lon, radiusKm float64) []int {
	var out []int
	for i := range lons {
		if HaversineKm(lat, lon, lats[i], lons[i]) <= radiusKm+radiusToleranceKm {
			out = append(out, i)
		}
	}
	return out
}

func randomCloud(t *testing.T, rng *rand.Rand, n int) (lons, lats []float64) {
	t.Helper()
	lons = make([]float64, n)
	lats = make([]float64, n)
	for i := 0; i < n; i++ {
		// Uniform on the sphere, not uniform in degrees: otherwise the poles
		// are oversampled and the tree never sees realistic density.
		lons[i] = rng.Float64()*360 - 180
		lats[i] = math.Asin(rng.Float64()*2-1) * 180 / math.Pi
	}
	return lons, lats
}

func TestBuild_MismatchedInputs(t *testing.T) {
	_, err := Build([]float64{1, 2}, []float64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "longitudes")
}

func TestQueryRadius_EmptyTree(t *testing.T) {
	tree, err := Build(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Len())
	assert.Empty(t, tree.QueryRadius(36.0, -86.0, 50))
}

func TestQueryRadius_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tests := []struct {
		name string
		n    int
	}{
		{"below leaf size", 10},
		{"one split", 60},
		{"deep tree", 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lons, lats := randomCloud(t, rng, tt.n)
			tree, err := Build(lons, lats)
			require.NoError(t, err)
			require.Equal(t, tt.n, tree.Len())

			for q := 0; q < 50; q++ {
				qLon := rng.Float64()*360 - 180
				qLat := math.Asin(rng.Float64()*2-1) * 180 / math.Pi
				radius := rng.Float64() * 2000

				got := tree.QueryRadius(qLat, qLon, radius)
				want := bruteRadius(lons, lats, qLat, qLon, radius)
				assert.Equal(t, want, got, "lat=%v lon=%v r=%v", qLat, qLon, radius)
			}
		})
	}
}

func TestQueryRadius_ExactBoundary(t *testing.T) {
	// Two points along a meridian, one just inside and one just outside a
	// 50 km radius from the origin point.
	const degPerKm = 1.0 / (EarthRadiusKm * math.Pi / 180)
	lons := []float64{0, 0, 0}
	lats := []float64{0, 49.9 * degPerKm, 50.1 * degPerKm}

	tree, err := Build(lons, lats)
	require.NoError(t, err)

	got := tree.QueryRadius(0, 0, 50)
	assert.Equal(t, []int{0, 1}, got)
}

func TestQueryRadius_Antimeridian(t *testing.T) {
	// Points straddling the date line are ~22 km apart on the sphere even
	// though their longitudes differ by ~359.8 degrees.
	lons := []float64{179.9, -179.9}
	lats := []float64{0, 0}

	tree, err := Build(lons, lats)
	require.NoError(t, err)

	got := tree.QueryRadius(0, 179.9, 30)
	assert.Equal(t, []int{0, 1}, got)

	got = tree.QueryRadius(0, 179.9, 10)
	assert.Equal(t, []int{0}, got)
}

func TestQueryRadius_ResultsSorted(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	lons, lats := randomCloud(t, rng, 500)
	tree, err := Build(lons, lats)
	require.NoError(t, err)

	got := tree.QueryRadius(10, 10, 3000)
	assert.True(t, sort.IntsAreSorted(got))
	assert.NotEmpty(t, got)
}

func TestQueryRadius_WholeEarth(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	lons, lats := randomCloud(t, rng, 200)
	tree, err := Build(lons, lats)
	require.NoError(t, err)

	got := tree.QueryRadius(0, 0, EarthRadiusKm*math.Pi+1)
	assert.Len(t, got, 200)
}

func TestQueryRadius_NegativeRadius(t *testing.T) {
	tree, err := Build([]float64{0}, []float64{0})
	require.NoError(t, err)
	assert.Empty(t, tree.QueryRadius(0, 0, -1))
}
