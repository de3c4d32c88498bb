package geo

import "github.com/pymaxion/geographiclib-go/geodesic"

// GeodesicKm returns the ellipsoidal geodesic distance in kilometers between
// two coordinates on the WGS-84 ellipsoid (Karney's algorithm). This is the
// ranking distance shown to users; it diverges measurably from HaversineKm at
// larger separations and the two are intentionally not unified.
func GeodesicKm(lat1, lon1, lat2, lon2 float64) float64 {
	r := geodesic.WGS84.Inverse(lat1, lon1, lat2, lon2)
	return r.S12 / 1000.0
}
