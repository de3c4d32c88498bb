package geo

import "math"

// EarthRadiusKm is the mean Earth radius, the sphere the index metric lives
// on. Radius arguments in kilometers convert to angular radii by dividing by
// this value.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between two
// WGS-84 coordinates on a sphere of Earth's mean radius. This is the batch
// matching metric; user-facing ranking uses GeodesicKm instead.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
