package geo

import "math"

const earthRadiusMeters = 6371000.0

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMeters returns the great-circle distance between two coordinates
// using the haversine formula. The formula is numerically stable for both
// antipodal and near-identical points, which the plain spherical law of
// cosines is not.
func DistanceMeters(a, b Coordinate) float64 {
	latA := radians(a.Latitude)
	latB := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLng := radians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLng*sinLng
	if h > 1 {
		h = 1
	}

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
