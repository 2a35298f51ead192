package geo

import "math"

const (
	earthRadiusMeters = 6371000.0

	// MetersPerKm and MetersPerMile are the whole-unit lengths used for
	// split boundaries and goal conversion.
	MetersPerKm   = 1000.0
	MetersPerMile = 1609.344
)

// Coordinate is a single GPS fix as reported by the location source.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceMeters returns the great-circle distance between two coordinates
// using the Haversine formula. Always finite: the intermediate term is
// clamped so antipodal inputs cannot produce NaN through rounding.
func DistanceMeters(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	if h > 1 {
		h = 1
	}

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// MetersToKm converts meters to kilometers.
func MetersToKm(m float64) float64 {
	return m / MetersPerKm
}

// MetersToMiles converts meters to miles.
func MetersToMiles(m float64) float64 {
	return m / MetersPerMile
}
