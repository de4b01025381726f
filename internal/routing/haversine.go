package routing

import (
	"math"

	"eld-trip-service/internal/domain"
)

// earthRadiusMiles is the mean radius of Earth in statute miles.
const earthRadiusMiles = 3958.8

// haversineMiles returns the great-circle distance between two points in
// statute miles.
func haversineMiles(a, b domain.Coordinates) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLng := degToRad(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLng*sinLng

	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
