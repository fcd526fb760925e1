package models

import "math"

const earthRadiusKm = 6371.0

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm returns the great-circle distance to other in kilometers,
// using the haversine formula.
func (c Coordinates) DistanceKm(other Coordinates) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	deltaLat := (other.Lat - c.Lat) * math.Pi / 180
	deltaLng := (other.Lng - c.Lng) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	ch := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * ch
}

// Location is a coordinate pair plus the human-readable address.
type Location struct {
	Coordinates
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
}
