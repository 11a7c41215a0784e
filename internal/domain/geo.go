package domain

import (
	"fmt"
	"math"
)

// earthRadiusMeters is the mean Earth radius used for great-circle math.
const earthRadiusMeters = 6371000.0

// GeoLocation is a resolved service location: coordinates, the structured
// address they were geocoded from, and the IANA timezone at that point.
type GeoLocation struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Address    string  `json:"address,omitempty"`
	City       string  `json:"city,omitempty"`
	State      string  `json:"state,omitempty"`
	PostalCode string  `json:"postalCode,omitempty"`
	Country    string  `json:"country,omitempty"`
	Timezone   string  `json:"timezone,omitempty"`
}

// Validate checks coordinate ranges.
func (g GeoLocation) Validate() error {
	if g.Lat < -90 || g.Lat > 90 || g.Lng < -180 || g.Lng > 180 {
		return fmt.Errorf("lat=%v lng=%v: %w", g.Lat, g.Lng, ErrInvalidCoordinates)
	}
	return nil
}

// HaversineMeters returns the great-circle distance between two points in
// meters. Inputs are degrees. Symmetric; zero for coincident points.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	dφ := (lat2 - lat1) * math.Pi / 180
	dλ := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dφ/2)*math.Sin(dφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// DistanceMeters is HaversineMeters over two locations.
func DistanceMeters(a, b GeoLocation) float64 {
	return HaversineMeters(a.Lat, a.Lng, b.Lat, b.Lng)
}
