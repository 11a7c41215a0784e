package routing

import (
	"math"

	"github.com/dispatchly/smartsched/internal/domain"
)

// DefaultFallbackSpeedKmh is the assumed average driving speed when the
// gateway cannot supply a duration.
const DefaultFallbackSpeedKmh = 50

// Fallback estimates a leg from great-circle distance at a fixed average
// speed. The result is always marked degraded.
func Fallback(from, to domain.GeoLocation, speedKmh float64) Estimate {
	if speedKmh <= 0 {
		speedKmh = DefaultFallbackSpeedKmh
	}
	meters := domain.DistanceMeters(from, to)
	km := meters / 1000
	return Estimate{
		Meters:   meters,
		Minutes:  int(math.Ceil(km / speedKmh * 60)),
		Degraded: true,
		Source:   SourceHaversine,
	}
}
