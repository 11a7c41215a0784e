// Package routing resolves travel legs against an OpenRouteService-compatible
// gateway. Calls carry a retry policy, a circuit breaker, and a hard timeout;
// callers that can tolerate estimates should go through Provider, which caches
// results and degrades to great-circle arithmetic instead of failing.
package routing

import (
	"context"

	"github.com/dispatchly/smartsched/internal/domain"
)

// Estimate is one resolved travel leg.
type Estimate struct {
	Meters   float64
	Minutes  int
	Degraded bool
	Source   string
}

// Estimate sources.
const (
	SourcePrimary   = "primary"
	SourceHaversine = "haversine"
)

// Pair is an origin/destination coordinate pair.
type Pair struct {
	From domain.GeoLocation
	To   domain.GeoLocation
}

// Client is the raw transport to the routing gateway.
type Client interface {
	// Matrix resolves travel estimates for one batch of pairs. The result
	// is index-aligned with pairs.
	Matrix(ctx context.Context, pairs []Pair) ([]Estimate, error)

	// Geocode resolves a free-text address to a structured location.
	Geocode(ctx context.Context, address string) (*domain.GeoLocation, error)

	// TimezoneAt resolves the IANA timezone name at a coordinate.
	TimezoneAt(ctx context.Context, lat, lng float64) (string, error)

	// Available checks whether the routing gateway is reachable.
	Available(ctx context.Context) bool
}
