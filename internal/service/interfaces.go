package service

import (
	"context"

	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/routing"
)

// TravelEstimator supplies driving estimates for origin/destination pairs.
// *routing.Provider satisfies it; tests substitute a stub.
type TravelEstimator interface {
	Matrix(ctx context.Context, pairs []routing.Pair) ([]routing.Estimate, error)
}

// GeoResolver turns partial addresses into coordinates and coordinates into
// IANA timezones. A nil resolver disables enrichment; callers must then
// supply coordinates and zones themselves.
type GeoResolver interface {
	Geocode(ctx context.Context, address string) (*domain.GeoLocation, error)
	TimezoneAt(ctx context.Context, lat, lng float64) (string, error)
}

// EventPublisher fans drained domain events out to realtime groups. It never
// returns an error; publish failures are logged, not surfaced.
type EventPublisher interface {
	Publish(ctx context.Context, events []domain.Event)
}
