// Package routing implements the route-provider and geocoder ports: a
// great-circle route estimator, a Nominatim geocoder, and a Redis cache
// layer in front of any geocoder.
package routing

import (
	"context"
	"fmt"

	"eld-trip-service/internal/domain"
	"eld-trip-service/internal/ports"
)

// HaversineProvider estimates routes as straight great-circle legs driven at
// a constant average speed. Endpoints without known coordinates are resolved
// through the injected geocoder.
type HaversineProvider struct {
	geocoder ports.Geocoder
	speedMPH float64
}

func NewHaversineProvider(geocoder ports.Geocoder, speedMPH float64) *HaversineProvider {
	return &HaversineProvider{geocoder: geocoder, speedMPH: speedMPH}
}

// Route resolves coordinates for all three points and returns the two-leg
// route current → pickup → dropoff with one waypoint per point.
func (p *HaversineProvider) Route(ctx context.Context, current, pickup, dropoff ports.RoutePoint) (ports.Route, error) {
	currentCoords, err := p.resolve(ctx, current)
	if err != nil {
		return ports.Route{}, fmt.Errorf("routing.HaversineProvider.Route: %w", err)
	}
	pickupCoords, err := p.resolve(ctx, pickup)
	if err != nil {
		return ports.Route{}, fmt.Errorf("routing.HaversineProvider.Route: %w", err)
	}
	dropoffCoords, err := p.resolve(ctx, dropoff)
	if err != nil {
		return ports.Route{}, fmt.Errorf("routing.HaversineProvider.Route: %w", err)
	}

	leg1 := haversineMiles(currentCoords, pickupCoords)
	leg2 := haversineMiles(pickupCoords, dropoffCoords)
	total := leg1 + leg2

	return ports.Route{
		TotalMiles:  total,
		DriveHours:  total / p.speedMPH,
		PickupMiles: leg1,
		Waypoints: []ports.Waypoint{
			{Coords: currentCoords, DistanceFromStart: 0, TimeFromStart: 0},
			{Coords: pickupCoords, DistanceFromStart: leg1, TimeFromStart: leg1 / p.speedMPH},
			{Coords: dropoffCoords, DistanceFromStart: total, TimeFromStart: total / p.speedMPH},
		},
	}, nil
}

// resolve prefers coordinates supplied with the point over geocoding the
// address.
func (p *HaversineProvider) resolve(ctx context.Context, pt ports.RoutePoint) (domain.Coordinates, error) {
	if pt.Coords != nil {
		return *pt.Coords, nil
	}
	coords, err := p.geocoder.Geocode(ctx, pt.Address)
	if err != nil {
		return domain.Coordinates{}, err
	}
	return coords, nil
}
