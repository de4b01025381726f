// Package ports declares the contracts the planning pipeline consumes.
// Adapters (routing, geocoding, caching) implement these interfaces; the
// service and hos packages depend only on the interfaces.
package ports

import (
	"context"

	"eld-trip-service/internal/domain"
)

// RoutePoint is one endpoint of a requested route: an address, optionally
// accompanied by known coordinates that skip geocoding.
type RoutePoint struct {
	Address string
	Coords  *domain.Coordinates
}

// Waypoint is a position along a computed route with cumulative distance and
// time from the route start.
type Waypoint struct {
	Coords            domain.Coordinates
	DistanceFromStart float64 // miles
	TimeFromStart     float64 // hours
}

// Route is the routing collaborator's answer for current → pickup → dropoff.
type Route struct {
	// TotalMiles and DriveHours cover pure driving, without any stop dwell.
	TotalMiles float64
	DriveHours float64

	// PickupMiles is cumulative mileage at the pickup, splitting the route
	// into its two legs.
	PickupMiles float64

	// Waypoints holds one entry per route point (start, pickup, dropoff),
	// ordered, with non-decreasing DistanceFromStart.
	Waypoints []Waypoint
}

// RouteProvider resolves a drivable route through the three trip points.
// Implementations must honor ctx cancellation and return an error wrapping
// domain.ErrRouting when no path can be resolved.
type RouteProvider interface {
	Route(ctx context.Context, current, pickup, dropoff RoutePoint) (Route, error)
}

// Geocoder resolves a free-form address to coordinates.
// Implementations must honor ctx cancellation.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
