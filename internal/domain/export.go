package domain

import "time"

// ExportRow is a single row in a trip's flat export.
// It is a denormalized view: one row per stop, with trip fields repeated for
// every stop. A trip with no stops yields one row with zero stop fields.
// The dashboard's table download binds to this shape.
type ExportRow struct {
	// Trip fields — repeated for every stop on the trip.
	TripID          string  `json:"trip_id"`
	CurrentLocation string  `json:"current_location"`
	PickupLocation  string  `json:"pickup_location"`
	DropoffLocation string  `json:"dropoff_location"`
	TotalDistance   float64 `json:"total_distance"`
	Status          string  `json:"status"`

	// Stop fields — zero values when the trip has no stops.
	StopType          string     `json:"stop_type,omitempty"`
	StopLocation      string     `json:"stop_location,omitempty"`
	ArrivalTime       *time.Time `json:"arrival_time,omitempty"`
	DepartureTime     *time.Time `json:"departure_time,omitempty"`
	DurationMinutes   int        `json:"duration_minutes,omitempty"`
	DistanceFromStart float64    `json:"distance_from_start,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}
