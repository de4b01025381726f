package domain

import (
	"time"

	"github.com/google/uuid"
)

// StopType classifies why the truck is stationary at a stop.
type StopType string

const (
	StopFuel    StopType = "FUEL"     // fuel stop, on duty
	StopRest    StopType = "REST"     // 30-minute break, off duty
	StopSleeper StopType = "SLEEPER"  // sleeper berth period (34-hour restart)
	StopOffDuty StopType = "OFF_DUTY" // 10-hour daily reset
	StopPickup  StopType = "PICKUP"   // loading, on duty
	StopDropoff StopType = "DROPOFF"  // unloading, on duty
)

// Valid reports whether t is one of the known stop types.
func (t StopType) Valid() bool {
	switch t {
	case StopFuel, StopRest, StopSleeper, StopOffDuty, StopPickup, StopDropoff:
		return true
	}
	return false
}

// DutyStatus returns the duty status a driver logs while held at a stop of
// this type. Fuel, pickup and dropoff are work; rest stops are not.
func (t StopType) DutyStatus() DutyStatus {
	switch t {
	case StopRest, StopOffDuty:
		return StatusOffDuty
	case StopSleeper:
		return StatusSleeper
	default:
		return StatusOnDuty
	}
}

// Stop is a scheduled halt on a trip's route. Stops are generated by the
// planner, never created directly by a user, and are replaced as a set on
// every recalculation.
type Stop struct {
	ID       uuid.UUID    `json:"id"`
	TripID   uuid.UUID    `json:"trip_id"`
	StopType StopType     `json:"stop_type"`
	Location string       `json:"location"`
	Coords   *Coordinates `json:"-"`

	ArrivalTime   time.Time `json:"arrival_time"`
	DepartureTime time.Time `json:"departure_time"` // never before ArrivalTime

	// DurationMinutes is DepartureTime − ArrivalTime in whole minutes.
	DurationMinutes int `json:"duration_minutes"`

	// SequenceOrder is the stop's position in the trip, starting at 0.
	SequenceOrder int `json:"sequence_order"`

	// DistanceFromStart is cumulative route mileage at this stop. It is
	// non-decreasing across a trip's ordered stops.
	DistanceFromStart float64 `json:"distance_from_start"`

	Notes string `json:"notes,omitempty"`
}

// Duration returns the dwell time at the stop.
func (s Stop) Duration() time.Duration {
	return s.DepartureTime.Sub(s.ArrivalTime)
}
