// Package domain contains the core data types for the ELD trip planning
// service. This package has zero external dependencies beyond uuid and is
// imported by every other internal package (hos, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripPlanned    TripStatus = "PLANNED"
	TripInProgress TripStatus = "IN_PROGRESS"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

// Valid reports whether s is one of the four known statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case TripPlanned, TripInProgress, TripCompleted, TripCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is an end state. Terminal trips cannot be
// recalculated or transitioned further.
func (s TripStatus) Terminal() bool {
	return s == TripCompleted || s == TripCancelled
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next: PLANNED → IN_PROGRESS → COMPLETED, with CANCELLED reachable from
// PLANNED or IN_PROGRESS.
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	switch s {
	case TripPlanned:
		return next == TripInProgress || next == TripCancelled
	case TripInProgress:
		return next == TripCompleted || next == TripCancelled
	}
	return false
}

// CycleLimitHours is the FMCSA 70-hour/8-day on-duty cycle cap for
// property-carrying drivers. Regulatory, not configurable.
const CycleLimitHours = 70.0

// Trip is the top-level aggregate: a planned haul from the driver's current
// position, through a pickup, to a dropoff. Stops and daily logs belong to a
// trip and are regenerated wholesale whenever the trip is recalculated.
type Trip struct {
	ID       uuid.UUID `json:"id"`
	DriverID uuid.UUID `json:"driver_id"`

	CurrentLocation string       `json:"current_location"`
	CurrentCoords   *Coordinates `json:"-"`
	PickupLocation  string       `json:"pickup_location"`
	PickupCoords    *Coordinates `json:"-"`
	DropoffLocation string       `json:"dropoff_location"`
	DropoffCoords   *Coordinates `json:"-"`

	// CurrentCycleUsed is the driver's on-duty hours already consumed in the
	// trailing 70-hour/8-day cycle at planning time. Always in [0, 70].
	CurrentCycleUsed float64 `json:"current_cycle_used"`

	// TotalDistance (miles) and EstimatedDuration (hours) are derived by the
	// planner and overwritten on every recalculation.
	TotalDistance     float64 `json:"total_distance"`
	EstimatedDuration float64 `json:"estimated_duration"`

	Status    TripStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AvailableCycleHours returns the remaining budget in the 70-hour/8-day cycle
// at planning time, never negative.
func (t Trip) AvailableCycleHours() float64 {
	if t.CurrentCycleUsed >= CycleLimitHours {
		return 0
	}
	return CycleLimitHours - t.CurrentCycleUsed
}
