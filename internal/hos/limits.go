// Package hos implements the Hours-of-Service engine: the stop planner that
// interleaves driving with mandatory stops, the rule engine that flags FMCSA
// violations on a duty-status timeline, and the aggregator that rolls a
// timeline into per-day ELD log sheets.
//
// The FMCSA property-carrying limits are fixed constants. Everything a fleet
// could reasonably tune (dwell times, fuel interval, average speed, planning
// horizon) lives in PlannerConfig.
package hos

import "time"

// FMCSA property-carrying driver limits. Regulatory, not configurable.
const (
	// DrivingLimitHours caps cumulative driving within one duty period
	// (since the last 10+ consecutive hours off duty or in the sleeper).
	DrivingLimitHours = 11.0

	// DutyWindowHours is the wall-clock window, measured from the first
	// on-duty minute of a duty period, after which driving must cease.
	// Breaks inside the window do not extend it.
	DutyWindowHours = 14.0

	// BreakAfterDrivingHours is the cumulative driving time after which a
	// 30-minute break is required before driving again.
	BreakAfterDrivingHours = 8.0

	// BreakMinDuration is the minimum off-duty/sleeper interval that
	// qualifies as a break.
	BreakMinDuration = 30 * time.Minute

	// DailyResetDuration is the consecutive rest that resets the driving
	// limit and duty window.
	DailyResetDuration = 10 * time.Hour

	// RestartDuration is the consecutive rest that resets the
	// 70-hour/8-day cycle.
	RestartDuration = 34 * time.Hour

	// CycleLimitHours is the 70-hour/8-day on-duty cap.
	CycleLimitHours = 70.0
)

// PlannerConfig holds the tunable planning constants. Defaults mirror the
// values the dashboard was built against.
type PlannerConfig struct {
	// AverageSpeedMPH converts route mileage to driving time.
	AverageSpeedMPH float64

	// PickupDwell and DropoffDwell are the on-duty loading/unloading times.
	PickupDwell  time.Duration
	DropoffDwell time.Duration

	// FuelIntervalMiles is the maximum distance between fuel stops.
	FuelIntervalMiles float64

	// FuelStopDuration is the on-duty time spent at a fuel stop.
	FuelStopDuration time.Duration

	// MergeWindowHours: when a fuel stop and a mandatory break would fall
	// within this many driving hours of each other, they merge into a
	// single off-duty stop at the earlier position.
	MergeWindowHours float64

	// MaxPlanDays bounds the planning horizon. A plan that would span more
	// calendar days than this fails with a compliance error.
	MaxPlanDays int
}

// DefaultPlannerConfig returns the stock configuration: 60 mph, one hour of
// dwell at pickup and dropoff, fuel every 1000 miles for 30 minutes, a
// half-hour merge window, and a 14-day horizon.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		AverageSpeedMPH:   60,
		PickupDwell:       60 * time.Minute,
		DropoffDwell:      60 * time.Minute,
		FuelIntervalMiles: 1000,
		FuelStopDuration:  30 * time.Minute,
		MergeWindowHours:  0.5,
		MaxPlanDays:       14,
	}
}
