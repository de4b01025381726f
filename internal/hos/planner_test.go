package hos_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eld-trip-service/internal/domain"
	"eld-trip-service/internal/hos"
	"eld-trip-service/internal/ports"
)

// testRoute builds a straight-line route at 60 mph with the pickup at
// pickupMiles. Waypoint coordinates are synthetic; the planner only consumes
// the mileage fields.
func testRoute(totalMiles, pickupMiles float64) ports.Route {
	return ports.Route{
		TotalMiles:  totalMiles,
		DriveHours:  totalMiles / 60,
		PickupMiles: pickupMiles,
		Waypoints: []ports.Waypoint{
			{Coords: domain.Coordinates{Lat: 40.71, Lng: -74.01}},
			{Coords: domain.Coordinates{Lat: 39.95, Lng: -75.17}, DistanceFromStart: pickupMiles, TimeFromStart: pickupMiles / 60},
			{Coords: domain.Coordinates{Lat: 38.91, Lng: -77.04}, DistanceFromStart: totalMiles, TimeFromStart: totalMiles / 60},
		},
	}
}

func testTrip(cycleUsed float64) domain.Trip {
	return domain.Trip{
		CurrentLocation:  "New York, NY",
		PickupLocation:   "Philadelphia, PA",
		DropoffLocation:  "Washington, DC",
		CurrentCycleUsed: cycleUsed,
	}
}

var planStart = time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

func stopTypes(stops []domain.Stop) []domain.StopType {
	types := make([]domain.StopType, len(stops))
	for i, s := range stops {
		types[i] = s.StopType
	}
	return types
}

// Short haul, fresh cycle: pickup and dropoff stops only, one clean day.
func TestPlanner_ShortTrip(t *testing.T) {
	p := hos.NewPlanner(hos.DefaultPlannerConfig())

	plan, err := p.Plan(testTrip(0), testRoute(235, 95), planStart)
	require.NoError(t, err)

	assert.Equal(t, []domain.StopType{domain.StopPickup, domain.StopDropoff}, stopTypes(plan.Stops))
	assert.InDelta(t, 235, plan.TotalMiles, 1e-9)
	// 235 miles at 60 mph plus an hour of dwell at each end.
	assert.InDelta(t, 235.0/60+2, plan.DurationHours, 0.01)

	assert.InDelta(t, 95, plan.Stops[0].DistanceFromStart, 0.01)
	assert.InDelta(t, 235, plan.Stops[1].DistanceFromStart, 0.01)

	assert.Empty(t, hos.EvaluateTimeline(plan.Entries, 0))

	logs := hos.BuildDailyLogs(testTrip(0), plan.Entries, nil)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].HasViolation)
	// Driving plus the on-duty dwell; dwell is not driving time.
	assert.InDelta(t, 3.92, logs[0].DrivingHours, 0.05)
	assert.InDelta(t, 2.0, logs[0].OnDutyNotDrivingHours, 0.05)
}

// 68 cycle hours already used and >2h of on-duty demand: the planner must
// rest first, not produce a trip that breaches the 70-hour cycle mid-route.
func TestPlanner_CycleNearlyExhausted_LeadingRestart(t *testing.T) {
	p := hos.NewPlanner(hos.DefaultPlannerConfig())
	trip := testTrip(68)

	plan, err := p.Plan(trip, testRoute(235, 95), planStart)
	require.NoError(t, err)

	require.NotEmpty(t, plan.Stops)
	first := plan.Stops[0]
	assert.Equal(t, domain.StopSleeper, first.StopType)
	assert.Equal(t, 34*60, first.DurationMinutes)
	assert.True(t, first.ArrivalTime.Equal(planStart), "restart must precede all driving")

	assert.Empty(t, hos.EvaluateTimeline(plan.Entries, trip.CurrentCycleUsed))

	for _, log := range hos.BuildDailyLogs(trip, plan.Entries, hos.EvaluateTimeline(plan.Entries, trip.CurrentCycleUsed)) {
		assert.False(t, log.HasViolation, "log %s", log.LogDate)
	}
}

// At-or-over 70 at trip start is the same failure mode.
func TestPlanner_CycleFullyExhausted_LeadingRestart(t *testing.T) {
	p := hos.NewPlanner(hos.DefaultPlannerConfig())

	plan, err := p.Plan(testTrip(70), testRoute(120, 50), planStart)
	require.NoError(t, err)

	require.NotEmpty(t, plan.Stops)
	assert.Equal(t, domain.StopSleeper, plan.Stops[0].StopType)
	assert.Empty(t, hos.EvaluateTimeline(plan.Entries, 70))
}

// Thirteen hours of driving forces one 30-minute break at the 8-hour mark
// and one 10-hour rest at the 11-hour mark, pushing the trip into a second
// calendar day.
func TestPlanner_LongHaul_BreakAndDailyRest(t *testing.T) {
	p := hos.NewPlanner(hos.DefaultPlannerConfig())
	trip := testTrip(0)

	plan, err := p.Plan(trip, testRoute(780, 60), planStart)
	require.NoError(t, err)

	assert.Equal(t, []domain.StopType{
		domain.StopPickup,
		domain.StopRest,
		domain.StopOffDuty,
		domain.StopDropoff,
	}, stopTypes(plan.Stops))

	rest := plan.Stops[1]
	assert.Equal(t, 30, rest.DurationMinutes)
	daily := plan.Stops[2]
	assert.Equal(t, 10*60, daily.DurationMinutes)

	assert.Empty(t, hos.EvaluateTimeline(plan.Entries, 0))

	logs := hos.BuildDailyLogs(trip, plan.Entries, nil)
	assert.GreaterOrEqual(t, len(logs), 2, "13 driving hours cannot fit one calendar day")
}

func TestPlanner_FuelStopAtInterval(t *testing.T) {
	p := hos.NewPlanner(hos.DefaultPlannerConfig())

	plan, err := p.Plan(testTrip(0), testRoute(1020, 10), planStart)
	require.NoError(t, err)

	var fuel *domain.Stop
	for i := range plan.Stops {
		if plan.Stops[i].StopType == domain.StopFuel {
			fuel = &plan.Stops[i]
		}
	}
	require.NotNil(t, fuel, "a 1020-mile route needs a fuel stop")
	assert.InDelta(t, 1000, fuel.DistanceFromStart, 1)
	assert.Empty(t, hos.EvaluateTimeline(plan.Entries, 0))
}

// A fuel stop falling just after a due break merges into a single off-duty
// stop at the break's position, covering both.
func TestPlanner_FuelAndBreakMerge(t *testing.T) {
	cfg := hos.DefaultPlannerConfig()
	cfg.FuelIntervalMiles = 490

	p := hos.NewPlanner(cfg)
	plan, err := p.Plan(testTrip(0), testRoute(600, 10), planStart)
	require.NoError(t, err)

	var rests, fuels []domain.Stop
	for _, s := range plan.Stops {
		switch s.StopType {
		case domain.StopRest:
			rests = append(rests, s)
		case domain.StopFuel:
			fuels = append(fuels, s)
		}
	}
	require.Len(t, rests, 1)
	assert.Empty(t, fuels, "fuel should have merged into the break")
	assert.InDelta(t, 480, rests[0].DistanceFromStart, 1)
	assert.Contains(t, rests[0].Notes, "Fuel")
	assert.Empty(t, hos.EvaluateTimeline(plan.Entries, 0))
}

func TestPlanner_HorizonExceeded(t *testing.T) {
	cfg := hos.DefaultPlannerConfig()
	cfg.MaxPlanDays = 1

	p := hos.NewPlanner(cfg)
	_, err := p.Plan(testTrip(0), testRoute(2000, 100), planStart)

	assert.ErrorIs(t, err, domain.ErrCompliance)
}

// Stops carry non-decreasing cumulative mileage ending at the route total.
func TestPlanner_DistanceMonotonic(t *testing.T) {
	p := hos.NewPlanner(hos.DefaultPlannerConfig())

	plan, err := p.Plan(testTrip(0), testRoute(1400, 300), planStart)
	require.NoError(t, err)

	prev := 0.0
	for _, s := range plan.Stops {
		assert.GreaterOrEqual(t, s.DistanceFromStart, prev-1e-6, "stop %d", s.SequenceOrder)
		prev = s.DistanceFromStart
	}
	assert.InDelta(t, 1400, plan.Stops[len(plan.Stops)-1].DistanceFromStart, 0.01)
}

// The planner is a pure function of its inputs: replanning with identical
// inputs yields an identical plan. Recalculation idempotence rests on this.
func TestPlanner_Deterministic(t *testing.T) {
	p := hos.NewPlanner(hos.DefaultPlannerConfig())
	trip := testTrip(12.5)
	route := testRoute(780, 60)

	first, err := p.Plan(trip, route, planStart)
	require.NoError(t, err)
	second, err := p.Plan(trip, route, planStart)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// Timeline entries are contiguous from trip start to dropoff departure.
func TestPlanner_TimelineContiguous(t *testing.T) {
	p := hos.NewPlanner(hos.DefaultPlannerConfig())

	plan, err := p.Plan(testTrip(0), testRoute(780, 60), planStart)
	require.NoError(t, err)

	require.NotEmpty(t, plan.Entries)
	assert.True(t, plan.Entries[0].StartTime.Equal(planStart))
	for i := 1; i < len(plan.Entries); i++ {
		assert.True(t, plan.Entries[i].StartTime.Equal(plan.Entries[i-1].EndTime),
			"gap before entry %d", i)
	}
}

func TestPlanner_ComplianceErrorIsNotRoutingError(t *testing.T) {
	cfg := hos.DefaultPlannerConfig()
	cfg.MaxPlanDays = 1

	p := hos.NewPlanner(cfg)
	_, err := p.Plan(testTrip(0), testRoute(2000, 100), planStart)

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrRouting))
}
