package hos

import (
	"fmt"
	"math"
	"time"

	"eld-trip-service/internal/domain"
	"eld-trip-service/internal/ports"
)

// Plan is the planner's output: the ordered stop list and the full-trip
// duty-status timeline, ready for rule evaluation and daily-log aggregation.
// Stops and entries carry no IDs; the repo assigns those on insert.
type Plan struct {
	Stops   []domain.Stop
	Entries []domain.DutyStatusEntry

	// TotalMiles is the route's driving distance.
	TotalMiles float64

	// DurationHours is wall-clock time from trip start to departure from the
	// dropoff, driving plus all stop dwell.
	DurationHours float64
}

// Planner converts a continuous route into a compliant timeline of driving
// intervals and mandatory stops.
type Planner struct {
	cfg PlannerConfig
}

// NewPlanner constructs a Planner with the given configuration.
func NewPlanner(cfg PlannerConfig) *Planner {
	return &Planner{cfg: cfg}
}

// epsilon absorbs float drift when comparing hour counters against limits;
// milesEpsilon does the same for leg mileage remainders.
const (
	epsilon      = 1e-9
	milesEpsilon = 1e-6
)

// Plan simulates the trip from start, inserting pickup/dropoff dwell, fuel
// stops, 30-minute breaks, 10-hour daily resets, and 34-hour cycle restarts
// so that a correctly planned trip carries zero violations.
//
// If the driver's remaining cycle budget cannot cover the trip's estimated
// on-duty hours, a 34-hour restart is placed before any driving. A plan that
// would exceed the configured horizon fails wrapping domain.ErrCompliance.
func (p *Planner) Plan(trip domain.Trip, route ports.Route, start time.Time) (Plan, error) {
	s := &sim{
		cfg:       p.cfg,
		start:     start,
		now:       start,
		cycleUsed: trip.CurrentCycleUsed,
	}

	// Leading restart: if the whole trip cannot fit in the remaining cycle
	// budget, rest first rather than plan a trip that strands the driver
	// mid-route (or is in violation before it begins).
	if p.estimateOnDutyHours(route) > CycleLimitHours-trip.CurrentCycleUsed+epsilon {
		s.addStop(domain.StopSleeper, trip.CurrentLocation, trip.CurrentCoords,
			RestartDuration, "34-hour restart to reset 70-hour cycle")
	}

	if err := s.drive(route.PickupMiles, trip.PickupLocation); err != nil {
		return Plan{}, err
	}
	s.addStop(domain.StopPickup, trip.PickupLocation, trip.PickupCoords,
		p.cfg.PickupDwell, fmt.Sprintf("Pickup - %d min for loading", int(p.cfg.PickupDwell.Minutes())))

	if err := s.drive(route.TotalMiles-route.PickupMiles, trip.DropoffLocation); err != nil {
		return Plan{}, err
	}
	s.addStop(domain.StopDropoff, trip.DropoffLocation, trip.DropoffCoords,
		p.cfg.DropoffDwell, fmt.Sprintf("Dropoff - %d min for unloading", int(p.cfg.DropoffDwell.Minutes())))

	return Plan{
		Stops:         s.stops,
		Entries:       s.entries,
		TotalMiles:    route.TotalMiles,
		DurationHours: s.now.Sub(start).Hours(),
	}, nil
}

// estimateOnDutyHours approximates the trip's total on-duty demand: driving,
// dwell at both ends, and time at the fuel stops the distance implies.
func (p *Planner) estimateOnDutyHours(route ports.Route) float64 {
	fuelStops := 0.0
	if p.cfg.FuelIntervalMiles > 0 {
		fuelStops = math.Floor(route.TotalMiles / p.cfg.FuelIntervalMiles)
	}
	return route.DriveHours +
		p.cfg.PickupDwell.Hours() +
		p.cfg.DropoffDwell.Hours() +
		fuelStops*p.cfg.FuelStopDuration.Hours()
}

// sim is the planner's mutable simulation state. All hour counters are
// fractional hours; miles is cumulative route mileage (distance_from_start).
type sim struct {
	cfg   PlannerConfig
	start time.Time
	now   time.Time
	miles float64

	drivingSinceRest  float64 // since last 10h+ rest
	drivingSinceBreak float64 // since last 30min+ rest
	dutyStart         time.Time
	onDuty            bool    // a 14-hour window is open
	cycleUsed         float64 // on-duty hours against the 70h cycle
	lastFuelMiles     float64 // mileage at the last fuel stop

	seq     int
	stopSeq int
	stops   []domain.Stop
	entries []domain.DutyStatusEntry
}

// markDuty opens the 14-hour window if no duty period is in progress.
func (s *sim) markDuty() {
	if !s.onDuty {
		s.onDuty = true
		s.dutyStart = s.now
	}
}

// addStop appends a stop and its matching timeline entry, advancing the clock
// and applying the stop's effect on the HOS counters.
func (s *sim) addStop(t domain.StopType, location string, coords *domain.Coordinates, d time.Duration, notes string) {
	status := t.DutyStatus()
	if status.OnDuty() {
		s.markDuty()
		s.cycleUsed += d.Hours()
	}

	arrival := s.now
	departure := arrival.Add(d)
	s.stops = append(s.stops, domain.Stop{
		StopType:          t,
		Location:          location,
		Coords:            coords,
		ArrivalTime:       arrival,
		DepartureTime:     departure,
		DurationMinutes:   int(d.Minutes()),
		SequenceOrder:     s.stopSeq,
		DistanceFromStart: s.miles,
		Notes:             notes,
	})
	s.stopSeq++
	s.appendEntry(status, arrival, departure, location, 0)
	s.now = departure

	if status.Rest() {
		if d >= BreakMinDuration {
			s.drivingSinceBreak = 0
		}
		if d >= DailyResetDuration {
			s.drivingSinceRest = 0
			s.drivingSinceBreak = 0
			s.onDuty = false
		}
		if d >= RestartDuration {
			s.cycleUsed = 0
		}
	}
}

func (s *sim) appendEntry(status domain.DutyStatus, from, to time.Time, location string, miles float64) {
	s.entries = append(s.entries, domain.DutyStatusEntry{
		Status:          status,
		StartTime:       from,
		EndTime:         to,
		Location:        location,
		DurationMinutes: int(math.Round(to.Sub(from).Minutes())),
		MilesDriven:     miles,
		SequenceOrder:   s.seq,
	})
	s.seq++
}

// drive advances the simulation along a route leg, emitting DRIVING entries
// and inserting whichever mandatory stop comes due first at each step.
func (s *sim) drive(legMiles float64, destination string) error {
	remaining := legMiles

	for remaining > milesEpsilon {
		if err := s.checkHorizon(); err != nil {
			return err
		}
		s.markDuty()

		toBreak := BreakAfterDrivingHours - s.drivingSinceBreak
		toLimit := DrivingLimitHours - s.drivingSinceRest
		toWindow := DutyWindowHours - s.now.Sub(s.dutyStart).Hours()
		toCycle := CycleLimitHours - s.cycleUsed
		toFuel := math.Inf(1)
		if s.cfg.FuelIntervalMiles > 0 {
			toFuel = (s.lastFuelMiles + s.cfg.FuelIntervalMiles - s.miles) / s.cfg.AverageSpeedMPH
		}
		legHours := remaining / s.cfg.AverageSpeedMPH

		h := minOf(legHours, toBreak, toLimit, toWindow, toCycle, toFuel)
		if h > epsilon {
			miles := h * s.cfg.AverageSpeedMPH
			if miles > remaining {
				miles = remaining
			}
			from := s.now
			s.now = from.Add(hoursDuration(h))
			s.appendEntry(domain.StatusDriving, from, s.now, "En route to "+destination, miles)

			s.miles += miles
			remaining -= miles
			s.drivingSinceRest += h
			s.drivingSinceBreak += h
			s.cycleUsed += h

			if remaining <= milesEpsilon {
				return nil
			}
			// Recompute which limit we just ran into.
			toBreak = BreakAfterDrivingHours - s.drivingSinceBreak
			toLimit = DrivingLimitHours - s.drivingSinceRest
			toWindow = DutyWindowHours - s.now.Sub(s.dutyStart).Hours()
			toCycle = CycleLimitHours - s.cycleUsed
			if s.cfg.FuelIntervalMiles > 0 {
				toFuel = (s.lastFuelMiles + s.cfg.FuelIntervalMiles - s.miles) / s.cfg.AverageSpeedMPH
			}
		}

		switch {
		case toLimit <= epsilon || toWindow <= epsilon:
			// 11-hour driving limit or 14-hour window: minimum rest that
			// restarts both is 10 consecutive hours.
			s.addStop(domain.StopOffDuty, "Rest Location", nil,
				DailyResetDuration, "10-hour rest to reset daily driving limits")

		case toCycle <= epsilon:
			s.addStop(domain.StopSleeper, "Rest Location", nil,
				RestartDuration, "34-hour restart to reset 70-hour cycle")

		case toBreak <= epsilon:
			if toFuel <= s.cfg.MergeWindowHours {
				s.mergedFuelBreak()
			} else {
				s.addStop(domain.StopRest, "Rest Area", nil,
					BreakMinDuration, "30-minute break after 8 hours driving")
			}

		case toFuel <= epsilon:
			if toBreak <= s.cfg.MergeWindowHours {
				s.mergedFuelBreak()
			} else {
				s.addStop(domain.StopFuel, "Fuel Station", nil,
					s.cfg.FuelStopDuration, "Fuel stop")
				s.lastFuelMiles = s.miles
			}

		default:
			// No limit hit and no distance covered: nothing can progress.
			return fmt.Errorf("hos.Planner.Plan: no progress at mile %.1f", s.miles)
		}
	}
	return nil
}

// mergedFuelBreak emits a single off-duty stop that covers both the fuel stop
// and the 30-minute break, at the current (earlier) position.
func (s *sim) mergedFuelBreak() {
	d := BreakMinDuration
	if s.cfg.FuelStopDuration > d {
		d = s.cfg.FuelStopDuration
	}
	s.addStop(domain.StopRest, "Fuel Station", nil, d, "Fuel stop combined with 30-minute break")
	s.lastFuelMiles = s.miles
}

func (s *sim) checkHorizon() error {
	if s.cfg.MaxPlanDays > 0 && s.now.Sub(s.start) > time.Duration(s.cfg.MaxPlanDays)*24*time.Hour {
		return fmt.Errorf("hos.Planner.Plan: %w: plan exceeds %d-day horizon (cycle hours used at start: %.1f)",
			domain.ErrCompliance, s.cfg.MaxPlanDays, s.cycleUsed)
	}
	return nil
}

func hoursDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

func minOf(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
