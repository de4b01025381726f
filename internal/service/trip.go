// Package service contains the business logic for the ELD trip API.
// Services validate inputs, enforce business rules, and orchestrate the
// planning pipeline and repo calls. No SQL lives here — services depend on
// repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"eld-trip-service/internal/domain"
	"eld-trip-service/internal/hos"
	"eld-trip-service/internal/ports"
	"eld-trip-service/internal/repo"
)

// CreateTripInput carries the trip request from the HTTP layer. Coordinates
// are optional: addresses without them are geocoded by the route provider.
type CreateTripInput struct {
	CurrentLocation string
	CurrentCoords   *domain.Coordinates
	PickupLocation  string
	PickupCoords    *domain.Coordinates
	DropoffLocation string
	DropoffCoords   *domain.Coordinates

	CurrentCycleUsed float64
}

// TripService implements trip planning, recalculation, and lifecycle logic.
type TripService struct {
	trips   repo.TripRepo
	stops   repo.StopRepo
	logs    repo.DailyLogRepo
	store   repo.PlanStore
	router  ports.RouteProvider
	planner *hos.Planner
	logger  *slog.Logger

	// locks serializes recalculation and deletion per trip. A second caller
	// gets domain.ErrConcurrency instead of queueing, so a slow routing call
	// can never pile up writers behind it.
	locks tripLocks
}

// NewTripService constructs a TripService over the provided collaborators.
func NewTripService(
	trips repo.TripRepo,
	stops repo.StopRepo,
	logs repo.DailyLogRepo,
	store repo.PlanStore,
	router ports.RouteProvider,
	planner *hos.Planner,
	logger *slog.Logger,
) *TripService {
	return &TripService{
		trips:   trips,
		stops:   stops,
		logs:    logs,
		store:   store,
		router:  router,
		planner: planner,
		logger:  logger,
	}
}

// PlanTrip validates the input, resolves the route, and persists the trip
// together with its complete plan (stops, timeline, daily logs) in one
// transaction. The returned result is the trip as stored.
func (s *TripService) PlanTrip(ctx context.Context, driverID uuid.UUID, in CreateTripInput) (repo.PlanResult, error) {
	trip := domain.Trip{
		DriverID:         driverID,
		CurrentLocation:  strings.TrimSpace(in.CurrentLocation),
		CurrentCoords:    in.CurrentCoords,
		PickupLocation:   strings.TrimSpace(in.PickupLocation),
		PickupCoords:     in.PickupCoords,
		DropoffLocation:  strings.TrimSpace(in.DropoffLocation),
		DropoffCoords:    in.DropoffCoords,
		CurrentCycleUsed: in.CurrentCycleUsed,
		Status:           domain.TripPlanned,
	}

	if err := validateTrip(trip); err != nil {
		return repo.PlanResult{}, err
	}

	// Routing (and any geocoding) happens before the transaction opens.
	route, err := s.route(ctx, trip)
	if err != nil {
		return repo.PlanResult{}, err
	}

	result, err := s.store.CreateTripWithPlan(ctx, trip, func(created domain.Trip) (domain.Trip, []domain.Stop, []domain.DailyLog, error) {
		// The schedule anchors on the DB-assigned creation instant so a
		// later recalculation reproduces the same plan.
		return s.buildPlan(created, route)
	})
	if err != nil {
		return repo.PlanResult{}, err
	}

	s.logger.InfoContext(ctx, "trip planned",
		"trip_id", result.Trip.ID,
		"driver_id", driverID,
		"total_distance", result.Trip.TotalDistance,
		"stops", len(result.Stops),
		"days", len(result.Logs))

	return result, nil
}

// Recalculate re-plans an existing trip from scratch: same inputs, same
// schedule anchor, freshly resolved route. The previous stops and logs are
// replaced wholesale. Only one recalculation or deletion may run per trip at
// a time; a concurrent attempt fails fast with domain.ErrConcurrency.
func (s *TripService) Recalculate(ctx context.Context, id uuid.UUID) (repo.PlanResult, error) {
	if !s.locks.tryAcquire(id) {
		return repo.PlanResult{}, fmt.Errorf("service.TripService.Recalculate: %w", domain.ErrConcurrency)
	}
	defer s.locks.release(id)

	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return repo.PlanResult{}, err
	}
	if trip.Status.Terminal() {
		return repo.PlanResult{}, fmt.Errorf("service.TripService.Recalculate: trip is %s: %w", trip.Status, domain.ErrInvalidState)
	}

	route, err := s.route(ctx, trip)
	if err != nil {
		return repo.PlanResult{}, err
	}

	planned, stops, logs, err := s.buildPlan(trip, route)
	if err != nil {
		return repo.PlanResult{}, err
	}

	result, err := s.store.ReplacePlan(ctx, planned, stops, logs)
	if err != nil {
		return repo.PlanResult{}, err
	}

	s.logger.InfoContext(ctx, "trip recalculated", "trip_id", id, "stops", len(result.Stops))
	return result, nil
}

// GetByID returns a single trip without its plan.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return s.trips.GetByID(ctx, id)
}

// GetDetail returns a trip together with its stops and daily logs.
func (s *TripService) GetDetail(ctx context.Context, id uuid.UUID) (repo.PlanResult, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return repo.PlanResult{}, err
	}

	stops, err := s.stops.ListByTripID(ctx, id)
	if err != nil {
		return repo.PlanResult{}, err
	}

	logs, err := s.logs.ListByTripID(ctx, id)
	if err != nil {
		return repo.PlanResult{}, err
	}

	return repo.PlanResult{Trip: trip, Stops: stops, Logs: logs}, nil
}

// List returns one page of the driver's trips, most recent first.
// Always returns a non-nil slice so the JSON response is [] rather than null.
func (s *TripService) List(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error) {
	trips, err := s.trips.ListByDriver(ctx, driverID, p)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// UpdateStatus moves a trip through its lifecycle state machine.
func (s *TripService) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.TripStatus) (domain.Trip, error) {
	if !next.Valid() {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateStatus: unknown status %q: %w", next, domain.ErrValidation)
	}

	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	if !trip.Status.CanTransitionTo(next) {
		return domain.Trip{}, fmt.Errorf("service.TripService.UpdateStatus: %s -> %s: %w", trip.Status, next, domain.ErrInvalidState)
	}

	trip.Status = next
	return s.trips.Update(ctx, trip)
}

// Delete removes a trip and, via cascade, its stops and logs. It takes the
// same per-trip lock as Recalculate so a deletion cannot race a re-plan.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if !s.locks.tryAcquire(id) {
		return fmt.Errorf("service.TripService.Delete: %w", domain.ErrConcurrency)
	}
	defer s.locks.release(id)

	return s.trips.Delete(ctx, id)
}

// route resolves the trip's three points into a drivable route.
func (s *TripService) route(ctx context.Context, trip domain.Trip) (ports.Route, error) {
	return s.router.Route(ctx,
		ports.RoutePoint{Address: trip.CurrentLocation, Coords: trip.CurrentCoords},
		ports.RoutePoint{Address: trip.PickupLocation, Coords: trip.PickupCoords},
		ports.RoutePoint{Address: trip.DropoffLocation, Coords: trip.DropoffCoords},
	)
}

// buildPlan runs the planning pipeline for a trip whose CreatedAt is known:
// simulate the schedule, evaluate it against the HOS rules, and aggregate
// daily logs. Pure computation, safe inside an open transaction.
func (s *TripService) buildPlan(trip domain.Trip, route ports.Route) (domain.Trip, []domain.Stop, []domain.DailyLog, error) {
	plan, err := s.planner.Plan(trip, route, trip.CreatedAt)
	if err != nil {
		return domain.Trip{}, nil, nil, err
	}

	violations := hos.EvaluateTimeline(plan.Entries, trip.CurrentCycleUsed)
	logs := hos.BuildDailyLogs(trip, plan.Entries, violations)

	trip.TotalDistance = round2(plan.TotalMiles)
	trip.EstimatedDuration = round2(plan.DurationHours)

	return trip, plan.Stops, logs, nil
}

// validateTrip enforces the request-level business rules.
func validateTrip(trip domain.Trip) error {
	if trip.CurrentLocation == "" || trip.PickupLocation == "" || trip.DropoffLocation == "" {
		return fmt.Errorf("service.TripService: all three locations are required: %w", domain.ErrValidation)
	}
	if trip.CurrentCycleUsed < 0 || trip.CurrentCycleUsed > domain.CycleLimitHours {
		return fmt.Errorf("service.TripService: current_cycle_used must be within [0, %.0f]: %w",
			domain.CycleLimitHours, domain.ErrValidation)
	}
	for _, c := range []*domain.Coordinates{trip.CurrentCoords, trip.PickupCoords, trip.DropoffCoords} {
		if c != nil && !c.InRange() {
			return fmt.Errorf("service.TripService: coordinates out of range: %w", domain.ErrValidation)
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// tripLocks is a keyed try-lock. The zero value is ready to use.
type tripLocks struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func (l *tripLocks) tryAcquire(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held == nil {
		l.held = make(map[uuid.UUID]struct{})
	}
	if _, busy := l.held[id]; busy {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

func (l *tripLocks) release(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}
