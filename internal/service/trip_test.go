package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eld-trip-service/internal/domain"
	"eld-trip-service/internal/hos"
	"eld-trip-service/internal/ports"
	"eld-trip-service/internal/repo"
	"eld-trip-service/internal/service"
)

// ---- mock repos ------------------------------------------------------------

// mockTripRepo is a hand-written test double for repo.TripRepo.
type mockTripRepo struct {
	create       func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByDriver func(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error)
	update       func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListByDriver(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error) {
	return m.listByDriver(ctx, driverID, p)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

// mockStopRepo is a hand-written test double for repo.StopRepo.
type mockStopRepo struct {
	createBatch    func(ctx context.Context, stops []domain.Stop) ([]domain.Stop, error)
	listByTripID   func(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error)
	deleteByTripID func(ctx context.Context, tripID uuid.UUID) error
}

func (m *mockStopRepo) CreateBatch(ctx context.Context, stops []domain.Stop) ([]domain.Stop, error) {
	return m.createBatch(ctx, stops)
}
func (m *mockStopRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error) {
	return m.listByTripID(ctx, tripID)
}
func (m *mockStopRepo) DeleteByTripID(ctx context.Context, tripID uuid.UUID) error {
	return m.deleteByTripID(ctx, tripID)
}

var _ repo.StopRepo = (*mockStopRepo)(nil)

// mockDailyLogRepo is a hand-written test double for repo.DailyLogRepo.
type mockDailyLogRepo struct {
	createBatch    func(ctx context.Context, logs []domain.DailyLog) ([]domain.DailyLog, error)
	listByTripID   func(ctx context.Context, tripID uuid.UUID) ([]domain.DailyLog, error)
	deleteByTripID func(ctx context.Context, tripID uuid.UUID) error
}

func (m *mockDailyLogRepo) CreateBatch(ctx context.Context, logs []domain.DailyLog) ([]domain.DailyLog, error) {
	return m.createBatch(ctx, logs)
}
func (m *mockDailyLogRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.DailyLog, error) {
	return m.listByTripID(ctx, tripID)
}
func (m *mockDailyLogRepo) DeleteByTripID(ctx context.Context, tripID uuid.UUID) error {
	return m.deleteByTripID(ctx, tripID)
}

var _ repo.DailyLogRepo = (*mockDailyLogRepo)(nil)

// mockPlanStore emulates the transactional store in memory: it stamps a fresh
// ID and created_at on the trip, runs the plan callback, and returns whatever
// the callback produced.
type mockPlanStore struct {
	createdAt   time.Time
	lastResult  repo.PlanResult
	replaceErr  error
	replaceCall int
}

func (m *mockPlanStore) CreateTripWithPlan(_ context.Context, trip domain.Trip, plan repo.PlanFunc) (repo.PlanResult, error) {
	trip.ID = uuid.New()
	trip.CreatedAt = m.createdAt
	trip.UpdatedAt = m.createdAt

	planned, stops, logs, err := plan(trip)
	if err != nil {
		return repo.PlanResult{}, err
	}

	m.lastResult = repo.PlanResult{Trip: planned, Stops: stops, Logs: logs}
	return m.lastResult, nil
}

func (m *mockPlanStore) ReplacePlan(_ context.Context, trip domain.Trip, stops []domain.Stop, logs []domain.DailyLog) (repo.PlanResult, error) {
	m.replaceCall++
	if m.replaceErr != nil {
		return repo.PlanResult{}, m.replaceErr
	}
	m.lastResult = repo.PlanResult{Trip: trip, Stops: stops, Logs: logs}
	return m.lastResult, nil
}

var _ repo.PlanStore = (*mockPlanStore)(nil)

// mockRouter is a hand-written test double for ports.RouteProvider.
type mockRouter struct {
	route func(ctx context.Context, current, pickup, dropoff ports.RoutePoint) (ports.Route, error)
	calls int
}

func (m *mockRouter) Route(ctx context.Context, current, pickup, dropoff ports.RoutePoint) (ports.Route, error) {
	m.calls++
	return m.route(ctx, current, pickup, dropoff)
}

var _ ports.RouteProvider = (*mockRouter)(nil)

// ---- helpers ---------------------------------------------------------------

var testCreatedAt = time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

func fixedRoute(totalMiles, pickupMiles float64) *mockRouter {
	return &mockRouter{
		route: func(_ context.Context, _, _, _ ports.RoutePoint) (ports.Route, error) {
			return ports.Route{
				TotalMiles:  totalMiles,
				DriveHours:  totalMiles / 60,
				PickupMiles: pickupMiles,
			}, nil
		},
	}
}

func validInput() service.CreateTripInput {
	return service.CreateTripInput{
		CurrentLocation:  "New York, NY",
		PickupLocation:   "Philadelphia, PA",
		DropoffLocation:  "Washington, DC",
		CurrentCycleUsed: 10,
	}
}

// newTripService wires a TripService to the given mocks, filling in defaults
// for collaborators the test does not care about.
func newTripService(trips repo.TripRepo, stops repo.StopRepo, logs repo.DailyLogRepo, store repo.PlanStore, router ports.RouteProvider) *service.TripService {
	return service.NewTripService(trips, stops, logs, store, router,
		hos.NewPlanner(hos.DefaultPlannerConfig()),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ---- PlanTrip --------------------------------------------------------------

func TestTripService_PlanTrip_OK(t *testing.T) {
	store := &mockPlanStore{createdAt: testCreatedAt}
	svc := newTripService(&mockTripRepo{}, &mockStopRepo{}, &mockDailyLogRepo{}, store, fixedRoute(235, 95))

	driverID := uuid.New()
	result, err := svc.PlanTrip(context.Background(), driverID, validInput())

	require.NoError(t, err)
	assert.Equal(t, driverID, result.Trip.DriverID)
	assert.Equal(t, domain.TripPlanned, result.Trip.Status)
	assert.InDelta(t, 235, result.Trip.TotalDistance, 0.01)
	assert.Greater(t, result.Trip.EstimatedDuration, 235.0/60, "duration includes dwell")

	require.NotEmpty(t, result.Stops)
	assert.Equal(t, domain.StopPickup, result.Stops[0].StopType)
	assert.Equal(t, domain.StopDropoff, result.Stops[len(result.Stops)-1].StopType)

	require.NotEmpty(t, result.Logs)
	for _, l := range result.Logs {
		assert.False(t, l.HasViolation, "planned trip must be compliant")
	}
}

func TestTripService_PlanTrip_EmptyLocation(t *testing.T) {
	router := fixedRoute(235, 95)
	svc := newTripService(&mockTripRepo{}, &mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{}, router)

	in := validInput()
	in.PickupLocation = "   "

	_, err := svc.PlanTrip(context.Background(), uuid.New(), in)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, router.calls, "routing must not run for invalid input")
}

func TestTripService_PlanTrip_CycleOutOfRange(t *testing.T) {
	svc := newTripService(&mockTripRepo{}, &mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{}, fixedRoute(235, 95))

	in := validInput()
	in.CurrentCycleUsed = 70.5

	_, err := svc.PlanTrip(context.Background(), uuid.New(), in)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_PlanTrip_CoordinatesOutOfRange(t *testing.T) {
	svc := newTripService(&mockTripRepo{}, &mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{}, fixedRoute(235, 95))

	in := validInput()
	in.PickupCoords = &domain.Coordinates{Lat: 91, Lng: 0}

	_, err := svc.PlanTrip(context.Background(), uuid.New(), in)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_PlanTrip_RoutingError(t *testing.T) {
	router := &mockRouter{
		route: func(_ context.Context, _, _, _ ports.RoutePoint) (ports.Route, error) {
			return ports.Route{}, fmt.Errorf("geocode failed: %w", domain.ErrRouting)
		},
	}
	store := &mockPlanStore{createdAt: testCreatedAt}
	svc := newTripService(&mockTripRepo{}, &mockStopRepo{}, &mockDailyLogRepo{}, store, router)

	_, err := svc.PlanTrip(context.Background(), uuid.New(), validInput())

	assert.ErrorIs(t, err, domain.ErrRouting)
	assert.Zero(t, store.replaceCall)
}

func TestTripService_PlanTrip_HorizonExceeded(t *testing.T) {
	cfg := hos.DefaultPlannerConfig()
	cfg.MaxPlanDays = 1

	svc := service.NewTripService(&mockTripRepo{}, &mockStopRepo{}, &mockDailyLogRepo{},
		&mockPlanStore{createdAt: testCreatedAt}, fixedRoute(2000, 100),
		hos.NewPlanner(cfg), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.PlanTrip(context.Background(), uuid.New(), validInput())

	assert.ErrorIs(t, err, domain.ErrCompliance)
}

// ---- Recalculate -----------------------------------------------------------

func storedTrip(id uuid.UUID, status domain.TripStatus) domain.Trip {
	return domain.Trip{
		ID:               id,
		DriverID:         uuid.New(),
		CurrentLocation:  "New York, NY",
		PickupLocation:   "Philadelphia, PA",
		DropoffLocation:  "Washington, DC",
		CurrentCycleUsed: 10,
		Status:           status,
		CreatedAt:        testCreatedAt,
		UpdatedAt:        testCreatedAt,
	}
}

func TestTripService_Recalculate_OK(t *testing.T) {
	id := uuid.New()
	store := &mockPlanStore{createdAt: testCreatedAt}

	svc := newTripService(
		&mockTripRepo{
			getByID: func(_ context.Context, gotID uuid.UUID) (domain.Trip, error) {
				assert.Equal(t, id, gotID)
				return storedTrip(id, domain.TripPlanned), nil
			},
		},
		&mockStopRepo{}, &mockDailyLogRepo{}, store, fixedRoute(235, 95),
	)

	result, err := svc.Recalculate(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, 1, store.replaceCall, "recalculation replaces, never appends")
	require.NotEmpty(t, result.Stops)
	assert.Equal(t, domain.StopPickup, result.Stops[0].StopType)
}

// Recalculating twice with unchanged inputs yields an identical plan: the
// schedule anchors on the trip's creation time, not on the wall clock.
func TestTripService_Recalculate_Idempotent(t *testing.T) {
	id := uuid.New()
	trip := storedTrip(id, domain.TripPlanned)
	store := &mockPlanStore{createdAt: testCreatedAt}

	svc := newTripService(
		&mockTripRepo{
			getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
				return trip, nil
			},
		},
		&mockStopRepo{}, &mockDailyLogRepo{}, store, fixedRoute(780, 60),
	)

	first, err := svc.Recalculate(context.Background(), id)
	require.NoError(t, err)

	second, err := svc.Recalculate(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, first.Stops, second.Stops)
	assert.Equal(t, first.Logs, second.Logs)
	assert.Equal(t, first.Trip.TotalDistance, second.Trip.TotalDistance)
}

func TestTripService_Recalculate_NotFound(t *testing.T) {
	svc := newTripService(
		&mockTripRepo{
			getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
				return domain.Trip{}, domain.ErrNotFound
			},
		},
		&mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{}, fixedRoute(235, 95),
	)

	_, err := svc.Recalculate(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_Recalculate_TerminalTrip(t *testing.T) {
	id := uuid.New()
	svc := newTripService(
		&mockTripRepo{
			getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
				return storedTrip(id, domain.TripCompleted), nil
			},
		},
		&mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{}, fixedRoute(235, 95),
	)

	_, err := svc.Recalculate(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// A second recalculation of the same trip while the first is still running
// fails fast instead of queueing.
func TestTripService_Recalculate_ConcurrentAttempt(t *testing.T) {
	id := uuid.New()

	routeStarted := make(chan struct{}, 1)
	releaseRoute := make(chan struct{})

	router := &mockRouter{
		route: func(_ context.Context, _, _, _ ports.RoutePoint) (ports.Route, error) {
			select {
			case routeStarted <- struct{}{}:
			default:
			}
			<-releaseRoute
			return ports.Route{TotalMiles: 235, DriveHours: 235.0 / 60, PickupMiles: 95}, nil
		},
	}

	svc := newTripService(
		&mockTripRepo{
			getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
				return storedTrip(id, domain.TripPlanned), nil
			},
		},
		&mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{createdAt: testCreatedAt}, router,
	)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Recalculate(context.Background(), id)
		firstDone <- err
	}()

	<-routeStarted // first call holds the trip lock inside routing

	_, err := svc.Recalculate(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrConcurrency)

	close(releaseRoute)
	require.NoError(t, <-firstDone)

	// With the lock released, recalculation works again.
	_, err = svc.Recalculate(context.Background(), id)
	assert.NoError(t, err)
}

// ---- UpdateStatus ----------------------------------------------------------

func TestTripService_UpdateStatus_OK(t *testing.T) {
	id := uuid.New()
	svc := newTripService(
		&mockTripRepo{
			getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
				return storedTrip(id, domain.TripPlanned), nil
			},
			update: func(_ context.Context, trip domain.Trip) (domain.Trip, error) {
				return trip, nil
			},
		},
		&mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{}, fixedRoute(235, 95),
	)

	got, err := svc.UpdateStatus(context.Background(), id, domain.TripInProgress)

	require.NoError(t, err)
	assert.Equal(t, domain.TripInProgress, got.Status)
}

func TestTripService_UpdateStatus_InvalidTransition(t *testing.T) {
	id := uuid.New()
	svc := newTripService(
		&mockTripRepo{
			getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
				return storedTrip(id, domain.TripCompleted), nil
			},
		},
		&mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{}, fixedRoute(235, 95),
	)

	_, err := svc.UpdateStatus(context.Background(), id, domain.TripInProgress)

	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestTripService_UpdateStatus_UnknownStatus(t *testing.T) {
	svc := newTripService(&mockTripRepo{}, &mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{}, fixedRoute(235, 95))

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "TELEPORTING")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- GetDetail / List / Delete ---------------------------------------------

func TestTripService_GetDetail_OK(t *testing.T) {
	id := uuid.New()
	svc := newTripService(
		&mockTripRepo{
			getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
				return storedTrip(id, domain.TripPlanned), nil
			},
		},
		&mockStopRepo{
			listByTripID: func(_ context.Context, _ uuid.UUID) ([]domain.Stop, error) {
				return []domain.Stop{{TripID: id, StopType: domain.StopPickup}}, nil
			},
		},
		&mockDailyLogRepo{
			listByTripID: func(_ context.Context, _ uuid.UUID) ([]domain.DailyLog, error) {
				return []domain.DailyLog{{TripID: id}}, nil
			},
		},
		&mockPlanStore{}, fixedRoute(235, 95),
	)

	got, err := svc.GetDetail(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, got.Trip.ID)
	assert.Len(t, got.Stops, 1)
	assert.Len(t, got.Logs, 1)
}

func TestTripService_List_ReturnsEmptySlice(t *testing.T) {
	svc := newTripService(
		&mockTripRepo{
			listByDriver: func(_ context.Context, _ uuid.UUID, _ domain.PaginationParams) ([]domain.Trip, error) {
				return nil, nil
			},
		},
		&mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{}, fixedRoute(235, 95),
	)

	got, err := svc.List(context.Background(), uuid.New(), domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTripService_Delete_OK(t *testing.T) {
	id := uuid.New()
	svc := newTripService(
		&mockTripRepo{
			delete: func(_ context.Context, gotID uuid.UUID) error {
				assert.Equal(t, id, gotID)
				return nil
			},
		},
		&mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{}, fixedRoute(235, 95),
	)

	err := svc.Delete(context.Background(), id)

	require.NoError(t, err)
}

func TestTripService_Delete_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	svc := newTripService(
		&mockTripRepo{
			delete: func(_ context.Context, _ uuid.UUID) error { return repoErr },
		},
		&mockStopRepo{}, &mockDailyLogRepo{}, &mockPlanStore{}, fixedRoute(235, 95),
	)

	err := svc.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repoErr)
}
