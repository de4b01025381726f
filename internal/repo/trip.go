// Package repo contains all database access logic for the ELD trip service.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"eld-trip-service/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByDriver returns the driver's trips ordered by created_at
	// descending, paginated.
	ListByDriver(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip (planner
	// metrics and status) and returns the updated record.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID. Stops and daily logs go with it via
	// ON DELETE CASCADE. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, driver_id,
	current_location, current_lat, current_lng,
	pickup_location, pickup_lat, pickup_lng,
	dropoff_location, dropoff_lat, dropoff_lng,
	current_cycle_used, total_distance, estimated_duration,
	status, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (driver_id,
			current_location, current_lat, current_lng,
			pickup_location, pickup_lat, pickup_lng,
			dropoff_location, dropoff_lat, dropoff_lng,
			current_cycle_used, total_distance, estimated_duration, status)
		VALUES (@driver_id,
			@current_location, @current_lat, @current_lng,
			@pickup_location, @pickup_lat, @pickup_lng,
			@dropoff_location, @dropoff_lat, @dropoff_lng,
			@current_cycle_used, @total_distance, @estimated_duration, @status)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"driver_id":          trip.DriverID,
		"current_location":   trip.CurrentLocation,
		"current_lat":        coordLat(trip.CurrentCoords),
		"current_lng":        coordLng(trip.CurrentCoords),
		"pickup_location":    trip.PickupLocation,
		"pickup_lat":         coordLat(trip.PickupCoords),
		"pickup_lng":         coordLng(trip.PickupCoords),
		"dropoff_location":   trip.DropoffLocation,
		"dropoff_lat":        coordLat(trip.DropoffCoords),
		"dropoff_lng":        coordLng(trip.DropoffCoords),
		"current_cycle_used": trip.CurrentCycleUsed,
		"total_distance":     trip.TotalDistance,
		"estimated_duration": trip.EstimatedDuration,
		"status":             trip.Status,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByDriver returns one page of the driver's trips, most recent first.
func (r *pgTripRepo) ListByDriver(ctx context.Context, driverID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE driver_id = @driver_id
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{
		"driver_id": driverID,
		"limit":     p.Limit,
		"offset":    p.Offset(),
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByDriver: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListByDriver: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByDriver: rows: %w", err)
	}

	return trips, nil
}

// Update overwrites the planner-derived metrics and the status of a trip and
// returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET total_distance     = @total_distance,
		    estimated_duration = @estimated_duration,
		    current_cycle_used = @current_cycle_used,
		    status             = @status,
		    updated_at         = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":                 trip.ID,
		"total_distance":     trip.TotalDistance,
		"estimated_duration": trip.EstimatedDuration,
		"current_cycle_used": trip.CurrentCycleUsed,
		"status":             trip.Status,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID and nullable coordinate conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t        domain.Trip
		id       pgtype.UUID
		driverID pgtype.UUID

		curLat, curLng   pgtype.Float8
		pickLat, pickLng pgtype.Float8
		dropLat, dropLng pgtype.Float8
	)

	err := s.Scan(&id, &driverID,
		&t.CurrentLocation, &curLat, &curLng,
		&t.PickupLocation, &pickLat, &pickLng,
		&t.DropoffLocation, &dropLat, &dropLng,
		&t.CurrentCycleUsed, &t.TotalDistance, &t.EstimatedDuration,
		&t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.DriverID = uuid.UUID(driverID.Bytes)
	t.CurrentCoords = scanCoords(curLat, curLng)
	t.PickupCoords = scanCoords(pickLat, pickLng)
	t.DropoffCoords = scanCoords(dropLat, dropLng)

	return t, nil
}

// scanCoords folds a nullable lat/lng column pair back into an optional
// Coordinates value. Both columns are set together or not at all.
func scanCoords(lat, lng pgtype.Float8) *domain.Coordinates {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
}

// coordLat and coordLng flatten an optional Coordinates into nullable
// columns for NamedArgs (nil becomes NULL).
func coordLat(c *domain.Coordinates) *float64 {
	if c == nil {
		return nil
	}
	return &c.Lat
}

func coordLng(c *domain.Coordinates) *float64 {
	if c == nil {
		return nil
	}
	return &c.Lng
}
