package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"eld-trip-service/internal/domain"
)

// StopRepo defines the persistence operations for Stops.
// Stops are generated by the planner and replaced as a set on every
// recalculation, so the write side is batch-oriented: CreateBatch and
// DeleteByTripID, no per-stop update.
type StopRepo interface {
	// CreateBatch inserts all stops for a trip in sequence order and returns
	// the persisted records.
	CreateBatch(ctx context.Context, stops []domain.Stop) ([]domain.Stop, error)

	// ListByTripID returns all stops for a trip ordered by sequence_order.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error)

	// DeleteByTripID removes every stop belonging to a trip. Deleting zero
	// rows is not an error: a trip that failed planning has no stops.
	DeleteByTripID(ctx context.Context, tripID uuid.UUID) error
}

// pgStopRepo is the Postgres implementation of StopRepo.
type pgStopRepo struct {
	db db
}

// NewStopRepo constructs a StopRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStopRepo(db db) StopRepo {
	return &pgStopRepo{db: db}
}

func (r *pgStopRepo) CreateBatch(ctx context.Context, stops []domain.Stop) ([]domain.Stop, error) {
	const q = `
		INSERT INTO stops (trip_id, stop_type, location, lat, lng,
			arrival_time, departure_time, duration_minutes,
			sequence_order, distance_from_start, notes)
		VALUES (@trip_id, @stop_type, @location, @lat, @lng,
			@arrival_time, @departure_time, @duration_minutes,
			@sequence_order, @distance_from_start, @notes)
		RETURNING id, trip_id, stop_type, location, lat, lng,
			arrival_time, departure_time, duration_minutes,
			sequence_order, distance_from_start, notes`

	out := make([]domain.Stop, 0, len(stops))
	for _, stop := range stops {
		args := pgx.NamedArgs{
			"trip_id":             stop.TripID,
			"stop_type":           stop.StopType,
			"location":            stop.Location,
			"lat":                 coordLat(stop.Coords),
			"lng":                 coordLng(stop.Coords),
			"arrival_time":        stop.ArrivalTime,
			"departure_time":      stop.DepartureTime,
			"duration_minutes":    stop.DurationMinutes,
			"sequence_order":      stop.SequenceOrder,
			"distance_from_start": stop.DistanceFromStart,
			"notes":               stop.Notes,
		}

		row := r.db.QueryRow(ctx, q, args)
		persisted, err := scanStop(row)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.CreateBatch: %w", err)
		}
		out = append(out, persisted)
	}

	return out, nil
}

func (r *pgStopRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error) {
	const q = `
		SELECT id, trip_id, stop_type, location, lat, lng,
			arrival_time, departure_time, duration_minutes,
			sequence_order, distance_from_start, notes
		FROM stops
		WHERE trip_id = @trip_id
		ORDER BY sequence_order`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var stops []domain.Stop
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.ListByTripID: scan: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTripID: rows: %w", err)
	}

	return stops, nil
}

func (r *pgStopRepo) DeleteByTripID(ctx context.Context, tripID uuid.UUID) error {
	const q = `DELETE FROM stops WHERE trip_id = @trip_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return fmt.Errorf("repo.StopRepo.DeleteByTripID: %w", err)
	}
	return nil
}

// scanStop maps a single database row into a domain.Stop.
func scanStop(s scanner) (domain.Stop, error) {
	var (
		stop     domain.Stop
		id       pgtype.UUID
		tripID   pgtype.UUID
		lat, lng pgtype.Float8
	)

	err := s.Scan(&id, &tripID, &stop.StopType, &stop.Location, &lat, &lng,
		&stop.ArrivalTime, &stop.DepartureTime, &stop.DurationMinutes,
		&stop.SequenceOrder, &stop.DistanceFromStart, &stop.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stop{}, domain.ErrNotFound
		}
		return domain.Stop{}, err
	}

	stop.ID = uuid.UUID(id.Bytes)
	stop.TripID = uuid.UUID(tripID.Bytes)
	stop.Coords = scanCoords(lat, lng)

	return stop, nil
}
