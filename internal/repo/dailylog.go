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

// DailyLogRepo defines the persistence operations for DailyLogs and their
// duty-status entries. Like stops, logs are derived data regenerated wholesale
// on every recalculation, so writes are batch-oriented.
type DailyLogRepo interface {
	// CreateBatch inserts the logs and their entries and returns the
	// persisted records in log_date order, entries attached.
	CreateBatch(ctx context.Context, logs []domain.DailyLog) ([]domain.DailyLog, error)

	// ListByTripID returns all logs for a trip in log_date order with their
	// entries attached in sequence order.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.DailyLog, error)

	// DeleteByTripID removes every log (and, via cascade, every entry)
	// belonging to a trip. Deleting zero rows is not an error.
	DeleteByTripID(ctx context.Context, tripID uuid.UUID) error
}

// pgDailyLogRepo is the Postgres implementation of DailyLogRepo.
type pgDailyLogRepo struct {
	db db
}

// NewDailyLogRepo constructs a DailyLogRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewDailyLogRepo(db db) DailyLogRepo {
	return &pgDailyLogRepo{db: db}
}

func (r *pgDailyLogRepo) CreateBatch(ctx context.Context, logs []domain.DailyLog) ([]domain.DailyLog, error) {
	const logQ = `
		INSERT INTO daily_logs (trip_id, driver_id, log_date,
			off_duty_hours, sleeper_berth_hours, driving_hours, on_duty_not_driving_hours,
			total_hours, total_miles, starting_location, ending_location,
			has_violation, violation_description)
		VALUES (@trip_id, @driver_id, @log_date,
			@off_duty_hours, @sleeper_berth_hours, @driving_hours, @on_duty_not_driving_hours,
			@total_hours, @total_miles, @starting_location, @ending_location,
			@has_violation, @violation_description)
		RETURNING id, created_at, updated_at`

	const entryQ = `
		INSERT INTO duty_status_entries (daily_log_id, status, start_time, end_time,
			location, duration_minutes, miles_driven, sequence_order)
		VALUES (@daily_log_id, @status, @start_time, @end_time,
			@location, @duration_minutes, @miles_driven, @sequence_order)
		RETURNING id`

	out := make([]domain.DailyLog, 0, len(logs))
	for _, logDay := range logs {
		args := pgx.NamedArgs{
			"trip_id":                   logDay.TripID,
			"driver_id":                 logDay.DriverID,
			"log_date":                  logDay.LogDate,
			"off_duty_hours":            logDay.OffDutyHours,
			"sleeper_berth_hours":       logDay.SleeperBerthHours,
			"driving_hours":             logDay.DrivingHours,
			"on_duty_not_driving_hours": logDay.OnDutyNotDrivingHours,
			"total_hours":               logDay.TotalHours,
			"total_miles":               logDay.TotalMiles,
			"starting_location":         logDay.StartingLocation,
			"ending_location":           logDay.EndingLocation,
			"has_violation":             logDay.HasViolation,
			"violation_description":     logDay.ViolationDescription,
		}

		var id pgtype.UUID
		row := r.db.QueryRow(ctx, logQ, args)
		if err := row.Scan(&id, &logDay.CreatedAt, &logDay.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repo.DailyLogRepo.CreateBatch: log: %w", err)
		}
		logDay.ID = uuid.UUID(id.Bytes)

		for i := range logDay.Entries {
			e := &logDay.Entries[i]
			e.DailyLogID = logDay.ID

			entryArgs := pgx.NamedArgs{
				"daily_log_id":     e.DailyLogID,
				"status":           e.Status,
				"start_time":       e.StartTime,
				"end_time":         e.EndTime,
				"location":         e.Location,
				"duration_minutes": e.DurationMinutes,
				"miles_driven":     e.MilesDriven,
				"sequence_order":   e.SequenceOrder,
			}

			var entryID pgtype.UUID
			if err := r.db.QueryRow(ctx, entryQ, entryArgs).Scan(&entryID); err != nil {
				return nil, fmt.Errorf("repo.DailyLogRepo.CreateBatch: entry: %w", err)
			}
			e.ID = uuid.UUID(entryID.Bytes)
		}

		out = append(out, logDay)
	}

	return out, nil
}

func (r *pgDailyLogRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.DailyLog, error) {
	const q = `
		SELECT id, trip_id, driver_id, log_date,
			off_duty_hours, sleeper_berth_hours, driving_hours, on_duty_not_driving_hours,
			total_hours, total_miles, starting_location, ending_location,
			has_violation, violation_description, created_at, updated_at
		FROM daily_logs
		WHERE trip_id = @trip_id
		ORDER BY log_date`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.DailyLogRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var logs []domain.DailyLog
	for rows.Next() {
		l, err := scanDailyLog(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DailyLogRepo.ListByTripID: scan: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DailyLogRepo.ListByTripID: rows: %w", err)
	}

	for i := range logs {
		entries, err := r.listEntries(ctx, logs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("repo.DailyLogRepo.ListByTripID: %w", err)
		}
		logs[i].Entries = entries
	}

	return logs, nil
}

func (r *pgDailyLogRepo) DeleteByTripID(ctx context.Context, tripID uuid.UUID) error {
	const q = `DELETE FROM daily_logs WHERE trip_id = @trip_id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return fmt.Errorf("repo.DailyLogRepo.DeleteByTripID: %w", err)
	}
	return nil
}

func (r *pgDailyLogRepo) listEntries(ctx context.Context, dailyLogID uuid.UUID) ([]domain.DutyStatusEntry, error) {
	const q = `
		SELECT id, daily_log_id, status, start_time, end_time,
			location, duration_minutes, miles_driven, sequence_order
		FROM duty_status_entries
		WHERE daily_log_id = @daily_log_id
		ORDER BY sequence_order`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"daily_log_id": dailyLogID})
	if err != nil {
		return nil, fmt.Errorf("entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.DutyStatusEntry
	for rows.Next() {
		var (
			e     domain.DutyStatusEntry
			id    pgtype.UUID
			logID pgtype.UUID
		)
		err := rows.Scan(&id, &logID, &e.Status, &e.StartTime, &e.EndTime,
			&e.Location, &e.DurationMinutes, &e.MilesDriven, &e.SequenceOrder)
		if err != nil {
			return nil, fmt.Errorf("entries: scan: %w", err)
		}
		e.ID = uuid.UUID(id.Bytes)
		e.DailyLogID = uuid.UUID(logID.Bytes)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entries: rows: %w", err)
	}

	return entries, nil
}

// scanDailyLog maps a single daily_logs row into a domain.DailyLog, without
// its entries.
func scanDailyLog(s scanner) (domain.DailyLog, error) {
	var (
		l        domain.DailyLog
		id       pgtype.UUID
		tripID   pgtype.UUID
		driverID pgtype.UUID
		logDate  pgtype.Date
	)

	err := s.Scan(&id, &tripID, &driverID, &logDate,
		&l.OffDutyHours, &l.SleeperBerthHours, &l.DrivingHours, &l.OnDutyNotDrivingHours,
		&l.TotalHours, &l.TotalMiles, &l.StartingLocation, &l.EndingLocation,
		&l.HasViolation, &l.ViolationDescription, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DailyLog{}, domain.ErrNotFound
		}
		return domain.DailyLog{}, err
	}

	l.ID = uuid.UUID(id.Bytes)
	l.TripID = uuid.UUID(tripID.Bytes)
	l.DriverID = uuid.UUID(driverID.Bytes)
	l.LogDate = logDate.Time

	return l, nil
}
