package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"eld-trip-service/internal/domain"
)

// beginner is satisfied by *pgxpool.Pool and pgx.Conn.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PlanResult is a trip together with its derived plan as persisted.
type PlanResult struct {
	Trip  domain.Trip
	Stops []domain.Stop
	Logs  []domain.DailyLog
}

// PlanFunc produces a plan for a freshly inserted trip. It receives the
// persisted record so it can anchor the schedule on the DB-generated
// created_at, and returns the trip with planner metrics filled in plus the
// stops and daily logs to store. It must be pure computation: no I/O, since
// it runs inside an open transaction.
type PlanFunc func(created domain.Trip) (domain.Trip, []domain.Stop, []domain.DailyLog, error)

// PlanStore writes a trip and its derived plan atomically. A trip is never
// visible with a half-written plan: creation and recalculation each happen
// in a single transaction.
type PlanStore interface {
	// CreateTripWithPlan inserts the trip, invokes plan, then stores the
	// returned stops, logs, and metrics. If plan fails the insert is rolled
	// back and the error is returned unwrapped for errors.Is checks.
	CreateTripWithPlan(ctx context.Context, trip domain.Trip, plan PlanFunc) (PlanResult, error)

	// ReplacePlan deletes the trip's existing stops and logs, stores the
	// provided replacements, and updates the trip's metrics.
	ReplacePlan(ctx context.Context, trip domain.Trip, stops []domain.Stop, logs []domain.DailyLog) (PlanResult, error)
}

// pgPlanStore is the Postgres implementation of PlanStore.
type pgPlanStore struct {
	db beginner
}

// NewPlanStore constructs a PlanStore over a connection source that can open
// transactions (in production, *pgxpool.Pool).
func NewPlanStore(db beginner) PlanStore {
	return &pgPlanStore{db: db}
}

func (s *pgPlanStore) CreateTripWithPlan(ctx context.Context, trip domain.Trip, plan PlanFunc) (PlanResult, error) {
	var result PlanResult

	err := s.atomic(ctx, func(tx pgx.Tx) error {
		trips := NewTripRepo(tx)

		created, err := trips.Create(ctx, trip)
		if err != nil {
			return err
		}

		planned, stops, logs, err := plan(created)
		if err != nil {
			return err
		}

		result, err = s.storePlan(ctx, tx, planned, stops, logs)
		return err
	})
	if err != nil {
		return PlanResult{}, err
	}
	return result, nil
}

func (s *pgPlanStore) ReplacePlan(ctx context.Context, trip domain.Trip, stops []domain.Stop, logs []domain.DailyLog) (PlanResult, error) {
	var result PlanResult

	err := s.atomic(ctx, func(tx pgx.Tx) error {
		if err := NewStopRepo(tx).DeleteByTripID(ctx, trip.ID); err != nil {
			return err
		}
		if err := NewDailyLogRepo(tx).DeleteByTripID(ctx, trip.ID); err != nil {
			return err
		}

		var err error
		result, err = s.storePlan(ctx, tx, trip, stops, logs)
		return err
	})
	if err != nil {
		return PlanResult{}, err
	}
	return result, nil
}

// storePlan updates the trip's metrics and inserts its stops and logs using
// the transaction-bound repos. Ownership fields are stamped here so callers
// never have to thread trip IDs through planner output.
func (s *pgPlanStore) storePlan(ctx context.Context, tx pgx.Tx, trip domain.Trip, stops []domain.Stop, logs []domain.DailyLog) (PlanResult, error) {
	updated, err := NewTripRepo(tx).Update(ctx, trip)
	if err != nil {
		return PlanResult{}, err
	}

	for i := range stops {
		stops[i].TripID = updated.ID
	}
	storedStops, err := NewStopRepo(tx).CreateBatch(ctx, stops)
	if err != nil {
		return PlanResult{}, err
	}

	for i := range logs {
		logs[i].TripID = updated.ID
		logs[i].DriverID = updated.DriverID
	}
	storedLogs, err := NewDailyLogRepo(tx).CreateBatch(ctx, logs)
	if err != nil {
		return PlanResult{}, err
	}

	return PlanResult{Trip: updated, Stops: storedStops, Logs: storedLogs}, nil
}

// atomic runs fn in a transaction, rolling back on error or panic.
func (s *pgPlanStore) atomic(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.PlanStore: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.PlanStore: commit: %w", err)
	}
	return nil
}
