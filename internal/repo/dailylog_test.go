package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eld-trip-service/internal/domain"
	"eld-trip-service/internal/repo"
	"eld-trip-service/testutil"
)

func newTestLogRepos(t *testing.T) (repo.TripRepo, repo.DailyLogRepo) {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return repo.NewTripRepo(tx), repo.NewDailyLogRepo(tx)
}

// logFixture returns one full-day daily log with two entries against the
// given trip.
func logFixture(trip domain.Trip) domain.DailyLog {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return domain.DailyLog{
		TripID:                trip.ID,
		DriverID:              trip.DriverID,
		LogDate:               day,
		OffDutyHours:          20,
		DrivingHours:          4,
		OnDutyNotDrivingHours: 0,
		TotalHours:            24,
		TotalMiles:            240,
		StartingLocation:      "New York, NY",
		EndingLocation:        "Washington, DC",
		Entries: []domain.DutyStatusEntry{
			{
				Status:          domain.StatusDriving,
				StartTime:       day.Add(6 * time.Hour),
				EndTime:         day.Add(10 * time.Hour),
				Location:        "En route to Washington, DC",
				DurationMinutes: 240,
				MilesDriven:     240,
				SequenceOrder:   0,
			},
			{
				Status:          domain.StatusOffDuty,
				StartTime:       day.Add(10 * time.Hour),
				EndTime:         day.Add(24 * time.Hour),
				Location:        "Washington, DC",
				DurationMinutes: 840,
				SequenceOrder:   1,
			},
		},
	}
}

func TestDailyLogRepo_CreateBatch(t *testing.T) {
	tripRepo, logRepo := newTestLogRepos(t)
	ctx := context.Background()

	parent := mustCreateTrip(t, tripRepo)
	input := logFixture(parent)

	got, err := logRepo.CreateBatch(ctx, []domain.DailyLog{input})

	require.NoError(t, err)
	require.Len(t, got, 1)

	stored := got[0]
	assert.NotEqual(t, uuid.UUID{}, stored.ID, "ID should be DB-generated UUID")
	assert.Equal(t, parent.ID, stored.TripID)
	assert.Equal(t, parent.DriverID, stored.DriverID)
	assert.InDelta(t, 24, stored.TotalHours, 1e-9)
	assert.False(t, stored.CreatedAt.IsZero(), "CreatedAt should be set by DB")

	require.Len(t, stored.Entries, 2)
	for i, e := range stored.Entries {
		assert.NotEqual(t, uuid.UUID{}, e.ID)
		assert.Equal(t, stored.ID, e.DailyLogID, "entries linked to parent log")
		assert.Equal(t, i, e.SequenceOrder)
	}
}

func TestDailyLogRepo_ListByTripID(t *testing.T) {
	tripRepo, logRepo := newTestLogRepos(t)
	ctx := context.Background()

	parent := mustCreateTrip(t, tripRepo)

	day1 := logFixture(parent)
	day2 := logFixture(parent)
	day2.LogDate = day1.LogDate.AddDate(0, 0, 1)
	for i := range day2.Entries {
		day2.Entries[i].StartTime = day2.Entries[i].StartTime.AddDate(0, 0, 1)
		day2.Entries[i].EndTime = day2.Entries[i].EndTime.AddDate(0, 0, 1)
	}

	// Insert out of order; reads must come back by log_date.
	_, err := logRepo.CreateBatch(ctx, []domain.DailyLog{day2, day1})
	require.NoError(t, err)

	got, err := logRepo.ListByTripID(ctx, parent.ID)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].LogDate.Before(got[1].LogDate), "logs ordered by date")
	require.Len(t, got[0].Entries, 2)
	assert.Equal(t, domain.StatusDriving, got[0].Entries[0].Status)
}

func TestDailyLogRepo_ListByTripID_Empty(t *testing.T) {
	_, logRepo := newTestLogRepos(t)

	got, err := logRepo.ListByTripID(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDailyLogRepo_DeleteByTripID(t *testing.T) {
	tripRepo, logRepo := newTestLogRepos(t)
	ctx := context.Background()

	parent := mustCreateTrip(t, tripRepo)
	_, err := logRepo.CreateBatch(ctx, []domain.DailyLog{logFixture(parent)})
	require.NoError(t, err)

	err = logRepo.DeleteByTripID(ctx, parent.ID)
	require.NoError(t, err)

	got, err := logRepo.ListByTripID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Empty(t, got, "logs and entries should be gone after delete")
}
