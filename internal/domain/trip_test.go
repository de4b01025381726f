package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eld-trip-service/internal/domain"
)

func TestTripStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to domain.TripStatus
		want     bool
	}{
		{domain.TripPlanned, domain.TripInProgress, true},
		{domain.TripPlanned, domain.TripCancelled, true},
		{domain.TripPlanned, domain.TripCompleted, false},
		{domain.TripPlanned, domain.TripPlanned, false},
		{domain.TripInProgress, domain.TripCompleted, true},
		{domain.TripInProgress, domain.TripCancelled, true},
		{domain.TripInProgress, domain.TripPlanned, false},
		{domain.TripCompleted, domain.TripInProgress, false},
		{domain.TripCompleted, domain.TripCancelled, false},
		{domain.TripCancelled, domain.TripPlanned, false},
	}

	for _, c := range cases {
		got := c.from.CanTransitionTo(c.to)
		assert.Equal(t, c.want, got, "%s -> %s", c.from, c.to)
	}
}

func TestTripStatus_Terminal(t *testing.T) {
	assert.False(t, domain.TripPlanned.Terminal())
	assert.False(t, domain.TripInProgress.Terminal())
	assert.True(t, domain.TripCompleted.Terminal())
	assert.True(t, domain.TripCancelled.Terminal())
}

func TestTrip_AvailableCycleHours(t *testing.T) {
	assert.InDelta(t, 70.0, domain.Trip{CurrentCycleUsed: 0}.AvailableCycleHours(), 1e-9)
	assert.InDelta(t, 2.0, domain.Trip{CurrentCycleUsed: 68}.AvailableCycleHours(), 1e-9)
	assert.InDelta(t, 0.0, domain.Trip{CurrentCycleUsed: 70}.AvailableCycleHours(), 1e-9)
}

func TestNewCoordinates(t *testing.T) {
	lat, lng := 40.7128, -74.006

	assert.Nil(t, domain.NewCoordinates(nil, nil))
	assert.Nil(t, domain.NewCoordinates(&lat, nil))
	assert.Nil(t, domain.NewCoordinates(nil, &lng))

	c := domain.NewCoordinates(&lat, &lng)
	assert.NotNil(t, c)
	assert.True(t, c.InRange())
	assert.False(t, domain.Coordinates{Lat: 91, Lng: 0}.InRange())
}

func TestStopType_DutyStatus(t *testing.T) {
	assert.Equal(t, domain.StatusOnDuty, domain.StopFuel.DutyStatus())
	assert.Equal(t, domain.StatusOnDuty, domain.StopPickup.DutyStatus())
	assert.Equal(t, domain.StatusOnDuty, domain.StopDropoff.DutyStatus())
	assert.Equal(t, domain.StatusOffDuty, domain.StopRest.DutyStatus())
	assert.Equal(t, domain.StatusOffDuty, domain.StopOffDuty.DutyStatus())
	assert.Equal(t, domain.StatusSleeper, domain.StopSleeper.DutyStatus())
}
