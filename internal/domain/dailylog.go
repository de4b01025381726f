package domain

import (
	"time"

	"github.com/google/uuid"
)

// DutyStatus is one of the four ELD duty statuses drawn on a log graph.
type DutyStatus string

const (
	StatusOffDuty DutyStatus = "OFF_DUTY"
	StatusSleeper DutyStatus = "SLEEPER"
	StatusDriving DutyStatus = "DRIVING"
	StatusOnDuty  DutyStatus = "ON_DUTY"
)

// Valid reports whether s is one of the four duty statuses.
func (s DutyStatus) Valid() bool {
	switch s {
	case StatusOffDuty, StatusSleeper, StatusDriving, StatusOnDuty:
		return true
	}
	return false
}

// Rest reports whether time in this status counts toward required rest
// (off duty or sleeper berth).
func (s DutyStatus) Rest() bool {
	return s == StatusOffDuty || s == StatusSleeper
}

// OnDuty reports whether time in this status accrues against the
// 70-hour/8-day cycle (driving or on-duty-not-driving).
func (s DutyStatus) OnDuty() bool {
	return s == StatusDriving || s == StatusOnDuty
}

// DutyStatusEntry is a single interval on the duty-status timeline.
// Within a daily log, entries are ordered by StartTime and form a contiguous,
// non-overlapping partition of the day [00:00, 24:00).
type DutyStatusEntry struct {
	ID         uuid.UUID  `json:"id"`
	DailyLogID uuid.UUID  `json:"daily_log_id"`
	Status     DutyStatus `json:"status"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"` // always after StartTime
	Location   string     `json:"location"`

	DurationMinutes int `json:"duration_minutes"`

	// MilesDriven is nonzero only for DRIVING entries. Entries split at
	// midnight carry miles apportioned pro-rata by elapsed time.
	MilesDriven float64 `json:"miles_driven"`

	SequenceOrder int `json:"sequence_order"`
}

// Duration returns the entry's length.
func (e DutyStatusEntry) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// DailyLog is one ELD log sheet: a calendar day of a trip rolled up by duty
// status, with the underlying timeline entries attached.
//
// driving_hours above 11 is recorded, not rejected — the service logs
// non-compliant reality and sets HasViolation instead of refusing the data.
type DailyLog struct {
	ID       uuid.UUID `json:"id"`
	TripID   uuid.UUID `json:"trip_id"`
	DriverID uuid.UUID `json:"driver_id"`

	// LogDate is the calendar day, midnight-to-midnight UTC.
	LogDate time.Time `json:"log_date"`

	OffDutyHours          float64 `json:"off_duty_hours"`
	SleeperBerthHours     float64 `json:"sleeper_berth_hours"`
	DrivingHours          float64 `json:"driving_hours"`
	OnDutyNotDrivingHours float64 `json:"on_duty_not_driving_hours"`

	// TotalHours is the sum of the four status buckets; ~24 for a full day.
	TotalHours float64 `json:"total_hours"`
	TotalMiles float64 `json:"total_miles"`

	StartingLocation string `json:"starting_location"`
	EndingLocation   string `json:"ending_location"`

	HasViolation         bool   `json:"has_violation"`
	ViolationDescription string `json:"violation_description,omitempty"`

	Entries []DutyStatusEntry `json:"entries"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
