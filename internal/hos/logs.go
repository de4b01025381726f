package hos

import (
	"math"
	"strings"
	"time"

	"eld-trip-service/internal/domain"
)

// BuildDailyLogs slices a full-trip timeline at UTC midnight boundaries and
// rolls each touched calendar day into one DailyLog. Entries spanning
// midnight are split, with minutes and miles apportioned pro-rata by elapsed
// time. Every day is padded with synthesized OFF_DUTY so its entries cover
// [00:00, 24:00) — the log graph assumes a contiguous partition of the day.
//
// A touched day with no recorded activity becomes a single 24-hour OFF_DUTY
// entry. Violations flag the log of the day containing their start instant.
func BuildDailyLogs(trip domain.Trip, entries []domain.DutyStatusEntry, violations []Violation) []domain.DailyLog {
	if len(entries) == 0 {
		return nil
	}

	firstDay := dayOf(entries[0].StartTime)
	lastEnd := entries[len(entries)-1].EndTime
	// An entry ending exactly at midnight does not touch the next day.
	lastDay := dayOf(lastEnd.Add(-time.Nanosecond))

	var logs []domain.DailyLog
	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		logs = append(logs, buildDay(trip, day, entries, violations, day.Equal(firstDay)))
	}
	return logs
}

func buildDay(trip domain.Trip, day time.Time, entries []domain.DutyStatusEntry, violations []Violation, firstDay bool) domain.DailyLog {
	dayStart := day
	dayEnd := day.Add(24 * time.Hour)

	var clipped []domain.DutyStatusEntry
	for _, e := range entries {
		c, ok := clipEntry(e, dayStart, dayEnd)
		if ok {
			clipped = append(clipped, c)
		}
	}

	if len(clipped) == 0 {
		// No recorded activity: the whole day is off duty.
		clipped = []domain.DutyStatusEntry{{
			Status:          domain.StatusOffDuty,
			StartTime:       dayStart,
			EndTime:         dayEnd,
			Location:        "Rest Location",
			DurationMinutes: 24 * 60,
		}}
	} else {
		if first := clipped[0]; first.StartTime.After(dayStart) {
			loc := first.Location
			if firstDay {
				loc = trip.CurrentLocation
			}
			pad := domain.DutyStatusEntry{
				Status:          domain.StatusOffDuty,
				StartTime:       dayStart,
				EndTime:         first.StartTime,
				Location:        loc,
				DurationMinutes: int(math.Round(first.StartTime.Sub(dayStart).Minutes())),
			}
			clipped = append([]domain.DutyStatusEntry{pad}, clipped...)
		}
		if last := clipped[len(clipped)-1]; last.EndTime.Before(dayEnd) {
			clipped = append(clipped, domain.DutyStatusEntry{
				Status:          domain.StatusOffDuty,
				StartTime:       last.EndTime,
				EndTime:         dayEnd,
				Location:        last.Location,
				DurationMinutes: int(math.Round(dayEnd.Sub(last.EndTime).Minutes())),
			})
		}
	}

	log := domain.DailyLog{
		TripID:   trip.ID,
		DriverID: trip.DriverID,
		LogDate:  day,
	}

	var offMin, sleeperMin, drivingMin, onDutyMin int
	for i := range clipped {
		clipped[i].SequenceOrder = i
		switch clipped[i].Status {
		case domain.StatusOffDuty:
			offMin += clipped[i].DurationMinutes
		case domain.StatusSleeper:
			sleeperMin += clipped[i].DurationMinutes
		case domain.StatusDriving:
			drivingMin += clipped[i].DurationMinutes
			log.TotalMiles += clipped[i].MilesDriven
		case domain.StatusOnDuty:
			onDutyMin += clipped[i].DurationMinutes
		}
	}

	log.OffDutyHours = round2(float64(offMin) / 60)
	log.SleeperBerthHours = round2(float64(sleeperMin) / 60)
	log.DrivingHours = round2(float64(drivingMin) / 60)
	log.OnDutyNotDrivingHours = round2(float64(onDutyMin) / 60)
	log.TotalHours = round2(float64(offMin+sleeperMin+drivingMin+onDutyMin) / 60)
	log.TotalMiles = round2(log.TotalMiles)
	log.Entries = clipped
	log.StartingLocation = clipped[0].Location
	log.EndingLocation = clipped[len(clipped)-1].Location

	var descriptions []string
	for _, v := range violations {
		if !v.Start.Before(dayStart) && v.Start.Before(dayEnd) {
			log.HasViolation = true
			descriptions = append(descriptions, v.Message)
		}
	}
	log.ViolationDescription = strings.Join(descriptions, "; ")

	return log
}

// clipEntry intersects an entry with [dayStart, dayEnd), apportioning minutes
// and miles pro-rata when the entry crosses a boundary.
func clipEntry(e domain.DutyStatusEntry, dayStart, dayEnd time.Time) (domain.DutyStatusEntry, bool) {
	if !e.EndTime.After(dayStart) || !e.StartTime.Before(dayEnd) {
		return domain.DutyStatusEntry{}, false
	}

	start, end := e.StartTime, e.EndTime
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}

	full := e.EndTime.Sub(e.StartTime)
	part := end.Sub(start)
	fraction := 1.0
	if full > 0 {
		fraction = float64(part) / float64(full)
	}

	c := e
	c.StartTime = start
	c.EndTime = end
	c.DurationMinutes = int(math.Round(part.Minutes()))
	c.MilesDriven = e.MilesDriven * fraction
	return c, true
}

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
