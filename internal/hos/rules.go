package hos

import (
	"fmt"
	"time"

	"eld-trip-service/internal/domain"
)

// ViolationKind identifies which HOS limit was exceeded.
type ViolationKind string

const (
	ViolationDrivingLimit  ViolationKind = "DRIVING_LIMIT_EXCEEDED"
	ViolationDutyWindow    ViolationKind = "DUTY_WINDOW_EXCEEDED"
	ViolationBreakRequired ViolationKind = "BREAK_REQUIRED"
	ViolationCycleLimit    ViolationKind = "CYCLE_LIMIT_EXCEEDED"
)

// Violation marks the interval over which a limit was exceeded. Start is the
// instant the limit was crossed; End is where the offending activity stopped.
type Violation struct {
	Kind    ViolationKind
	Start   time.Time
	End     time.Time
	Message string
}

// EvaluateTimeline walks a chronological duty-status timeline and flags every
// point where continuing to drive was illegal. cycleUsed seeds the
// 70-hour/8-day counter with hours consumed before the timeline begins.
//
// The engine records violations as data; it never truncates the timeline.
// A timeline produced by the planner should evaluate clean — violations here
// mean the planner under-provisioned stops.
func EvaluateTimeline(entries []domain.DutyStatusEntry, cycleUsed float64) []Violation {
	var violations []Violation

	var (
		dutyStart         time.Time
		onDuty            bool
		drivingSinceRest  float64
		drivingSinceBreak float64
		consecutiveRest   time.Duration
		cycle             = cycleUsed

		// One flag per limit per duty period keeps a single long overrun
		// from producing a violation on every subsequent entry.
		flaggedLimit, flaggedWindow, flaggedBreak, flaggedCycle bool
	)

	resetDutyPeriod := func() {
		onDuty = false
		drivingSinceRest = 0
		drivingSinceBreak = 0
		flaggedLimit, flaggedWindow, flaggedBreak = false, false, false
	}

	for _, e := range entries {
		d := e.Duration()
		h := d.Hours()

		if e.Status.Rest() {
			consecutiveRest += d
			if consecutiveRest >= BreakMinDuration {
				drivingSinceBreak = 0
				flaggedBreak = false
			}
			if consecutiveRest >= DailyResetDuration {
				resetDutyPeriod()
			}
			if consecutiveRest >= RestartDuration {
				cycle = 0
				flaggedCycle = false
			}
			continue
		}

		consecutiveRest = 0
		if !onDuty {
			onDuty = true
			dutyStart = e.StartTime
		}
		cycle += h

		if e.Status != domain.StatusDriving {
			continue
		}

		// 11-hour driving limit within the duty period.
		if !flaggedLimit && drivingSinceRest+h > DrivingLimitHours+epsilon {
			over := crossing(e, DrivingLimitHours-drivingSinceRest)
			violations = append(violations, Violation{
				Kind:    ViolationDrivingLimit,
				Start:   over,
				End:     e.EndTime,
				Message: fmt.Sprintf("driving beyond the 11-hour limit (%.2fh in duty period)", drivingSinceRest+h),
			})
			flaggedLimit = true
		}

		// 14-hour window: driving past dutyStart+14h.
		windowEnd := dutyStart.Add(hoursDuration(DutyWindowHours))
		if !flaggedWindow && e.EndTime.After(windowEnd) {
			over := e.StartTime
			if windowEnd.After(over) {
				over = windowEnd
			}
			violations = append(violations, Violation{
				Kind:    ViolationDutyWindow,
				Start:   over,
				End:     e.EndTime,
				Message: "driving beyond the 14-hour on-duty window",
			})
			flaggedWindow = true
		}

		// 30-minute break rule: driving past 8h since the last break.
		if !flaggedBreak && drivingSinceBreak+h > BreakAfterDrivingHours+epsilon {
			over := crossing(e, BreakAfterDrivingHours-drivingSinceBreak)
			violations = append(violations, Violation{
				Kind:    ViolationBreakRequired,
				Start:   over,
				End:     e.EndTime,
				Message: "driving beyond 8 hours without a 30-minute break",
			})
			flaggedBreak = true
		}

		// 70-hour/8-day cycle: driving once the cycle is exhausted.
		if !flaggedCycle && cycle > CycleLimitHours+epsilon {
			over := crossing(e, CycleLimitHours-(cycle-h))
			violations = append(violations, Violation{
				Kind:    ViolationCycleLimit,
				Start:   over,
				End:     e.EndTime,
				Message: fmt.Sprintf("driving beyond the 70-hour/8-day cycle (%.2fh on duty)", cycle),
			})
			flaggedCycle = true
		}

		drivingSinceRest += h
		drivingSinceBreak += h
	}

	return violations
}

// crossing returns the instant within entry e at which the remaining budget
// (in hours) runs out. A non-positive budget means the entry started already
// over the limit.
func crossing(e domain.DutyStatusEntry, budgetHours float64) time.Time {
	if budgetHours <= 0 {
		return e.StartTime
	}
	return e.StartTime.Add(hoursDuration(budgetHours))
}
