package validation

import (
	"time"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/schedule"
)

const (
	// MaxOccurrences is the most sessions a single goal may expand to.
	MaxOccurrences = 100

	// MaxPeriodDays bounds the period of any goal, which in turn bounds
	// the weeks a weekly report walks.
	MaxPeriodDays = 10 * 366
)

// ValidateSchedule builds the schedule and rejects expansions a caller
// should not accept. Schedule goals need at least one rule. The size is
// checked before anything is expanded. The expansion is returned so
// callers do not build twice.
func ValidateSchedule(goalType model.GoalType, gs model.GoalSchedule) ([]model.Occurrence, error) {
	if !goalType.Valid() {
		return nil, apperr.Validation("type", "unknown goal type %q", goalType)
	}

	if goalType == model.GoalTypeSchedule && len(gs.Schedule.Rules) == 0 {
		return nil, apperr.Validation("schedule.rules", "a schedule goal needs at least one rule")
	}

	n, err := schedule.Count(gs)
	if err != nil {
		return nil, err
	}
	if n > MaxOccurrences {
		return nil, apperr.Validation("schedule", "expands to %d occurrences, maximum is %d", n, MaxOccurrences)
	}

	start, err := schedule.ParseDate("period.start", gs.Period.Start, time.UTC)
	if err != nil {
		return nil, err
	}
	end, err := schedule.ParseDate("period.end", gs.Period.End, time.UTC)
	if err != nil {
		return nil, err
	}
	if days := schedule.PeriodDays(start, end); days > MaxPeriodDays {
		return nil, apperr.Validation("period", "spans %d days, maximum is %d", days, MaxPeriodDays)
	}

	return schedule.Build(gs)
}

// ValidateTarget checks the weekly target of a goal.
func ValidateTarget(goalType model.GoalType, targetPerWeek int) error {
	if targetPerWeek < 0 || targetPerWeek > schedule.DaysPerWeek {
		return apperr.Validation("targetPerWeek", "must be between 0 and %d", schedule.DaysPerWeek)
	}
	if goalType == model.GoalTypeFrequency && targetPerWeek == 0 {
		return apperr.Validation("targetPerWeek", "a frequency goal needs a weekly target")
	}
	return nil
}
