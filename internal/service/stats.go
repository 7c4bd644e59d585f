package service

import (
	"context"
	"errors"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
	"github.com/SNU-Hackathon/Doany-sub000/internal/frequency"
	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
	"github.com/SNU-Hackathon/Doany-sub000/internal/schedule"
)

type StatsService struct {
	goals         repository.GoalRepository
	verifications repository.VerificationRepository
	threshold     frequency.Threshold
}

// NewStatsService scores weeks with frequency.MinRatio(passRatio). A ratio
// of 1 or more requires every complete week.
func NewStatsService(goals repository.GoalRepository, verifications repository.VerificationRepository, passRatio float64) *StatsService {
	var threshold frequency.Threshold = frequency.AllWeeks
	if passRatio < 1 {
		threshold = frequency.MinRatio(passRatio)
	}
	return &StatsService{
		goals:         goals,
		verifications: verifications,
		threshold:     threshold,
	}
}

// Weekly scores the goal's whole period.
func (s *StatsService) Weekly(ctx context.Context, userID, goalID string) (frequency.Result, error) {
	goal, err := s.goals.ByID(ctx, userID, goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return frequency.Result{}, err
	}
	if err != nil {
		return frequency.Result{}, apperr.StoreUnavailable("goals.by_id", err)
	}

	loc, err := schedule.LoadLocation(goal.Timezone)
	if err != nil {
		return frequency.Result{}, err
	}
	from, err := schedule.ParseDate("period.start", goal.PeriodStart, loc)
	if err != nil {
		return frequency.Result{}, err
	}
	last, err := schedule.ParseDate("period.end", goal.PeriodEnd, loc)
	if err != nil {
		return frequency.Result{}, err
	}

	records, err := s.verifications.ByGoalBetween(ctx, goal.ID, from, last.AddDate(0, 0, 1))
	if err != nil {
		return frequency.Result{}, apperr.StoreUnavailable("verifications.by_goal_between", err)
	}

	return frequency.Aggregate(frequency.Input{
		TargetPerWeek: goal.TargetPerWeek,
		PeriodStart:   goal.PeriodStart,
		PeriodEnd:     goal.PeriodEnd,
		Location:      loc,
		Records:       records,
		Threshold:     s.threshold,
	})
}
