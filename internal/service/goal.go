package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
	"github.com/SNU-Hackathon/Doany-sub000/internal/schedule"
	"github.com/SNU-Hackathon/Doany-sub000/internal/validation"
)

var (
	ErrGoalAlreadyCompleted = errors.New("goal already completed")
)

type CreateGoalInput struct {
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Type          model.GoalType   `json:"type"`
	Timezone      string           `json:"timezone"`
	Period        model.Period     `json:"period"`
	Schedule      model.Recurrence `json:"schedule"`
	TargetPerWeek int              `json:"targetPerWeek"`
}

type UpdateGoalInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type GoalService struct {
	repo            repository.GoalRepository
	defaultTimezone string
}

func NewGoalService(repo repository.GoalRepository, defaultTimezone string) *GoalService {
	return &GoalService{
		repo:            repo,
		defaultTimezone: defaultTimezone,
	}
}

// Create validates the schedule before anything is stored. The timezone is
// fixed for the life of the goal.
func (s *GoalService) Create(ctx context.Context, userID string, in CreateGoalInput) (*model.Goal, error) {
	err := validation.ValidateTitle(in.Title)
	if err != nil {
		return nil, err
	}

	if in.Timezone == "" {
		in.Timezone = s.defaultTimezone
	}

	gs := model.GoalSchedule{Timezone: in.Timezone, Period: in.Period, Schedule: in.Schedule}
	_, err = validation.ValidateSchedule(in.Type, gs)
	if err != nil {
		return nil, err
	}

	err = validation.ValidateTarget(in.Type, in.TargetPerWeek)
	if err != nil {
		return nil, err
	}

	target := in.TargetPerWeek
	if target == 0 {
		target = sessionsPerWeek(in.Type, in.Schedule)
	}

	now := time.Now().UTC()
	goal := &model.Goal{
		ID:            uuid.New().String(),
		UserID:        userID,
		Title:         in.Title,
		Description:   in.Description,
		Type:          in.Type,
		Status:        model.GoalStatusActive,
		Timezone:      in.Timezone,
		PeriodStart:   in.Period.Start,
		PeriodEnd:     in.Period.End,
		Schedule:      in.Schedule,
		TargetPerWeek: target,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.repo.Create(ctx, goal)
	if err != nil {
		return nil, apperr.StoreUnavailable("goals.create", err)
	}

	slog.Info("goal created", "goal_id", goal.ID, "user_id", userID, "type", goal.Type)
	return goal, nil
}

// sessionsPerWeek is the default weekly target: one per rule weekday for
// schedule goals, one otherwise.
func sessionsPerWeek(goalType model.GoalType, r model.Recurrence) int {
	if goalType != model.GoalTypeSchedule {
		return 1
	}
	n := 0
	for _, rule := range r.Rules {
		n += len(rule.ByWeekday)
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (s *GoalService) ByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	goal, err := s.repo.ByID(ctx, userID, goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, apperr.StoreUnavailable("goals.by_id", err)
	}
	return goal, nil
}

func (s *GoalService) Goals(ctx context.Context, userID, sortBy string) ([]*model.Goal, error) {
	goals, err := s.repo.Goals(ctx, userID, sortBy)
	if err != nil {
		return nil, apperr.StoreUnavailable("goals.list", err)
	}
	return goals, nil
}

func (s *GoalService) Update(ctx context.Context, userID, goalID string, in UpdateGoalInput) (*model.Goal, error) {
	goal, err := s.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		err = validation.ValidateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		goal.Title = *in.Title
	}
	if in.Description != nil {
		goal.Description = *in.Description
	}
	if in.Status != nil {
		switch *in.Status {
		case model.GoalStatusActive, model.GoalStatusCompleted:
		default:
			return nil, apperr.Validation("status", "unknown status %q", *in.Status)
		}
		if goal.Status == model.GoalStatusCompleted && *in.Status == model.GoalStatusCompleted {
			return nil, ErrGoalAlreadyCompleted
		}
		goal.Status = *in.Status
	}

	err = s.repo.Update(ctx, goal)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, apperr.StoreUnavailable("goals.update", err)
	}

	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	err := s.repo.Delete(ctx, userID, goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return err
	}
	if err != nil {
		return apperr.StoreUnavailable("goals.delete", err)
	}

	slog.Info("goal deleted", "goal_id", goalID, "user_id", userID)
	return nil
}

// Occurrences expands the stored schedule of a goal.
func (s *GoalService) Occurrences(ctx context.Context, userID, goalID string) ([]model.Occurrence, error) {
	goal, err := s.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	occurrences, err := schedule.Build(goal.GoalSchedule())
	if err != nil {
		return nil, fmt.Errorf("failed to build stored schedule for goal %s: %w", goalID, err)
	}
	return occurrences, nil
}

// Preview expands a schedule without storing anything.
func (s *GoalService) Preview(goalType model.GoalType, gs model.GoalSchedule) ([]model.Occurrence, error) {
	if gs.Timezone == "" {
		gs.Timezone = s.defaultTimezone
	}
	if goalType == "" {
		goalType = model.GoalTypeSchedule
	}
	return validation.ValidateSchedule(goalType, gs)
}
