package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
)

func TestGoalService_CreateAndOccurrences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	goal := env.createGoal(t, tuesdayGoal())
	assert.Equal(t, "Asia/Seoul", goal.Timezone)
	assert.Equal(t, 1, goal.TargetPerWeek)
	assert.Equal(t, model.GoalStatusActive, goal.Status)

	occ, err := env.goals.Occurrences(ctx, "u1", goal.ID)
	require.NoError(t, err)
	require.Len(t, occ, 3)

	var days []int
	for _, o := range occ {
		local := o.Start.In(seoul)
		days = append(days, local.Day())
		assert.Equal(t, 9, local.Hour())
		assert.Equal(t, time.Hour, o.End.Sub(o.Start))
	}
	assert.Equal(t, []int{5, 12, 19}, days)

	_, err = env.goals.Occurrences(ctx, "u2", goal.ID)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)
}

func TestGoalService_CreateRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := map[string]struct {
		mutate func(*CreateGoalInput)
		field  string
	}{
		"empty title":       {func(in *CreateGoalInput) { in.Title = " " }, "title"},
		"unknown zone":      {func(in *CreateGoalInput) { in.Timezone = "Nowhere/City" }, "timezone"},
		"inverted period":   {func(in *CreateGoalInput) { in.Period.End = "2025-07-01" }, "period"},
		"no rules":          {func(in *CreateGoalInput) { in.Schedule.Rules = nil }, "schedule.rules"},
		"too many sessions": {func(in *CreateGoalInput) { in.Period.End = "2027-12-31" }, "schedule"},
		"bad target":        {func(in *CreateGoalInput) { in.TargetPerWeek = 9 }, "targetPerWeek"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := tuesdayGoal()
			tc.mutate(&in)

			_, err := env.goals.Create(ctx, "u1", in)
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	goals, err := env.goals.Goals(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, goals, "nothing is stored for invalid input")
}

func TestGoalService_FrequencyNeedsTarget(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.goals.Create(context.Background(), "u1", frequencyGoal("2025-08-01", "2025-08-31", 0))
	assert.True(t, apperr.IsValidation(err))

	goal := env.createGoal(t, frequencyGoal("2025-08-01", "2025-08-31", 3))
	assert.Equal(t, 3, goal.TargetPerWeek)
}

func TestGoalService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	goal := env.createGoal(t, tuesdayGoal())

	title := "Tuesday laps"
	done := model.GoalStatusCompleted
	updated, err := env.goals.Update(ctx, "u1", goal.ID, UpdateGoalInput{Title: &title, Status: &done})
	require.NoError(t, err)
	assert.Equal(t, "Tuesday laps", updated.Title)

	_, err = env.goals.Update(ctx, "u1", goal.ID, UpdateGoalInput{Status: &done})
	assert.ErrorIs(t, err, ErrGoalAlreadyCompleted)

	bogus := "paused"
	_, err = env.goals.Update(ctx, "u1", goal.ID, UpdateGoalInput{Status: &bogus})
	assert.True(t, apperr.IsValidation(err))

	require.NoError(t, env.goals.Delete(ctx, "u1", goal.ID))
	assert.ErrorIs(t, env.goals.Delete(ctx, "u1", goal.ID), repository.ErrGoalNotFound)
}

func TestGoalService_Preview(t *testing.T) {
	env := newTestEnv(t)

	in := tuesdayGoal()
	occ, err := env.goals.Preview("", model.GoalSchedule{Period: in.Period, Schedule: in.Schedule})
	require.NoError(t, err)
	assert.Len(t, occ, 3)

	occ, err = env.goals.Preview(model.GoalTypeSchedule, model.GoalSchedule{
		Period:   model.Period{Start: "2025-08-01", End: "2025-08-06"},
		Schedule: in.Schedule,
	})
	require.NoError(t, err)
	assert.Empty(t, occ, "a period under a week has no complete week")
}

func TestGoalService_StoreUnavailable(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Close())

	_, err := env.goals.Goals(context.Background(), "u1", "")
	assert.True(t, apperr.IsStoreUnavailable(err))

	_, err = env.goals.Create(context.Background(), "u1", tuesdayGoal())
	assert.True(t, apperr.IsStoreUnavailable(err))
}
