package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/SNU-Hackathon/Doany-sub000/internal/db"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
	"github.com/SNU-Hackathon/Doany-sub000/internal/verification"
)

type testEnv struct {
	db            *sqlx.DB
	goalRepo      repository.GoalRepository
	verRepo       repository.VerificationRepository
	goals         *GoalService
	verifications *VerificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	d, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(d) })

	goalRepo := repository.NewGoalRepository(d)
	verRepo := repository.NewVerificationRepository(d)

	return &testEnv{
		db:            d,
		goalRepo:      goalRepo,
		verRepo:       verRepo,
		goals:         NewGoalService(goalRepo, "Asia/Seoul"),
		verifications: NewVerificationService(goalRepo, verRepo, NewDuplicateGuard(verRepo), verification.DefaultPhotoRules(), nil),
	}
}

var seoul = mustLoad("Asia/Seoul")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// submitAt submits in with the service clock reading at.
func (e *testEnv) submitAt(t *testing.T, at time.Time, in model.AttemptPayload) *model.VerificationRecord {
	t.Helper()
	e.verifications.SetClock(func() time.Time { return at })
	rec, err := e.verifications.Submit(context.Background(), in)
	require.NoError(t, err)
	return rec
}

func (e *testEnv) createGoal(t *testing.T, in CreateGoalInput) *model.Goal {
	t.Helper()
	goal, err := e.goals.Create(context.Background(), "u1", in)
	require.NoError(t, err)
	return goal
}

func tuesdayGoal() CreateGoalInput {
	return CreateGoalInput{
		Title:  "Tuesday swim",
		Type:   model.GoalTypeSchedule,
		Period: model.Period{Start: "2025-08-01", End: "2025-08-31"},
		Schedule: model.Recurrence{
			Rules:     []model.Rule{{ByWeekday: []int{2}, Time: "09:00"}},
			Overrides: []model.Override{{Type: model.OverrideCancel, Date: "2025-08-26"}},
		},
	}
}

func frequencyGoal(start, end string, target int) CreateGoalInput {
	return CreateGoalInput{
		Title:         "Gym",
		Type:          model.GoalTypeFrequency,
		Period:        model.Period{Start: start, End: end},
		TargetPerWeek: target,
	}
}

// scheduledPass satisfies the schedule policy through manual_time.
func scheduledPass() model.Signals {
	return model.Signals{
		Manual: &model.ManualSignal{Present: true, Pass: true},
		Time:   &model.TimeSignal{Present: true},
	}
}

func checkIn() model.Signals {
	return model.Signals{
		Manual:   &model.ManualSignal{Present: true, Pass: true},
		Location: &model.LocationSignal{Present: true, Inside: true},
	}
}

func seoulTime(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, seoul)
}
