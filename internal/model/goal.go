package model

import (
	"time"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
)

// GoalType selects the verification policy applied to a goal's attempts.
type GoalType string

const (
	GoalTypeSchedule  GoalType = "schedule"
	GoalTypeFrequency GoalType = "frequency"
	GoalTypePartner   GoalType = "partner"
)

func (t GoalType) Valid() bool {
	switch t {
	case GoalTypeSchedule, GoalTypeFrequency, GoalTypePartner:
		return true
	}
	return false
}

type Goal struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"userId"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	Type          GoalType   `db:"type" json:"type"`
	Status        string     `db:"status" json:"status"`
	Timezone      string     `db:"timezone" json:"timezone"`
	PeriodStart   string     `db:"period_start" json:"periodStart"`
	PeriodEnd     string     `db:"period_end" json:"periodEnd"`
	Schedule      Recurrence `db:"schedule" json:"schedule"`
	TargetPerWeek int        `db:"target_per_week" json:"targetPerWeek"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// GoalSchedule assembles the builder input from the stored goal.
func (g *Goal) GoalSchedule() GoalSchedule {
	return GoalSchedule{
		Timezone: g.Timezone,
		Period:   Period{Start: g.PeriodStart, End: g.PeriodEnd},
		Schedule: g.Schedule,
	}
}
