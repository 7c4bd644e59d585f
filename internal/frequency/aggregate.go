// Package frequency scores frequency goals week by week.
//
// Weeks are 7-day windows anchored at the goal's period start and use the
// same complete-week rule as the occurrence builder: a trailing partial
// window is dropped from both numerator and denominator.
package frequency

import (
	"time"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/schedule"
)

// Threshold decides overall success from passed and total complete weeks.
type Threshold func(passed, total int) bool

// AllWeeks requires every complete week to pass. A period with no complete
// week never passes.
func AllWeeks(passed, total int) bool {
	return total > 0 && passed == total
}

// MinRatio passes when passed/total reaches ratio.
func MinRatio(ratio float64) Threshold {
	return func(passed, total int) bool {
		if total == 0 {
			return false
		}
		return float64(passed)/float64(total) >= ratio
	}
}

type Input struct {
	TargetPerWeek int
	PeriodStart   string // YYYY-MM-DD, inclusive
	PeriodEnd     string // YYYY-MM-DD, inclusive
	Location      *time.Location
	Records       []*model.VerificationRecord
	Threshold     Threshold // AllWeeks when nil
}

type Week struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"` // exclusive
	Count  int       `json:"count"`
	Passed bool      `json:"passed"`
}

type Result struct {
	TotalWeeks  int    `json:"totalWeeks"`
	PassedWeeks int    `json:"passedWeeks"`
	OverallPass bool   `json:"overallPass"`
	Weeks       []Week `json:"weeks"`
}

// Aggregate counts counted passes per complete week. Duplicate and failed
// records are excluded before windowing.
func Aggregate(in Input) (Result, error) {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	threshold := in.Threshold
	if threshold == nil {
		threshold = AllWeeks
	}

	start, err := schedule.ParseDate("period.start", in.PeriodStart, loc)
	if err != nil {
		return Result{}, err
	}
	end, err := schedule.ParseDate("period.end", in.PeriodEnd, loc)
	if err != nil {
		return Result{}, err
	}

	total := schedule.CompleteWeeks(start, end)
	weeks := make([]Week, total)
	for i := range weeks {
		weeks[i].Start = start.AddDate(0, 0, i*schedule.DaysPerWeek)
		weeks[i].End = start.AddDate(0, 0, (i+1)*schedule.DaysPerWeek)
	}

	for _, r := range in.Records {
		if r == nil || r.IsDuplicate || !r.FinalPass {
			continue
		}
		for i := range weeks {
			if !r.CreatedAt.Before(weeks[i].Start) && r.CreatedAt.Before(weeks[i].End) {
				weeks[i].Count++
				break
			}
		}
	}

	passed := 0
	for i := range weeks {
		weeks[i].Passed = weeks[i].Count >= in.TargetPerWeek
		if weeks[i].Passed {
			passed++
		}
	}

	return Result{
		TotalWeeks:  total,
		PassedWeeks: passed,
		OverallPass: threshold(passed, total),
		Weeks:       weeks,
	}, nil
}
