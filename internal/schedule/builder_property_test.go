package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
)

func propertySchedule(offsetDays, lengthDays int, weekdays []int, minute int, tz string) model.GoalSchedule {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	start := base.AddDate(0, 0, offsetDays)
	end := start.AddDate(0, 0, lengthDays-1)
	return model.GoalSchedule{
		Timezone: tz,
		Period:   model.Period{Start: start.Format(DateLayout), End: end.Format(DateLayout)},
		Schedule: model.Recurrence{
			Rules: []model.Rule{{
				ByWeekday: weekdays,
				Time:      time.Date(2000, 1, 1, minute/60, minute%60, 0, 0, time.UTC).Format(TimeLayout),
			}},
		},
	}
}

// TestBuildProperties checks ordering, period containment and determinism
// for override-free schedules of at least one week.
func TestBuildProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	zones := []string{"UTC", "Asia/Seoul", "America/New_York", "Europe/Berlin", "Australia/Lord_Howe"}

	properties.Property("occurrences are sorted and stay inside the period", prop.ForAll(
		func(offset, length int, weekdays []int, minute, zone int) bool {
			s := propertySchedule(offset, length, weekdays, minute, zones[zone])
			occ, err := Build(s)
			if err != nil {
				return false
			}

			loc, _ := time.LoadLocation(s.Timezone)
			for i, o := range occ {
				if i > 0 && o.Start.Before(occ[i-1].Start) {
					return false
				}
				day := o.Start.In(loc).Format(DateLayout)
				if day < s.Period.Start || day > s.Period.End {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 400),
		gen.IntRange(7, 60),
		gen.SliceOf(gen.IntRange(0, 6)),
		gen.IntRange(0, 24*60-1),
		gen.IntRange(0, len(zones)-1),
	))

	properties.Property("one occurrence per matching weekday", prop.ForAll(
		func(offset, length, weekday int) bool {
			s := propertySchedule(offset, length, []int{weekday}, 9*60, "UTC")
			occ, err := Build(s)
			if err != nil {
				return false
			}

			want := 0
			start, _ := time.Parse(DateLayout, s.Period.Start)
			for d := 0; d < length; d++ {
				if int(start.AddDate(0, 0, d).Weekday()) == weekday {
					want++
				}
			}
			return len(occ) == want
		},
		gen.IntRange(0, 400),
		gen.IntRange(7, 60),
		gen.IntRange(0, 6),
	))

	properties.Property("build is idempotent", prop.ForAll(
		func(offset, length int, weekdays []int, minute int) bool {
			s := propertySchedule(offset, length, weekdays, minute, "Asia/Seoul")
			a, errA := Build(s)
			b, errB := Build(s)
			if errA != nil || errB != nil {
				return false
			}
			ja, _ := json.Marshal(a)
			jb, _ := json.Marshal(b)
			return string(ja) == string(jb)
		},
		gen.IntRange(0, 400),
		gen.IntRange(7, 60),
		gen.SliceOf(gen.IntRange(0, 6)),
		gen.IntRange(0, 24*60-1),
	))

	overrideTypes := []model.OverrideType{model.OverrideCancel, model.OverrideRetime, model.OverrideAdd, model.OverrideMove}

	properties.Property("count agrees with build", prop.ForAll(
		func(offset, length int, weekdays []int, codes []int) bool {
			s := propertySchedule(offset, length, weekdays, 9*60, "Asia/Seoul")
			s.Schedule.Rules = append(s.Schedule.Rules, model.Rule{ByWeekday: weekdays, Time: "18:30"})

			// Each code picks an override kind and two dates that may fall
			// outside the period.
			start, _ := time.Parse(DateLayout, s.Period.Start)
			date := func(n int) string { return start.AddDate(0, 0, n%80-10).Format(DateLayout) }
			for _, c := range codes {
				o := model.Override{Type: overrideTypes[c%4], Time: "07:00", ToTime: "07:00"}
				if o.Type == model.OverrideMove {
					o.FromDate, o.ToDate = date(c/4), date(c/320)
				} else {
					o.Date = date(c / 4)
				}
				s.Schedule.Overrides = append(s.Schedule.Overrides, o)
			}

			occ, errB := Build(s)
			n, errC := Count(s)
			return errB == nil && errC == nil && n == len(occ)
		},
		gen.IntRange(0, 400),
		gen.IntRange(1, 60),
		gen.SliceOf(gen.IntRange(0, 6)),
		gen.SliceOf(gen.IntRange(0, 4*80*80-1)),
	))

	properties.TestingRun(t)
}
