package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
)

// DefaultDurationMin applies when a schedule leaves defaultDurationMin unset.
const DefaultDurationMin = 60

// tentative is an occurrence before timezone resolution: a calendar date
// plus minutes after midnight. Dates are civil, held as UTC midnight, so
// iterating them never trips over a zone whose midnight is skipped by DST.
type tentative struct {
	date   time.Time
	minute int
}

type parsedRule struct {
	weekdays [7]bool
	minute   int
}

type parsedOverride struct {
	kind   model.OverrideType
	date   time.Time
	to     time.Time
	minute int
}

type parsedSchedule struct {
	loc       *time.Location
	start     time.Time
	end       time.Time
	duration  int
	rules     []parsedRule
	overrides []parsedOverride
}

func parseSchedule(s model.GoalSchedule) (*parsedSchedule, error) {
	loc, err := LoadLocation(s.Timezone)
	if err != nil {
		return nil, err
	}

	start, err := parseCivil("period.start", s.Period.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseCivil("period.end", s.Period.End)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, apperr.Validation("period", "end %s is before start %s", s.Period.End, s.Period.Start)
	}

	duration := s.Schedule.DefaultDurationMin
	if duration < 0 {
		return nil, apperr.Validation("schedule.defaultDurationMin", "must not be negative, got %d", duration)
	}
	if duration == 0 {
		duration = DefaultDurationMin
	}

	rules, err := parseRules(s.Schedule.Rules)
	if err != nil {
		return nil, err
	}
	overrides, err := parseOverrides(s.Schedule.Overrides)
	if err != nil {
		return nil, err
	}

	return &parsedSchedule{
		loc:       loc,
		start:     start,
		end:       end,
		duration:  duration,
		rules:     rules,
		overrides: overrides,
	}, nil
}

// Build expands s into occurrences sorted ascending by start.
//
// Rules are expanded over every date of the period first. Overrides are
// then applied strictly in list order, so a later override sees the effect
// of an earlier one (a cancel after a move onto the same date removes the
// moved session). Rules that coincide are not merged. Periods shorter than
// one complete week yield no occurrences.
//
// Build allocates in proportion to the expansion; use Count to bound
// untrusted input first. Build only fails with *apperr.ValidationError.
func Build(s model.GoalSchedule) ([]model.Occurrence, error) {
	p, err := parseSchedule(s)
	if err != nil {
		return nil, err
	}

	if PeriodDays(p.start, p.end) < DaysPerWeek {
		return []model.Occurrence{}, nil
	}

	items := expand(p.rules, p.start, p.end)
	for _, o := range p.overrides {
		items = applyOverride(items, o)
	}

	occurrences := make([]model.Occurrence, 0, len(items))
	for _, it := range items {
		startAt := time.Date(it.date.Year(), it.date.Month(), it.date.Day(),
			it.minute/60, it.minute%60, 0, 0, p.loc).UTC()
		occurrences = append(occurrences, model.Occurrence{
			Start: startAt,
			End:   startAt.Add(time.Duration(p.duration) * time.Minute),
		})
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Start.Before(occurrences[j].Start)
	})

	return occurrences, nil
}

// Count returns len(Build(s)) without expanding the period. Its cost
// depends on the number of rules and overrides, not on the period length.
func Count(s model.GoalSchedule) (int, error) {
	p, err := parseSchedule(s)
	if err != nil {
		return 0, err
	}

	days := PeriodDays(p.start, p.end)
	if days < DaysPerWeek {
		return 0, nil
	}

	// Sessions per weekday from the rules alone.
	var perWeekday [7]int
	for _, r := range p.rules {
		for wd, on := range r.weekdays {
			if on {
				perWeekday[wd]++
			}
		}
	}

	total := 0
	first := int(p.start.Weekday())
	for wd := 0; wd < 7; wd++ {
		n := days / DaysPerWeek
		if (wd-first+7)%7 < days%DaysPerWeek {
			n++
		}
		total += n * perWeekday[wd]
	}

	// Overrides act date by date, so only the dates they touch need
	// replaying; every other date keeps its rule sessions. Each date keeps
	// its overrides in list order.
	byDate := make(map[int64][]parsedOverride)
	for _, o := range p.overrides {
		byDate[o.date.Unix()] = append(byDate[o.date.Unix()], o)
		if o.kind == model.OverrideMove && !sameDate(o.to, o.date) {
			byDate[o.to.Unix()] = append(byDate[o.to.Unix()], o)
		}
	}

	for key, overrides := range byDate {
		d := time.Unix(key, 0).UTC()
		n := 0
		if !d.Before(p.start) && !d.After(p.end) {
			n = perWeekday[d.Weekday()]
		}
		total -= n

		for _, o := range overrides {
			switch o.kind {
			case model.OverrideCancel:
				n = 0
			case model.OverrideAdd:
				n++
			case model.OverrideMove:
				if sameDate(o.date, d) {
					n = 0
				}
				if sameDate(o.to, d) {
					n++
				}
			}
		}
		total += n
	}

	return total, nil
}

func expand(rules []parsedRule, start, end time.Time) []tentative {
	var items []tentative
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		for _, r := range rules {
			if r.weekdays[wd] {
				items = append(items, tentative{date: d, minute: r.minute})
			}
		}
	}
	return items
}

func applyOverride(items []tentative, o parsedOverride) []tentative {
	switch o.kind {
	case model.OverrideCancel:
		return removeDate(items, o.date)
	case model.OverrideRetime:
		for i := range items {
			if sameDate(items[i].date, o.date) {
				items[i].minute = o.minute
			}
		}
		return items
	case model.OverrideAdd:
		return append(items, tentative{date: o.date, minute: o.minute})
	case model.OverrideMove:
		items = removeDate(items, o.date)
		return append(items, tentative{date: o.to, minute: o.minute})
	}
	return items
}

func removeDate(items []tentative, date time.Time) []tentative {
	kept := items[:0]
	for _, it := range items {
		if !sameDate(it.date, date) {
			kept = append(kept, it)
		}
	}
	return kept
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func parseRules(rules []model.Rule) ([]parsedRule, error) {
	parsed := make([]parsedRule, 0, len(rules))
	for i, r := range rules {
		field := fmt.Sprintf("schedule.rules[%d]", i)
		minute, err := parseClock(field+".time", r.Time)
		if err != nil {
			return nil, err
		}
		pr := parsedRule{minute: minute}
		for _, wd := range r.ByWeekday {
			if wd < 0 || wd > 6 {
				return nil, apperr.Validation(field+".byWeekday", "weekday %d out of range 0-6", wd)
			}
			pr.weekdays[wd] = true
		}
		parsed = append(parsed, pr)
	}
	return parsed, nil
}

func parseOverrides(overrides []model.Override) ([]parsedOverride, error) {
	parsed := make([]parsedOverride, 0, len(overrides))
	for i, o := range overrides {
		field := fmt.Sprintf("schedule.overrides[%d]", i)
		po := parsedOverride{kind: o.Type}
		var err error

		switch o.Type {
		case model.OverrideCancel:
			po.date, err = parseCivil(field+".date", o.Date)
		case model.OverrideAdd, model.OverrideRetime:
			po.date, err = parseCivil(field+".date", o.Date)
			if err == nil {
				po.minute, err = parseClock(field+".time", o.Time)
			}
		case model.OverrideMove:
			po.date, err = parseCivil(field+".fromDate", o.FromDate)
			if err == nil {
				po.to, err = parseCivil(field+".toDate", o.ToDate)
			}
			if err == nil {
				po.minute, err = parseClock(field+".toTime", o.ToTime)
			}
		default:
			err = apperr.Validation(field+".type", "unknown override type %q", o.Type)
		}
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, po)
	}
	return parsed, nil
}
