package schedule

import (
	"time"
	_ "time/tzdata"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// DaysPerWeek is the window length for complete-week scoring.
	DaysPerWeek = 7
)

// LoadLocation resolves an IANA zone name. Empty and "Local" are rejected
// because they would make output depend on the host.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return nil, apperr.Validation("timezone", "an IANA timezone is required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apperr.Validation("timezone", "unknown timezone %q", name)
	}
	return loc, nil
}

// ParseDate parses a "YYYY-MM-DD" calendar date and returns local midnight in loc.
func ParseDate(field, value string, loc *time.Location) (time.Time, error) {
	d, err := parseCivil(field, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), nil
}

// parseCivil parses a calendar date as UTC midnight, with no zone applied.
func parseCivil(field, value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "invalid date %q, want YYYY-MM-DD", value)
	}
	return d, nil
}

// parseClock parses "HH:MM" into minutes after midnight.
func parseClock(field, value string) (int, error) {
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return 0, apperr.Validation(field, "invalid time %q, want HH:MM", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// DayKey is the calendar date of t in loc. It is the idempotency unit for
// one counted pass per goal per day.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// DayBounds returns [start, end) of the local calendar day containing t.
// The span is not always 24h on DST transition days.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	l := t.In(loc)
	start := time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// PeriodDays counts the calendar days in the inclusive range [start, end].
func PeriodDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	// Civil dates in UTC keep DST shifts from skewing the count. Unix
	// seconds avoid the ~292 year limit of time.Duration.
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int((e.Unix()-s.Unix())/86400) + 1
}

// CompleteWeeks is the number of 7-day windows, anchored at start, that fit
// entirely inside [start, end]. A trailing partial week does not count.
func CompleteWeeks(start, end time.Time) int {
	return PeriodDays(start, end) / DaysPerWeek
}
