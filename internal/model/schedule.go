package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GoalSchedule is the Occurrence Builder input.
type GoalSchedule struct {
	Timezone string     `json:"timezone" yaml:"timezone"`
	Period   Period     `json:"period" yaml:"period"`
	Schedule Recurrence `json:"schedule" yaml:"schedule"`
}

// Period bounds are inclusive calendar dates ("YYYY-MM-DD") in the goal's timezone.
type Period struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

type Recurrence struct {
	Rules              []Rule     `json:"rules" yaml:"rules"`
	Overrides          []Override `json:"overrides,omitempty" yaml:"overrides"`
	DefaultDurationMin int        `json:"defaultDurationMin" yaml:"defaultDurationMin"`
}

// Rule fires on each weekday in ByWeekday (0 = Sunday) at Time ("HH:MM").
type Rule struct {
	ByWeekday []int  `json:"byWeekday" yaml:"byWeekday"`
	Time      string `json:"time" yaml:"time"`
}

type OverrideType string

const (
	OverrideAdd    OverrideType = "add"
	OverrideCancel OverrideType = "cancel"
	OverrideRetime OverrideType = "retime"
	OverrideMove   OverrideType = "move"
)

// Override is a tagged variant. Which fields are meaningful depends on Type:
// add{Date,Time}, cancel{Date}, retime{Date,Time}, move{FromDate,ToDate,ToTime}.
type Override struct {
	Type     OverrideType `json:"type" yaml:"type"`
	Date     string       `json:"date,omitempty" yaml:"date"`
	Time     string       `json:"time,omitempty" yaml:"time"`
	FromDate string       `json:"fromDate,omitempty" yaml:"fromDate"`
	ToDate   string       `json:"toDate,omitempty" yaml:"toDate"`
	ToTime   string       `json:"toTime,omitempty" yaml:"toTime"`
}

// Occurrence is one concrete session. Both instants are UTC.
type Occurrence struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Value stores the recurrence as a JSON column.
func (r Recurrence) Value() (driver.Value, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Recurrence) Scan(src any) error {
	return scanJSON(src, r)
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}
