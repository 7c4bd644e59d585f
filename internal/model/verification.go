package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// VerificationRecord is written once per evaluated attempt and never updated.
// IsDuplicate is decided by the duplicate-pass guard before the insert.
type VerificationRecord struct {
	ID          string    `db:"id" json:"id"`
	GoalID      string    `db:"goal_id" json:"goalId"`
	UserID      string    `db:"user_id" json:"userId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	Signals     Signals   `db:"signals" json:"signals"`
	AutoPass    bool      `db:"auto_pass" json:"autoPass"`
	FinalPass   bool      `db:"final_pass" json:"finalPass"`
	IsDuplicate bool      `db:"is_duplicate" json:"isDuplicate"`
	Details     Details   `db:"details" json:"details,omitempty"`
}

// Details is the evaluator's diagnostic output.
type Details map[string]any

func (d Details) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *Details) Scan(src any) error {
	return scanJSON(src, d)
}
