// Package verification decides whether a set of proof signals satisfies the
// acceptance policy of a goal type. Everything here is pure.
package verification

import (
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
)

// Detail keys.
const (
	DetailGoalType        = "goal_type"
	DetailChecks          = "checks"
	DetailMatched         = "matched"
	DetailMissingRequired = "missing_required"
	DetailUnknownGoalType = "unknown_goal_type"
)

type Result struct {
	Pass    bool          `json:"pass"`
	Details model.Details `json:"details"`
}

// Evaluate applies the policy for goalType to signals. A failing verdict
// is a normal result. An unknown goal type fails with a diagnostic.
func Evaluate(goalType model.GoalType, signals model.Signals) Result {
	return EvaluatePolicy(goalType, Policies[goalType], signals)
}

// EvaluatePolicy is the generic matcher behind Evaluate.
func EvaluatePolicy(goalType model.GoalType, policy Policy, signals model.Signals) Result {
	details := model.Details{DetailGoalType: string(goalType)}

	if len(policy.Require) == 0 && len(policy.AnyOf) == 0 {
		details[DetailUnknownGoalType] = true
		return Result{Pass: false, Details: details}
	}

	checks := make(map[string]bool, len(checkFuncs))
	for name, fn := range checkFuncs {
		checks[string(name)] = fn(signals)
	}
	details[DetailChecks] = checks

	var missing []string
	for _, c := range policy.Require {
		if !checks[string(c)] {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 {
		details[DetailMissingRequired] = missing
		return Result{Pass: false, Details: details}
	}

	if len(policy.AnyOf) == 0 {
		return Result{Pass: true, Details: details}
	}

	for _, combo := range policy.AnyOf {
		if satisfied(combo, checks) {
			details[DetailMatched] = combo.Name
			return Result{Pass: true, Details: details}
		}
	}
	return Result{Pass: false, Details: details}
}

func satisfied(combo Combination, checks map[string]bool) bool {
	for _, c := range combo.Checks {
		if !checks[string(c)] {
			return false
		}
	}
	return true
}
