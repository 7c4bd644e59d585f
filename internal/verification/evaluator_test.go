package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
)

func present() *model.TimeSignal { return &model.TimeSignal{Present: true} }

func TestEvaluate_Schedule(t *testing.T) {
	tests := []struct {
		name    string
		signals model.Signals
		pass    bool
		matched string
	}{
		{
			name: "manual and location inside time window",
			signals: model.Signals{
				Time:     present(),
				Manual:   &model.ManualSignal{Present: true},
				Location: &model.LocationSignal{Present: true},
			},
			pass:    true,
			matched: "manual_location",
		},
		{
			name: "photo with invalid capture time",
			signals: model.Signals{
				Time:  present(),
				Photo: &model.PhotoSignal{Present: true, Validation: model.PhotoValidation{TimeValid: false}},
			},
			pass: false,
		},
		{
			name: "timely fresh photo",
			signals: model.Signals{
				Time: present(),
				Photo: &model.PhotoSignal{Present: true, Validation: model.PhotoValidation{
					TimeValid:      true,
					FreshnessValid: true,
				}},
			},
			pass:    true,
			matched: "photo_timely",
		},
		{
			name: "timely but stale photo",
			signals: model.Signals{
				Time:  present(),
				Photo: &model.PhotoSignal{Present: true, Validation: model.PhotoValidation{TimeValid: true}},
			},
			pass: false,
		},
		{
			name: "manual within time window",
			signals: model.Signals{
				Time:   present(),
				Manual: &model.ManualSignal{Present: true},
			},
			pass:    true,
			matched: "manual_time",
		},
		{
			name: "no time signal",
			signals: model.Signals{
				Manual:   &model.ManualSignal{Present: true},
				Location: &model.LocationSignal{Present: true},
			},
			pass: false,
		},
		{
			name: "time signal supplied but not present",
			signals: model.Signals{
				Time:     &model.TimeSignal{Present: false},
				Manual:   &model.ManualSignal{Present: true},
				Location: &model.LocationSignal{Present: true},
			},
			pass: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(model.GoalTypeSchedule, tt.signals)
			assert.Equal(t, tt.pass, res.Pass)
			assert.Equal(t, "schedule", res.Details[DetailGoalType])
			if tt.matched != "" {
				assert.Equal(t, tt.matched, res.Details[DetailMatched])
			} else {
				assert.NotContains(t, res.Details, DetailMatched)
			}
		})
	}
}

func TestEvaluate_MissingRequiredIsReported(t *testing.T) {
	res := Evaluate(model.GoalTypeSchedule, model.Signals{Manual: &model.ManualSignal{Present: true}})
	assert.False(t, res.Pass)
	assert.Equal(t, []string{"time"}, res.Details[DetailMissingRequired])
}

func TestEvaluate_Frequency(t *testing.T) {
	tests := []struct {
		name    string
		signals model.Signals
		pass    bool
	}{
		{"manual and location", model.Signals{
			Manual:   &model.ManualSignal{Present: true},
			Location: &model.LocationSignal{Present: true},
		}, true},
		{"manual and fresh photo", model.Signals{
			Manual: &model.ManualSignal{Present: true},
			Photo:  &model.PhotoSignal{Present: true, Validation: model.PhotoValidation{FreshnessValid: true}},
		}, true},
		{"manual and stale photo", model.Signals{
			Manual: &model.ManualSignal{Present: true},
			Photo:  &model.PhotoSignal{Present: true},
		}, false},
		{"fresh photo without manual", model.Signals{
			Photo: &model.PhotoSignal{Present: true, Validation: model.PhotoValidation{FreshnessValid: true}},
		}, false},
		{"manual only", model.Signals{Manual: &model.ManualSignal{Present: true}}, false},
		{"nothing", model.Signals{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pass, Evaluate(model.GoalTypeFrequency, tt.signals).Pass)
		})
	}
}

func TestEvaluate_Partner(t *testing.T) {
	approved := model.Signals{Partner: &model.PartnerSignal{Present: true, Reviewed: true, Approved: true}}
	assert.True(t, Evaluate(model.GoalTypePartner, approved).Pass)

	pending := model.Signals{Partner: &model.PartnerSignal{Present: true, Reviewed: false, Approved: true}}
	assert.False(t, Evaluate(model.GoalTypePartner, pending).Pass)

	rejected := model.Signals{Partner: &model.PartnerSignal{Present: true, Reviewed: true}}
	assert.False(t, Evaluate(model.GoalTypePartner, rejected).Pass)
}

func TestEvaluate_UnknownGoalType(t *testing.T) {
	res := Evaluate("streak", model.Signals{Manual: &model.ManualSignal{Present: true}})
	assert.False(t, res.Pass)
	assert.Equal(t, true, res.Details[DetailUnknownGoalType])
}

func TestEvaluatePolicy_IsDataDriven(t *testing.T) {
	custom := Policy{
		AnyOf: []Combination{{Name: "photo_on_site", Checks: []Check{CheckPhoto, CheckPhotoLocation}}},
	}
	signals := model.Signals{
		Photo: &model.PhotoSignal{Present: true, Validation: model.PhotoValidation{LocationValid: true}},
	}

	res := EvaluatePolicy("checkin", custom, signals)
	assert.True(t, res.Pass)
	assert.Equal(t, "photo_on_site", res.Details[DetailMatched])
}

func TestEvaluate_ChecksDetail(t *testing.T) {
	res := Evaluate(model.GoalTypeFrequency, model.Signals{
		Manual:   &model.ManualSignal{Present: true},
		Location: &model.LocationSignal{Present: true},
	})

	checks, ok := res.Details[DetailChecks].(map[string]bool)
	assert.True(t, ok)
	assert.True(t, checks["manual"])
	assert.True(t, checks["location"])
	assert.False(t, checks["photo"])
}
