package verification

import "github.com/SNU-Hackathon/Doany-sub000/internal/model"

// Check names one boolean fact about a signal set.
type Check string

const (
	CheckManual          Check = "manual"
	CheckLocation        Check = "location"
	CheckTime            Check = "time"
	CheckPhoto           Check = "photo"
	CheckPhotoTimeValid  Check = "photo_time_valid"
	CheckPhotoFresh      Check = "photo_fresh"
	CheckPhotoLocation   Check = "photo_location_valid"
	CheckPartnerReviewed Check = "partner_reviewed"
	CheckPartnerApproved Check = "partner_approved"
)

// checkFuncs maps each Check to its predicate. Absent sub-records are
// simply false here; presence flags decide, not zero values.
var checkFuncs = map[Check]func(model.Signals) bool{
	CheckManual:   func(s model.Signals) bool { return s.Manual != nil && s.Manual.Present },
	CheckLocation: func(s model.Signals) bool { return s.Location != nil && s.Location.Present },
	CheckTime:     func(s model.Signals) bool { return s.Time != nil && s.Time.Present },
	CheckPhoto:    func(s model.Signals) bool { return s.Photo != nil && s.Photo.Present },
	CheckPhotoTimeValid: func(s model.Signals) bool {
		return s.Photo != nil && s.Photo.Present && s.Photo.Validation.TimeValid
	},
	CheckPhotoFresh: func(s model.Signals) bool {
		return s.Photo != nil && s.Photo.Present && s.Photo.Validation.FreshnessValid
	},
	CheckPhotoLocation: func(s model.Signals) bool {
		return s.Photo != nil && s.Photo.Present && s.Photo.Validation.LocationValid
	},
	CheckPartnerReviewed: func(s model.Signals) bool { return s.Partner != nil && s.Partner.Reviewed },
	CheckPartnerApproved: func(s model.Signals) bool { return s.Partner != nil && s.Partner.Approved },
}

// Combination is one sufficient proof path: every listed check must hold.
type Combination struct {
	Name   string
	Checks []Check
}

// Policy passes when every Require check holds and at least one AnyOf
// combination is fully satisfied.
type Policy struct {
	Require []Check
	AnyOf   []Combination
}

// Policies is the fixed acceptance table. Adding a goal type means adding
// a row here, not new evaluation code.
var Policies = map[model.GoalType]Policy{
	model.GoalTypeSchedule: {
		Require: []Check{CheckTime},
		AnyOf: []Combination{
			{Name: "manual_location", Checks: []Check{CheckManual, CheckLocation}},
			{Name: "photo_timely", Checks: []Check{CheckPhoto, CheckPhotoTimeValid, CheckPhotoFresh}},
			{Name: "manual_time", Checks: []Check{CheckManual, CheckTime}},
		},
	},
	model.GoalTypeFrequency: {
		AnyOf: []Combination{
			{Name: "manual_location", Checks: []Check{CheckManual, CheckLocation}},
			{Name: "manual_photo", Checks: []Check{CheckManual, CheckPhoto, CheckPhotoFresh}},
		},
	},
	model.GoalTypePartner: {
		AnyOf: []Combination{
			{Name: "partner_approved", Checks: []Check{CheckPartnerReviewed, CheckPartnerApproved}},
		},
	},
}
