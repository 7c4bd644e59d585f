package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Signals carries the proof submitted with an attempt. A nil sub-record means
// the signal was not supplied, which is different from a supplied false.
type Signals struct {
	Manual   *ManualSignal   `json:"manual,omitempty" yaml:"manual"`
	Photo    *PhotoSignal    `json:"photo,omitempty" yaml:"photo"`
	Location *LocationSignal `json:"location,omitempty" yaml:"location"`
	Time     *TimeSignal     `json:"time,omitempty" yaml:"time"`
	Partner  *PartnerSignal  `json:"partner,omitempty" yaml:"partner"`
}

type ManualSignal struct {
	Present bool `json:"present" yaml:"present"`
	Pass    bool `json:"pass" yaml:"pass"`
}

type PhotoSignal struct {
	Present       bool            `json:"present" yaml:"present"`
	ExifTimestamp *time.Time      `json:"exifTimestamp,omitempty" yaml:"exifTimestamp"`
	ExifLocation  *GeoPoint       `json:"exifLocation,omitempty" yaml:"exifLocation"`
	Validation    PhotoValidation `json:"validation" yaml:"validation"`
}

type PhotoValidation struct {
	TimeValid      bool `json:"timeValid" yaml:"timeValid"`
	FreshnessValid bool `json:"freshnessValid" yaml:"freshnessValid"`
	LocationValid  bool `json:"locationValid" yaml:"locationValid"`
}

type LocationSignal struct {
	Present bool      `json:"present" yaml:"present"`
	Inside  bool      `json:"inside" yaml:"inside"`
	Point   *GeoPoint `json:"point,omitempty" yaml:"point"`
}

type TimeSignal struct {
	Present     bool       `json:"present" yaml:"present"`
	WindowStart *time.Time `json:"windowStart,omitempty" yaml:"windowStart"`
	WindowEnd   *time.Time `json:"windowEnd,omitempty" yaml:"windowEnd"`
}

type PartnerSignal struct {
	Present  bool `json:"present" yaml:"present"`
	Reviewed bool `json:"reviewed" yaml:"reviewed"`
	Approved bool `json:"approved" yaml:"approved"`
}

type GeoPoint struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

func (s Signals) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Signals) Scan(src any) error {
	return scanJSON(src, s)
}
