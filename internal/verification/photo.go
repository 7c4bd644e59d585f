package verification

import (
	"math"
	"time"

	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
)

const earthRadiusMeters = 6371000.0

// PhotoRules are the tolerances used to validate photo evidence.
type PhotoRules struct {
	Tolerance    time.Duration
	MaxAge       time.Duration
	RadiusMeters float64
}

func DefaultPhotoRules() PhotoRules {
	return PhotoRules{
		Tolerance:    10 * time.Minute,
		MaxAge:       30 * time.Minute,
		RadiusMeters: 100,
	}
}

// TimeValid reports whether capture falls inside the window widened by
// tolerance on both sides.
func TimeValid(capture, windowStart, windowEnd time.Time, tolerance time.Duration) bool {
	return !capture.Before(windowStart.Add(-tolerance)) && !capture.After(windowEnd.Add(tolerance))
}

// FreshnessValid reports whether 0 <= now-capture <= maxAge. Captures
// from the future are never fresh.
func FreshnessValid(now, capture time.Time, maxAge time.Duration) bool {
	age := now.Sub(capture)
	return age >= 0 && age <= maxAge
}

// LocationValid reports whether p is within radius meters of target.
func LocationValid(p, target model.GeoPoint, radiusMeters float64) bool {
	return Distance(p, target) <= radiusMeters
}

// Distance is the great-circle (haversine) distance in meters.
func Distance(a, b model.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// PhotoContext is what the server knows when it validates a photo.
type PhotoContext struct {
	Now         time.Time
	WindowStart *time.Time
	WindowEnd   *time.Time
	Target      *model.GeoPoint
}

// ValidatePhoto fills photo.Validation from its EXIF metadata. A sub-check
// whose inputs are missing stays false.
func ValidatePhoto(photo *model.PhotoSignal, pc PhotoContext, rules PhotoRules) {
	if photo == nil {
		return
	}
	photo.Validation = model.PhotoValidation{}
	if !photo.Present || photo.ExifTimestamp == nil {
		return
	}

	capture := *photo.ExifTimestamp
	if pc.WindowStart != nil && pc.WindowEnd != nil {
		photo.Validation.TimeValid = TimeValid(capture, *pc.WindowStart, *pc.WindowEnd, rules.Tolerance)
	}
	photo.Validation.FreshnessValid = FreshnessValid(pc.Now, capture, rules.MaxAge)
	if pc.Target != nil && photo.ExifLocation != nil {
		photo.Validation.LocationValid = LocationValid(*photo.ExifLocation, *pc.Target, rules.RadiusMeters)
	}
}
